package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/richconv/internal/output"
	"github.com/jmylchreest/richconv/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		short, _ := cmd.Flags().GetBool("short")
		format, _ := cmd.Flags().GetString("format")

		switch {
		case short:
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		case format != "":
			w, err := output.NewWriter(cmd.OutOrStdout(), output.Format(format))
			if err != nil {
				return err
			}
			if err := w.Write(version.Get()); err != nil {
				return err
			}
			return w.Close()
		default:
			fmt.Fprintln(cmd.OutOrStdout(), version.Full())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().Bool("short", false, "print only the version number")
	versionCmd.Flags().String("format", "", "structured output: json, yaml")
}
