package commands

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/richconv/internal/logger"
	"github.com/jmylchreest/richconv/internal/resave"
)

var resaveCmd = &cobra.Command{
	Use:   "resave <dir>",
	Short: "Re-save a directory of HTML files as Word documents",
	Long: `Re-save every .html file directly inside <dir> as a .doc file next to it,
using LibreOffice in headless mode. Files whose names start with "~" are
skipped.

Examples:
  richconv resave ./exports
  richconv resave ./exports --office-bin /opt/libreoffice/program/soffice`,
	Args: cobra.ExactArgs(1),
	RunE: runResave,
}

func init() {
	rootCmd.AddCommand(resaveCmd)

	flags := resaveCmd.Flags()
	flags.String("office-bin", "soffice", "office suite binary")
	flags.Duration("timeout", 2*time.Minute, "timeout per file")

	_ = viper.BindPFlag("resave.office_bin", flags.Lookup("office-bin"))
	_ = viper.BindPFlag("resave.timeout", flags.Lookup("timeout"))
}

func runResave(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	files, err := resave.Scan(args[0])
	if err != nil {
		return err
	}
	if len(files) == 0 {
		logInfo("No HTML files found in %s", args[0])
		return nil
	}
	logger.Debug("resaving files", "count", len(files), "bin", cfg.Resave.OfficeBin)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var progress io.Writer = os.Stderr
	if cfg.Quiet {
		progress = nil
	}
	saver := resave.NewSofficeSaver(cfg.Resave.OfficeBin, cfg.Resave.Timeout)
	return resave.Run(ctx, files, saver, progress)
}
