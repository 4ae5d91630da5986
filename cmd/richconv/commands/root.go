// Package commands implements the CLI commands for richconv.
package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/richconv/internal/config"
	"github.com/jmylchreest/richconv/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "richconv",
	Short: "Convert HTML and Markdown into rich-text documents",
	Long: `Richconv converts HTML to Markdown and Markdown to a rich-text document
tree with bold, italic and code marks.

Links are flattened to their text, adjacent bold runs are merged, and the
document tree is emitted as JSON or YAML.

Examples:
  # HTML file to Markdown
  richconv convert page.html

  # Markdown from stdin to a rich-text document
  echo 'Hello _world_' | richconv convert --from markdown --to richtext

  # Serve the conversion API
  richconv serve --addr :8080

  # Re-save a directory of HTML exports as .doc files
  richconv resave ./exports`,
	SilenceUsage: true,
}

// configErr holds the config file read error from initConfig, reported by
// loadConfig.
var configErr error

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.richconv.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress progress output")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("log-json", false, "write logs as JSON")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log_json", rootCmd.PersistentFlags().Lookup("log-json"))

	config.SetDefaults(viper.GetViper())
}

func initConfig() {
	cfgFile := viper.GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".richconv")
		viper.SetConfigType("yaml")
	}

	config.BindEnv(viper.GetViper())

	configErr = readConfig(viper.GetViper(), cfgFile != "")
}

// readConfig reads the config file into v. A missing default config file is
// fine; an explicit file must exist and parse.
func readConfig(v *viper.Viper, explicit bool) error {
	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err == nil || (!explicit && errors.As(err, &notFound)) {
		return nil
	}
	return fmt.Errorf("read config: %w", err)
}

// loadConfig decodes the merged configuration and initializes logging.
func loadConfig() (*config.Config, error) {
	if configErr != nil {
		return nil, configErr
	}
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	logger.Init(logger.Options{
		Debug: cfg.Debug,
		Quiet: cfg.Quiet,
		Level: cfg.LogLevel,
		JSON:  cfg.LogJSON,
	})
	if used := viper.ConfigFileUsed(); used != "" {
		logger.Debug("config file loaded", "path", used)
	}
	return cfg, nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// logInfo prints an info message to stderr (unless quiet mode).
func logInfo(format string, args ...any) {
	if !viper.GetBool("quiet") {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
