package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/jmylchreest/richconv/internal/logger"
	"github.com/jmylchreest/richconv/internal/server"
	"github.com/jmylchreest/richconv/pkg/convert"
	"github.com/jmylchreest/richconv/pkg/htmlmd"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the conversion API over HTTP",
	Long: `Serve POST /convert and GET /healthz.

The request body is a JSON object with "from", "to" and an "html" or
"markdown" payload. Markdown results are returned as text/markdown,
documents as JSON.

Examples:
  richconv serve
  richconv serve --addr 127.0.0.1:9000 --max-body-size 4MB`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	flags := serveCmd.Flags()
	flags.String("addr", ":8080", "listen address")
	flags.String("max-body-size", "1MB", "maximum request body size (e.g., 512KB, 4MB)")
	flags.Duration("read-timeout", 10*time.Second, "request read timeout")
	flags.Duration("write-timeout", 30*time.Second, "response write timeout")
	flags.Duration("shutdown-timeout", 15*time.Second, "graceful shutdown timeout")
	flags.String("engine", "", "HTML converter: native, library")

	_ = viper.BindPFlag("server.addr", flags.Lookup("addr"))
	_ = viper.BindPFlag("server.max_body_size", flags.Lookup("max-body-size"))
	_ = viper.BindPFlag("server.read_timeout", flags.Lookup("read-timeout"))
	_ = viper.BindPFlag("server.write_timeout", flags.Lookup("write-timeout"))
	_ = viper.BindPFlag("server.shutdown_timeout", flags.Lookup("shutdown-timeout"))
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// maxprocs.Set only fails on an invalid GOMAXPROCS value, in which case
	// the runtime default stays in effect.
	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Debug(fmt.Sprintf(format, args...))
	}))

	convCfg := cfg.Convert
	if engine, _ := cmd.Flags().GetString("engine"); engine != "" {
		convCfg.Engine = htmlmd.Engine(engine)
	}
	conv, err := htmlmd.NewConverter(&convCfg)
	if err != nil {
		return err
	}

	srv, err := server.New(convert.New(convert.WithConverter(conv)), cfg.Server)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return srv.ListenAndServe(ctx)
}
