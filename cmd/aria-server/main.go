// aria-server exposes the assistant over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"aria/internal/app"
	"aria/internal/config"
	"aria/internal/server"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "aria-server",
		Short:        "HTTP server for the Aria workplace assistant",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}

	flags := cmd.Flags()
	flags.String("config", "", "path to the yaml config file")
	flags.String("host", "", "listen host (overrides config)")
	flags.Int("port", 0, "listen port (overrides config)")
	flags.Bool("debug", false, "enable debug logging and verbose HTTP output")

	viper.SetEnvPrefix("ARIA")
	viper.AutomaticEnv()
	for _, name := range []string{"config", "host", "port", "debug"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}
	return cmd
}

func run() error {
	cfg, err := config.Load(viper.GetString("config"))
	if err != nil {
		return err
	}
	if host := viper.GetString("host"); host != "" {
		cfg.Server.Host = host
	}
	if port := viper.GetInt("port"); port != 0 {
		cfg.Server.Port = port
	}
	if viper.GetBool("debug") {
		cfg.Server.Debug = true
		cfg.Logging.Level = "debug"
	}

	container, err := app.Build(cfg)
	if err != nil {
		return err
	}

	srv := server.New(server.Config{
		Host:          cfg.Server.Host,
		Port:          cfg.Server.Port,
		EnableCORS:    cfg.Server.EnableCORS,
		Debug:         cfg.Server.Debug,
		SweepInterval: time.Duration(cfg.Confirm.SweepIntervalMinutes) * time.Minute,
		ActionMaxAge:  time.Duration(cfg.Confirm.MaxAgeMinutes) * time.Minute,
	}, container.Assistant, container.Confirms, container.Dispatcher,
		container.Transcriber, container.Synthesizer,
		container.Logger, container.Metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}
