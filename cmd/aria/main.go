// aria is the interactive terminal client for the assistant.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"aria/internal/app"
	"aria/internal/config"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "aria [message]",
		Short:        "Voice and text assistant for your workplace accounts",
		Long:         "aria translates natural language into actions on your mail, calendar, chats and files.\nSide-effecting actions are always previewed and require your confirmation.",
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args)
		},
	}

	flags := cmd.Flags()
	flags.String("config", "", "path to the yaml config file")
	flags.String("session", "", "session id to resume (default: a new session)")
	flags.Bool("voice", false, "synthesize spoken replies to wav files")
	flags.Bool("plain", false, "disable colors and markdown rendering")

	viper.SetEnvPrefix("ARIA")
	viper.AutomaticEnv()
	for _, name := range []string{"config", "session", "voice", "plain"} {
		_ = viper.BindPFlag("cli."+name, flags.Lookup(name))
	}
	return cmd
}

func run(args []string) error {
	cfg, err := config.Load(viper.GetString("cli.config"))
	if err != nil {
		return err
	}
	// The terminal client logs quietly unless asked otherwise.
	if cfg.Logging.Level == "info" {
		cfg.Logging.Level = "warn"
	}

	container, err := app.Build(cfg)
	if err != nil {
		return err
	}

	cli, err := newCLI(container, cliOptions{
		SessionID: viper.GetString("cli.session"),
		Voice:     viper.GetBool("cli.voice"),
		Plain:     viper.GetBool("cli.plain"),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(args) > 0 {
		return cli.RunOnce(ctx, strings.Join(args, " "))
	}
	return cli.RunREPL(ctx)
}
