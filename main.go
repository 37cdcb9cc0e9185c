package main

import (
	"context"
	"errors"
	"friday/app/client/host"
	"friday/app/client/knowledge"
	"friday/app/client/speechkit"
	"friday/app/config"
	"friday/app/service/confirm"
	"friday/app/service/dialogue"
	"friday/app/service/dispatch"
	"friday/app/service/engine"
	"friday/app/service/notes"
	"friday/app/service/querylog"
	"friday/app/service/queue"
	"friday/app/service/reminder"
	"friday/app/service/speaker"
	"friday/app/service/transcript"
	"friday/app/service/voice"
	"friday/app/shell/mcpserver"
	"friday/app/shell/terminal"
	"friday/app/shell/web"
	"friday/app/util/mylog"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2/log"
	"github.com/samber/do"
	"github.com/spf13/cobra"
)

type mode int

const (
	modeTerminal mode = iota
	modeServe
	modeMCP
)

var configPath string

func main() {
	mylog.Preinit()

	rootCmd := &cobra.Command{
		Use:   "friday",
		Short: "FRIDAY, a keyword-driven personal assistant",
		Long: `FRIDAY answers typed or spoken commands: web and Wikipedia lookups,
notes, reminders, calculations, calls and small talk.

Without a subcommand it starts an interactive chat in the terminal.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			run(modeTerminal)
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "path to the YAML config file")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Serve the browser chat on the configured loopback address",
		RunE: func(cmd *cobra.Command, args []string) error {
			run(modeServe)
			return nil
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "mcp",
		Short: "Expose the assistant as MCP tools over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			run(modeMCP)
			return nil
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(m mode) {
	di := do.New()
	defer di.Shutdown()
	defer log.Info("Waiting for services to finish...")

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	do.ProvideValue(di, appCtx)
	do.ProvideNamedValue(di, engine.AppCancelName, cancel)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	do.ProvideValue(di, cfg)

	if err = mylog.Init(cfg, m != modeServe); err != nil {
		log.Fatalf("logging init failed: %v", err)
	}

	do.Provide(di, host.New)
	do.Provide(di, knowledge.New)
	do.Provide(di, speechkit.NewClient)
	do.Provide(di, dialogue.New)
	do.Provide(di, dispatch.NewState)
	do.Provide(di, notes.New)
	do.Provide(di, querylog.New)
	do.Provide(di, confirm.New)
	do.Provide(di, transcript.New)
	do.Provide(di, speaker.New)
	do.Provide(di, func(i *do.Injector) (reminder.Announcer, error) {
		return do.MustInvoke[*speaker.Service](i), nil
	})
	do.Provide(di, reminder.New)
	do.Provide(di, dispatch.New)
	do.Provide(di, queue.New)
	do.Provide(di, voice.New)
	do.Provide(di, engine.New)
	do.Provide(di, terminal.New)
	do.Provide(di, web.New)
	do.Provide(di, mcpserver.New)

	slog.Info("Service started", "config", configPath)

	do.MustInvoke[*speaker.Service](di).Greet(cfg.Assistant.Name, cfg.Assistant.User)

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Info("Shutting down...")

		cancel()
	}()

	switch m {
	case modeTerminal:
		go do.MustInvoke[*engine.Service](di).Run(appCtx)

		go func() {
			defer cancel()

			if err := do.MustInvoke[*terminal.Shell](di).Run(appCtx); err != nil {
				slog.Error("Terminal input failed", "error", err)
			}
		}()

	case modeServe:
		go do.MustInvoke[*engine.Service](di).Run(appCtx)

		go func() {
			if err := do.MustInvoke[*web.Server](di).Run(appCtx); err != nil {
				log.Fatalf("web shell failed: %v", err)
			}
		}()

	case modeMCP:
		go func() {
			defer cancel()

			err := do.MustInvoke[*mcpserver.Server](di).Serve(appCtx)
			if err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("MCP server stopped", "error", err)
			}
		}()
	}

	<-appCtx.Done()
}
