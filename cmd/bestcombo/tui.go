package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/adrior11/check24-best-combination-submission/internal/config"
	"github.com/adrior11/check24-best-combination-submission/internal/coord"
	"github.com/adrior11/check24-best-combination-submission/internal/logging"
	"github.com/adrior11/check24-best-combination-submission/internal/otel"
	"github.com/adrior11/check24-best-combination-submission/internal/ui"
)

func runTUI(_ *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(config.Dir(), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := logging.Init(config.Dir()); err != nil {
		return err
	}
	defer logging.Close()

	// Event log + ring buffer for the debug overlay
	eventFile, err := os.OpenFile(eventLogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open event log: %w", err)
	}
	defer eventFile.Close()
	obsLog := otel.NewLogger(eventFile)
	defer obsLog.Close()
	ring := otel.NewRingBuffer(otel.DefaultRingSize)
	obsLog.SetRingBuffer(ring)
	if flagTrace {
		otel.SetTrace(true)
	}
	obsLog.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindStartup, Comp: "main", Msg: cfg.API.URL})

	history, err := openHistory(cfg)
	if err != nil {
		// History is optional; the session still works without it.
		logging.Warn("history disabled", "err", err)
		history = nil
	}
	if history != nil {
		defer history.Close()
	}

	coordinator := coord.New(coord.Config{
		API:          newAPI(cfg),
		History:      history,
		HistoryKeep:  cfg.History.Keep,
		Options:      fetchOptions(cfg),
		SuggestDelay: cfg.SuggestDelay(),
		PollInterval: cfg.PollInterval(),
		PollCeiling:  cfg.PollCeiling(),
		Logger:       obsLog,
	})

	app := ui.NewAppWithConfig(ui.AppConfig{
		Actions:   coordinator.Actions(),
		Obs:       ui.ObsConfig{Logger: obsLog, Ring: ring},
		Currency:  cfg.UI.Currency,
		NoticeTTL: cfg.NoticeTTL(),
		ShowDebug: cfg.UI.ShowDebug,
	})

	program := tea.NewProgram(app, tea.WithAltScreen())
	coordinator.Start(ctx, program)
	logging.Info("session started", "url", cfg.API.URL, "limit", cfg.Fetch.DefaultLimit, "session", obsLog.SessionID())

	// Run UI (blocks until quit)
	_, runErr := program.Run()

	// Graceful shutdown
	coordinator.Close()
	obsLog.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindShutdown, Comp: "main"})
	if runErr != nil {
		logging.Error("program exited", "err", runErr)
		return fmt.Errorf("error running program: %w", runErr)
	}
	return nil
}
