package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/janekbaraniewski/co2meter/internal/config"
	"github.com/janekbaraniewski/co2meter/internal/core"
	"github.com/janekbaraniewski/co2meter/internal/intangles"
	"github.com/janekbaraniewski/co2meter/internal/tui"
)

func runDashboard(parent context.Context, cfg config.Config, ov overrides, verbose bool) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	var current atomic.Pointer[config.Config]
	current.Store(&cfg)

	engine := core.NewEngine(
		newRunner(&current, intangles.NewHTTPClient(), config.CredentialsPathFor(ov.configPath), verbose),
		time.Duration(cfg.UI.RefreshIntervalSeconds)*time.Second,
	)
	engine.SetTimeout(time.Duration(cfg.UI.RunTimeoutSeconds) * time.Second)

	model := tui.NewModel(cfg.UI.ShowTrend, cfg.UI.TrendPoints)
	model.SetOnRefresh(engine.Trigger)

	program := tea.NewProgram(model, tea.WithAltScreen())
	engine.OnUpdate(func(r core.Reading) {
		program.Send(tui.ReadingMsg(r))
	})

	err := config.Watch(ctx, ov.configPath, func(next config.Config, err error) {
		if err != nil {
			return
		}
		next = applyOverrides(next, ov)
		if err := next.Validate(); err != nil {
			log.Printf("config: keeping previous settings: %v", err)
			return
		}
		current.Store(&next)
		engine.SetInterval(time.Duration(next.UI.RefreshIntervalSeconds) * time.Second)
		engine.SetTimeout(time.Duration(next.UI.RunTimeoutSeconds) * time.Second)
		program.Send(tui.DisplayMsg{ShowTrend: next.UI.ShowTrend, TrendPoints: next.UI.TrendPoints})
	})
	if err != nil {
		log.Printf("config: live reload disabled: %v", err)
	}

	go engine.Run(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
			program.Quit()
		case <-ctx.Done():
		}
	}()

	if _, err := program.Run(); err != nil {
		log.SetOutput(os.Stderr)
		log.Printf("TUI error: %v", err)
		return err
	}
	return nil
}
