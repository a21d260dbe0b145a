package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/ingyamilmolinar/polyrhythm/core/frame"
	"github.com/ingyamilmolinar/polyrhythm/internal/config"
	game_log "github.com/ingyamilmolinar/polyrhythm/internal/log"
	"github.com/ingyamilmolinar/polyrhythm/internal/tui"
)

func newTuiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the visualizer in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.logFile == "" {
				// stderr shares the terminal with the screen
				a.logger = game_log.Discard()
			}
			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("open terminal: %w", err)
			}
			if err := screen.Init(); err != nil {
				return fmt.Errorf("init terminal: %w", err)
			}
			defer screen.Fini()

			out, closeAudio := a.openAudio()
			defer closeAudio()

			loop := frame.NewLoop(nil)
			vis := a.newVisualizer(loop, out, nil)
			defer vis.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if err := tui.New(screen, loop, vis, a.logger).Run(ctx, tui.DefaultTick); err != nil && ctx.Err() == nil {
				return err
			}
			if a.cfg.SettingsFile != "" {
				return config.SaveSettings(a.cfg.SettingsFile, vis.Settings())
			}
			return nil
		},
	}
}
