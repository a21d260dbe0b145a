package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ingyamilmolinar/polyrhythm/core/model"
	"github.com/ingyamilmolinar/polyrhythm/internal/config"
	game_log "github.com/ingyamilmolinar/polyrhythm/internal/log"
)

// app holds what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	logLevel   string
	logFile    string

	cfg      config.Config
	settings model.Settings
	logger   *game_log.Logger
	closeLog func() error
}

func newRootCmd() *cobra.Command {
	a := &app{closeLog: func() error { return nil }}
	root := &cobra.Command{
		Use:           "polyrhythm",
		Short:         "Bouncing-node polyrhythm visualizer",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.closeLog()
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", config.DefaultFileName, "path to the YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, error or none (overrides the config)")
	root.PersistentFlags().StringVar(&a.logFile, "log-file", "", "append logs to this file instead of stderr")

	root.AddCommand(
		newRunCmd(a),
		newTuiCmd(a),
		newRenderCmd(a),
		newSettingsCmd(a),
	)
	// bare invocation opens the window
	root.RunE = newRunCmd(a).RunE
	return root
}

func (a *app) load(stderr io.Writer) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	a.cfg = cfg

	out := stderr
	if a.logFile != "" {
		f, err := os.OpenFile(a.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		out = f
		a.closeLog = f.Close
	}
	a.logger = game_log.New(out, game_log.LevelFromString(cfg.LogLevel))

	s, err := config.LoadSettings(cfg.SettingsFile)
	if err != nil {
		return err
	}
	a.settings = s.Clamped()
	a.logger.Debugf("[MAIN] config %s, settings %q", a.configPath, cfg.SettingsFile)
	return nil
}
