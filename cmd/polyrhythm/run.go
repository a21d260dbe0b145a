package main

import (
	"github.com/spf13/cobra"

	"github.com/ingyamilmolinar/polyrhythm/core/engine"
	"github.com/ingyamilmolinar/polyrhythm/core/frame"
	"github.com/ingyamilmolinar/polyrhythm/core/voice"
	"github.com/ingyamilmolinar/polyrhythm/internal/audio"
	"github.com/ingyamilmolinar/polyrhythm/internal/ui"
)

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Open the visualizer window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, closeAudio := a.openAudio()
			defer closeAudio()

			loop := frame.NewLoop(nil)
			vis := a.newVisualizer(loop, out, nil)
			g := ui.New(ui.Options{
				Loop:         loop,
				Visualizer:   vis,
				Logger:       a.logger,
				SettingsPath: a.cfg.SettingsFile,
			})
			return ui.Run(a.cfg, g)
		},
	}
}

// openAudio starts the speaker output. Without a device the visualizer still
// runs, silently.
func (a *app) openAudio() (voice.NoteTrigger, func()) {
	if a.cfg.Audio.Mute {
		a.logger.Infof("[MAIN] audio muted")
		return nil, func() {}
	}
	eng, err := audio.NewEngine(a.cfg.Audio.SampleRate, a.logger)
	if err != nil {
		a.logger.Errorf("[MAIN] audio unavailable, running silent: %v", err)
		return nil, func() {}
	}
	return eng, func() {
		if err := eng.Close(); err != nil {
			a.logger.Errorf("[MAIN] close audio: %v", err)
		}
	}
}

func (a *app) newVisualizer(loop *frame.Loop, out voice.NoteTrigger, dispatch func(func())) *engine.Visualizer {
	return engine.New(engine.Options{
		Clock:         loop,
		Timers:        loop,
		Audio:         out,
		Logger:        a.logger,
		Settings:      a.settings,
		MaxVoices:     a.cfg.Voices.Max,
		Grace:         a.cfg.Voices.Grace,
		SweepInterval: a.cfg.Voices.SweepInterval,
		Dispatch:      dispatch,
	})
}
