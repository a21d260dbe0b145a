package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ingyamilmolinar/polyrhythm/core/frame"
	"github.com/ingyamilmolinar/polyrhythm/internal/audio"
)

// renderStep is the virtual frame interval used when rendering offline.
const renderStep = 16 * time.Millisecond

func newRenderCmd(a *app) *cobra.Command {
	var (
		length time.Duration
		out    string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the rhythm to a WAV file without opening a window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if length <= 0 {
				return fmt.Errorf("length must be positive, got %v", length)
			}
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			notes, err := a.render(f, length)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %v, %d notes\n", out, length, notes)
			return nil
		},
	}
	cmd.Flags().DurationVarP(&length, "length", "l", 10*time.Second, "length of audio to render")
	cmd.Flags().StringVarP(&out, "out", "o", "polyrhythm.wav", "output WAV file")
	return cmd
}

// render plays the visualizer against a virtual clock, faster than real
// time, and writes what it heard to w.
func (a *app) render(w io.WriteSeeker, length time.Duration) (int, error) {
	now := time.Unix(0, 0)
	clock := func() time.Time { return now }

	loop := frame.NewLoop(clock)
	rec := audio.NewOffline(a.cfg.Audio.SampleRate, clock)
	vis := a.newVisualizer(loop, rec, func(fn func()) { fn() })
	defer vis.Close()

	vis.Play()
	loop.Pump()
	for elapsed := time.Duration(0); elapsed < length; elapsed += renderStep {
		now = now.Add(renderStep)
		loop.Pump()
	}
	a.logger.Infof("[RENDER] %d notes in %v, %d dropped", rec.Notes(), length, vis.Stats().Dropped)
	if err := rec.WriteWAV(w, length); err != nil {
		return 0, err
	}
	return rec.Notes(), nil
}
