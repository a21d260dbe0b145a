package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ingyamilmolinar/polyrhythm/core/model"
	"github.com/ingyamilmolinar/polyrhythm/internal/config"
)

func newSettingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Print the effective config and rhythm settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := config.Marshal(a.cfg)
			if err != nil {
				return err
			}
			s, err := model.Marshal(a.settings)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "# config\n%s\n# settings\n%s\n", c, s)
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Overwrite the settings file with the defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.SettingsFile == "" {
				return errors.New("no settings_file in config")
			}
			if err := config.SaveSettings(a.cfg.SettingsFile, model.Defaults()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reset %s\n", a.cfg.SettingsFile)
			return nil
		},
	})
	return cmd
}
