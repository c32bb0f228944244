package cmd

import (
	"github.com/spf13/cobra"

	"github.com/malusev998/currency-converter"
	"github.com/malusev998/currency-converter/services"
)

func theme(config *Config) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [light|dark|system|toggle]",
		Short:     "Show or change the color theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"light", "dark", "system", "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			themes := loadTheme(config)
			defer themes.Close()

			if len(args) == 1 {
				if err := changeTheme(config, themes, args[0]); err != nil {
					return err
				}
			}

			newRenderer(cmd.OutOrStdout(), themes.Actual(), config.NoColor).Theme(themes.Theme(), themes.Actual())

			return nil
		},
	}
}

func changeTheme(config *Config, themes *services.ThemeStore, value string) error {
	if value == "toggle" {
		_, err := themes.Toggle(config.context())
		return err
	}

	parsed, err := currency.ParseTheme(value)

	if err != nil {
		return err
	}

	return themes.Set(config.context(), parsed)
}
