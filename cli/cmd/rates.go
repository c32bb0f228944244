package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/malusev998/currency-converter"
)

func rates(config *Config) *cobra.Command {
	var base string

	command := &cobra.Command{
		Use:   "rates",
		Short: "List the available currencies and their rates",
		RunE: func(cmd *cobra.Command, args []string) error {
			controller := newController(config)
			defer controller.Close()

			<-resolve(controller, base)

			themes := loadTheme(config)
			defer themes.Close()

			r := newRenderer(cmd.OutOrStdout(), themes.Actual(), config.NoColor)
			view := controller.View()

			if view.Status != currency.StatusReady {
				r.View(view)
				return errors.New(view.Message)
			}

			r.Options(view, controller.Store.Current().Table)

			return nil
		},
	}

	command.Flags().StringVarP(&base, "base", "b", "", "Base currency code")

	return command
}
