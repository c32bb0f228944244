package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/malusev998/currency-converter"
	"github.com/malusev998/currency-converter/logger"
	"github.com/malusev998/currency-converter/services"
)

func convert(config *Config) *cobra.Command {
	var (
		amount string
		from   string
		to     string
	)

	command := &cobra.Command{
		Use:   "convert",
		Short: "Convert an amount from one currency to another",
		Example: "currency-converter convert --amount 100 --from usd --to eur\n" +
			"currency-converter convert 250 GBP JPY",
		Args: cobra.MaximumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			positional := []*string{&amount, &from, &to}

			for i, arg := range args {
				*positional[i] = arg
			}

			controller := newController(config)
			defer controller.Close()

			if amount != "" {
				controller.SetAmountString(amount)
			}

			if to != "" {
				controller.SetTargetCurrency(to)
			}

			<-resolve(controller, from)

			view := controller.View()
			logger.Log.Debugw("conversion finished", "status", view.Status, "base", view.Base, "target", view.Target, "fallback", view.Fallback)

			themes := loadTheme(config)
			defer themes.Close()

			newRenderer(cmd.OutOrStdout(), themes.Actual(), config.NoColor).View(view)

			if view.Status == currency.StatusFailed {
				return errors.New(view.Message)
			}

			return nil
		},
	}

	command.Flags().StringVarP(&amount, "amount", "a", "", "Amount to convert")
	command.Flags().StringVarP(&from, "from", "f", "", "Base currency code")
	command.Flags().StringVarP(&to, "to", "t", "", "Target currency code")

	return command
}

// resolve fetches the table for base, or for the configured default base
// when none is given.
func resolve(controller *services.ConversionController, base string) <-chan struct{} {
	if base == "" {
		return controller.Start()
	}

	return controller.SetBaseCurrency(base)
}
