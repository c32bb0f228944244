package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/malusev998/currency-converter"
	"github.com/malusev998/currency-converter/logger"
	"github.com/malusev998/currency-converter/services"
)

const interactiveHelp = `Commands:
  amount <value>   set the amount to convert
  from <code>      set the base currency
  to <code>        set the target currency
  swap             swap base and target
  chip <code>      quick-select a featured currency
  chips            list the featured currencies
  rates            list the available currencies
  retry            fetch the rates again
  theme [value]    show or change the theme (light, dark, system, toggle)
  show             print the current conversion
  help             print this help
  quit             leave`

type session struct {
	config     *Config
	controller *services.ConversionController
	themes     *services.ThemeStore
	out        io.Writer

	mutex       sync.Mutex
	r           renderer
	unsubscribe func()
}

func interactive(config *Config) *cobra.Command {
	return &cobra.Command{
		Use:     "interactive",
		Aliases: []string{"i"},
		Short:   "Convert currencies interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := newSession(config, cmd.OutOrStdout())
			defer s.close()

			<-s.controller.Start()
			s.show()

			return s.run(cmd.InOrStdin())
		},
	}
}

func newSession(config *Config, out io.Writer) *session {
	s := &session{
		config:     config,
		controller: newController(config),
		themes:     loadTheme(config),
		out:        out,
	}

	s.r = newRenderer(out, s.themes.Actual(), config.NoColor)
	s.unsubscribe = s.themes.Subscribe(s.onTheme)

	return s
}

// onTheme swaps the palette. A change of the terminal scheme while the
// preference is "system" redraws the conversion in the new colors.
func (s *session) onTheme(theme, actual currency.Theme) {
	s.mutex.Lock()
	s.r = newRenderer(s.out, actual, s.config.NoColor)
	s.mutex.Unlock()

	if theme == currency.ThemeSystem {
		s.show()
	}
}

func (s *session) close() {
	s.unsubscribe()
	s.themes.Close()
	s.controller.Close()
}

func (s *session) renderer() renderer {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.r
}

func (s *session) show() {
	s.renderer().View(s.controller.View())
}

func (s *session) run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	ctx := s.config.context()

	for {
		fmt.Fprint(s.out, "> ")

		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fields := strings.Fields(scanner.Text())

		if len(fields) == 0 {
			continue
		}

		if quit := s.handle(strings.ToLower(fields[0]), fields[1:]); quit {
			return nil
		}
	}
}

func (s *session) handle(command string, args []string) (quit bool) {
	arg := strings.Join(args, " ")

	switch command {
	case "quit", "exit", "q":
		return true
	case "help", "?":
		fmt.Fprintln(s.out, interactiveHelp)
	case "show":
		s.show()
	case "amount":
		s.controller.SetAmountString(arg)
		s.show()
	case "from", "base":
		if s.requireArg(command, arg) {
			<-s.controller.SetBaseCurrency(arg)
			s.show()
		}
	case "to", "target":
		if s.requireArg(command, arg) {
			s.controller.SetTargetCurrency(arg)
			s.show()
		}
	case "swap":
		<-s.controller.Swap()
		s.show()
	case "chip":
		if s.requireArg(command, arg) {
			<-s.controller.SelectChip(arg)
			s.show()
		}
	case "chips":
		fmt.Fprintln(s.out, strings.ToUpper(strings.Join(services.FeaturedCurrencies, " ")))
	case "rates", "options":
		s.renderer().Options(s.controller.View(), s.controller.Store.Current().Table)
	case "retry":
		<-s.controller.Retry()
		s.show()
	case "theme":
		if arg != "" {
			if err := changeTheme(s.config, s.themes, strings.ToLower(arg)); err != nil {
				logger.Log.Warnw("could not change theme", "value", arg, "error", err)
				fmt.Fprintln(s.out, err)
				return false
			}
		}

		s.renderer().Theme(s.themes.Theme(), s.themes.Actual())
	default:
		fmt.Fprintf(s.out, "unknown command %q, type 'help' for a list of commands\n", command)
	}

	return false
}

func (s *session) requireArg(command, arg string) bool {
	if arg == "" {
		fmt.Fprintf(s.out, "%s needs a currency code\n", command)
		return false
	}

	return true
}
