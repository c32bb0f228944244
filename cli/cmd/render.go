package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"golang.org/x/term"

	"github.com/malusev998/currency-converter"
)

type (
	palette struct {
		title   *color.Color
		label   *color.Color
		code    *color.Color
		value   *color.Color
		warning *color.Color
		err     *color.Color
	}

	renderer struct {
		out     io.Writer
		palette palette
	}
)

func newPalette(actual currency.Theme, noColor bool) palette {
	p := palette{
		title:   color.New(color.Bold),
		label:   color.New(color.Faint),
		code:    color.New(color.FgBlue, color.Bold),
		value:   color.New(color.FgGreen, color.Bold),
		warning: color.New(color.FgYellow),
		err:     color.New(color.FgRed, color.Bold),
	}

	if actual == currency.ThemeDark {
		p.title = color.New(color.FgHiWhite, color.Bold)
		p.label = color.New(color.FgHiBlack)
		p.code = color.New(color.FgHiCyan, color.Bold)
		p.value = color.New(color.FgHiGreen, color.Bold)
		p.warning = color.New(color.FgHiYellow)
		p.err = color.New(color.FgHiRed, color.Bold)
	}

	if noColor {
		for _, c := range []*color.Color{p.title, p.label, p.code, p.value, p.warning, p.err} {
			c.DisableColor()
		}
	}

	return p
}

// isTerminal reports whether w is a terminal file.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)

	return ok && term.IsTerminal(int(f.Fd()))
}

func newRenderer(out io.Writer, actual currency.Theme, noColor bool) renderer {
	return renderer{
		out:     out,
		palette: newPalette(actual, noColor || !isTerminal(out)),
	}
}

// FormatAmount groups thousands and keeps at most two decimals.
func FormatAmount(value float64) string {
	str := decimal.NewFromFloat(value).Round(2).String()
	sign := ""

	if strings.HasPrefix(str, "-") {
		sign, str = "-", str[1:]
	}

	integer, fraction := str, ""

	if idx := strings.IndexByte(str, '.'); idx >= 0 {
		integer, fraction = str[:idx], str[idx:]
	}

	var builder strings.Builder

	for i, digit := range integer {
		if i > 0 && (len(integer)-i)%3 == 0 {
			builder.WriteRune(',')
		}

		builder.WriteRune(digit)
	}

	return sign + builder.String() + fraction
}

// FormatRate prints four decimals, or N/A when the rate is missing.
func FormatRate(rate float64, ok bool) string {
	if !ok {
		return "N/A"
	}

	return decimal.NewFromFloat(rate).StringFixed(4)
}

func themeStatus(theme, actual currency.Theme) string {
	if theme == currency.ThemeSystem {
		if actual == currency.ThemeDark {
			return "Auto Dark"
		}

		return "Auto Light"
	}

	return strings.ToUpper(string(theme[:1])) + string(theme[1:])
}

func (r renderer) View(view currency.View) {
	p := r.palette

	switch view.Status {
	case currency.StatusLoading:
		p.label.Fprintln(r.out, "Loading currency rates...")
		return
	case currency.StatusFailed:
		p.err.Fprintln(r.out, "Error loading currency rates")
		fmt.Fprintln(r.out, view.Message)
		p.label.Fprintln(r.out, "Run again or type 'retry' to try again.")
		return
	}

	p.title.Fprintln(r.out, "Exchange Rate")
	fmt.Fprintf(r.out, "  1 %s = %s %s\n",
		p.code.Sprint(view.Base),
		p.value.Sprint(FormatRate(view.Rate, view.HasRate)),
		p.code.Sprint(view.Target),
	)

	p.title.Fprintln(r.out, "Converted Amount")
	fmt.Fprintf(r.out, "  %s %s = %s %s\n",
		FormatAmount(view.Amount),
		p.code.Sprint(view.Base),
		p.value.Sprint(FormatAmount(view.Converted)),
		p.code.Sprint(view.Target),
	)

	r.fallbackNote(view)
}

func (r renderer) fallbackNote(view currency.View) {
	if view.Fallback {
		r.palette.warning.Fprintf(r.out, "Note: rates for %s were unavailable; showing rates relative to %s.\n", view.Base, view.TableBase)
	}
}

func (r renderer) Options(view currency.View, table currency.RateTable) {
	p := r.palette

	p.title.Fprintf(r.out, "Currencies (base %s)\n", view.TableBase)
	r.fallbackNote(view)

	for _, code := range view.Options {
		rate, ok := table.Rate(code)
		fmt.Fprintf(r.out, "  %s  %s\n", p.code.Sprint(strings.ToUpper(code)), FormatRate(rate, ok))
	}
}

func (r renderer) Theme(theme, actual currency.Theme) {
	fmt.Fprintf(r.out, "Theme: %s (%s)\n", r.palette.value.Sprint(theme), themeStatus(theme, actual))
}
