package currency

import (
	"fmt"
	"strings"
)

// ThemePreferenceKey is the storage key of the persisted theme.
const ThemePreferenceKey = "currency-converter-theme"

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

func ParseTheme(str string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(str))) {
	case ThemeLight:
		return ThemeLight, nil
	case ThemeDark:
		return ThemeDark, nil
	case ThemeSystem:
		return ThemeSystem, nil
	}

	return "", fmt.Errorf("value %s is not valid Theme", str)
}

// Next cycles light -> dark -> system -> light.
func (t Theme) Next() Theme {
	switch t {
	case ThemeLight:
		return ThemeDark
	case ThemeDark:
		return ThemeSystem
	}

	return ThemeLight
}
