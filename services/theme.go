package services

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/malusev998/currency-converter"
	"github.com/malusev998/currency-converter/logger"
)

type (
	// SchemeSource reports whether the surrounding terminal prefers a dark
	// color scheme and broadcasts changes.
	SchemeSource struct {
		mutex     sync.Mutex
		dark      bool
		listeners map[uint64]func(dark bool)
		nextID    uint64
	}

	// ThemeStore owns the theme preference. Load reads the persisted value
	// once; Set and Toggle write it back. While the preference is "system"
	// the store follows the SchemeSource.
	ThemeStore struct {
		Storage currency.Storage
		Scheme  *SchemeSource
		Logger  *zap.SugaredLogger

		mutex       sync.Mutex
		theme       currency.Theme
		actual      currency.Theme
		unsubscribe func()
		listeners   map[uint64]func(theme, actual currency.Theme)
		nextID      uint64
	}
)

func NewSchemeSource(dark bool) *SchemeSource {
	return &SchemeSource{dark: dark}
}

// SchemeFromEnv reads COLORFGBG ("fg;bg"), as set by rxvt, Konsole and
// iTerm2. Background colors 0-6 and 8 are dark. Without the variable the
// scheme is light.
func SchemeFromEnv() *SchemeSource {
	return NewSchemeSource(isDarkBackground(os.Getenv("COLORFGBG")))
}

func isDarkBackground(colorfgbg string) bool {
	parts := strings.Split(colorfgbg, ";")
	bg, err := strconv.Atoi(parts[len(parts)-1])

	if err != nil {
		return false
	}

	return (bg >= 0 && bg <= 6) || bg == 8
}

func (s *SchemeSource) Dark() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.dark
}

// Set changes the scheme and notifies subscribers when it differs.
func (s *SchemeSource) Set(dark bool) {
	s.mutex.Lock()

	if s.dark == dark {
		s.mutex.Unlock()
		return
	}

	s.dark = dark
	listeners := make([]func(bool), 0, len(s.listeners))

	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}

	s.mutex.Unlock()

	for _, l := range listeners {
		l(dark)
	}
}

func (s *SchemeSource) Watch(fn func(dark bool)) func() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.listeners == nil {
		s.listeners = make(map[uint64]func(bool))
	}

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.mutex.Lock()
		delete(s.listeners, id)
		s.mutex.Unlock()
	}
}

func NewThemeStore(storage currency.Storage, scheme *SchemeSource) *ThemeStore {
	if scheme == nil {
		scheme = NewSchemeSource(false)
	}

	return &ThemeStore{
		Storage: storage,
		Scheme:  scheme,
		theme:   currency.ThemeSystem,
		actual:  schemeTheme(scheme.Dark()),
	}
}

func schemeTheme(dark bool) currency.Theme {
	if dark {
		return currency.ThemeDark
	}

	return currency.ThemeLight
}

func (t *ThemeStore) log() *zap.SugaredLogger {
	if t.Logger != nil {
		return t.Logger
	}

	return logger.Log
}

// Load reads the persisted preference. A missing or unrecognised value
// means "system"; only storage failures are returned.
func (t *ThemeStore) Load(ctx context.Context) error {
	theme := currency.ThemeSystem
	value, err := t.Storage.Get(ctx, currency.ThemePreferenceKey)

	switch {
	case errors.Is(err, currency.ErrPreferenceNotFound):
	case err != nil:
		return err
	default:
		if parsed, err := currency.ParseTheme(value); err == nil {
			theme = parsed
		} else {
			t.log().Warnw("ignoring persisted theme", "value", value)
		}
	}

	t.apply(theme)

	return nil
}

func (t *ThemeStore) Theme() currency.Theme {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	return t.theme
}

// Actual is the theme in effect: light or dark.
func (t *ThemeStore) Actual() currency.Theme {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	return t.actual
}

func (t *ThemeStore) Set(ctx context.Context, theme currency.Theme) error {
	if _, err := currency.ParseTheme(string(theme)); err != nil {
		return err
	}

	if t.Storage != nil {
		if err := t.Storage.Set(ctx, currency.ThemePreferenceKey, string(theme)); err != nil {
			return err
		}
	}

	t.apply(theme)

	return nil
}

func (t *ThemeStore) Toggle(ctx context.Context) (currency.Theme, error) {
	next := t.Theme().Next()

	return next, t.Set(ctx, next)
}

// Subscribe registers fn for changes of the preference or the theme in
// effect. The returned func removes it.
func (t *ThemeStore) Subscribe(fn func(theme, actual currency.Theme)) func() {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.listeners == nil {
		t.listeners = make(map[uint64]func(theme, actual currency.Theme))
	}

	id := t.nextID
	t.nextID++
	t.listeners[id] = fn

	return func() {
		t.mutex.Lock()
		delete(t.listeners, id)
		t.mutex.Unlock()
	}
}

func (t *ThemeStore) snapshotListeners() []func(theme, actual currency.Theme) {
	listeners := make([]func(theme, actual currency.Theme), 0, len(t.listeners))

	for _, l := range t.listeners {
		listeners = append(listeners, l)
	}

	return listeners
}

func (t *ThemeStore) apply(theme currency.Theme) {
	t.mutex.Lock()

	t.theme = theme

	if t.unsubscribe != nil {
		t.unsubscribe()
		t.unsubscribe = nil
	}

	if theme == currency.ThemeSystem {
		t.actual = schemeTheme(t.Scheme.Dark())
		t.unsubscribe = t.Scheme.Watch(t.onScheme)
	} else {
		t.actual = theme
	}

	listeners, actual := t.snapshotListeners(), t.actual
	t.mutex.Unlock()

	for _, l := range listeners {
		l(theme, actual)
	}
}

func (t *ThemeStore) onScheme(dark bool) {
	t.mutex.Lock()

	if t.theme != currency.ThemeSystem {
		t.mutex.Unlock()
		return
	}

	t.actual = schemeTheme(dark)
	listeners, theme, actual := t.snapshotListeners(), t.theme, t.actual
	t.mutex.Unlock()

	for _, l := range listeners {
		l(theme, actual)
	}
}

// Close stops following the scheme source.
func (t *ThemeStore) Close() {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.unsubscribe != nil {
		t.unsubscribe()
		t.unsubscribe = nil
	}
}
