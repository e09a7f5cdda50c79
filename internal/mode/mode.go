package mode

import (
	"errors"
	"fmt"
	"strings"
)

// ErrModeRequired is returned when no recognized --type value was supplied.
var ErrModeRequired = errors.New("--type must be provided and one of the followings: development, production, devserver")

// Mode selects which configuration template is used for a run.
type Mode int

const (
	// Development builds once with inline source maps and no minification.
	Development Mode = iota + 1
	// Production builds once with minification and writes a version file.
	Production
	// DevServer watches sources and serves them with live reload.
	DevServer
)

const flagPrefix = "--type="

var names = map[Mode]string{
	Development: "development",
	Production:  "production",
	DevServer:   "devserver",
}

// All returns every mode in declaration order.
func All() []Mode {
	return []Mode{Development, Production, DevServer}
}

func (m Mode) String() string {
	if name, ok := names[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Valid reports whether m is one of the declared modes.
func (m Mode) Valid() bool {
	_, ok := names[m]
	return ok
}

// MarshalText implements encoding.TextMarshaler so modes print by name.
func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid mode %d", int(m))
	}
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Parse maps a mode name to a Mode.
func Parse(s string) (Mode, error) {
	for m, name := range names {
		if name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown mode %q: %w", s, ErrModeRequired)
}

// Select returns the last recognized mode among values. Unrecognized values
// are skipped rather than rejected, so a later valid value still wins.
func Select(values []string) (Mode, error) {
	var selected Mode
	for _, v := range values {
		if m, err := Parse(v); err == nil {
			selected = m
		}
	}

	if !selected.Valid() {
		return 0, ErrModeRequired
	}

	return selected, nil
}

// FromArgs scans a raw argument list for --type=<mode> flags and returns the
// last recognized one. It is the entry point for callers embedding the
// resolver without a flag parser; the bundlecfg CLI lets kong collect the
// values and calls Select.
func FromArgs(args []string) (Mode, error) {
	var values []string
	for _, arg := range args {
		if v, ok := strings.CutPrefix(arg, flagPrefix); ok {
			values = append(values, v)
		}
	}
	return Select(values)
}
