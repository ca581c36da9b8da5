// Package quiethours models the recurring daily windows during which
// patient alerts are suppressed from surfacing. Windows are parsed and
// validated once at the data boundary; the containment check itself is
// pure hour arithmetic.
package quiethours

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedWindow is returned by Parse for window strings that do not
// describe two in-range hour-of-day boundaries.
var ErrMalformedWindow = errors.New("malformed quiet-hours window")

// Window is a recurring daily quiet window between two hour-of-day
// boundaries. Start < End means the half-open range [Start, End).
// Start >= End means the window wraps past midnight, e.g. 21 -> 06.
type Window struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether nowHour (0..23) falls inside the window.
func (w Window) Contains(nowHour int) bool {
	if w.Start < w.End {
		return nowHour >= w.Start && nowHour < w.End
	}
	return nowHour >= w.Start || nowHour < w.End
}

// String renders the window in the same "HH:00-HH:00" shape it is
// ingested in.
func (w Window) String() string {
	return fmt.Sprintf("%02d:00-%02d:00", w.Start, w.End)
}

// Parse converts a window string like "21:00-06:00" into a Window.
// Both the en dash used by upstream preference data and a plain hyphen
// are accepted as separators. Unlike the upstream behaviour of silently
// truncating whatever the hour token happens to be, Parse rejects
// anything that is not two valid clock times with ErrMalformedWindow.
func Parse(s string) (Window, error) {
	sep := "–" // en dash, as emitted by the preference feed
	if !strings.Contains(s, sep) {
		sep = "-"
	}
	parts := strings.Split(s, sep)
	if len(parts) != 2 {
		return Window{}, fmt.Errorf("%w: %q: want two boundaries", ErrMalformedWindow, s)
	}

	start, err := parseHour(parts[0])
	if err != nil {
		return Window{}, fmt.Errorf("%w: %q: %s", ErrMalformedWindow, s, err)
	}
	end, err := parseHour(parts[1])
	if err != nil {
		return Window{}, fmt.Errorf("%w: %q: %s", ErrMalformedWindow, s, err)
	}

	return Window{Start: start, End: end}, nil
}

// parseHour accepts "HH" or "HH:MM" and returns the hour.
func parseHour(tok string) (int, error) {
	tok = strings.TrimSpace(tok)
	hh, mm, hasMin := strings.Cut(tok, ":")

	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("non-numeric hour %q", hh)
	}
	if h < 0 || h > 23 {
		return 0, fmt.Errorf("hour %d out of range", h)
	}

	if hasMin {
		m, err := strconv.Atoi(mm)
		if err != nil {
			return 0, fmt.Errorf("non-numeric minute %q", mm)
		}
		if m < 0 || m > 59 {
			return 0, fmt.Errorf("minute %d out of range", m)
		}
	}

	return h, nil
}
