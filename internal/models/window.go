package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Window is a closed time range [Start, End]. A zero Start or End leaves that
// side unbounded; the zero Window covers all time.
type Window struct {
	Start time.Time `json:"start,omitempty"`
	End   time.Time `json:"end,omitempty"`
}

// AllTime is the unbounded window
var AllTime = Window{}

// LastN returns the window of length d ending at now
func LastN(now time.Time, d time.Duration) Window {
	return Window{Start: now.Add(-d), End: now}
}

// Bounded reports whether both ends are set
func (w Window) Bounded() bool {
	return !w.Start.IsZero() && !w.End.IsZero()
}

// Inverted reports whether Start lies after End
func (w Window) Inverted() bool {
	return w.Bounded() && w.Start.After(w.End)
}

// Length is End-Start for bounded windows and zero otherwise
func (w Window) Length() time.Duration {
	if !w.Bounded() {
		return 0
	}
	return w.End.Sub(w.Start)
}

// Contains reports whether t falls inside the window, inclusive on both ends
func (w Window) Contains(t time.Time) bool {
	if !w.Start.IsZero() && t.Before(w.Start) {
		return false
	}
	if !w.End.IsZero() && t.After(w.End) {
		return false
	}
	return true
}

// Previous returns the adjacent window of equal length that ends just before
// Start. The second return is false when w is not bounded.
func (w Window) Previous() (Window, bool) {
	if !w.Bounded() || w.Inverted() {
		return Window{}, false
	}
	end := w.Start.Add(-time.Nanosecond)
	return Window{Start: end.Add(-w.Length()), End: end}, true
}

// ParseRange turns a UI range token ("7d", "24h", "all", "") into a window
// ending at now.
func ParseRange(token string, now time.Time) (Window, error) {
	token = strings.TrimSpace(strings.ToLower(token))
	if token == "" || token == "all" {
		return AllTime, nil
	}

	if strings.HasSuffix(token, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(token, "d"))
		if err != nil || days <= 0 {
			return Window{}, fmt.Errorf("invalid range %q", token)
		}
		return LastN(now, time.Duration(days)*24*time.Hour), nil
	}

	d, err := time.ParseDuration(token)
	if err != nil || d <= 0 {
		return Window{}, fmt.Errorf("invalid range %q", token)
	}
	return LastN(now, d), nil
}
