package reconcile

import (
	"strings"
	"time"
)

// DefaultClosedMarker marks an inactive row when found in the status field.
const DefaultClosedMarker = "close"

// DefaultDateLayouts are tried in order when parsing the expiry field.
var DefaultDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006",
	"02.01.2006",
}

// ActivityFunc reports whether a candidate row is active.
type ActivityFunc func(attributes map[string]string) bool

// ActivitySpec configures the activity predicate used in cross-join notes.
// A row is inactive when its status contains the closed marker (case-insensitive)
// or its expiry date lies before today.
type ActivitySpec struct {
	StatusField  string   `yaml:"status_field"`
	ClosedMarker string   `yaml:"closed_marker"`
	ExpiryField  string   `yaml:"expiry_field"`
	DateLayouts  []string `yaml:"date_layouts"`
	// Now is the clock; nil means time.Now.
	Now func() time.Time `yaml:"-"`
}

// Predicate builds the ActivityFunc.
func (s ActivitySpec) Predicate() ActivityFunc {
	marker := strings.ToLower(strings.TrimSpace(s.ClosedMarker))
	if marker == "" {
		marker = DefaultClosedMarker
	}
	layouts := s.DateLayouts
	if len(layouts) == 0 {
		layouts = DefaultDateLayouts
	}
	now := s.Now
	if now == nil {
		now = time.Now
	}

	return func(attrs map[string]string) bool {
		if s.StatusField != "" {
			if strings.Contains(strings.ToLower(attrs[s.StatusField]), marker) {
				return false
			}
		}
		if s.ExpiryField != "" {
			if expiry, ok := parseDate(attrs[s.ExpiryField], layouts); ok {
				y, m, d := now().Date()
				today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
				if expiry.Before(today) {
					return false
				}
			}
		}
		return true
	}
}

// parseDate returns the calendar date of v in UTC.
func parseDate(v string, layouts []string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}
