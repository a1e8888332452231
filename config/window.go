package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/chargeplan/core/horizon"
)

// WindowConfig selects the optimization window inside the forecast range.
// When left empty, the window defaults to one day after the forecast start
// and one day before its end.
type WindowConfig struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

var windowLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02",
	time.RFC3339,
}

func parseWindowTime(s string) (time.Time, error) {
	for _, layout := range windowLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized window time %q", s)
}

// Validate checks that start and end are either both set or both empty.
func (c WindowConfig) Validate() error {
	if (c.Start == "") != (c.End == "") {
		return fmt.Errorf("window.start and window.end must be set together")
	}
	if c.Start == "" {
		return nil
	}
	_, err := c.Parse()
	return err
}

// Parse converts the configured bounds into a horizon window. A zero
// window is returned when no bounds are configured.
func (c WindowConfig) Parse() (horizon.Window, error) {
	if c.Start == "" && c.End == "" {
		return horizon.Window{}, nil
	}
	start, err := parseWindowTime(c.Start)
	if err != nil {
		return horizon.Window{}, err
	}
	end, err := parseWindowTime(c.End)
	if err != nil {
		return horizon.Window{}, err
	}
	if !end.After(start) {
		return horizon.Window{}, fmt.Errorf("window.end must be after window.start")
	}
	return horizon.Window{Start: start, End: end}, nil
}
