package csvdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/chargeplan/core/model"
)

// ReadSessions parses per-EV stay records. Each row carries a calendar
// date, an arrival time of day and either a departure time of day or a
// stay duration ("HH:MM", hours may exceed 24).
func ReadSessions(r io.Reader) ([]model.SessionRecord, error) {
	cr := csv.NewReader(r)
	head, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("sessions header: %w", err)
	}
	h := newHeader(head)

	var records []model.SessionRecord
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("sessions line %d: %w", line, err)
		}
		sr, err := parseSessionRecord(h, rec)
		if err != nil {
			return nil, fmt.Errorf("sessions line %d: %w", line, err)
		}
		records = append(records, sr)
	}
	return records, nil
}

func parseSessionRecord(h header, rec []string) (model.SessionRecord, error) {
	var sr model.SessionRecord
	var err error

	if sr.VehicleID, err = h.field(rec, "ev_id"); err != nil {
		return sr, err
	}
	dateStr, err := h.field(rec, "date")
	if err != nil {
		return sr, err
	}
	if sr.Date, err = time.Parse("2006-01-02", dateStr); err != nil {
		return sr, fmt.Errorf("date: %w", err)
	}

	toa, err := h.field(rec, "toa")
	if err != nil {
		return sr, err
	}
	if sr.Arrival, err = atTimeOfDay(sr.Date, toa); err != nil {
		return sr, fmt.Errorf("toa: %w", err)
	}

	// Departure comes either as a time of day or as a stay duration.
	if tod, ok := optional(h, rec, "tod"); ok && tod != "" {
		if sr.Departure, err = atTimeOfDay(sr.Date, tod); err != nil {
			return sr, fmt.Errorf("tod: %w", err)
		}
		if sr.Departure.Before(sr.Arrival) {
			sr.Departure = sr.Departure.Add(24 * time.Hour)
		}
	} else if dos, ok := optional(h, rec, "dos"); ok && dos != "" {
		if sr.Stay, err = parseStay(dos); err != nil {
			return sr, fmt.Errorf("dos: %w", err)
		}
	} else {
		return sr, fmt.Errorf("neither tod nor dos present")
	}

	if sr.InitialSoC, err = h.float(rec, "i_soc"); err != nil {
		return sr, err
	}
	if sr.DesiredSoC, err = h.float(rec, "d_soc"); err != nil {
		return sr, err
	}
	if sr.CapacityKWh, err = h.float(rec, "max_battery_capacity"); err != nil {
		return sr, err
	}
	return sr, nil
}

func optional(h header, rec []string, name string) (string, bool) {
	i, ok := h[name]
	if !ok {
		return "", false
	}
	return rec[i], true
}

// atTimeOfDay combines a calendar date with a "HH:MM" clock value.
func atTimeOfDay(date time.Time, clock string) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, err
	}
	return date.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute), nil
}

// parseStay reads a duration expressed as "HH:MM" where the hour part may
// exceed 23.
func parseStay(s string) (time.Duration, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid stay duration %q", s)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid stay duration %q", s)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid stay duration %q", s)
	}
	if hours < 0 {
		return 0, fmt.Errorf("invalid stay duration %q", s)
	}
	return time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute, nil
}

// LoadSessions reads stay records from a file.
func LoadSessions(path string) ([]model.SessionRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSessions(f)
}
