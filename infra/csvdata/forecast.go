// Package csvdata reads the tabular inputs produced by the upstream
// forecast and fleet-data pipelines.
package csvdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/kilianp07/chargeplan/core/model"
)

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// header maps column names to indices and resolves required fields.
type header map[string]int

func newHeader(row []string) header {
	h := make(header, len(row))
	for i, name := range row {
		h[name] = i
	}
	return h
}

func (h header) field(row []string, name string) (string, error) {
	i, ok := h[name]
	if !ok {
		return "", fmt.Errorf("missing column %q", name)
	}
	return row[i], nil
}

func (h header) float(row []string, name string) (float64, error) {
	s, err := h.field(row, name)
	if err != nil {
		return 0, err
	}
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// ReadForecast parses the hourly price/generation series.
func ReadForecast(r io.Reader) ([]model.ForecastRow, error) {
	cr := csv.NewReader(r)
	head, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("forecast header: %w", err)
	}
	h := newHeader(head)

	var rows []model.ForecastRow
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("forecast line %d: %w", line, err)
		}
		row, err := parseForecastRow(h, rec)
		if err != nil {
			return nil, fmt.Errorf("forecast line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseForecastRow(h header, rec []string) (model.ForecastRow, error) {
	var row model.ForecastRow
	ts, err := h.field(rec, "timestamp")
	if err != nil {
		return row, err
	}
	if row.Timestamp, err = parseTimestamp(ts); err != nil {
		return row, err
	}
	fields := []struct {
		name string
		dst  *float64
	}{
		{"forecasted_prices", &row.Price},
		{"solar_generation", &row.Solar},
		{"wind_on_generation", &row.WindOnshore},
		{"wind_off_generation", &row.WindOffshore},
		{"fossil_hard_coal_generation", &row.Coal},
		{"fossil_gas_generation", &row.Gas},
	}
	for _, f := range fields {
		if *f.dst, err = h.float(rec, f.name); err != nil {
			return row, err
		}
	}
	return row, nil
}

// LoadForecast reads the forecast series from a file.
func LoadForecast(path string) ([]model.ForecastRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadForecast(f)
}
