// Package export writes solved trajectories and run summaries to the
// tabular formats downstream tooling consumes.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/kilianp07/chargeplan/core/model"
	"github.com/kilianp07/chargeplan/core/plan"
)

// WritePowerCSV writes the per-(session, slot) charging power trajectory.
// Only active-window cells are emitted; power outside a session's stay is
// implicitly zero.
func WritePowerCSV(w io.Writer, sessions []model.ChargingSession, p *plan.Plan) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"ev", "t", "PD_kW"}); err != nil {
		return err
	}
	for _, s := range sessions {
		for t := s.ArrivalSlot; t <= s.DepartureSlot; t++ {
			rec := []string{
				s.ID,
				strconv.Itoa(t),
				strconv.FormatFloat(p.PowerAt(s.ID, t), 'f', -1, 64),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSOCCSV writes the per-(session, slot) state-of-charge trajectory.
func WriteSOCCSV(w io.Writer, sessions []model.ChargingSession, p *plan.Plan) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"ev", "t", "SOC_kWh"}); err != nil {
		return err
	}
	for _, s := range sessions {
		for t := s.ArrivalSlot; t <= s.DepartureSlot; t++ {
			rec := []string{
				s.ID,
				strconv.Itoa(t),
				strconv.FormatFloat(p.SOCAt(s.ID, t), 'f', -1, 64),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteForecastCSV writes the horizon restricted to the optimization
// window: timestamp, price and renewable share per slot.
func WriteForecastCSV(w io.Writer, h *model.Horizon) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "price", "renewable_share"}); err != nil {
		return err
	}
	for t := 0; t < h.Slots(); t++ {
		rec := []string{
			h.Timestamp(t).Format(time.RFC3339),
			strconv.FormatFloat(h.Price(t), 'f', -1, 64),
			strconv.FormatFloat(h.RenewableShare(t), 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummaryJSON writes the run summary to w.
func WriteSummaryJSON(w io.Writer, sum model.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sum)
}

// WriteAll writes the full result set into dir, creating it if needed.
func WriteAll(dir string, h *model.Horizon, sessions []model.ChargingSession, p *plan.Plan, sum model.Summary) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	files := []struct {
		name  string
		write func(io.Writer) error
	}{
		{"pd_solution.csv", func(w io.Writer) error { return WritePowerCSV(w, sessions, p) }},
		{"soc_solution.csv", func(w io.Writer) error { return WriteSOCCSV(w, sessions, p) }},
		{"forecast_window.csv", func(w io.Writer) error { return WriteForecastCSV(w, h) }},
		{"summary.json", func(w io.Writer) error { return WriteSummaryJSON(w, sum) }},
	}
	for _, f := range files {
		if err := writeFile(filepath.Join(dir, f.name), f.write); err != nil {
			return fmt.Errorf("write %s: %w", f.name, err)
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
