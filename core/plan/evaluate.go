package plan

import "github.com/kilianp07/chargeplan/core/model"

// Evaluate recomputes the realized aggregate charging cost and detects
// departure shortfall. The cost deliberately uses the raw price only, so
// monetary reporting stays decoupled from the carbon-weighted objective.
func Evaluate(h *model.Horizon, sessions []model.ChargingSession, p *Plan, cfg Config) model.Summary {
	totalPD := make([]float64, h.Slots())
	for k, v := range p.Power {
		totalPD[k.Slot] += v
	}
	var cost float64
	for t := 0; t < h.Slots(); t++ {
		cost += h.Price(t) * totalPD[t] / cfg.UnitScale
	}

	var tardy []model.Shortfall
	for _, s := range sessions {
		shortfall := s.DesiredKWh - p.SOCAt(s.ID, s.DepartureSlot)
		if shortfall > cfg.ToleranceKWh {
			tardy = append(tardy, model.Shortfall{SessionID: s.ID, KWh: shortfall})
		}
	}

	return model.Summary{
		TotalChargingCost: cost,
		NumTardy:          len(tardy),
		Tardiness:         tardy,
	}
}
