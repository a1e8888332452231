package plan

import "github.com/kilianp07/chargeplan/core/model"

// BuildProblem assembles the LP for the given horizon and sessions.
//
// Objective, minimized:
//
//	sum_t (price[t] + carbon*(1-share[t])) * sum_s PD[s,t] / unitScale
//	+ slackWeight * sum_s slack[s]
//
// Subject to, for every session s and active slot t:
//
//	PD[s,t] <= maxPower[s] * availability[s,t]
//	SOC[s,t] = SOC[s,t-1] + eta * PD[s,t]   (initial energy seeds the arrival slot)
//	SOC[s,t] <= capacity[s]
//	SOC[s,departure] + slack[s] >= desired[s]
//
// The departure target is soft: slack keeps the problem feasible for any
// input and turns insufficient power or time into reported shortfall.
func BuildProblem(h *model.Horizon, sessions []model.ChargingSession, cfg Config) *Problem {
	p := newProblem()

	for _, s := range sessions {
		prevSOC := -1
		for t := s.ArrivalSlot; t <= s.DepartureSlot; t++ {
			slotCost := (h.Price(t) + cfg.CarbonWeight*(1-h.RenewableShare(t))) / cfg.UnitScale
			pd := p.addVar(VarKey{Kind: VarPower, Session: s.ID, Slot: t}, slotCost)
			soc := p.addVar(VarKey{Kind: VarSOC, Session: s.ID, Slot: t}, 0)

			// PD[s,t] <= maxPower * availability
			p.LessEq = append(p.LessEq, Constraint{
				Terms: []Term{{Col: pd, Coef: 1}},
				RHS:   s.MaxPowerKW * s.Availability(t),
			})

			// SOC recurrence, strictly causal within the window.
			rec := Constraint{Terms: []Term{{Col: soc, Coef: 1}, {Col: pd, Coef: -cfg.EtaCharge}}}
			if t == s.ArrivalSlot {
				rec.RHS = s.InitialKWh
			} else {
				rec.Terms = append(rec.Terms, Term{Col: prevSOC, Coef: -1})
			}
			p.Eq = append(p.Eq, rec)

			// SOC[s,t] <= capacity
			p.LessEq = append(p.LessEq, Constraint{
				Terms: []Term{{Col: soc, Coef: 1}},
				RHS:   s.CapacityKWh,
			})

			prevSOC = soc
		}

		// -SOC[s,departure] - slack[s] <= -desired
		slack := p.addVar(VarKey{Kind: VarSlack, Session: s.ID, Slot: -1}, cfg.SlackWeight)
		p.LessEq = append(p.LessEq, Constraint{
			Terms: []Term{{Col: prevSOC, Coef: -1}, {Col: slack, Coef: -1}},
			RHS:   -s.DesiredKWh,
		})
	}
	return p
}
