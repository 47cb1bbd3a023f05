package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Garsondee/Warband/internal/logger"
)

// Resource names one economy counter.
type Resource int

const (
	Gold Resource = iota
	Wood
	Food
	Oil
	resourceCount
)

func (r Resource) String() string {
	switch r {
	case Gold:
		return "gold"
	case Wood:
		return "wood"
	case Food:
		return "food"
	case Oil:
		return "oil"
	default:
		return "unknown"
	}
}

// Ledger is the shared economy. Counters only ever grow.
//
// Each counter has a single writer: gold is credited by gather cycles, food by
// unit death handling. Wood and oil have no writer inside the simulation core.
// The simulation is single-threaded, so no locking is needed.
type Ledger struct {
	counts [resourceCount]int
}

// LedgerSnapshot is a copy of the ledger at one tick.
type LedgerSnapshot struct {
	Gold int `json:"gold"`
	Wood int `json:"wood"`
	Food int `json:"food"`
	Oil  int `json:"oil"`
}

// NewLedger creates a ledger holding the configured starting amounts.
func NewLedger(start EconomyTuning) *Ledger {
	l := &Ledger{}
	l.counts[Gold] = start.StartGold
	l.counts[Wood] = start.StartWood
	l.counts[Food] = start.StartFood
	l.counts[Oil] = start.StartOil
	return l
}

// Credit adds amount to a counter. Non-positive amounts are rejected so the
// counters stay monotonic.
func (l *Ledger) Credit(r Resource, amount int) bool {
	if r < 0 || r >= resourceCount {
		return false
	}
	if amount <= 0 {
		logger.Log.WithFields(logrus.Fields{
			"component": "ledger",
			"resource":  r.String(),
			"amount":    amount,
		}).Warn("Rejected non-positive ledger credit.")
		return false
	}
	l.counts[r] += amount
	return true
}

// Amount returns the current value of a counter.
func (l *Ledger) Amount(r Resource) int {
	if r < 0 || r >= resourceCount {
		return 0
	}
	return l.counts[r]
}

func (l *Ledger) Gold() int { return l.counts[Gold] }
func (l *Ledger) Wood() int { return l.counts[Wood] }
func (l *Ledger) Food() int { return l.counts[Food] }
func (l *Ledger) Oil() int { return l.counts[Oil] }

// Snapshot copies all counters.
func (l *Ledger) Snapshot() LedgerSnapshot {
	return LedgerSnapshot{
		Gold: l.counts[Gold],
		Wood: l.counts[Wood],
		Food: l.counts[Food],
		Oil:  l.counts[Oil],
	}
}

func (s LedgerSnapshot) String() string {
	return fmt.Sprintf("gold=%d wood=%d food=%d oil=%d", s.Gold, s.Wood, s.Food, s.Oil)
}
