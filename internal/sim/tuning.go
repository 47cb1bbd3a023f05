package sim

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning groups every constant that shapes unit behaviour. The zero value is
// not usable; start from DefaultTuning.
type Tuning struct {
	TileSize int `yaml:"tile_size"` // pixels per tile edge
	MapTiles int `yaml:"map_tiles"` // map edge length in tiles

	Movement MovementTuning `yaml:"movement"`
	Combat   CombatTuning   `yaml:"combat"`
	Gather   GatherTuning   `yaml:"gather"`
	Economy  EconomyTuning  `yaml:"economy"`
}

// MovementTuning controls per-tick route following.
type MovementTuning struct {
	// NormalizeDiagonal scales diagonal steps by 1/sqrt(2). Off by default:
	// diagonal travel applies full speed on both axes and is therefore faster.
	NormalizeDiagonal bool `yaml:"normalize_diagonal"`
}

// CombatTuning controls damage, projectiles and engagement distance.
type CombatTuning struct {
	DamageDivisor     float64 `yaml:"damage_divisor"`     // raw damage is divided by this
	MinimumChip       float64 `yaml:"minimum_chip"`       // applied when the formula is <= 0
	DisengageMargin   int     `yaml:"disengage_margin"`   // tiles beyond range before a target is dropped
	ProjectileStep    float64 `yaml:"projectile_step"`    // projectile travel per tick, px
	ProjectileArrival float64 `yaml:"projectile_arrival"` // impact distance, px
	SpinDelta         float64 `yaml:"spin_delta"`         // radians per tick for spinning missiles
	AutoAcquire       bool    `yaml:"auto_acquire"`       // idle units pick targets in range
}

// GatherTuning controls the worker cycle timer and payout.
type GatherTuning struct {
	Increment float64 `yaml:"increment"` // elapsed added per working tick
	Threshold float64 `yaml:"threshold"` // elapsed needed for a phase flip
	Payout    int     `yaml:"payout"`    // gold credited per full cycle
}

// EconomyTuning sets the starting ledger and the faction whose deaths free food.
type EconomyTuning struct {
	StartGold   int     `yaml:"start_gold"`
	StartWood   int     `yaml:"start_wood"`
	StartFood   int     `yaml:"start_food"`
	StartOil    int     `yaml:"start_oil"`
	FoodFaction Faction `yaml:"food_faction"`
}

// DefaultTuning returns the stock rule set.
func DefaultTuning() Tuning {
	return Tuning{
		TileSize: 32,
		MapTiles: 50,
		Movement: MovementTuning{
			NormalizeDiagonal: false,
		},
		Combat: CombatTuning{
			DamageDivisor:     30,
			MinimumChip:       0.01,
			DisengageMargin:   4,
			ProjectileStep:    5,
			ProjectileArrival: 2,
			SpinDelta:         0.1,
			AutoAcquire:       true,
		},
		Gather: GatherTuning{
			Increment: 0.1,
			Threshold: 10,
			Payout:    100,
		},
		Economy: EconomyTuning{
			StartGold:   5000,
			StartWood:   99999,
			StartFood:   5,
			StartOil:    99999,
			FoodFaction: FactionAlliance,
		},
	}
}

// GatherTicks is the number of working ticks one phase lasts.
func (t Tuning) GatherTicks() int {
	if t.Gather.Increment <= 0 {
		return 0
	}
	n := math.Ceil((t.Gather.Threshold - gatherEpsilon) / t.Gather.Increment)
	if n < 0 {
		return 0
	}
	return int(n)
}

// Validate reports the first setting that would stall or break the simulation.
func (t Tuning) Validate() error {
	switch {
	case t.TileSize <= 0:
		return errors.New("tile_size must be positive")
	case t.MapTiles <= 0:
		return errors.New("map_tiles must be positive")
	case t.Combat.DamageDivisor <= 0:
		return errors.New("combat.damage_divisor must be positive")
	case t.Combat.MinimumChip <= 0:
		return errors.New("combat.minimum_chip must be positive")
	case t.Combat.DisengageMargin < 0:
		return errors.New("combat.disengage_margin must not be negative")
	case t.Combat.ProjectileStep <= 0:
		return errors.New("combat.projectile_step must be positive")
	case t.Combat.ProjectileArrival < 0:
		return errors.New("combat.projectile_arrival must not be negative")
	case t.Gather.Increment <= 0:
		return errors.New("gather.increment must be positive")
	case t.Gather.Threshold <= 0:
		return errors.New("gather.threshold must be positive")
	case t.Gather.Payout <= 0:
		return errors.New("gather.payout must be positive")
	}
	return nil
}

// LoadTuning reads a YAML file over DefaultTuning, so omitted keys keep their
// stock values.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read tuning: %w", err)
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("%s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}
