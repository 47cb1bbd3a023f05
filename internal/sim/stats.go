package sim

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// --- Faction ---

// Faction distinguishes the two sides of the battle.
type Faction int

const (
	FactionAlliance Faction = iota
	FactionHorde
)

func (f Faction) String() string {
	switch f {
	case FactionAlliance:
		return "alliance"
	case FactionHorde:
		return "horde"
	default:
		return "unknown"
	}
}

// ParseFaction accepts the names produced by String.
func ParseFaction(s string) (Faction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "alliance":
		return FactionAlliance, nil
	case "horde":
		return FactionHorde, nil
	}
	return 0, fmt.Errorf("unknown faction %q", s)
}

// UnmarshalYAML decodes a faction from its name.
func (f *Faction) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	parsed, err := ParseFaction(name)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*f = parsed
	return nil
}

// MarshalYAML encodes a faction by name.
func (f Faction) MarshalYAML() (interface{}, error) {
	return f.String(), nil
}

// --- Attack style ---

// AttackStyle selects how a unit lands damage once in range.
type AttackStyle int

const (
	AttackMelee    AttackStyle = iota // damage every tick while engaged
	AttackAimed                       // projectile, aimed along the line to the target
	AttackSpinning                    // projectile, spins while in flight
)

func (a AttackStyle) String() string {
	switch a {
	case AttackMelee:
		return "melee"
	case AttackAimed:
		return "aimed"
	case AttackSpinning:
		return "spinning"
	default:
		return "unknown"
	}
}

// Ranged reports whether the style fires a projectile.
func (a AttackStyle) Ranged() bool {
	return a == AttackAimed || a == AttackSpinning
}

// --- Unit kinds ---

// UnitKind is the type tag of a unit.
type UnitKind int

const (
	KindPeasant UnitKind = iota
	KindPeon
	KindFootman
	KindGrunt
	KindElvenArcher
	KindTrollAxethrower
	kindCount
)

type kindInfo struct {
	name    string
	faction Faction
	style   AttackStyle
	worker  bool
	base    Stats
}

var kindTable = [kindCount]kindInfo{
	KindPeasant: {name: "peasant", faction: FactionAlliance, style: AttackMelee, worker: true,
		base: Stats{HitPoints: 30, MaxHitPoints: 30, Damage: 5, Precision: 80, Armor: 0, Range: 1, Speed: 1}},
	KindPeon: {name: "peon", faction: FactionHorde, style: AttackMelee, worker: true,
		base: Stats{HitPoints: 30, MaxHitPoints: 30, Damage: 5, Precision: 80, Armor: 0, Range: 1, Speed: 1}},
	KindFootman: {name: "footman", faction: FactionAlliance, style: AttackMelee,
		base: Stats{HitPoints: 60, MaxHitPoints: 60, Damage: 9, Precision: 90, Armor: 2, Range: 1, Speed: 2}},
	KindGrunt: {name: "grunt", faction: FactionHorde, style: AttackMelee,
		base: Stats{HitPoints: 60, MaxHitPoints: 60, Damage: 9, Precision: 90, Armor: 2, Range: 1, Speed: 2}},
	KindElvenArcher: {name: "elven_archer", faction: FactionAlliance, style: AttackAimed,
		base: Stats{HitPoints: 40, MaxHitPoints: 40, Damage: 9, Precision: 95, Armor: 0, Range: 4, Speed: 2}},
	KindTrollAxethrower: {name: "troll_axethrower", faction: FactionHorde, style: AttackSpinning,
		base: Stats{HitPoints: 40, MaxHitPoints: 40, Damage: 9, Precision: 85, Armor: 0, Range: 4, Speed: 2}},
}

func (k UnitKind) info() kindInfo {
	if k < 0 || k >= kindCount {
		return kindInfo{name: "unknown"}
	}
	return kindTable[k]
}

func (k UnitKind) String() string { return k.info().name }
func (k UnitKind) Faction() Faction { return k.info().faction }
func (k UnitKind) Style() AttackStyle { return k.info().style }
func (k UnitKind) IsWorker() bool { return k.info().worker }
func (k UnitKind) BaseStats() Stats { return k.info().base }

// ParseUnitKind accepts the names produced by String.
func ParseUnitKind(s string) (UnitKind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k := UnitKind(0); k < kindCount; k++ {
		if kindTable[k].name == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown unit kind %q", s)
}

// --- Stats ---

// Stats are a unit's combat numbers. HitPoints and Fitness are fractional
// because damage is.
type Stats struct {
	HitPoints    float64
	MaxHitPoints float64
	Damage       int
	Precision    int // percent
	Armor        int
	Range        int     // tiles
	Speed        float64 // px per tick per axis
	Fitness      float64 // total damage dealt
}

// HealthRatio returns hit points as a 0-1 fraction of maximum.
func (s Stats) HealthRatio() float64 {
	if s.MaxHitPoints <= 0 {
		return 0
	}
	r := s.HitPoints / s.MaxHitPoints
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

// DamageReduction is the hit-point loss one landed attack inflicts:
//
//	max(0, damage*precision/100 - armor) / divisor
//
// A result <= 0 becomes the minimum chip, so attrition never stalls.
func DamageReduction(attacker Stats, targetArmor int, c CombatTuning) float64 {
	raw := (float64(attacker.Damage)*(float64(attacker.Precision)/100) - float64(targetArmor)) / c.DamageDivisor
	if raw <= 0 {
		return c.MinimumChip
	}
	return raw
}
