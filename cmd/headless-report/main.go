package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Garsondee/Warband/internal/logger"
	"github.com/Garsondee/Warband/internal/sim"
)

type runStats struct {
	runIndex int
	seed     int64

	firstEngageTick    int
	firstDisengageTick int
	firstDeathTick     int
	firstGoldTick      int

	engagements      int
	disengagements   int
	disengageReasons map[string]int
	goldDeliveries   int
	goldGained       int
	cancelledGathers int

	allianceTotal     int
	hordeTotal        int
	allianceSurvivors int
	hordeSurvivors    int

	report sim.Report
}

func main() {
	var runs int
	var ticks int
	var seedBase int64
	var seedStep int64
	var scenario string
	var tuningPath string
	var logOut string
	var verbose bool

	flag.IntVar(&runs, "runs", 5, "number of headless simulation runs")
	flag.IntVar(&ticks, "ticks", 3600, "ticks per run")
	flag.Int64Var(&seedBase, "seed-base", 42, "terrain seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&scenario, "scenario", "mixed", "scenario name ("+strings.Join(sim.PresetNames, ", ")+")")
	flag.StringVar(&tuningPath, "tuning", "", "YAML tuning overlay (empty for built-in defaults)")
	flag.StringVar(&logOut, "log-out", "", "write each run's sim log as zstd JSON lines to this path")
	flag.BoolVar(&verbose, "verbose", false, "record per-tick hits and routes in the sim log")
	flag.Parse()

	logger.Init()

	if runs <= 0 {
		fail("-runs must be > 0")
	}
	if ticks <= 0 {
		fail("-ticks must be > 0")
	}

	tuning := sim.DefaultTuning()
	if tuningPath != "" {
		t, err := sim.LoadTuning(tuningPath)
		if err != nil {
			fail(err.Error())
		}
		tuning = t
	}

	fmt.Printf("=== Headless Warband Report ===\n")
	fmt.Printf("scenario=%s runs=%d ticks=%d seed_base=%d seed_step=%d\n\n", scenario, runs, ticks, seedBase, seedStep)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		sc, err := sim.Preset(scenario, tuning, seed, verbose)
		if err != nil {
			fail(err.Error())
		}
		for _, e := range sc.Errs() {
			logger.Log.WithField("run", i+1).WithError(e).Warn("Scenario order refused.")
		}
		sc.RunTicks(ticks)

		stats := collectRun(i+1, seed, sc.World)
		all = append(all, stats)
		printRun(stats)

		if logOut != "" {
			path := runLogPath(logOut, i+1, runs)
			if err := sc.SimLog.ExportLog(path); err != nil {
				fail(err.Error())
			}
			fmt.Printf("log written: %s\n\n", path)
		}
	}

	printAggregate(all)
}

func fail(msg string) {
	fmt.Println("error: " + msg)
	os.Exit(2)
}

// runLogPath returns base for single runs, and base with -runN inserted
// before the extension otherwise.
func runLogPath(base string, runIndex, runs int) string {
	if runs <= 1 {
		return base
	}
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	// Keep compound extensions like .jsonl.zst together.
	if inner := filepath.Ext(stem); inner != "" && len(inner) <= 6 {
		ext = inner + ext
		stem = strings.TrimSuffix(stem, inner)
	}
	return fmt.Sprintf("%s-run%d%s", stem, runIndex, ext)
}

func collectRun(runIndex int, seed int64, w *sim.World) runStats {
	sl := w.SimLog()
	entries := sl.Entries()

	reasons := map[string]int{}
	goldGained := 0
	for _, e := range entries {
		switch {
		case e.Category == "combat" && e.Key == "disengage":
			reasons[e.Value]++
		case e.Category == "economy" && e.Key == "gold":
			goldGained += int(e.NumVal)
		}
	}

	rs := runStats{
		runIndex:           runIndex,
		seed:               seed,
		firstEngageTick:    firstTick(entries, "combat", "engage", ""),
		firstDisengageTick: firstTick(entries, "combat", "disengage", ""),
		firstDeathTick:     firstTick(entries, "state", "death", ""),
		firstGoldTick:      firstTick(entries, "economy", "gold", ""),
		engagements:        sl.CountCategory("combat", "engage"),
		disengagements:     sl.CountCategory("combat", "disengage"),
		disengageReasons:   reasons,
		goldDeliveries:     sl.CountCategory("economy", "gold"),
		goldGained:         goldGained,
		cancelledGathers:   sl.CountCategory("gather", "cancel"),
		report:             sim.BuildReport(w),
	}
	rs.allianceTotal, rs.hordeTotal, rs.allianceSurvivors, rs.hordeSurvivors = factionSurvivalCounts(w.Units().Units())
	return rs
}

func firstTick(entries []sim.SimLogEntry, category, key, contains string) int {
	for _, e := range entries {
		if e.Category != category || e.Key != key {
			continue
		}
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Tick
		}
	}
	return -1
}

func factionSurvivalCounts(units []*sim.Unit) (allianceTotal, hordeTotal, allianceSurvivors, hordeSurvivors int) {
	for _, u := range units {
		if u.Faction() == sim.FactionHorde {
			hordeTotal++
			if u.Alive() {
				hordeSurvivors++
			}
			continue
		}
		allianceTotal++
		if u.Alive() {
			allianceSurvivors++
		}
	}
	return
}

// detectStalemate flags runs where both sides fought without anyone dying.
func detectStalemate(rs runStats) (bool, string) {
	if rs.allianceTotal == 0 || rs.hordeTotal == 0 {
		return false, "one_sided"
	}
	if rs.engagements == 0 {
		return false, "no_contact"
	}
	deaths := (rs.allianceTotal - rs.allianceSurvivors) + (rs.hordeTotal - rs.hordeSurvivors)
	if deaths > 0 {
		return false, fmt.Sprintf("attrition deaths=%d", deaths)
	}
	return true, fmt.Sprintf("high_mutual_survival engagements=%d disengagements=%d", rs.engagements, rs.disengagements)
}

func printRun(rs runStats) {
	fmt.Printf("--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Printf("phase_markers: first_engage=%d first_disengage=%d first_death=%d first_gold=%d\n",
		rs.firstEngageTick, rs.firstDisengageTick, rs.firstDeathTick, rs.firstGoldTick)
	fmt.Printf("combat_totals: engage=%d disengage=%d reasons=%s\n",
		rs.engagements, rs.disengagements, joinCounts(rs.disengageReasons))
	fmt.Printf("economy_totals: deliveries=%d gold_gained=%d cancelled_gathers=%d\n",
		rs.goldDeliveries, rs.goldGained, rs.cancelledGathers)
	fmt.Printf("survival: alliance=%d/%d horde=%d/%d\n",
		rs.allianceSurvivors, rs.allianceTotal, rs.hordeSurvivors, rs.hordeTotal)
	if stalemate, reason := detectStalemate(rs); stalemate {
		fmt.Printf("stalemate: %s\n", reason)
	}
	fmt.Print(rs.report.String())
	fmt.Println()
}

func printAggregate(all []runStats) {
	totalEngage := 0
	totalDisengage := 0
	totalDeliveries := 0
	totalGold := 0
	stalemates := 0
	reasons := map[string]int{}

	engageTicks := make([]int, 0, len(all))
	deathTicks := make([]int, 0, len(all))
	goldTicks := make([]int, 0, len(all))

	// Damage dealt per unit label across runs.
	type unitAgg struct {
		fitnessSum float64
		count      int
		survived   int
	}
	unitAggs := map[string]*unitAgg{}

	for _, rs := range all {
		totalEngage += rs.engagements
		totalDisengage += rs.disengagements
		totalDeliveries += rs.goldDeliveries
		totalGold += rs.goldGained
		for k, v := range rs.disengageReasons {
			reasons[k] += v
		}
		if ok, _ := detectStalemate(rs); ok {
			stalemates++
		}
		if rs.firstEngageTick >= 0 {
			engageTicks = append(engageTicks, rs.firstEngageTick)
		}
		if rs.firstDeathTick >= 0 {
			deathTicks = append(deathTicks, rs.firstDeathTick)
		}
		if rs.firstGoldTick >= 0 {
			goldTicks = append(goldTicks, rs.firstGoldTick)
		}
		for _, s := range rs.report.Top {
			ag, ok := unitAggs[s.Label]
			if !ok {
				ag = &unitAgg{}
				unitAggs[s.Label] = ag
			}
			ag.fitnessSum += s.Fitness
			ag.count++
			if s.Alive {
				ag.survived++
			}
		}
	}

	fmt.Println("=== Aggregate ===")
	fmt.Printf("runs=%d stalemates=%d\n", len(all), stalemates)
	fmt.Printf("avg_events_per_run: engage=%.1f disengage=%.1f deliveries=%.1f gold_gained=%.1f\n",
		avg(totalEngage, len(all)), avg(totalDisengage, len(all)), avg(totalDeliveries, len(all)), avg(totalGold, len(all)))
	fmt.Printf("disengage_reasons: %s (top=%s)\n", joinCounts(reasons), topReason(reasons))
	fmt.Printf("phase_marker_avg_ticks: first_engage=%s first_death=%s first_gold=%s\n",
		avgTickString(engageTicks), avgTickString(deathTicks), avgTickString(goldTicks))

	fmt.Println("\n=== Aggregate Unit Performance ===")
	labels := make([]string, 0, len(unitAggs))
	for label := range unitAggs {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		ag := unitAggs[label]
		fmt.Printf("  %-4s avg_damage=%.2f survival=%.0f%%\n",
			label, ag.fitnessSum/float64(ag.count), float64(ag.survived)/float64(ag.count)*100)
	}
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}

func topReason(counts map[string]int) string {
	if len(counts) == 0 {
		return ""
	}
	best := ""
	bestN := 0
	for k, v := range counts {
		if v > bestN || (v == bestN && k < best) {
			best = k
			bestN = v
		}
	}
	return fmt.Sprintf("%s(%d)", best, bestN)
}

func joinCounts(counts map[string]int) string {
	if len(counts) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return strings.Join(parts, ",")
}
