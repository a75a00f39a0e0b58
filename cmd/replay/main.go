package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	"oicoach.dev/internal/persistence/snapshot"
	"oicoach.dev/internal/protocol"
	"oicoach.dev/internal/sim/catalogs"
	"oicoach.dev/internal/sim/season"
	"oicoach.dev/internal/sim/tuning"
)

// Reads a recorded season back: prints the week log and cross-checks every
// snapshot on disk against the digest logged for its week. A mismatch means
// the snapshot no longer reproduces the state the engine logged.
func main() {
	var (
		seasonDir = flag.String("season", "", "season directory (data/seasons/seed_N)")
		configDir = flag.String("configs", "./configs", "config directory")
		fromWeek  = flag.Int("from_week", 0, "print from week (inclusive, optional)")
		toWeek    = flag.Int("to_week", 0, "stop at week (inclusive, optional)")
		quiet     = flag.Bool("quiet", false, "verify only, skip the week-by-week output")
	)
	flag.Parse()

	if *seasonDir == "" {
		fmt.Fprintln(os.Stderr, "missing -season")
		os.Exit(2)
	}

	entries, err := readWeekLog(filepath.Join(*seasonDir, "weeks.jsonl.zst"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "read week log:", err)
		os.Exit(1)
	}

	digests := make(map[int]string, len(entries))
	for _, e := range entries {
		if *fromWeek != 0 && e.Week < *fromWeek {
			continue
		}
		if *toWeek != 0 && e.Week > *toWeek {
			break
		}
		digests[e.Week] = e.Digest
		if *quiet {
			continue
		}
		for _, line := range e.Lines {
			fmt.Println(line)
		}
		for _, ev := range e.Events {
			fmt.Printf("week %d event: %s\n", ev.Week, ev.Name)
		}
	}
	fmt.Printf("week log: %d entries\n", len(entries))

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load catalogs:", err)
		os.Exit(1)
	}
	tune, err := tuning.Load(filepath.Join(*configDir, "tuning.yaml"))
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintln(os.Stderr, "load tuning:", err)
			os.Exit(1)
		}
		tune = tuning.Defaults()
	}

	snaps, err := listSnapshots(filepath.Join(*seasonDir, "snapshots"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "list snapshots:", err)
		os.Exit(1)
	}

	var checked int
	for _, path := range snaps {
		snap, err := snapshot.Read(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read %s: %v\n", filepath.Base(path), err)
			os.Exit(1)
		}
		want, ok := digests[snap.Week]
		if !ok || want == "" {
			continue
		}
		g, err := season.Restore(configFromTuning(tune, snap.Seed), cats, snap)
		if err != nil {
			fmt.Fprintf(os.Stderr, "restore %s: %v\n", filepath.Base(path), err)
			os.Exit(1)
		}
		if got := g.Digest(); got != want {
			fmt.Fprintf(os.Stderr, "digest mismatch at week %d: got=%s want=%s (file=%s)\n",
				snap.Week, got, want, filepath.Base(path))
			os.Exit(1)
		}
		checked++
	}
	fmt.Printf("replay ok: checked=%d snapshots against the week log\n", checked)
}

func readWeekLog(path string) ([]protocol.WeekLogEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)

	var out []protocol.WeekLogEntry
	for sc.Scan() {
		var e protocol.WeekLogEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return nil, fmt.Errorf("line %d: %w", len(out)+1, err)
		}
		out = append(out, e)
	}
	return out, sc.Err()
}

func listSnapshots(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	type sn struct {
		week int
		path string
	}
	var snaps []sn
	for _, e := range ents {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".snap.zst") {
			continue
		}
		week, err := strconv.Atoi(strings.TrimSuffix(e.Name(), ".snap.zst"))
		if err != nil {
			continue
		}
		snaps = append(snaps, sn{week, filepath.Join(dir, e.Name())})
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].week < snaps[j].week })
	out := make([]string, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, s.path)
	}
	return out, nil
}

func configFromTuning(t tuning.Tuning, seed int64) season.Config {
	return season.Config{
		SeasonLengthWeeks: t.SeasonLengthWeeks,
		HalfWeeks:         t.HalfWeeks,
		Seed:              seed,

		StartBudget:     t.StartBudget,
		StartReputation: t.StartReputation,
		WeeklyCost:      t.WeeklyCost,
		ActionsPerWeek:  t.ActionsPerWeek,
		TasksPerWeek:    t.TasksPerWeek,

		RecoveryRate:    t.RecoveryRate,
		TalentChance:    t.TalentChance,
		MaxDiscountRate: t.MaxDiscountRate,

		AbilityGainMin: t.Training.AbilityGainMin,
		AbilityGainMax: t.Training.AbilityGainMax,

		BasePressureLight:  t.Training.BasePressure.Light,
		BasePressureMedium: t.Training.BasePressure.Medium,
		BasePressureHeavy:  t.Training.BasePressure.Heavy,
		SicknessPenalty:    t.Training.SicknessPenalty,

		OutingBaseCost:       t.Outing.BaseCost,
		OutingPerStudentCost: t.Outing.PerStudentCost,
		OutingInspirationFee: t.Outing.InspirationFee,
		OutingMismatchTotal:  t.Outing.MismatchTotal,

		SicknessBaseChance: t.Events.SicknessBaseChance,
		FlavorChance:       t.Events.FlavorChance,
		RecentBufferCap:    t.Events.RecentBufferCap,
	}
}
