package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"oicoach.dev/internal/persistence/archive"
	"oicoach.dev/internal/persistence/indexdb"
	persistlog "oicoach.dev/internal/persistence/log"
	"oicoach.dev/internal/persistence/snapshot"
	"oicoach.dev/internal/protocol"
	"oicoach.dev/internal/sim/catalogs"
	"oicoach.dev/internal/sim/season"
	"oicoach.dev/internal/sim/tuning"
	"oicoach.dev/internal/transport/ws"
)

func main() {
	var (
		configDir  = flag.String("configs", "./configs", "config directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		seed       = flag.Int64("seed", 1337, "season seed (used only when starting fresh)")
		weeks      = flag.Int("weeks", 0, "stop after this many weeks (0 = run to season end)")
		listen     = flag.String("listen", "", "observer websocket listen address (empty to disable)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite snapshot/season index")

		snapPath   = flag.String("snapshot", "", "path to snapshot to load (optional)")
		loadLatest = flag.Bool("load_latest_snapshot", true, "load latest snapshot from data dir if present (when -snapshot is empty)")
		snapEvery  = flag.Int("snapshot_every", 8, "write a snapshot every N weeks")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[season] ", log.LstdFlags|log.Lmicroseconds)

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}

	seasonDir := filepath.Join(*dataDir, "seasons", fmt.Sprintf("seed_%d", *seed))
	_ = os.MkdirAll(seasonDir, 0o755)

	snapshotToLoad := strings.TrimSpace(*snapPath)
	if snapshotToLoad == "" && *loadLatest {
		snapshotToLoad = latestSnapshot(seasonDir)
	}

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, tuneErr := tuning.Load(tp)
	if tuneErr != nil {
		if snapshotToLoad == "" || !os.IsNotExist(tuneErr) {
			logger.Fatalf("load tuning: %v", tuneErr)
		}
		// Resume fallback: the snapshot carries the effective numbers anyway.
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}
	cfg := configFromTuning(tune, *seed)

	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(seasonDir, "index.db"))
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		defer idx.Close()
	}

	var g *season.Game
	if snapshotToLoad != "" {
		snap, err := snapshot.Read(snapshotToLoad)
		if err != nil {
			logger.Fatalf("read snapshot %s: %v", snapshotToLoad, err)
		}
		g, err = season.Restore(cfg, cats, snap)
		if err != nil {
			logger.Fatalf("restore season: %v", err)
		}
		logger.Printf("resumed season seed=%d at week %d", snap.Seed, g.Week())
	} else {
		g, err = season.New(cfg, cats)
		if err != nil {
			logger.Fatalf("new season: %v", err)
		}
		logger.Printf("fresh season seed=%d, roster %v", *seed, g.ActiveNames())
	}

	weekLog, err := persistlog.NewWeekLogger(seasonDir)
	if err != nil {
		logger.Fatalf("open week log: %v", err)
	}
	defer weekLog.Close()

	loggers := []season.Logger{weekLog}
	if strings.TrimSpace(*listen) != "" {
		feed := ws.NewFeed(logger)
		defer feed.Close()
		loggers = append(loggers, feed)

		mux := http.NewServeMux()
		mux.HandleFunc("/v1/observe", feed.Handler())
		go func() {
			logger.Printf("observer feed on ws://%s/v1/observe", *listen)
			if err := http.ListenAndServe(*listen, mux); err != nil {
				logger.Printf("observer listener: %v", err)
			}
		}()
	}
	g.SetLogger(teeLogger(loggers))

	runAutoplay(g, logger, seasonDir, idx, *weeks, *snapEvery)

	finish(g, logger, seasonDir, *dataDir, idx)
}

// runAutoplay drives the season with a simple fixed policy: answer every
// choice with its first option, enter the scheduled contest, spend the
// remaining actions on medium training, and upgrade facilities when the
// budget is comfortable.
func runAutoplay(g *season.Game, logger *log.Logger, seasonDir string, idx *indexdb.SQLiteIndex, maxWeeks, snapEvery int) {
	startWeek := g.Week()
	tracks := []string{season.FacilityComputer, season.FacilityLibrary, season.FacilityAC, season.FacilityDorm, season.FacilityCanteen}

	for g.Phase() == season.PhaseActive {
		resolveAll(g, logger)
		if g.Phase() != season.PhaseActive {
			break
		}

		if def, ok := g.ContestAt(g.Week()); ok {
			rep, err := g.RunContest(def.Name)
			switch {
			case err == nil:
				for _, e := range rep.Entries {
					logger.Printf("week %d %s: %s scored %d (eligible=%v advanced=%v)", g.Week(), def.Name, e.Student, e.Score, e.Eligible, e.Advanced)
				}
			case protocol.Code(err) == protocol.ErrConflict:
				// Already entered before a resume; nothing to do.
			default:
				logger.Printf("contest %s: %v", def.Name, err)
			}
			resolveAll(g, logger)
		}

		for g.Phase() == season.PhaseActive && g.ActionsLeft() > 0 {
			names := g.ActiveNames()
			if len(names) == 0 {
				break
			}
			if _, err := g.Train(0, season.Medium, names); err != nil {
				logger.Printf("train: %v", err)
				break
			}
			resolveAll(g, logger)
		}

		if g.Phase() == season.PhaseActive && g.Budget() > 400000 {
			for _, tr := range tracks {
				if err := g.UpgradeFacility(tr); err == nil {
					break
				}
			}
		}

		if g.Phase() != season.PhaseActive {
			break
		}
		if err := g.AdvanceWeeks(1); err != nil {
			if protocol.Code(err) == protocol.ErrChoicePending {
				continue
			}
			logger.Printf("advance: %v", err)
			break
		}

		if snapEvery > 0 && g.Week()%snapEvery == 0 {
			writeSnapshot(g, logger, seasonDir, idx)
		}
		if maxWeeks > 0 && g.Week()-startWeek >= maxWeeks {
			logger.Printf("week limit reached at week %d", g.Week())
			break
		}
	}
}

func resolveAll(g *season.Game, logger *log.Logger) {
	for {
		pending := g.PendingChoices()
		if len(pending) == 0 {
			return
		}
		ev := pending[0]
		opt := 0
		if err := g.ResolveChoice(ev.ID, opt); err != nil {
			logger.Printf("resolve %q: %v", ev.Name, err)
			return
		}
		logger.Printf("week %d choice %q -> %q", ev.Week, ev.Name, ev.Options[opt].Label)
	}
}

func writeSnapshot(g *season.Game, logger *log.Logger, seasonDir string, idx *indexdb.SQLiteIndex) string {
	snap := g.Export()
	path := filepath.Join(seasonDir, "snapshots", fmt.Sprintf("%d.snap.zst", snap.Week))
	if err := snapshot.Write(path, snap); err != nil {
		logger.Printf("write snapshot: %v", err)
		return ""
	}
	if idx != nil {
		if err := idx.RecordSnapshot(snap, path); err != nil {
			logger.Printf("index snapshot: %v", err)
		}
	}
	return path
}

func finish(g *season.Game, logger *log.Logger, seasonDir, dataDir string, idx *indexdb.SQLiteIndex) {
	path := writeSnapshot(g, logger, seasonDir, idx)

	sum := g.Summarize()
	logger.Printf("season over at week %d: %s", sum.Week, orDash(sum.Reason))
	logger.Printf("budget %s, reputation %d, season score %.2f",
		humanize.Comma(int64(sum.Budget)), sum.Reputation, sum.Score)
	for _, s := range sum.Students {
		status := "active"
		if !s.Active {
			status = fmt.Sprintf("departed week %d (%s)", s.DepartWeek, s.DepartReason)
		}
		logger.Printf("  %s: thinking %.1f coding %.1f talents %v [%s]",
			s.Name, s.Thinking, s.Coding, s.Talents, status)
	}
	for _, rec := range sum.Career {
		logger.Printf("  career: half %d week %d %s %s score %d", rec.Half, rec.Week, rec.Contest, rec.Student, rec.Score)
	}

	if g.Phase() != season.PhaseEnded || path == "" {
		return
	}
	snap := g.Export()
	archivedPath, archived, err := archive.ArchiveSeason(dataDir, path, snap, sum.Score)
	if err != nil {
		logger.Printf("archive season: %v", err)
	} else if archived {
		logger.Printf("archived to %s", archivedPath)
	}
	if idx != nil {
		if err := idx.RecordSeason(snap, sum.Score, archivedPath); err != nil {
			logger.Printf("index season: %v", err)
		}
	}
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

// teeLogger fans a week entry out to every sink; the first error wins but
// every sink still sees the entry.
func teeLogger(sinks []season.Logger) season.Logger {
	if len(sinks) == 1 {
		return sinks[0]
	}
	return multiLogger(sinks)
}

type multiLogger []season.Logger

func (m multiLogger) WriteWeek(entry protocol.WeekLogEntry) error {
	var first error
	for _, l := range m {
		if err := l.WriteWeek(entry); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func latestSnapshot(seasonDir string) string {
	dir := filepath.Join(seasonDir, "snapshots")
	ents, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var best string
	var bestWeek uint64
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".snap.zst") {
			continue
		}
		base := strings.TrimSuffix(name, ".snap.zst")
		week, err := strconv.ParseUint(base, 10, 64)
		if err != nil {
			continue
		}
		if best == "" || week > bestWeek {
			bestWeek = week
			best = filepath.Join(dir, name)
		}
	}
	return best
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
