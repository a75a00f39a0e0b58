package archive

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"oicoach.dev/internal/persistence/snapshot"
)

type SeasonArchiveMeta struct {
	Seed      int64   `json:"seed"`
	EndWeek   int     `json:"end_week"`
	Reason    string  `json:"reason"`
	Score     float64 `json:"score"`
	Snapshot  string  `json:"snapshot"`
	CreatedAt string  `json:"created_at"`
}

// ArchiveSeason copies a finished season's snapshot into
// `dataDir/archives/season_<seed>_<week>/` alongside a meta.json. It returns
// archived=false when the snapshot does not represent a finished season.
func ArchiveSeason(dataDir, snapshotPath string, snap snapshot.SeasonV1, score float64) (archivedPath string, archived bool, err error) {
	if snap.Phase != "ended" {
		return "", false, nil
	}

	dir := filepath.Join(dataDir, "archives", fmt.Sprintf("season_%d_%03d", snap.Seed, snap.Week))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", false, err
	}

	dst := filepath.Join(dir, filepath.Base(snapshotPath))
	if err := copyFile(snapshotPath, dst); err != nil {
		return "", false, err
	}

	meta := SeasonArchiveMeta{
		Seed:      snap.Seed,
		EndWeek:   snap.Week,
		Reason:    snap.EndReason,
		Score:     score,
		Snapshot:  filepath.Base(dst),
		CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	if b, err := json.MarshalIndent(meta, "", "  "); err == nil {
		_ = os.WriteFile(filepath.Join(dir, "meta.json"), b, 0o644)
	}

	return dst, true, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
