package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() SeasonV1 {
	return SeasonV1{
		Header:   Header{Version: 1, Week: 12, Seed: 1337},
		Seed:     1337,
		RngDraws: 420,

		SeasonLengthWeeks: 104,
		HalfWeeks:         52,

		Week:        12,
		Budget:      380000,
		Reputation:  44,
		Temperature: 21.5,
		Weather:     "CLEAR",

		ActionsLeft: 1,
		ExpenseMult: 1.0,

		Facilities: map[string]int{"computer": 1, "library": 0, "ac": 0, "dorm": 0, "canteen": 2},
		Students: []StudentV1{
			{
				Name:      "林小羽",
				Active:    true,
				Thinking:  18.5,
				Coding:    16.2,
				Knowledge: map[string]float64{"ds": 12, "dp": 7},
				Pressure:  41,
				Mental:    63,
				Comfort:   70,
				Talents:   []string{"EASYGOING"},
			},
		},
		Phase: "active",
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots", "12.snap.zst")
	snap := sampleSnapshot()

	require.NoError(t, Write(path, snap))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, snap, got)
}

func TestEncodeIsByteStable(t *testing.T) {
	snap := sampleSnapshot()
	a, err := Encode(snap)
	require.NoError(t, err)
	b, err := Encode(snap)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestReadRejectsSchemaViolations(t *testing.T) {
	cases := []struct {
		name string
		mut  func(s *SeasonV1)
	}{
		{"missing students", func(s *SeasonV1) { s.Students = nil }},
		{"bad phase", func(s *SeasonV1) { s.Phase = "paused" }},
		{"pressure out of range", func(s *SeasonV1) { s.Students[0].Pressure = 140 }},
		{"zero week", func(s *SeasonV1) { s.Week = 0; s.Header.Week = 0 }},
		{"empty student name", func(s *SeasonV1) { s.Students[0].Name = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snap := sampleSnapshot()
			tc.mut(&snap)
			path := filepath.Join(t.TempDir(), "bad.snap.zst")
			require.NoError(t, Write(path, snap))

			_, err := Read(path)
			require.Error(t, err, "corrupt snapshot must not load")
		})
	}
}

func TestReadRejectsGarbageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noise.snap.zst")
	require.NoError(t, os.WriteFile(path, []byte("not a zstd stream"), 0o644))

	_, err := Read(path)
	require.Error(t, err)
}

func TestValidateAcceptsEncodedSnapshot(t *testing.T) {
	body, err := Encode(sampleSnapshot())
	require.NoError(t, err)
	require.NoError(t, Validate(body))

	// A phase outside the enum is the kind of corruption validation exists for.
	var m map[string]any
	require.NoError(t, json.Unmarshal(body, &m))
	m["phase"] = 7
	mutated, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Error(t, Validate(mutated))
}
