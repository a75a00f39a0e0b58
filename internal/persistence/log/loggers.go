package log

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"oicoach.dev/internal/protocol"
)

// JSONLZstdWriter appends JSON lines to a single zstd-compressed file.
type JSONLZstdWriter struct {
	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

func NewJSONLZstdWriter(path string) (*JSONLZstdWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &JSONLZstdWriter{
		f:   f,
		enc: enc,
		w:   bufio.NewWriterSize(enc, 128*1024),
	}, nil
}

func (w *JSONLZstdWriter) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *JSONLZstdWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var err1 error
	if w.w != nil {
		_ = w.w.Flush()
	}
	if w.enc != nil {
		err1 = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.w = nil
	return err1
}

// WeekLogger writes one JSONL entry per completed week (compressed). It
// satisfies the engine's Logger interface.
type WeekLogger struct{ w *JSONLZstdWriter }

func NewWeekLogger(seasonDir string) (*WeekLogger, error) {
	w, err := NewJSONLZstdWriter(filepath.Join(seasonDir, "weeks.jsonl.zst"))
	if err != nil {
		return nil, err
	}
	return &WeekLogger{w: w}, nil
}

func (l *WeekLogger) WriteWeek(entry protocol.WeekLogEntry) error { return l.w.Write(entry) }
func (l *WeekLogger) Close() error                                { return l.w.Close() }
