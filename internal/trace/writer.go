package trace

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
)

var nameCleaner = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// FrameInterval is the minimum wall time between persisted frame batches.
const FrameInterval = 200 * time.Millisecond

const (
	eventsFile   = "events.jsonl.sz"
	framesFile   = "frames.bin.zst"
	manifestFile = "manifest.json"
)

type frame struct {
	Tick       uint64
	ClockMs    int64
	CapturedAt time.Time
	Payload    []byte
}

// Manifest describes one trace directory. Written on open, rewritten with
// final counts on Close.
type Manifest struct {
	Version         int    `json:"version"`
	Session         string `json:"session"`
	CreatedAt       string `json:"created_at"`
	Seed            int64  `json:"seed"`
	Mode            string `json:"mode"`
	FrameIntervalMs int    `json:"frame_interval_ms"`
	EventsPath      string `json:"events_path"`
	FramesPath      string `json:"frames_path"`
	Events          int    `json:"events"`
	Frames          int    `json:"frames"`
	ClosedAt        string `json:"closed_at,omitempty"`
}

// Writer records gameplay events (snappy-framed JSON lines) and snapshot
// frames (zstd, length-prefixed) for offline debugging. Nothing reads a
// trace back into the game.
type Writer struct {
	mu          sync.Mutex
	dir         string
	now         func() time.Time
	manifest    Manifest
	eventFile   *os.File
	eventStream *snappy.Writer
	frameFile   *os.File
	frameStream *zstd.Encoder
	pending     []frame
	lastFlush   time.Time
}

// NewWriter creates <root>/<session>-<timestamp>/ and opens both sinks.
func NewWriter(root, session string, seed int64, mode string, clock func() time.Time) (*Writer, error) {
	if root == "" {
		return nil, fmt.Errorf("trace root must be provided")
	}
	if clock == nil {
		clock = time.Now
	}

	cleaned := nameCleaner.ReplaceAllString(session, "")
	if cleaned == "" {
		cleaned = "session"
	}
	created := clock().UTC()
	dir := filepath.Join(root, fmt.Sprintf("%s-%s", cleaned, created.Format("20060102T150405Z")))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create trace dir: %w", err)
	}

	eventFile, err := os.Create(filepath.Join(dir, eventsFile))
	if err != nil {
		return nil, fmt.Errorf("create events: %w", err)
	}
	frameFile, err := os.Create(filepath.Join(dir, framesFile))
	if err != nil {
		eventFile.Close()
		return nil, fmt.Errorf("create frames: %w", err)
	}
	frameStream, err := zstd.NewWriter(frameFile)
	if err != nil {
		eventFile.Close()
		frameFile.Close()
		return nil, fmt.Errorf("open zstd stream: %w", err)
	}

	w := &Writer{
		dir: dir,
		now: clock,
		manifest: Manifest{
			Version:         1,
			Session:         cleaned,
			CreatedAt:       created.Format(time.RFC3339Nano),
			Seed:            seed,
			Mode:            mode,
			FrameIntervalMs: int(FrameInterval / time.Millisecond),
			EventsPath:      eventsFile,
			FramesPath:      framesFile,
		},
		eventFile:   eventFile,
		eventStream: snappy.NewBufferedWriter(eventFile),
		frameFile:   frameFile,
		frameStream: frameStream,
	}
	if err := w.writeManifest(); err != nil {
		w.closeSinks()
		return nil, err
	}
	return w, nil
}

// Dir returns the trace directory.
func (w *Writer) Dir() string {
	return w.dir
}

// AppendEvent writes one event line: {tick, clock_ms, captured_at, type, payload}.
func (w *Writer) AppendEvent(tick uint64, clockMs int64, eventType string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", eventType, err)
	}
	captured := w.now().UTC()

	w.mu.Lock()
	defer w.mu.Unlock()

	line, err := json.Marshal(struct {
		Tick       uint64          `json:"tick"`
		ClockMs    int64           `json:"clock_ms"`
		CapturedAt string          `json:"captured_at"`
		Type       string          `json:"type"`
		Payload    json.RawMessage `json:"payload"`
	}{tick, clockMs, captured.Format(time.RFC3339Nano), eventType, body})
	if err != nil {
		return err
	}
	line = append(line, '\n')
	if _, err := w.eventStream.Write(line); err != nil {
		return err
	}
	w.manifest.Events++
	return w.eventStream.Flush()
}

// AppendFrame stages a snapshot frame and persists staged frames once
// FrameInterval of wall time has passed since the last batch.
func (w *Writer) AppendFrame(tick uint64, clockMs int64, payload []byte) error {
	captured := w.now().UTC()
	clone := append([]byte(nil), payload...)

	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending = append(w.pending, frame{Tick: tick, ClockMs: clockMs, CapturedAt: captured, Payload: clone})
	if w.lastFlush.IsZero() {
		w.lastFlush = captured
		return nil
	}
	if captured.Sub(w.lastFlush) < FrameInterval {
		return nil
	}
	if err := w.flushLocked(); err != nil {
		return err
	}
	w.lastFlush = captured
	return nil
}

// Close flushes everything, finalizes the manifest and releases the files.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	keep(w.flushLocked())
	keep(w.eventStream.Flush())
	keep(w.closeSinks())
	w.manifest.ClosedAt = w.now().UTC().Format(time.RFC3339Nano)
	keep(w.writeManifest())
	return firstErr
}

// frames.bin.zst layout per frame: tick u64, clock_ms u64, captured_at unix
// nanos u64, payload length u32 (little endian), then the payload.
func (w *Writer) flushLocked() error {
	for _, f := range w.pending {
		var header [28]byte
		binary.LittleEndian.PutUint64(header[0:8], f.Tick)
		binary.LittleEndian.PutUint64(header[8:16], uint64(f.ClockMs))
		binary.LittleEndian.PutUint64(header[16:24], uint64(f.CapturedAt.UnixNano()))
		binary.LittleEndian.PutUint32(header[24:28], uint32(len(f.Payload)))
		if _, err := w.frameStream.Write(header[:]); err != nil {
			return err
		}
		if _, err := w.frameStream.Write(f.Payload); err != nil {
			return err
		}
		w.manifest.Frames++
	}
	w.pending = w.pending[:0]
	return nil
}

func (w *Writer) closeSinks() error {
	var firstErr error
	for _, c := range []func() error{w.eventStream.Close, w.eventFile.Close, w.frameStream.Close, w.frameFile.Close} {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (w *Writer) writeManifest() error {
	data, err := json.MarshalIndent(w.manifest, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(w.dir, manifestFile), data, 0o644); err != nil {
		return fmt.Errorf("write trace manifest: %w", err)
	}
	return nil
}
