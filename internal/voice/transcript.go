package voice

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// TranscriptEntry is one NDJSON line of a call transcript.
type TranscriptEntry struct {
	At        time.Time `json:"at"`
	VisitorID string    `json:"visitor_id"`
	SessionID string    `json:"session_id"`
	AgentID   string    `json:"agent_id,omitempty"`
	Event     string    `json:"event"`
	Role      string    `json:"role,omitempty"`
	Text      string    `json:"text,omitempty"`
}

// TranscriptLogger records call transcripts.
type TranscriptLogger interface {
	Log(e TranscriptEntry)
	Close() error
}

// TranscriptConfig controls transcript logging.
type TranscriptConfig struct {
	Enabled   bool
	Dir       string
	QueueSize int
}

type noopTranscripts struct{}

func (noopTranscripts) Log(TranscriptEntry) {}
func (noopTranscripts) Close() error        { return nil }

// transcriptLog writes one NDJSON file per visitor tab under Dir/<visitor>/<session>.ndjson.
// Log never blocks: when the queue is full the oldest entry is dropped.
type transcriptLog struct {
	dir    string
	queue  chan TranscriptEntry
	done   chan struct{}
	wg     sync.WaitGroup
	files  map[string]*os.File
	closed sync.Once
}

// NewTranscriptLogger returns a no-op logger when cfg is disabled.
func NewTranscriptLogger(cfg TranscriptConfig) (TranscriptLogger, error) {
	if !cfg.Enabled {
		return noopTranscripts{}, nil
	}
	if cfg.Dir == "" {
		return nil, fmt.Errorf("transcript log dir is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("create transcript dir: %w", err)
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	l := &transcriptLog{
		dir:   cfg.Dir,
		queue: make(chan TranscriptEntry, cfg.QueueSize),
		done:  make(chan struct{}),
		files: make(map[string]*os.File),
	}
	l.wg.Add(1)
	go l.run()
	return l, nil
}

func (l *transcriptLog) Log(e TranscriptEntry) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	select {
	case <-l.done:
		return
	default:
	}
	select {
	case l.queue <- e:
		return
	default:
	}
	// Queue full: drop the oldest entry to make room.
	select {
	case <-l.queue:
		slog.Warn("Transcript queue full, dropped oldest entry", "visitor_id", e.VisitorID)
	default:
	}
	select {
	case l.queue <- e:
	default:
		slog.Warn("Transcript entry dropped", "visitor_id", e.VisitorID, "session_id", e.SessionID)
	}
}

func (l *transcriptLog) run() {
	defer l.wg.Done()
	for {
		select {
		case e := <-l.queue:
			l.write(e)
		case <-l.done:
			for {
				select {
				case e := <-l.queue:
					l.write(e)
				default:
					return
				}
			}
		}
	}
}

func (l *transcriptLog) write(e TranscriptEntry) {
	p := filepath.Join(l.dir, safeName(e.VisitorID), safeName(e.SessionID)+".ndjson")
	f, ok := l.files[p]
	if !ok {
		if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
			slog.Error("Failed to create transcript dir", "path", p, "error", err)
			return
		}
		var err error
		f, err = os.OpenFile(p, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
		if err != nil {
			slog.Error("Failed to open transcript", "path", p, "error", err)
			return
		}
		l.files[p] = f
	}
	line, err := json.Marshal(e)
	if err != nil {
		slog.Error("Failed to encode transcript entry", "error", err)
		return
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		slog.Error("Failed to write transcript", "path", p, "error", err)
	}
	// Call over: release the handle.
	if e.Event == EventDisconnected {
		if err := f.Close(); err != nil {
			slog.Debug("Failed to close transcript", "path", p, "error", err)
		}
		delete(l.files, p)
	}
}

// Close flushes queued entries and closes open files.
func (l *transcriptLog) Close() error {
	var firstErr error
	l.closed.Do(func() {
		close(l.done)
		l.wg.Wait()
		for p, f := range l.files {
			if err := f.Close(); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("close transcript %s: %w", p, err)
			}
		}
	})
	return firstErr
}

// safeName keeps a path component to letters, digits, dash and underscore.
func safeName(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
	if s == "" {
		return "_"
	}
	return s
}
