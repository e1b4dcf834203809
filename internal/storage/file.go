package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/renameio/v2"
)

// FileRecorder keeps the whole log as one JSON array and rewrites it on every
// append. Each rewrite is an atomic replace, so a crash mid-write leaves the
// previous complete log in place.
type FileRecorder struct {
	path string
	mu   sync.Mutex
	msgs []Message
}

func NewFileRecorder(path string) (*FileRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure log dir: %w", err)
	}
	r := &FileRecorder{path: path}
	msgs, err := r.readAll()
	if err != nil {
		return nil, err
	}
	r.msgs = msgs
	return r, nil
}

// AppendMessage adds msg to the cached log and rewrites the file. On a write
// failure the message stays cached and goes out with the next successful write.
func (r *FileRecorder) AppendMessage(msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	if err := r.writeAll(r.msgs); err != nil {
		return fmt.Errorf("rewrite log: %w", err)
	}
	return nil
}

func (r *FileRecorder) LoadMessages() ([]Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.msgs))
	copy(out, r.msgs)
	return out, nil
}

func (r *FileRecorder) Close() error { return nil }

func (r *FileRecorder) readAll() ([]Message, error) {
	f, err := os.Open(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Message{}, nil
		}
		return nil, fmt.Errorf("open read: %w", err)
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)
	var msgs []Message
	if err := json.NewDecoder(f).Decode(&msgs); err != nil {
		if err == io.EOF {
			return []Message{}, nil
		}
		return nil, fmt.Errorf("decode log %s: %w", r.path, err)
	}
	return msgs, nil
}

func (r *FileRecorder) writeAll(msgs []Message) error {
	pf, err := renameio.NewPendingFile(r.path, renameio.WithStaticPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending file: %w", err)
	}
	defer func(pf *renameio.PendingFile) {
		_ = pf.Cleanup()
	}(pf)
	enc := json.NewEncoder(pf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(msgs); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if err := pf.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace: %w", err)
	}
	return syncDir(filepath.Dir(r.path))
}

// syncDir flushes the directory entry so the rename survives a power loss.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("open dir: %w", err)
	}
	defer func(d *os.File) {
		_ = d.Close()
	}(d)
	if err := d.Sync(); err != nil {
		return fmt.Errorf("sync dir: %w", err)
	}
	return nil
}
