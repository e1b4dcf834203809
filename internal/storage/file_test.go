package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileRecorder_AppendAndReload(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "log.json")
	rec, err := NewFileRecorder(p)
	if err != nil {
		t.Fatalf("init recorder: %v", err)
	}

	m1 := Message{Seq: 1, ReceivedAt: time.Unix(1, 0).UTC(), Sender: "u1", Group: "g", Text: "hi"}
	m2 := Message{Seq: 2, ReceivedAt: time.Unix(2, 0).UTC(), Sender: "u2", Group: "g", Text: "привет"}
	if err := rec.AppendMessage(m1); err != nil {
		t.Fatalf("append1: %v", err)
	}
	if err := rec.AppendMessage(m2); err != nil {
		t.Fatalf("append2: %v", err)
	}

	// simulate restart
	rec2, err := NewFileRecorder(p)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	msgs, err := rec2.LoadMessages()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("want 2, got %d", len(msgs))
	}
	if msgs[0].Seq != 1 || msgs[1].Seq != 2 || msgs[1].Text != "привет" {
		t.Fatalf("order mismatch: %+v", msgs)
	}
	if !msgs[0].ReceivedAt.Equal(m1.ReceivedAt) {
		t.Fatalf("time not preserved: %v", msgs[0].ReceivedAt)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestFileRecorder_MissingFileStartsEmpty(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "log.json")
	rec, err := NewFileRecorder(p)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	msgs, err := rec.LoadMessages()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("want empty, got %d", len(msgs))
	}
}

func TestFileRecorder_CorruptLogIsAnError(t *testing.T) {
	p := filepath.Join(t.TempDir(), "log.json")
	if err := os.WriteFile(p, []byte("[{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewFileRecorder(p); err == nil {
		t.Fatalf("expected error for corrupt log")
	}
}

func TestFileRecorder_LoadReturnsCopy(t *testing.T) {
	rec, err := NewFileRecorder(filepath.Join(t.TempDir(), "log.json"))
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	_ = rec.AppendMessage(Message{Seq: 1, Text: "a"})
	msgs, _ := rec.LoadMessages()
	msgs[0].Text = "mutated"
	again, _ := rec.LoadMessages()
	if again[0].Text != "a" {
		t.Fatalf("internal state mutated via returned slice")
	}
}

func TestFileRecorder_RewriteKeepsReadableMode(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "log.json")
	rec, err := NewFileRecorder(p)
	if err != nil {
		t.Fatalf("init recorder: %v", err)
	}
	for i := int64(1); i <= 3; i++ {
		if err := rec.AppendMessage(Message{Seq: i, ReceivedAt: time.Unix(i, 0).UTC(), Group: "g", Text: "x"}); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	fi, err := os.Stat(p)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if fi.Mode().Perm() != 0o644 {
		t.Fatalf("mode = %v, want 0644", fi.Mode().Perm())
	}
	entries, err := os.ReadDir(filepath.Dir(p))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}
