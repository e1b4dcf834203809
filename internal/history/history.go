package history

import (
	"fmt"
	"sync"
	"time"

	"group-recall/internal/storage"
)

// Store is the append-only record of observed messages, indexed per group.
// Appends and reads are serialized by mu, so a reader never observes a
// partially appended message.
type Store struct {
	mu      sync.RWMutex
	rec     storage.Recorder
	now     func() time.Time
	all     []storage.Message
	byGroup map[string][]int
	groups  []string
	lastSeq int64
	lastAt  time.Time
}

type Option func(*Store)

// WithClock overrides the wall clock used to stamp appended messages.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore loads previously persisted messages from rec. A nil rec keeps the
// history in memory only.
func NewStore(rec storage.Recorder, opts ...Option) (*Store, error) {
	s := &Store{
		rec:     rec,
		now:     time.Now,
		byGroup: make(map[string][]int),
	}
	for _, o := range opts {
		o(s)
	}
	if rec != nil {
		msgs, err := rec.LoadMessages()
		if err != nil {
			return nil, fmt.Errorf("load history: %w", err)
		}
		for _, m := range msgs {
			s.index(m)
		}
	}
	return s, nil
}

// Append stamps msg with the next sequence id and the current time, then
// persists it. If persistence fails the message is still visible in memory and
// the returned error reports the write failure.
func (s *Store) Append(msg storage.Message) (storage.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg.Seq = s.lastSeq + 1
	msg.ReceivedAt = s.now()
	// received_at never goes backwards within a run, even if the wall clock does.
	// Only stamps from this run count, not the loaded log.
	if msg.ReceivedAt.Before(s.lastAt) {
		msg.ReceivedAt = s.lastAt
	}
	s.lastAt = msg.ReceivedAt
	s.index(msg)

	if s.rec != nil {
		if err := s.rec.AppendMessage(msg); err != nil {
			return msg, fmt.Errorf("persist message seq=%d: %w", msg.Seq, err)
		}
	}
	return msg, nil
}

func (s *Store) index(m storage.Message) {
	s.all = append(s.all, m)
	if _, ok := s.byGroup[m.Group]; !ok {
		s.groups = append(s.groups, m.Group)
	}
	s.byGroup[m.Group] = append(s.byGroup[m.Group], len(s.all)-1)
	if m.Seq > s.lastSeq {
		s.lastSeq = m.Seq
	}
}

// AllMessagesFor returns every message appended for group, oldest first.
// The returned slice is a copy.
func (s *Store) AllMessagesFor(group string) []storage.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.byGroup[group]
	out := make([]storage.Message, 0, len(idx))
	for _, i := range idx {
		out = append(out, s.all[i])
	}
	return out
}

// Groups lists known groups in first-seen order.
func (s *Store) Groups() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.groups...)
}

// All returns the full log in append order.
func (s *Store) All() []storage.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]storage.Message(nil), s.all...)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.all)
}
