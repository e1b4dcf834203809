// Package retrieval selects the slice of a group's history that answers a
// time/range/count request.
//
// Resolution order:
//  1. absolute range (start and end both parse): inclusive window, returned as is;
//  2. relative range token: "yesterday" returns immediately, others select
//     everything since a cutoff and continue;
//  3. count: the most recent N messages are merged into the range selection;
//  4. no criteria at all: the default fallback window.
package retrieval

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"group-recall/internal/storage"
)

const (
	DefaultWindow = 6 * time.Hour
	FallbackLimit = 100

	// maxSpanDays caps "<N>d"/"<N>h" tokens; anything older selects the whole history.
	maxSpanDays = 1_000_000
	maxHours    = int(math.MaxInt64 / int64(time.Hour))
)

// Resolve picks messages from msgs (oldest first) for req, relative to now.
// The result keeps history order and never contains the same Seq twice.
// A range token or count that matches nothing yields an empty selection; only
// a request with no usable criteria gets the Fallback window.
func Resolve(msgs []storage.Message, req Request, now time.Time) []storage.Message {
	if req.Start != "" && req.End != "" {
		start, errS := ParseTimestamp(req.Start, now.Location())
		end, errE := ParseTimestamp(req.End, now.Location())
		if errS == nil && errE == nil {
			return between(msgs, start, end)
		}
	}

	var selected []storage.Message
	criteria := false

	if token := normalizeToken(req.Range); token != "" {
		criteria = true
		if token == "yesterday" {
			today := startOfDay(now)
			from := today.AddDate(0, 0, -1)
			return halfOpen(msgs, from, today)
		}
		selected = since(msgs, Cutoff(token, now))
	}

	if req.Count > 0 {
		criteria = true
		selected = union(selected, tail(msgs, req.Count))
	}

	if !criteria {
		return Fallback(msgs, now)
	}
	if selected == nil {
		selected = []storage.Message{}
	}
	return selected
}

// Cutoff returns the lower bound for a relative range token. Unknown tokens
// fall back to DefaultWindow.
func Cutoff(token string, now time.Time) time.Time {
	token = normalizeToken(token)
	switch token {
	case "today":
		return startOfDay(now)
	case "yesterday":
		return startOfDay(now).AddDate(0, 0, -1)
	case "week":
		offset := (int(now.Weekday()) + 6) % 7
		return startOfDay(now).AddDate(0, 0, -offset)
	}
	if n, unit, ok := splitAmount(token); ok {
		switch unit {
		case 'h':
			if n > -maxHours && n < maxHours {
				return now.Add(-time.Duration(n) * time.Hour)
			}
			return now.AddDate(0, 0, -clampDays(n/24)).Add(-time.Duration(n%24) * time.Hour)
		case 'd':
			return now.AddDate(0, 0, -clampDays(n))
		}
	}
	return now.Add(-DefaultWindow)
}

// Fallback returns the last DefaultWindow of history when that window holds
// more than FallbackLimit messages, otherwise the most recent FallbackLimit.
func Fallback(msgs []storage.Message, now time.Time) []storage.Message {
	recent := since(msgs, now.Add(-DefaultWindow))
	if len(recent) > FallbackLimit {
		return recent
	}
	return tail(msgs, FallbackLimit)
}

func normalizeToken(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// splitAmount parses "<N>h" / "<N>d" with an integer N.
func splitAmount(token string) (int, byte, bool) {
	if len(token) < 2 {
		return 0, 0, false
	}
	unit := token[len(token)-1]
	if unit != 'h' && unit != 'd' {
		return 0, 0, false
	}
	n, err := strconv.Atoi(token[:len(token)-1])
	if err != nil {
		return 0, 0, false
	}
	return n, unit, true
}

func clampDays(n int) int {
	if n > maxSpanDays {
		return maxSpanDays
	}
	if n < -maxSpanDays {
		return -maxSpanDays
	}
	return n
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func between(msgs []storage.Message, start, end time.Time) []storage.Message {
	out := []storage.Message{}
	for _, m := range msgs {
		if !m.ReceivedAt.Before(start) && !m.ReceivedAt.After(end) {
			out = append(out, m)
		}
	}
	return out
}

func halfOpen(msgs []storage.Message, from, to time.Time) []storage.Message {
	out := []storage.Message{}
	for _, m := range msgs {
		if !m.ReceivedAt.Before(from) && m.ReceivedAt.Before(to) {
			out = append(out, m)
		}
	}
	return out
}

func since(msgs []storage.Message, cutoff time.Time) []storage.Message {
	out := []storage.Message{}
	for _, m := range msgs {
		if !m.ReceivedAt.Before(cutoff) {
			out = append(out, m)
		}
	}
	return out
}

// tail returns the last n messages by position.
func tail(msgs []storage.Message, n int) []storage.Message {
	if n > len(msgs) {
		n = len(msgs)
	}
	out := make([]storage.Message, n)
	copy(out, msgs[len(msgs)-n:])
	return out
}

// union merges extra into base by Seq and restores history order.
func union(base, extra []storage.Message) []storage.Message {
	seen := make(map[int64]bool, len(base)+len(extra))
	out := make([]storage.Message, 0, len(base)+len(extra))
	for _, m := range base {
		if !seen[m.Seq] {
			seen[m.Seq] = true
			out = append(out, m)
		}
	}
	for _, m := range extra {
		if !seen[m.Seq] {
			seen[m.Seq] = true
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}
