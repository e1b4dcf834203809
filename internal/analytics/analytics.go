package analytics

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"group-recall/internal/storage"
)

// DailyStats holds group activity for one calendar day
type DailyStats struct {
	Date          string                `json:"date"`
	TotalMessages int                   `json:"total_messages"`
	UniqueSenders int                   `json:"unique_senders"`
	Mentions      int                   `json:"mentions"`
	GroupStats    map[string]GroupStats `json:"group_stats"`
}

// GroupStats holds activity of a single group
type GroupStats struct {
	Group    string `json:"group"`
	Messages int    `json:"messages"`
	Senders  int    `json:"senders"`
	Mentions int    `json:"mentions"`
}

// AnalyzeDay counts messages received on the calendar day of targetDate.
// Messages whose text contains mention are also counted as bot mentions.
func AnalyzeDay(msgs []storage.Message, targetDate time.Time, mention string) *DailyStats {
	startOfDay := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(), 0, 0, 0, 0, targetDate.Location())
	endOfDay := startOfDay.AddDate(0, 0, 1)

	stats := &DailyStats{
		Date:       startOfDay.Format("2006-01-02"),
		GroupStats: make(map[string]GroupStats),
	}

	senders := make(map[string]bool)
	groupSenders := make(map[string]map[string]bool)

	for _, m := range msgs {
		if m.ReceivedAt.Before(startOfDay) || !m.ReceivedAt.Before(endOfDay) {
			continue
		}
		stats.TotalMessages++
		senders[m.Sender] = true

		gs, ok := stats.GroupStats[m.Group]
		if !ok {
			gs = GroupStats{Group: m.Group}
			groupSenders[m.Group] = make(map[string]bool)
		}
		gs.Messages++
		groupSenders[m.Group][m.Sender] = true
		if mention != "" && strings.Contains(m.Text, mention) {
			gs.Mentions++
			stats.Mentions++
		}
		stats.GroupStats[m.Group] = gs
	}

	for g, gs := range stats.GroupStats {
		gs.Senders = len(groupSenders[g])
		stats.GroupStats[g] = gs
	}
	stats.UniqueSenders = len(senders)
	return stats
}

// Summary renders the stats as a short operator report, busiest group first.
func (ds *DailyStats) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Group activity for %s: %d messages from %d senders, %d bot mentions\n",
		ds.Date, ds.TotalMessages, ds.UniqueSenders, ds.Mentions)

	groups := make([]GroupStats, 0, len(ds.GroupStats))
	for _, gs := range ds.GroupStats {
		groups = append(groups, gs)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Messages != groups[j].Messages {
			return groups[i].Messages > groups[j].Messages
		}
		return groups[i].Group < groups[j].Group
	})
	for _, gs := range groups {
		fmt.Fprintf(&b, "- %s: %d messages, %d senders", gs.Group, gs.Messages, gs.Senders)
		if gs.Mentions > 0 {
			fmt.Fprintf(&b, ", %d mentions", gs.Mentions)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (ds *DailyStats) ToJSON() (string, error) {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
