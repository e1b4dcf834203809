package retrieval

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidTimestamp is returned by ParseTimestamp for values matching none of
// the accepted layouts.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// TimeLayout is the layout the interpreter is asked to produce.
const TimeLayout = "2006-01-02 15:04"

var timeLayouts = []string{
	TimeLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
}

// Request is the structured form of a history request. Zero values mean the
// field was not specified.
type Request struct {
	Start string
	End   string
	Range string
	Count int
}

func (r Request) IsEmpty() bool {
	return r.Start == "" && r.End == "" && r.Range == "" && r.Count <= 0
}

func (r Request) String() string {
	return fmt.Sprintf("start=%q end=%q range=%q count=%d", r.Start, r.End, r.Range, r.Count)
}

// DecodeRequest reads the interpreter JSON object. Fields may be strings,
// numbers or null; the string "null" is treated as absent.
func DecodeRequest(raw []byte) (Request, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Request{}, fmt.Errorf("decode request: %w", err)
	}
	req := Request{
		Start: stringField(fields["start_time"]),
		End:   stringField(fields["end_time"]),
		Range: stringField(fields["range"]),
	}
	if c := stringField(fields["count"]); c != "" {
		req.Count = parseCount(c)
	}
	return req, nil
}

func stringField(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return ""
	}
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "null") || strings.EqualFold(s, "none") {
		return ""
	}
	return s
}

// parseCount returns 0 for anything that is not a positive whole number.
func parseCount(s string) int {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0
	}
	return int(f)
}

// ParseTimestamp parses an absolute timestamp in loc. RFC 3339 values keep
// their own offset.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
}
