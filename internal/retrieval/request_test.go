package retrieval

import (
	"errors"
	"testing"
	"time"
)

func TestDecodeRequest(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Request
	}{
		{"all null sentinels", `{"type":"instruction","start_time":"null","end_time":"null","range":"null","count":"null"}`, Request{}},
		{"json nulls", `{"start_time":null,"range":null,"count":null}`, Request{}},
		{"absolute", `{"start_time":"2024-05-15 10:00","end_time":"2024-05-15 11:30"}`, Request{Start: "2024-05-15 10:00", End: "2024-05-15 11:30"}},
		{"range and numeric count", `{"range":"6h","count":5}`, Request{Range: "6h", Count: 5}},
		{"string count", `{"count":"20"}`, Request{Count: 20}},
		{"zero count", `{"count":0}`, Request{}},
		{"negative count", `{"count":-3}`, Request{}},
		{"fractional count", `{"count":2.5}`, Request{}},
		{"garbage count", `{"count":"many"}`, Request{}},
		{"object field ignored", `{"range":{"x":1}}`, Request{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeRequest([]byte(tt.raw))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got != tt.want {
				t.Fatalf("want %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestDecodeRequest_NotJSON(t *testing.T) {
	if _, err := DecodeRequest([]byte("sure! here you go")); err == nil {
		t.Fatalf("expected error")
	}
	if !(Request{}).IsEmpty() {
		t.Fatalf("zero request must be empty")
	}
}

func TestParseTimestamp(t *testing.T) {
	loc := time.FixedZone("X", 3*3600)
	got, err := ParseTimestamp(" 2024-05-15 10:00 ", loc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !got.Equal(time.Date(2024, 5, 15, 7, 0, 0, 0, time.UTC)) {
		t.Fatalf("local zone not applied: %v", got)
	}
	if _, err := ParseTimestamp("2024-05-15T10:00:00Z", loc); err != nil {
		t.Fatalf("rfc3339: %v", err)
	}
	if _, err := ParseTimestamp("2024-05-15 10:00:30", loc); err != nil {
		t.Fatalf("seconds: %v", err)
	}
	if _, err := ParseTimestamp("null", loc); !errors.Is(err, ErrInvalidTimestamp) {
		t.Fatalf("want ErrInvalidTimestamp, got %v", err)
	}
}
