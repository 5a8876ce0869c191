package timestamp_test

import (
	"errors"
	"testing"

	"vidloop/internal/timestamp"
)

func TestParseOffset(t *testing.T) {
	tests := []struct {
		text string
		want timestamp.Offset
	}{
		{"", 0},
		{"0:00:00.001", 1},
		{"0:00:01.000", 1000},
		{"0:01:00.000", 60000},
		{"1:00:00.000", 3600000},
		{"1:02:03.045", 3723045},
		{"10:59:59.999", 39599999},
		// Padding is not enforced, only ranges are.
		{"0:1:2.3", 62003},
	}
	for _, tt := range tests {
		got, err := timestamp.ParseOffset(tt.text)
		if err != nil {
			t.Errorf("ParseOffset(%q) returned error: %v", tt.text, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseOffset(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestParseOffsetRejects(t *testing.T) {
	tests := []string{
		"1:60:00.000",
		"1:00:60.000",
		"1:00:00.1000",
		"-1:00:00.000",
		"1:00:00",
		"1:00",
		"00:00.000",
		"a:00:00.000",
		"1:aa:00.000",
		"1:00:aa.000",
		"1:00:00.aaa",
		"1:00:00.04.5",
		"1:-2:03.000",
	}
	for _, text := range tests {
		_, err := timestamp.ParseOffset(text)
		if err == nil {
			t.Errorf("ParseOffset(%q) succeeded, want FormatError", text)
			continue
		}
		var ferr *timestamp.FormatError
		if !errors.As(err, &ferr) {
			t.Errorf("ParseOffset(%q) error = %v, want FormatError", text, err)
			continue
		}
		if ferr.Text != text {
			t.Errorf("ParseOffset(%q) FormatError.Text = %q, want the input", text, ferr.Text)
		}
	}
}

func TestOffsetString(t *testing.T) {
	tests := []struct {
		offset timestamp.Offset
		want   string
	}{
		{0, ""},
		{1, "0:00:00.001"},
		{999, "0:00:00.999"},
		{1000, "0:00:01.000"},
		{60000, "0:01:00.000"},
		{3600000, "1:00:00.000"},
		{3723045, "1:02:03.045"},
		{90061001, "25:01:01.001"},
	}
	for _, tt := range tests {
		got := tt.offset.String()
		if got != tt.want {
			t.Errorf("Offset(%d).String() = %q, want %q", tt.offset, got, tt.want)
		}
	}
}

func TestOffsetRoundTrip(t *testing.T) {
	// The zero offset is excluded: it renders as "".
	offsets := []timestamp.Offset{1, 45, 1000, 59999, 60000, 3599999, 3600000, 3723045, 86399999}
	for _, off := range offsets {
		text := off.String()
		got, err := timestamp.ParseOffset(text)
		if err != nil {
			t.Errorf("ParseOffset(%q) returned error: %v", text, err)
			continue
		}
		if got != off {
			t.Errorf("round trip of %d through %q = %d", off, text, got)
		}
	}
}

func TestFromParts(t *testing.T) {
	got := timestamp.FromParts(1, 2, 3, 45)
	if got != 3723045 {
		t.Errorf("FromParts(1, 2, 3, 45) = %d, want 3723045", got)
	}
}

func TestOffsetSeconds(t *testing.T) {
	tests := []struct {
		offset timestamp.Offset
		want   int64
	}{
		{0, 0},
		{999, 0},
		{1000, 1},
		{65999, 65},
	}
	for _, tt := range tests {
		if got := tt.offset.Seconds(); got != tt.want {
			t.Errorf("Offset(%d).Seconds() = %d, want %d", tt.offset, got, tt.want)
		}
	}
}
