package probe

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestArgs(t *testing.T) {
	got := strings.Join(Args("video.mkv"), " ")
	want := "ffprobe -v quiet -print_format json -show_format video.mkv"
	if got != want {
		t.Errorf("Args = %q, want %q", got, want)
	}
}

func TestParseDuration(t *testing.T) {
	out := []byte(`{"format": {"filename": "video.mkv", "duration": "63.500000"}}`)
	got, err := parseDuration(out)
	if err != nil {
		t.Fatalf("parseDuration: %v", err)
	}
	want := 63500 * time.Millisecond
	if got != want {
		t.Errorf("parseDuration = %v, want %v", got, want)
	}
}

func TestParseDurationMissingIsUnplayable(t *testing.T) {
	tests := []string{
		`{"format": {"filename": "broken.bin"}}`,
		`{"format": {"duration": "0.000000"}}`,
		`{}`,
	}
	for _, out := range tests {
		_, err := parseDuration([]byte(out))
		if !errors.Is(err, ErrUnplayable) {
			t.Errorf("parseDuration(%s) error = %v, want ErrUnplayable", out, err)
		}
	}
}

func TestParseDurationBadJSON(t *testing.T) {
	if _, err := parseDuration([]byte("not json")); err == nil {
		t.Error("parseDuration on garbage succeeded, want error")
	}
}
