package timestamp

import (
	"fmt"
	"strconv"
	"strings"
)

// Offset is a position in the media, measured in milliseconds from the
// start. The canonical text form is H:MM:SS.mmm with unpadded hours.
type Offset int64

// FormatError reports text that does not parse as an offset.
type FormatError struct {
	Text   string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid timestamp %q: %s", e.Text, e.Reason)
}

// ParseOffset parses the canonical H:MM:SS.mmm form. Empty text is the
// zero offset. Component padding is not enforced, ranges are: hours
// non-negative, minutes and seconds below 60, milliseconds below 1000.
func ParseOffset(text string) (Offset, error) {
	if text == "" {
		return 0, nil
	}
	hoursText, rest, ok := strings.Cut(text, ":")
	if !ok {
		return 0, &FormatError{Text: text, Reason: "want H:MM:SS.mmm"}
	}
	minutesText, rest, ok := strings.Cut(rest, ":")
	if !ok {
		return 0, &FormatError{Text: text, Reason: "want H:MM:SS.mmm"}
	}
	secondsText, millisText, ok := strings.Cut(rest, ".")
	if !ok {
		return 0, &FormatError{Text: text, Reason: "want H:MM:SS.mmm"}
	}

	hours, err := strconv.Atoi(hoursText)
	if err != nil || hours < 0 {
		return 0, &FormatError{Text: text, Reason: "hours must be a non-negative number"}
	}
	minutes, err := strconv.Atoi(minutesText)
	if err != nil || minutes < 0 || minutes >= 60 {
		return 0, &FormatError{Text: text, Reason: "minutes must be between 0 and 59"}
	}
	seconds, err := strconv.Atoi(secondsText)
	if err != nil || seconds < 0 || seconds >= 60 {
		return 0, &FormatError{Text: text, Reason: "seconds must be between 0 and 59"}
	}
	millis, err := strconv.Atoi(millisText)
	if err != nil || millis < 0 || millis >= 1000 {
		return 0, &FormatError{Text: text, Reason: "milliseconds must be between 0 and 999"}
	}
	return FromParts(hours, minutes, seconds, millis), nil
}

// FromParts builds an offset from hour, minute, second and millisecond
// components. Components are not range-checked here.
func FromParts(hours, minutes, seconds, millis int) Offset {
	return Offset(int64(hours)*3600000 +
		int64(minutes)*60000 +
		int64(seconds)*1000 +
		int64(millis))
}

// String renders the canonical H:MM:SS.mmm form. The zero offset renders
// as the empty string; an unset cell and 0:00:00.000 are displayed the
// same on purpose.
func (o Offset) String() string {
	if o == 0 {
		return ""
	}
	ms := int64(o)
	h := ms / 3600000
	m := ms % 3600000 / 60000
	s := ms % 60000 / 1000
	return fmt.Sprintf("%d:%02d:%02d.%03d", h, m, s, ms%1000)
}

// Milliseconds returns the offset as a plain millisecond count.
func (o Offset) Milliseconds() int64 {
	return int64(o)
}

// Seconds returns the offset truncated to whole seconds.
func (o Offset) Seconds() int64 {
	return int64(o) / 1000
}
