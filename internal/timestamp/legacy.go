package timestamp

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// The legacy format is line-oriented: MM:SS-MM:SS-description, one
// interval per line, whole-second resolution. It is a read-only
// ingestion path for the one-shot loop and the converter.

// ParseLegacyLine parses one line of the legacy format. Only the first
// two dashes delimit fields; the description keeps any further dashes.
func ParseLegacyLine(line string) (Interval, error) {
	startText, rest, ok := strings.Cut(line, "-")
	if !ok {
		return Interval{}, &FormatError{Text: line, Reason: "want MM:SS-MM:SS-description"}
	}
	endText, description, ok := strings.Cut(rest, "-")
	if !ok {
		return Interval{}, &FormatError{Text: line, Reason: "want MM:SS-MM:SS-description"}
	}

	start, err := parseLegacyOffset(startText)
	if err != nil {
		return Interval{}, err
	}
	end, err := parseLegacyOffset(endText)
	if err != nil {
		return Interval{}, err
	}
	return Interval{Start: start, End: end, Description: strings.TrimSpace(description)}, nil
}

// parseLegacyOffset parses MM:SS. Minutes are unbounded so long clips
// stay representable without an hours field.
func parseLegacyOffset(text string) (Offset, error) {
	minutesText, secondsText, ok := strings.Cut(text, ":")
	if !ok {
		return 0, &FormatError{Text: text, Reason: "want MM:SS"}
	}
	minutes, err := strconv.Atoi(minutesText)
	if err != nil || minutes < 0 {
		return 0, &FormatError{Text: text, Reason: "minutes must be a non-negative number"}
	}
	seconds, err := strconv.Atoi(secondsText)
	if err != nil || seconds < 0 {
		return 0, &FormatError{Text: text, Reason: "seconds must be a non-negative number"}
	}
	return FromParts(0, minutes, seconds, 0), nil
}

// ParseLegacy reads the whole legacy format from r. Blank lines are
// skipped; errors carry the 1-based line number.
func ParseLegacy(r io.Reader) (List, error) {
	var list List
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		iv, err := ParseLegacyLine(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		list = append(list, iv)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// ReadLegacyFile parses the legacy file at path.
func ReadLegacyFile(path string) (List, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot access timestamp file %s: %w", path, err)
	}
	defer f.Close()

	list, err := ParseLegacy(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return list, nil
}
