package timestamp

import (
	"errors"
	"fmt"
	"sort"
)

// Columns of the interval table.
const (
	ColStart = iota
	ColEnd
	ColDescription
)

// NumColumns is the width of the interval table.
const NumColumns = 3

// Headers holds the column titles, indexed by the Col constants.
var Headers = [NumColumns]string{"Start Time", "End Time", "Description"}

// ErrColumn reports a column index outside the table.
var ErrColumn = errors.New("column index out of range")

// Interval is one loopable slice of the media. Start and End are not
// ordered at this level: a reversed interval is representable, and the
// loop controller decides what it means.
type Interval struct {
	Start       Offset
	End         Offset
	Description string
}

// DisplayAt returns the display text of the given column.
func (iv Interval) DisplayAt(col int) (string, error) {
	switch col {
	case ColStart:
		return iv.Start.String(), nil
	case ColEnd:
		return iv.End.String(), nil
	case ColDescription:
		return iv.Description, nil
	}
	return "", fmt.Errorf("column %d: %w", col, ErrColumn)
}

// Set parses text for the given column and assigns it. Offset columns go
// through ParseOffset, the description is stored verbatim. On error the
// interval is unchanged.
func (iv *Interval) Set(col int, text string) error {
	switch col {
	case ColStart, ColEnd:
		off, err := ParseOffset(text)
		if err != nil {
			return err
		}
		if col == ColStart {
			iv.Start = off
		} else {
			iv.End = off
		}
	case ColDescription:
		iv.Description = text
	default:
		return fmt.Errorf("column %d: %w", col, ErrColumn)
	}
	return nil
}

// List is an ordered collection of intervals.
type List []Interval

// Sort orders the list by start offset. The sort is stable: intervals
// with equal starts keep their relative order.
func (l List) Sort(descending bool) {
	sort.SliceStable(l, func(i, j int) bool {
		if descending {
			return l[j].Start < l[i].Start
		}
		return l[i].Start < l[j].Start
	})
}

// Record is the persisted form of one interval.
type Record struct {
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Description string `json:"description"`
}

// Records converts the list to its persisted form.
func (l List) Records() []Record {
	recs := make([]Record, len(l))
	for i, iv := range l {
		recs[i] = Record{
			StartTime:   iv.Start.String(),
			EndTime:     iv.End.String(),
			Description: iv.Description,
		}
	}
	return recs
}

// FromRecords parses persisted records into a list. Offsets go through
// the same parser as interactive edits, so a hand-edited file and a cell
// edit are validated identically.
func FromRecords(recs []Record) (List, error) {
	list := make(List, 0, len(recs))
	for i, rec := range recs {
		start, err := ParseOffset(rec.StartTime)
		if err != nil {
			return nil, fmt.Errorf("record %d start time: %w", i, err)
		}
		end, err := ParseOffset(rec.EndTime)
		if err != nil {
			return nil, fmt.Errorf("record %d end time: %w", i, err)
		}
		list = append(list, Interval{Start: start, End: end, Description: rec.Description})
	}
	return list, nil
}
