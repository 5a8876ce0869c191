package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"vidloop/internal/timestamp"
)

// SourceError reports a failure reading or writing the source file.
type SourceError struct {
	Op   string
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("store error %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// ErrRange reports a row index outside the list.
var ErrRange = errors.New("row index out of range")

// Store owns the interval list of one source file, a JSON array of
// records. Every successful mutation is written through to the file
// before observers run; a failed write rolls the edit back, so the
// in-memory list never holds state the caller was told was rejected.
type Store struct {
	mu         sync.Mutex
	path       string
	list       timestamp.List
	saveOnSort bool

	dataChanged []func(row, col int)
	parseError  []func(text string, err error)
}

// Open reads and parses the source file at path. One bad record fails
// the whole open; a partially parsed store is never returned. With
// saveOnSort, Sort writes the reordered list through; without it a sort
// stays in memory until the next cell edit persists the current order.
func Open(path string, saveOnSort bool) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &SourceError{Op: "reading", Path: path, Err: err}
	}
	var recs []timestamp.Record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("timestamp file %s is invalid: %w", path, err)
	}
	list, err := timestamp.FromRecords(recs)
	if err != nil {
		return nil, fmt.Errorf("timestamp file %s is invalid: %w", path, err)
	}
	return &Store{path: path, list: list, saveOnSort: saveOnSort}, nil
}

// Path returns the source file location.
func (s *Store) Path() string {
	return s.path
}

// RowCount returns the number of intervals.
func (s *Store) RowCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.list)
}

// ColumnCount returns the fixed table width.
func (s *Store) ColumnCount() int {
	return timestamp.NumColumns
}

// Interval returns a copy of the interval at row.
func (s *Store) Interval(row int) (timestamp.Interval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row < 0 || row >= len(s.list) {
		return timestamp.Interval{}, fmt.Errorf("row %d: %w", row, ErrRange)
	}
	return s.list[row], nil
}

// Intervals returns a copy of the whole list in its current order.
func (s *Store) Intervals() timestamp.List {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(timestamp.List, len(s.list))
	copy(out, s.list)
	return out
}

// DisplayAt returns the display text of one cell.
func (s *Store) DisplayAt(row, col int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row < 0 || row >= len(s.list) {
		return "", fmt.Errorf("row %d: %w", row, ErrRange)
	}
	return s.list[row].DisplayAt(col)
}

// SetValue parses text for the cell at row, col and writes the updated
// list through to the source file. A rejected edit notifies the parse
// error observers and leaves list and file untouched; a failed save
// rolls the edit back and returns a SourceError. Successful edits
// notify the data changed observers.
func (s *Store) SetValue(row, col int, text string) error {
	s.mu.Lock()
	if row < 0 || row >= len(s.list) {
		s.mu.Unlock()
		return fmt.Errorf("row %d: %w", row, ErrRange)
	}
	prev := s.list[row]
	if err := s.list[row].Set(col, text); err != nil {
		observers := append([]func(string, error){}, s.parseError...)
		s.mu.Unlock()
		for _, fn := range observers {
			fn(text, err)
		}
		return err
	}
	if err := s.save(); err != nil {
		s.list[row] = prev
		s.mu.Unlock()
		return err
	}
	observers := append([]func(int, int){}, s.dataChanged...)
	s.mu.Unlock()
	for _, fn := range observers {
		fn(row, col)
	}
	return nil
}

// Sort reorders the list by start offset; the sort is stable. Data
// changed observers get row -1, col -1 for a whole-table change.
func (s *Store) Sort(descending bool) error {
	s.mu.Lock()
	prev := make(timestamp.List, len(s.list))
	copy(prev, s.list)
	s.list.Sort(descending)
	if s.saveOnSort {
		if err := s.save(); err != nil {
			s.list = prev
			s.mu.Unlock()
			return err
		}
	}
	observers := append([]func(int, int){}, s.dataChanged...)
	s.mu.Unlock()
	for _, fn := range observers {
		fn(-1, -1)
	}
	return nil
}

// OnDataChanged registers fn to run synchronously after every
// successful mutation. Cell edits pass their row and column; whole
// table changes pass -1, -1.
func (s *Store) OnDataChanged(fn func(row, col int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dataChanged = append(s.dataChanged, fn)
}

// OnParseError registers fn to run when an edit is rejected. It gets
// the offending text and the parse error.
func (s *Store) OnParseError(fn func(text string, err error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parseError = append(s.parseError, fn)
}

// save writes the whole list to the source file, temp file then rename.
// The caller holds the lock.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.list.Records(), "", "  ")
	if err != nil {
		return &SourceError{Op: "encoding", Path: s.path, Err: err}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &SourceError{Op: "writing", Path: tmp, Err: err}
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return &SourceError{Op: "replacing", Path: s.path, Err: err}
	}
	return nil
}
