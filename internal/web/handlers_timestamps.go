package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"vidloop/internal/timestamp"
)

type rowView struct {
	Row         int    `json:"row"`
	Start       string `json:"start"`
	End         string `json:"end"`
	StartMS     int64  `json:"startMs"`
	EndMS       int64  `json:"endMs"`
	Description string `json:"description"`
}

type patchRequest struct {
	Column *int    `json:"column" validate:"required,min=0,max=2"`
	Value  *string `json:"value" validate:"required"`
}

type sortRequest struct {
	Descending bool `json:"descending"`
}

func viewOf(row int, iv timestamp.Interval) rowView {
	return rowView{
		Row:         row,
		Start:       iv.Start.String(),
		End:         iv.End.String(),
		StartMS:     iv.Start.Milliseconds(),
		EndMS:       iv.End.Milliseconds(),
		Description: iv.Description,
	}
}

// GET /api/timestamps
func (s *Server) handleListTimestamps(w http.ResponseWriter, r *http.Request) {
	list := s.store.Intervals()
	rows := make([]rowView, 0, len(list))
	for i, iv := range list {
		rows = append(rows, viewOf(i, iv))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"headers": timestamp.Headers,
		"rows":    rows,
	})
}

// PATCH /api/timestamps/{row}
func (s *Server) handlePatchTimestamp(w http.ResponseWriter, r *http.Request) {
	row, err := strconv.Atoi(chi.URLParam(r, "row"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "row must be an integer")
		return
	}

	var payload patchRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.SetValue(row, *payload.Column, *payload.Value); err != nil {
		s.writeStoreError(w, err)
		return
	}

	iv, err := s.store.Interval(row)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(row, iv))
}

// POST /api/timestamps/sort
func (s *Server) handleSortTimestamps(w http.ResponseWriter, r *http.Request) {
	var payload sortRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.store.Sort(payload.Descending); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
