package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"vidloop/internal/looper"
	"vidloop/internal/store"
	"vidloop/internal/timestamp"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": msg,
	})
}

// writeStoreError maps store failures onto HTTP statuses. A rejected
// time edit keeps the original dialog wording in its message.
func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	var fe *timestamp.FormatError
	switch {
	case errors.As(err, &fe):
		writeError(w, http.StatusUnprocessableEntity, "Time invalid: "+fe.Text)
	case errors.Is(err, store.ErrRange):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, timestamp.ErrColumn):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.WithError(err).Error("timestamp store failure")
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) writePlayerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, looper.ErrNotReady), errors.Is(err, looper.ErrNoDuration):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.log.WithError(err).Error("player command failed")
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
