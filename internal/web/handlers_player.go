package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

type playRequest struct {
	Row *int `json:"row"`
}

type seekRequest struct {
	PositionMS *int64 `json:"positionMs" validate:"required"`
}

type volumeRequest struct {
	Value *int `json:"value"`
	Delta *int `json:"delta"`
}

type rateRequest struct {
	Delta *float64 `json:"delta" validate:"required"`
}

type statusResponse struct {
	Phase      string  `json:"phase"`
	Playing    bool    `json:"playing"`
	Started    bool    `json:"started"`
	PositionMS int64   `json:"positionMs"`
	DurationMS int64   `json:"durationMs"`
	StartMS    int64   `json:"startMs"`
	EndMS      int64   `json:"endMs"`
	Bounded    bool    `json:"bounded"`
	Volume     int     `json:"volume"`
	Rate       float64 `json:"rate"`
	Muted      bool    `json:"muted"`
}

// statusNow merges the controller view with whatever the player will
// report. Properties the player cannot answer stay at their zero value;
// status is advisory, not a transaction.
func (s *Server) statusNow() statusResponse {
	st := s.ctrl.Status()
	resp := statusResponse{
		Phase:   st.Phase.String(),
		Playing: st.Playing,
		Started: st.Started,
		StartMS: st.StartMS,
		EndMS:   st.EndMS,
		Bounded: st.Bounded,
	}
	if v, err := s.player.Position(); err == nil {
		resp.PositionMS = v
	}
	if v, err := s.player.Duration(); err == nil {
		resp.DurationMS = v
	}
	if v, err := s.player.Volume(); err == nil {
		resp.Volume = v
	}
	if v, err := s.player.Rate(); err == nil {
		resp.Rate = v
	}
	if v, err := s.player.Muted(); err == nil {
		resp.Muted = v
	}
	return resp
}

// GET /api/player/status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.statusNow())
}

// POST /api/player/play
// With a row: arm the loop over that row's interval. Without: start
// free playback from the top.
func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	var payload playRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if payload.Row == nil {
		if err := s.ctrl.StartFree(); err != nil {
			s.writePlayerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.statusNow())
		return
	}

	iv, err := s.store.Interval(*payload.Row)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	duration, err := s.player.Duration()
	if err != nil {
		s.writePlayerError(w, err)
		return
	}
	if err := s.ctrl.Arm(iv, duration); err != nil {
		s.writePlayerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.statusNow())
}

// POST /api/player/play-pause
func (s *Server) handlePlayPause(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.PlayPause(); err != nil {
		s.writePlayerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.statusNow())
}

// POST /api/player/seek
func (s *Server) handleSeek(w http.ResponseWriter, r *http.Request) {
	var payload seekRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.ctrl.SetPosition(*payload.PositionMS); err != nil {
		s.writePlayerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.statusNow())
}

// POST /api/player/volume
// Body carries either an absolute value or a delta.
func (s *Server) handleVolume(w http.ResponseWriter, r *http.Request) {
	var payload volumeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var applied int
	var err error
	switch {
	case payload.Value != nil:
		applied, err = s.ctrl.SetVolume(*payload.Value)
	case payload.Delta != nil:
		applied, err = s.ctrl.AdjustVolume(*payload.Delta)
	default:
		writeError(w, http.StatusBadRequest, "value or delta required")
		return
	}
	if err != nil {
		s.writePlayerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"volume": applied})
}

// POST /api/player/rate
func (s *Server) handleRate(w http.ResponseWriter, r *http.Request) {
	var payload rateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	applied, err := s.ctrl.AdjustRate(*payload.Delta)
	if err != nil {
		s.writePlayerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"rate": applied})
}

// POST /api/player/mute
func (s *Server) handleMute(w http.ResponseWriter, r *http.Request) {
	muted, err := s.ctrl.ToggleMute()
	if err != nil {
		s.writePlayerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"muted": muted})
}
