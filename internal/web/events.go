package web

import "vidloop/internal/looper"

// Event is the envelope every websocket frame carries.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Event types pushed to subscribers.
const (
	EventTimestampsChanged    = "timestamps.changed"
	EventTimestampsParseError = "timestamps.parse_error"
	EventPlayerPosition       = "player.position"
	EventPlayerState          = "player.state_changed"
)

type changedPayload struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type parseErrorPayload struct {
	Text    string `json:"text"`
	Message string `json:"message"`
}

type positionPayload struct {
	PositionMS int64 `json:"positionMs"`
	DurationMS int64 `json:"durationMs"`
}

type statePayload struct {
	Phase   string `json:"phase"`
	Playing bool   `json:"playing"`
	Started bool   `json:"started"`
	StartMS int64  `json:"startMs"`
	EndMS   int64  `json:"endMs"`
	Bounded bool   `json:"bounded"`
}

func stateFrom(st looper.Status) statePayload {
	return statePayload{
		Phase:   st.Phase.String(),
		Playing: st.Playing,
		Started: st.Started,
		StartMS: st.StartMS,
		EndMS:   st.EndMS,
		Bounded: st.Bounded,
	}
}

// BindEvents wires the store and controller observers into the hub.
// Every connected client then sees cell edits, rejected edits, the
// moving playhead and play-state transitions as they happen.
func (s *Server) BindEvents() {
	s.store.OnDataChanged(func(row, col int) {
		s.hub.Publish(Event{Type: EventTimestampsChanged, Payload: changedPayload{Row: row, Col: col}})
	})
	s.store.OnParseError(func(text string, err error) {
		s.log.WithError(err).WithField("text", text).Debug("rejected timestamp edit")
		s.hub.Publish(Event{Type: EventTimestampsParseError, Payload: parseErrorPayload{
			Text:    text,
			Message: "Time invalid: " + text,
		}})
	})
	s.ctrl.OnPosition(func(ms int64) {
		duration, err := s.player.Duration()
		if err != nil {
			duration = 0
		}
		s.hub.Publish(Event{Type: EventPlayerPosition, Payload: positionPayload{
			PositionMS: ms,
			DurationMS: duration,
		}})
	})
	s.ctrl.OnStateChanged(func(st looper.Status) {
		s.hub.Publish(Event{Type: EventPlayerState, Payload: stateFrom(st)})
	})
}
