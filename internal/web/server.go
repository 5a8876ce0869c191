package web

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"vidloop/internal/looper"
	"vidloop/internal/player"
	"vidloop/internal/store"
)

var validate = validator.New()

var upgrader = websocket.Upgrader{
	// The server binds loopback only; pages served from localhost are
	// the expected clients.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Server exposes the timestamp store and the loop controller over HTTP
// and pushes change events to websocket subscribers.
type Server struct {
	store  *store.Store
	ctrl   *looper.Controller
	player player.Player
	hub    *Hub
	log    *logrus.Logger
}

func NewServer(st *store.Store, ctrl *looper.Controller, p player.Player, hub *Hub, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.New()
	}
	return &Server{
		store:  st,
		ctrl:   ctrl,
		player: p,
		hub:    hub,
		log:    log,
	}
}

// Router creates a chi.Router with our routes.
func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/health", s.handleHealth)
	r.Get("/ws", s.handleWS)

	r.Route("/api", func(r chi.Router) {
		r.Get("/timestamps", s.handleListTimestamps)
		r.Patch("/timestamps/{row}", s.handlePatchTimestamp)
		r.Post("/timestamps/sort", s.handleSortTimestamps)

		r.Post("/player/play", s.handlePlay)
		r.Post("/player/play-pause", s.handlePlayPause)
		r.Post("/player/seek", s.handleSeek)
		r.Post("/player/volume", s.handleVolume)
		r.Post("/player/rate", s.handleRate)
		r.Post("/player/mute", s.handleMute)
		r.Get("/player/status", s.handleStatus)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "vidloop",
	})
}

// GET /ws
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
	s.hub.register <- client

	// New subscribers get the current play state right away so they can
	// paint without waiting for the next transition.
	welcome := Event{Type: EventPlayerState, Payload: stateFrom(s.ctrl.Status())}
	if data, err := json.Marshal(welcome); err == nil {
		client.send <- data
	}

	go client.writePump()
	go client.readPump()
}
