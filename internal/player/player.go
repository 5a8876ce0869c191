package player

// Player is the control surface the loop controller needs from a media
// engine. Implementations talk to an external player process; commands
// are fire-and-forget and state is read back through the query methods.
type Player interface {
	Load(path string) error
	// Duration returns the media length in milliseconds, 0 while the
	// player has not determined it yet.
	Duration() (int64, error)
	Position() (int64, error)
	Seek(ms int64) error
	Play() error
	Pause() error
	Playing() (bool, error)
	Rate() (float64, error)
	SetRate(rate float64) error
	Volume() (int, error)
	SetVolume(volume int) error
	Muted() (bool, error)
	SetMuted(muted bool) error
	Close() error
}
