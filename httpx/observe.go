package httpx

import "dqx0.com/go/routex/internal/obs"

// Observability hooks. Server.Logger and Server.Meter accept any
// implementation; these aliases expose the built-in ones.
type (
	Logger    = obs.Logger
	Meter     = obs.Meter
	Level     = obs.Level
	Label     = obs.Label
	StdLogger = obs.StdLogger
	NopLogger = obs.NopLogger
	NopMeter  = obs.NopMeter
	MemMeter  = obs.MemMeter
)

const (
	LevelDebug = obs.Debug
	LevelInfo  = obs.Info
	LevelWarn  = obs.Warn
	LevelError = obs.Error
)

func ParseLevel(s string) (Level, error) { return obs.ParseLevel(s) }

func NewMemMeter() *MemMeter { return obs.NewMemMeter() }
