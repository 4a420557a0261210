package adaptive

import "math/rand/v2"

// Engine is the adaptive assessment decision module. It keeps no state
// between calls: every operation takes its inputs and returns new values.
// An Engine is safe for concurrent use when its random source is.
type Engine struct {
	params Params
	intn   func(n int) int
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand makes the engine draw random selections from r. *rand.Rand is
// not safe for concurrent use; share such an engine only within one
// goroutine.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) {
		e.intn = r.IntN
	}
}

// NewEngine creates an engine with the given parameters.
func NewEngine(params Params, opts ...Option) *Engine {
	e := &Engine{
		params: params,
		intn:   rand.IntN,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Params returns the engine's tuning constants.
func (e *Engine) Params() Params {
	return e.params
}
