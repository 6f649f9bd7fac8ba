// Package evalplugin defines the contract a concrete chess evaluation
// function must satisfy to be tuned. It generalizes the interface
// GooseEngine's own tuner package used (Eval/Grad/Params/SetParams against a
// dense gradient buffer) to return sparse coefficients instead, matching the
// reference C++ tuner's EvalResult/coefficients_t split.
package evalplugin

import (
	"chess-tuner/internal/coeffs"
	"chess-tuner/internal/model"
)

// Result is what a plug-in returns for one position: the static evaluation
// from the side to move's perspective, the sparse per-term coefficients that
// produced it, and the endgame scale that dampens it in drawish endgames.
type Result struct {
	Score           float64
	Coefficients    coeffs.Sparse
	EndgameScale    float64
	AdditionalScore float64
}

// Capabilities mirrors the compile-time constants the original plug-in
// contracts (toy/toy_tapered/fourku) declared, letting the tuner loop adapt
// its schedule and filters to whichever plug-in is loaded.
type Capabilities struct {
	IncludesAdditionalScore  bool
	SupportsExternalBoard    bool
	RetuneFromZero           bool
	PreferredK               float64
	MaxEpoch                 int
	EnableQsearch            bool
	FilterInCheck            bool
	InitialLearningRate      float64
	LearningRateDropInterval int
	LearningRateDropRatio    float64
}

// Plugin is a concrete, tunable linear evaluation function.
type Plugin interface {
	// Capabilities returns the plug-in's fixed tuning configuration.
	Capabilities() Capabilities

	// InitialParameters returns the starting parameter vector. Its length
	// defines the parameter count every other vector in the run must match.
	InitialParameters() model.Vector

	// EvalFen evaluates a position given only its FEN, returning the score
	// and the sparse coefficients behind it. Returns an error if fen cannot
	// be parsed (surfaced to the caller as MalformedFen).
	EvalFen(fen string) (Result, error)

	// SetParameters installs params as the plug-in's working parameter
	// vector for subsequent EvalFen calls. Coefficient extraction and
	// quiescence search both run once per entry, up front, against whatever
	// parameters are installed at that time; the tuner loop itself never
	// calls EvalFen again once an entry's coefficients are cached.
	SetParameters(params model.Vector)

	// PrintParameters renders params as source-ready text; see internal/emit
	// for the formatting helpers plug-ins delegate to.
	PrintParameters(params model.Vector) string
}
