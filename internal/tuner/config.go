package tuner

// Config collects every tunable knob for a training run: thread counts,
// the Adam hyperparameters, the learning-rate schedule, and the
// quiescence/in-check filters a plug-in may request. A zero Config is not
// meaningful; start from DefaultConfig and overlay the plug-in's
// Capabilities onto it, as cmd/tuner does.
type Config struct {
	Threads int

	// K is the logistic scaling constant; zero means auto-calibrate via
	// CalibrateK before training starts.
	K float64

	MaxEpoch                 int
	ReportInterval           int
	InitialLearningRate      float64
	LearningRateDropInterval int
	LearningRateDropRatio    float64

	Beta1 float64
	Beta2 float64
	Eps   float64

	EnableQsearch bool
	FilterInCheck bool
}

// DefaultK is the canonical K-calibration starting point, used when a
// plug-in declares no PreferredK of its own.
const DefaultK = 2.5

// DefaultConfig returns a Config with the reference tuner's standard Adam
// hyperparameters and reporting cadence, left for the caller to overlay
// plug-in capabilities and CLI flags onto.
func DefaultConfig() Config {
	return Config{
		Threads:        1,
		MaxEpoch:        5001,
		ReportInterval:  100,
		Beta1:           0.9,
		Beta2:           0.999,
		Eps:             1e-8,
	}
}
