package tuner

import (
	"context"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"chess-tuner/internal/boardrep"
	"chess-tuner/internal/coeffs"
	"chess-tuner/internal/dataset"
	"chess-tuner/internal/model"
	"chess-tuner/internal/plugins/classic"
	"chess-tuner/internal/workerpool"
)

func TestSigmoidRoundTrip(t *testing.T) {
	k := 2.1
	score := 137.0
	p := sigmoid(k, score)
	if p <= 0 || p >= 1 {
		t.Fatalf("sigmoid(%v, %v) = %v, want in (0,1)", k, score, p)
	}
	if got := sigmoid(k, 0); got != 0.5 {
		t.Fatalf("sigmoid(k, 0) = %v, want 0.5", got)
	}
}

func TestScoreOfIsLinearInCoefficients(t *testing.T) {
	params := model.Vector{{MG: 10, EG: 20}, {MG: -5, EG: 5}}
	e := Entry{
		Coefficients: coeffs.Sparse{{Index: 0, Value: 2}, {Index: 1, Value: 1}},
		EndgameScale: 1,
		Phase:        boardrep.MaxPhase, // pure midgame
	}
	got := scoreOf(e, params, boardrep.MaxPhase)
	want := 10*2 + (-5)*1 // pure mg: 20 - 5 = 15
	if got != float64(want) {
		t.Fatalf("scoreOf = %v, want %v", got, want)
	}
}

func TestCalibrateKConverges(t *testing.T) {
	params := model.Vector{{MG: 100, EG: 100}}
	entries := []Entry{
		{Coefficients: coeffs.Sparse{{Index: 0, Value: 1}}, EndgameScale: 1, Phase: boardrep.MaxPhase, Label: 1.0},
		{Coefficients: coeffs.Sparse{{Index: 0, Value: -1}}, EndgameScale: 1, Phase: boardrep.MaxPhase, Label: 0.0},
		{Coefficients: coeffs.Sparse{{Index: 0, Value: 0}}, EndgameScale: 1, Phase: boardrep.MaxPhase, Label: 0.5},
	}
	k := CalibrateK(entries, params, boardrep.MaxPhase, DefaultK)
	if k <= 0 {
		t.Fatalf("calibrated k = %v, want a positive value", k)
	}
	errAtK := meanSquaredError(entries, params, boardrep.MaxPhase, k)
	errAtStart := meanSquaredError(entries, params, boardrep.MaxPhase, DefaultK)
	if errAtK > errAtStart+1e-9 {
		t.Fatalf("calibration made error worse: %v > %v", errAtK, errAtStart)
	}
}

func TestRunReducesLoss(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "games.txt")
	content := "" +
		"8/8/8/8/8/8/8/R3K2k w - - 0 1; 1.0\n" +
		"r3k2R/8/8/8/8/8/8/8 b - - 0 1; 0.0\n" +
		"4k3/8/8/8/8/8/8/4K3 w - - 0 1; 0.5\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	plugin := classic.New()
	cfg := DefaultConfig()
	cfg.Threads = 2
	cfg.MaxEpoch = 20
	cfg.InitialLearningRate = 0.5
	cfg.ReportInterval = 0

	sources := []dataset.DataSource{{Path: path}}

	raw, err := dataset.Load(context.Background(), sources, 2)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	prepared, err := Prepare(context.Background(), raw, plugin, cfg)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	startParams := plugin.InitialParameters()
	lossBefore := meanSquaredError(prepared, startParams, boardrep.MaxPhase, plugin.Capabilities().PreferredK)

	tuned, err := Run(context.Background(), sources, plugin, cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(tuned) != len(startParams) {
		t.Fatalf("tuned vector length = %d, want %d", len(tuned), len(startParams))
	}
	lossAfter := meanSquaredError(prepared, tuned, boardrep.MaxPhase, plugin.Capabilities().PreferredK)
	if lossAfter > lossBefore {
		t.Fatalf("loss increased: before=%v after=%v", lossBefore, lossAfter)
	}
}

// syntheticEntries builds a small dataset of random sparse coefficient
// traces over n terms, the shape computeGradient's and meanSquaredError's
// numerical-vs-analytic comparison needs without touching boardrep at all.
func syntheticEntries(rng *rand.Rand, n, count int) []Entry {
	entries := make([]Entry, count)
	for i := range entries {
		terms := 1 + rng.Intn(3)
		sparse := make(coeffs.Sparse, 0, terms)
		seen := map[uint16]bool{}
		for len(sparse) < terms {
			idx := uint16(rng.Intn(n))
			if seen[idx] {
				continue
			}
			seen[idx] = true
			sparse = append(sparse, coeffs.Coefficient{Index: idx, Value: int16(rng.Intn(5) - 2)})
		}
		entries[i] = Entry{
			Coefficients: sparse,
			EndgameScale: 0.5 + rng.Float64()*0.5,
			Phase:        rng.Intn(boardrep.MaxPhase + 1),
			Label:        rng.Float64(),
		}
	}
	return entries
}

// TestComputeGradientMatchesNumericGradient is spec.md §8 invariant 5:
// the analytic gradient computeGradient reports must agree with a
// central-difference numerical estimate to relative error < 1e-3.
func TestComputeGradientMatchesNumericGradient(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	const n = 6
	entries := syntheticEntries(rng, n, 40)

	params := make(model.Vector, n)
	for i := range params {
		params[i] = model.Pair{MG: rng.Float64()*200 - 100, EG: rng.Float64()*200 - 100}
	}

	const k = 1.8
	pool := workerpool.Start(1)
	defer pool.Stop()

	grad, err := computeGradient(pool, entries, params, k, boardrep.MaxPhase, 1)
	if err != nil {
		t.Fatalf("computeGradient: %v", err)
	}

	const h = 1e-4
	for i := 0; i < n; i++ {
		for _, field := range []struct {
			name string
			get  func(*model.Pair) *float64
			slot int
		}{
			{"mg", func(p *model.Pair) *float64 { return &p.MG }, 2 * i},
			{"eg", func(p *model.Pair) *float64 { return &p.EG }, 2*i + 1},
		} {
			plus := params.Clone()
			*field.get(&plus[i]) += h
			minus := params.Clone()
			*field.get(&minus[i]) -= h

			numeric := (meanSquaredError(entries, plus, boardrep.MaxPhase, k) -
				meanSquaredError(entries, minus, boardrep.MaxPhase, k)) / (2 * h)
			analytic := grad[field.slot]

			denom := math.Max(math.Abs(numeric), 1e-9)
			if relErr := math.Abs(numeric-analytic) / denom; relErr > 1e-3 {
				t.Fatalf("term %d %s: analytic=%v numeric=%v relErr=%v", i, field.name, analytic, numeric, relErr)
			}
		}
	}
}

// TestRunIsDeterministic is spec.md §8 invariant 7: given a fixed dataset
// and thread count, two runs must agree to at least 10 decimal places in
// the final tuned vector; across different thread counts, to at least 6.
func TestRunIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "games.txt")
	content := "" +
		"8/8/8/8/8/8/8/R3K2k w - - 0 1; 1.0\n" +
		"r3k2R/8/8/8/8/8/8/8 b - - 0 1; 0.0\n" +
		"4k3/8/8/8/8/8/8/4K3 w - - 0 1; 0.5\n" +
		"8/8/4k3/8/8/4K3/4P3/8 w - - 0 1; 0.8\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	sources := []dataset.DataSource{{Path: path}}

	runWith := func(threads int) model.Vector {
		plugin := classic.New()
		cfg := DefaultConfig()
		cfg.Threads = threads
		cfg.MaxEpoch = 10
		cfg.InitialLearningRate = 0.5
		cfg.ReportInterval = 0
		tuned, err := Run(context.Background(), sources, plugin, cfg)
		if err != nil {
			t.Fatalf("Run(threads=%d): %v", threads, err)
		}
		return tuned
	}

	sameA := runWith(2)
	sameB := runWith(2)
	if len(sameA) != len(sameB) {
		t.Fatalf("length mismatch between same-thread-count runs")
	}
	for i := range sameA {
		if math.Abs(sameA[i].MG-sameB[i].MG) > 1e-10 || math.Abs(sameA[i].EG-sameB[i].EG) > 1e-10 {
			t.Fatalf("term %d disagrees beyond 1e-10 across repeated threads=2 runs: %+v vs %+v", i, sameA[i], sameB[i])
		}
	}

	diffThreads := runWith(4)
	if len(diffThreads) != len(sameA) {
		t.Fatalf("length mismatch across thread counts")
	}
	for i := range sameA {
		if math.Abs(sameA[i].MG-diffThreads[i].MG) > 1e-6 || math.Abs(sameA[i].EG-diffThreads[i].EG) > 1e-6 {
			t.Fatalf("term %d disagrees beyond 1e-6 across threads=2 vs threads=4: %+v vs %+v", i, sameA[i], diffThreads[i])
		}
	}
}
