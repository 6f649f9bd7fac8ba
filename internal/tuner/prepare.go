package tuner

import (
	"context"

	"golang.org/x/sync/errgroup"

	"chess-tuner/internal/apperr"
	"chess-tuner/internal/boardrep"
	"chess-tuner/internal/coeffs"
	"chess-tuner/internal/dataset"
	"chess-tuner/internal/evalplugin"
	"chess-tuner/internal/qsearch"
)

// Entry is a training example with its coefficients and endgame scale
// already extracted, so every subsequent epoch only has to take a dot
// product against the current parameter vector instead of re-evaluating
// the position from its FEN. Grounded in the reference tuner's own
// CoefficientEntry/Entry split (tuner.cpp), which caches exactly this.
type Entry struct {
	Coefficients coeffs.Sparse
	EndgameScale float64
	Phase        int
	Label        float64

	// AdditionalScore is the residual of the plug-in's reported score that
	// the linear combination of Coefficients cannot express on its own —
	// score minus linear, evaluated once at prepare time against the
	// plug-in's starting parameters. Zero unless the plug-in declares
	// Capabilities.IncludesAdditionalScore.
	AdditionalScore float64
}

// Prepare runs each loaded dataset entry through plugin (optionally through
// qsearch first, per cfg.EnableQsearch) to extract its coefficients, in
// parallel across cfg.Threads goroutines via errgroup — first-error-wins,
// so a single MalformedFen anywhere aborts the whole preparation pass.
// Entries whose side to move is in check are dropped when cfg.FilterInCheck
// is set, matching the plug-in contracts that request it.
func Prepare(ctx context.Context, raw []dataset.Entry, plugin evalplugin.Plugin, cfg Config) ([]Entry, error) {
	out := make([]Entry, len(raw))
	keep := make([]bool, len(raw))

	threads := cfg.Threads
	if threads < 1 {
		threads = 1
	}
	var driver *qsearch.Driver
	if cfg.EnableQsearch {
		driver = qsearch.New(plugin)
	}

	caps := plugin.Capabilities()
	initParams := plugin.InitialParameters()

	g, gctx := errgroup.WithContext(ctx)
	chunk := (len(raw) + threads - 1) / threads
	if chunk < 1 {
		chunk = 1
	}
	for start := 0; start < len(raw); start += chunk {
		start := start
		end := start + chunk
		if end > len(raw) {
			end = len(raw)
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				e := raw[i]
				if cfg.FilterInCheck && e.Board.OurKingInCheck() {
					continue
				}
				var result evalplugin.Result
				if driver != nil {
					searched, err := driver.SearchFen(e.Fen)
					if err != nil {
						return apperr.New(apperr.MalformedFen, e.Fen, err)
					}
					result = searched.Coefficients
					// The search score is already relative to the root's side to move.
					result.Score = searched.Score
				} else {
					r, err := plugin.EvalFen(e.Fen)
					if err != nil {
						return apperr.New(apperr.MalformedFen, e.Fen, err)
					}
					result = r
				}
				phase := e.Board.Phase()
				var additionalScore float64
				if caps.IncludesAdditionalScore {
					linear := linearEval(result.Coefficients, result.EndgameScale, phase, boardrep.MaxPhase, initParams)
					scoreWhite := result.Score
					if !e.WhiteToMove {
						scoreWhite = -scoreWhite
					}
					additionalScore = scoreWhite - linear
					result.AdditionalScore = additionalScore
				}

				out[i] = Entry{
					Coefficients:    result.Coefficients,
					EndgameScale:    result.EndgameScale,
					Phase:           phase,
					Label:           e.Label,
					AdditionalScore: additionalScore,
				}
				keep[i] = true
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	compact := out[:0]
	for i, k := range keep {
		if k {
			compact = append(compact, out[i])
		}
	}
	return compact, nil
}
