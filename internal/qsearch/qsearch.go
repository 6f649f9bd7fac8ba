// Package qsearch implements the quiescence driver (C4): a capture-only
// alpha-beta search that walks a position down to a "quiet" leaf before the
// eval plug-in is asked to score it, so the tuner is not thrown off by a
// position sitting mid-capture. Grounded in GooseEngine's engine/search.go
// quiescence function for overall shape (stand-pat cutoff, capture-only
// move generation, negated recursive call, PV propagation), trimmed of its
// SEE and delta-pruning additions down to plain MVV-LVA ordering.
package qsearch

import (
	"fmt"
	"sort"

	"chess-tuner/internal/boardrep"
	"chess-tuner/internal/evalplugin"
)

// MaxPly bounds recursion depth so a pathological capture chain cannot spin
// forever.
const MaxPly = 32

// Driver runs quiescence search against a single eval plug-in.
type Driver struct {
	plugin evalplugin.Plugin
}

// New returns a quiescence driver backed by plugin.
func New(plugin evalplugin.Plugin) *Driver {
	return &Driver{plugin: plugin}
}

// PV is the sequence of capture moves the search actually followed to reach
// its returned leaf, in play order.
type PV []boardrep.Move

// Result is the outcome of running quiescence search from a position: the
// leaf's static evaluation from the root side's perspective (Score), the
// plug-in result at that leaf (Coefficients, whose own Score is from the
// leaf's side to move), plus the line of captures that led there.
type Result struct {
	Score        float64
	Coefficients evalplugin.Result
	Line         PV
}

// SearchFen runs quiescence search starting from fen. Returns an error if
// fen cannot be parsed (MalformedFen at the caller).
func (d *Driver) SearchFen(fen string) (Result, error) {
	b, err := boardrep.ParseFEN(fen)
	if err != nil {
		return Result{}, fmt.Errorf("qsearch: %w", err)
	}
	score, leaf, line, err := d.search(b, -mate, mate, 0)
	if err != nil {
		return Result{}, err
	}
	return Result{Score: score, Coefficients: leaf, Line: line}, nil
}

const mate = 1_000_000

// search performs a negamax quiescence search and returns the score from the
// side-to-move's perspective, the plug-in result at the leaf it settled on,
// and the capture line it followed.
func (d *Driver) search(b *boardrep.Board, alpha, beta float64, ply int) (float64, evalplugin.Result, PV, error) {
	leaf, err := d.plugin.EvalFen(b.ToFen())
	if err != nil {
		return 0, evalplugin.Result{}, nil, err
	}
	standPat := leaf.Score

	if ply >= MaxPly || standPat >= beta {
		if standPat >= beta {
			return beta, leaf, nil, nil
		}
		return standPat, leaf, nil, nil
	}
	if standPat > alpha {
		alpha = standPat
	}

	captures := b.GenerateCapturesInto(make([]boardrep.Move, 0, 16))
	sort.Slice(captures, func(i, j int) bool {
		return boardrep.MVVLVAScore(captures[i]) > boardrep.MVVLVAScore(captures[j])
	})

	bestLeaf := leaf
	var bestLine PV

	for _, m := range captures {
		ok, st := b.MakeMove(m)
		if !ok {
			// Illegal: the move would leave the mover's own king in check.
			// MakeMove has already restored the board in this case.
			continue
		}
		score, childLeaf, childLine, err := d.search(b, -beta, -alpha, ply+1)
		b.UnmakeMove(m, st)
		if err != nil {
			return 0, evalplugin.Result{}, nil, err
		}
		score = -score

		if score >= beta {
			return beta, childLeaf, append(PV{m}, childLine...), nil
		}
		if score > alpha {
			alpha = score
			bestLeaf = childLeaf
			bestLine = append(PV{m}, childLine...)
		}
	}

	return alpha, bestLeaf, bestLine, nil
}
