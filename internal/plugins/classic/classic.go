// Package classic is a worked-example evaluation plug-in: material,
// piece-square tables, passed pawns, simple mobility, and the bishop pair.
// It exists to exercise and test the tuner framework, not to play strong
// chess; term selection and initial values are grounded in GooseEngine's
// own engine/evaluation.go, trimmed to a focused subset.
package classic

import (
	"fmt"
	"strings"

	"chess-tuner/internal/boardrep"
	"chess-tuner/internal/coeffs"
	"chess-tuner/internal/emit"
	"chess-tuner/internal/evalplugin"
	"chess-tuner/internal/model"
	"chess-tuner/internal/numeric"
)

// layout consolidates the parameter vector's offsets, in the same spirit as
// GooseEngine's own tuner/phase_offsets.go Layout type, just for a much
// smaller term set.
type layout struct {
	pstStart      int // 6 piece types * 64 squares = 384
	materialStart int // Pawn, Knight, Bishop, Rook, Queen = 5
	mobilityStart int // Knight, Bishop, Rook, Queen = 4
	passedStart   int // 64
	bishopPair    int // 1
	total         int
}

func computeLayout() layout {
	var l layout
	off := 0
	l.pstStart = off
	off += 6 * 64
	l.materialStart = off
	off += 5
	l.mobilityStart = off
	off += 4
	l.passedStart = off
	off += 64
	l.bishopPair = off
	off += 1
	l.total = off
	return l
}

var lay = computeLayout()

// materialSlot and mobilitySlot map a boardrep.PieceType (1..6) to a 0-based material/mobility
// slot; King has no material or mobility term.
var materialSlot = [7]int{-1, 0, 1, 2, 3, 4, -1}
var mobilitySlot = [7]int{-1, -1, 0, 1, 2, 3, -1}

// Plugin is the classic evaluation function.
type Plugin struct {
	params model.Vector
}

// New returns a classic plug-in seeded with its built-in initial parameters.
func New() *Plugin {
	p := &Plugin{}
	p.params = p.InitialParameters()
	return p
}

var _ evalplugin.Plugin = (*Plugin)(nil)

// Capabilities implements evalplugin.Plugin.
func (p *Plugin) Capabilities() evalplugin.Capabilities {
	return evalplugin.Capabilities{
		IncludesAdditionalScore:  false,
		SupportsExternalBoard:    false,
		RetuneFromZero:           false,
		PreferredK:               2.1,
		MaxEpoch:                 5001,
		EnableQsearch:            false,
		FilterInCheck:            true,
		InitialLearningRate:      1,
		LearningRateDropInterval: 10000,
		LearningRateDropRatio:    1,
	}
}

// InitialParameters implements evalplugin.Plugin, seeded from GooseEngine's
// own evaluation.go constants (material, PSQT, passed-pawn PSQT, mobility).
func (p *Plugin) InitialParameters() model.Vector {
	v := make(model.Vector, lay.total)
	for pt := 0; pt < 6; pt++ {
		for sq := 0; sq < 64; sq++ {
			v[lay.pstStart+pt*64+sq] = model.Pair{
				MG: float64(pstMG[pt][sq]),
				EG: float64(pstEG[pt][sq]),
			}
		}
	}
	for i := 0; i < 5; i++ {
		v[lay.materialStart+i] = model.Pair{MG: float64(materialMG[i]), EG: float64(materialEG[i])}
	}
	for i := 0; i < 4; i++ {
		v[lay.mobilityStart+i] = model.Pair{MG: float64(mobilityMG[i]), EG: float64(mobilityEG[i])}
	}
	for sq := 0; sq < 64; sq++ {
		v[lay.passedStart+sq] = model.Pair{MG: float64(passedMG[sq]), EG: float64(passedEG[sq])}
	}
	v[lay.bishopPair] = model.Pair{MG: 20, EG: 40}
	return v
}

// SetParameters implements evalplugin.Plugin.
func (p *Plugin) SetParameters(params model.Vector) {
	if len(params) != lay.total {
		panic("classic: parameter vector length mismatch")
	}
	p.params = params
}

// EvalFen implements evalplugin.Plugin.
func (p *Plugin) EvalFen(fen string) (evalplugin.Result, error) {
	b, err := boardrep.ParseFEN(fen)
	if err != nil {
		return evalplugin.Result{}, fmt.Errorf("classic: %w", err)
	}
	dense := make([]int16, lay.total)
	whitePawns, blackPawns := 0, 0
	whiteBishops, blackBishops := 0, 0

	for sq := boardrep.Square(0); sq < 64; sq++ {
		pc := b.PieceAt(sq)
		if pc == boardrep.NoPiece {
			continue
		}
		pt := int(pc.Type()) - 1 // 0..5
		sign := int16(1)
		pstSq := int(sq)
		if pc.Color() == boardrep.Black {
			sign = -1
			pstSq = int(sq) ^ 56
		}
		dense[lay.pstStart+pt*64+pstSq] += sign

		if slot := materialSlot[pc.Type()]; slot >= 0 {
			dense[lay.materialStart+slot] += sign
		}

		switch pc.Type() {
		case boardrep.PieceTypePawn:
			if pc.Color() == boardrep.White {
				whitePawns++
			} else {
				blackPawns++
			}
			if isPassedPawn(b, sq, pc.Color()) {
				passedSq := int(sq)
				if pc.Color() == boardrep.Black {
					passedSq = int(sq) ^ 56
				}
				dense[lay.passedStart+passedSq] += sign
			}
		case boardrep.PieceTypeBishop:
			if pc.Color() == boardrep.White {
				whiteBishops++
			} else {
				blackBishops++
			}
		}
	}

	if whiteBishops >= 2 {
		dense[lay.bishopPair] += 1
	}
	if blackBishops >= 2 {
		dense[lay.bishopPair] -= 1
	}

	// Mobility counts both sides: b yields the side to move's pseudo-moves,
	// and the same FEN with the side-to-move field flipped yields the other's.
	mobilityBoards := []*boardrep.Board{b}
	fields := strings.Split(fen, " ")
	if fields[1] == "w" {
		fields[1] = "b"
	} else {
		fields[1] = "w"
	}
	if other, err := boardrep.ParseFEN(strings.Join(fields, " ")); err == nil {
		mobilityBoards = append(mobilityBoards, other)
	}
	for _, mb := range mobilityBoards {
		for _, m := range mb.GeneratePseudoMoves() {
			if slot := mobilitySlot[m.MovedPiece().Type()]; slot >= 0 {
				if m.MovedPiece().Color() == boardrep.White {
					dense[lay.mobilityStart+slot] += 1
				} else {
					dense[lay.mobilityStart+slot] -= 1
				}
			}
		}
	}

	phase := b.Phase()

	var mg, eg float64
	for i, c := range dense {
		if c == 0 {
			continue
		}
		term := p.params[i]
		mg += term.MG * float64(c)
		eg += term.EG * float64(c)
	}

	// Endgame scale is driven by the stronger side's own missing pawns, not
	// whichever side merely has fewer on the board: a material-up side that
	// still has all its pawns must not get penalized for its opponent's
	// pawn losses. stronger_colour = score < 0 in fourku.cpp's eval();
	// mg (White-perspective, pre-tapering) is our analogous sign source.
	strongerPawns := whitePawns
	if mg < 0 {
		strongerPawns = blackPawns
	}
	missingPawns := 8 - strongerPawns
	endgameScale := numeric.Clamp(float64(128-missingPawns*missingPawns)/128, 1.0/128, 1.0)

	t := float64(phase) / float64(boardrep.MaxPhase)
	score := mg*t + eg*(1-t)*endgameScale
	if b.SideToMove() == boardrep.Black {
		score = -score
	}

	return evalplugin.Result{
		Score:        score,
		Coefficients: coeffs.FromDense(dense),
		EndgameScale: endgameScale,
	}, nil
}

// PrintParameters implements evalplugin.Plugin.
func (p *Plugin) PrintParameters(params model.Vector) string {
	var sb strings.Builder
	rebalanced := emit.RebalancePSTs(params, lay.pstStart, 6, lay.materialStart, materialSlot)
	fmt.Fprintln(&sb, "// material: pawn, knight, bishop, rook, queen")
	fmt.Fprint(&sb, emit.PairArray("Material", rebalanced[lay.materialStart:lay.materialStart+5]))
	fmt.Fprintln(&sb, "// piece-square tables: pawn, knight, bishop, rook, queen, king")
	for pt := 0; pt < 6; pt++ {
		fmt.Fprint(&sb, emit.PairArray(fmt.Sprintf("PST%d", pt), rebalanced[lay.pstStart+pt*64:lay.pstStart+(pt+1)*64]))
	}
	fmt.Fprintln(&sb, "// mobility: knight, bishop, rook, queen")
	fmt.Fprint(&sb, emit.PairArray("Mobility", rebalanced[lay.mobilityStart:lay.mobilityStart+4]))
	fmt.Fprintln(&sb, "// passed pawn bonus by square")
	fmt.Fprint(&sb, emit.PairArray("PassedPawn", rebalanced[lay.passedStart:lay.passedStart+64]))
	fmt.Fprint(&sb, emit.PairArray("BishopPair", rebalanced[lay.bishopPair:lay.bishopPair+1]))
	return sb.String()
}

// isPassedPawn reports whether the pawn on sq has no enemy pawn able to
// block or capture it on its way to promotion (its file or either adjacent
// file, from its rank to the far edge).
func isPassedPawn(b *boardrep.Board, sq boardrep.Square, side boardrep.Color) bool {
	file := int(sq) % 8
	rank := int(sq) / 8
	loFile, hiFile := file-1, file+1
	if loFile < 0 {
		loFile = 0
	}
	if hiFile > 7 {
		hiFile = 7
	}
	for f := loFile; f <= hiFile; f++ {
		for r := 0; r < 8; r++ {
			ahead := (side == boardrep.White && r > rank) || (side == boardrep.Black && r < rank)
			if !ahead {
				continue
			}
			other := b.PieceAt(boardrep.Square(r*8 + f))
			if other.Type() == boardrep.PieceTypePawn && other.Color() != side {
				return false
			}
		}
	}
	return true
}
