package classic

import (
	"strings"
	"testing"

	"chess-tuner/internal/boardrep"
)

func TestEvalFenStartposIsSymmetric(t *testing.T) {
	p := New()
	result, err := p.EvalFen(boardrep.Startpos)
	if err != nil {
		t.Fatalf("EvalFen: %v", err)
	}
	if result.Score != 0 {
		t.Fatalf("startpos score = %v, want 0 (symmetric position)", result.Score)
	}
	if result.EndgameScale != 1 {
		t.Fatalf("startpos endgame scale = %v, want 1 (no missing pawns)", result.EndgameScale)
	}
}

func TestEvalFenFavorsSideWithExtraQueen(t *testing.T) {
	p := New()
	fen := "4k3/8/8/8/8/8/8/4K2Q w - - 0 1"
	result, err := p.EvalFen(fen)
	if err != nil {
		t.Fatalf("EvalFen: %v", err)
	}
	if result.Score <= 0 {
		t.Fatalf("score with an extra white queen = %v, want > 0", result.Score)
	}
}

func TestEvalFenNegatesForBlackToMove(t *testing.T) {
	p := New()
	white := "4k3/8/8/8/8/8/8/4K2Q w - - 0 1"
	black := "4k3/8/8/8/8/8/8/4K2Q b - - 0 1"

	rw, err := p.EvalFen(white)
	if err != nil {
		t.Fatalf("EvalFen(white): %v", err)
	}
	rb, err := p.EvalFen(black)
	if err != nil {
		t.Fatalf("EvalFen(black): %v", err)
	}
	if rw.Score != -rb.Score {
		t.Fatalf("score not antisymmetric by side to move: white=%v black=%v", rw.Score, rb.Score)
	}
}

func TestEvalFenDetectsBishopPair(t *testing.T) {
	p := New()
	fen := "4k3/8/8/8/8/8/2B1B3/4K3 w - - 0 1"
	result, err := p.EvalFen(fen)
	if err != nil {
		t.Fatalf("EvalFen: %v", err)
	}
	dense := result.Coefficients.Dense(lay.total)
	if dense[lay.bishopPair] != 1 {
		t.Fatalf("bishop pair coefficient = %d, want 1", dense[lay.bishopPair])
	}
}

func TestEvalFenMalformedFen(t *testing.T) {
	p := New()
	if _, err := p.EvalFen("not a fen"); err == nil {
		t.Fatal("expected an error for a malformed FEN")
	}
}

func TestPrintParametersIncludesSections(t *testing.T) {
	p := New()
	out := p.PrintParameters(p.InitialParameters())
	for _, want := range []string{"Material", "PST0", "Mobility", "PassedPawn", "BishopPair"} {
		if !strings.Contains(out, want) {
			t.Fatalf("PrintParameters output missing %q", want)
		}
	}
}

func TestInitialParametersLength(t *testing.T) {
	p := New()
	if got := len(p.InitialParameters()); got != lay.total {
		t.Fatalf("InitialParameters length = %d, want %d", got, lay.total)
	}
}

// mirrorFEN swaps colours, mirrors every square top-to-bottom, and flips
// side to move. Castling and en passant are left at "-" in every test FEN
// this is applied to, so they need no corresponding transform here.
func mirrorFEN(fen string) string {
	fields := strings.Fields(fen)
	ranks := strings.Split(fields[0], "/")
	for i, j := 0, len(ranks)-1; i < j; i, j = i+1, j-1 {
		ranks[i], ranks[j] = ranks[j], ranks[i]
	}
	for i, r := range ranks {
		ranks[i] = strings.Map(func(r rune) rune {
			switch {
			case r >= 'a' && r <= 'z':
				return r - 'a' + 'A'
			case r >= 'A' && r <= 'Z':
				return r - 'A' + 'a'
			default:
				return r
			}
		}, r)
	}
	fields[0] = strings.Join(ranks, "/")
	if fields[1] == "w" {
		fields[1] = "b"
	} else {
		fields[1] = "w"
	}
	return strings.Join(fields, " ")
}

func TestEvalFenCoefficientsAreAntisymmetricUnderMirroring(t *testing.T) {
	p := New()
	fen := "4k3/5ppp/8/2n5/8/8/2B1PPPP/2R1K3 w - - 0 1"
	mirrored := mirrorFEN(fen)

	orig, err := p.EvalFen(fen)
	if err != nil {
		t.Fatalf("EvalFen(fen): %v", err)
	}
	mir, err := p.EvalFen(mirrored)
	if err != nil {
		t.Fatalf("EvalFen(mirrored): %v", err)
	}

	origDense := orig.Coefficients.Dense(lay.total)
	mirDense := mir.Coefficients.Dense(lay.total)
	for i := range origDense {
		if origDense[i] != -mirDense[i] {
			t.Fatalf("coefficient %d not antisymmetric under mirroring: orig=%d mirrored=%d",
				i, origDense[i], mirDense[i])
		}
	}
}
