package emit

import (
	"strings"
	"testing"

	"chess-tuner/internal/model"
)

func TestSFormatsNonZeroPair(t *testing.T) {
	if got := S(model.Pair{MG: 12.4, EG: -3.5}); got != "S(12, -4)" {
		t.Fatalf("S = %q", got)
	}
}

func TestSFormatsZeroAsBareLiteral(t *testing.T) {
	if got := S(model.Pair{MG: 0.4, EG: -0.4}); got != "0" {
		t.Fatalf("S(near zero) = %q, want \"0\"", got)
	}
}

func TestPairArrayIncludesNameAndLength(t *testing.T) {
	pairs := []model.Pair{{MG: 1, EG: 1}, {MG: 2, EG: 2}}
	out := PairArray("Foo", pairs)
	if !strings.Contains(out, "var Foo = [2]int32{") {
		t.Fatalf("PairArray header missing, got %q", out)
	}
	if !strings.Contains(out, "S(1, 1)") || !strings.Contains(out, "S(2, 2)") {
		t.Fatalf("PairArray missing entries, got %q", out)
	}
}

func TestRebalancePSTsRecentersNonExcludedSquares(t *testing.T) {
	pstStart := 0
	materialStart := 64
	var materialSlot = [7]int{-1, 0, 1, 2, 3, 4, -1}

	params := make(model.Vector, 64+5)
	for sq := range params[:64] {
		rank := sq / 8
		if rank == 0 || rank == 6 || rank == 7 {
			params[sq] = model.Pair{MG: 1000, EG: 1000} // excluded, must survive untouched
			continue
		}
		params[sq] = model.Pair{MG: 10, EG: -10}
	}
	params[materialStart] = model.Pair{MG: 88, EG: 111} // pawn material

	out := RebalancePSTs(params, pstStart, 1, materialStart, materialSlot)

	for sq := 0; sq < 64; sq++ {
		rank := sq / 8
		if rank == 0 || rank == 6 || rank == 7 {
			if out[sq] != (model.Pair{MG: 1000, EG: 1000}) {
				t.Fatalf("excluded square %d mutated: %+v", sq, out[sq])
			}
			continue
		}
		if out[sq].MG != 0 || out[sq].EG != 0 {
			t.Fatalf("non-excluded square %d not recentered: %+v", sq, out[sq])
		}
	}

	if out[materialStart].MG != 98 || out[materialStart].EG != 101 {
		t.Fatalf("pawn material not compensated: %+v", out[materialStart])
	}

	if params[8].MG != 10 || params[8].EG != -10 {
		t.Fatalf("RebalancePSTs mutated caller's vector in place: %+v", params[8])
	}
}

func TestRebalancePSTsCoversEveryPieceTable(t *testing.T) {
	pstStart := 0
	numPieces := 6
	materialStart := pstStart + numPieces*64
	var materialSlot = [7]int{-1, 0, 1, 2, 3, 4, -1}

	params := make(model.Vector, numPieces*64+5)
	for piece := 0; piece < numPieces; piece++ {
		for sq := 0; sq < 64; sq++ {
			params[pstStart+piece*64+sq] = model.Pair{MG: float64(piece + 1), EG: float64(-(piece + 1))}
		}
	}
	for i := 0; i < 5; i++ {
		params[materialStart+i] = model.Pair{}
	}

	out := RebalancePSTs(params, pstStart, numPieces, materialStart, materialSlot)

	// Knight (piece index 1, all squares equal) recenters to exactly zero
	// and folds its whole uniform mean into its own material slot, not the
	// pawn's.
	knight := out[pstStart+64 : pstStart+128]
	for sq, p := range knight {
		if p.MG != 0 || p.EG != 0 {
			t.Fatalf("knight square %d not recentered: %+v", sq, p)
		}
	}
	if out[materialStart+1].MG != 2 || out[materialStart+1].EG != -2 {
		t.Fatalf("knight material not compensated: %+v", out[materialStart+1])
	}
	// The pawn slot holds only the pawn table's own mean of 1.
	if out[materialStart].MG != 1 {
		t.Fatalf("knight mean leaked into pawn material: %+v", out[materialStart])
	}

	// King (piece index 5) has no material slot; its table still recenters
	// but nothing is folded anywhere.
	king := out[pstStart+5*64 : pstStart+6*64]
	for sq, p := range king {
		if p.MG != 0 || p.EG != 0 {
			t.Fatalf("king square %d not recentered: %+v", sq, p)
		}
	}
}
