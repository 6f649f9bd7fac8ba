// Package emit renders a tuned parameter vector as pretty-printed,
// copy-pasteable source text: S(mg, eg) pairs, rounded half-away-from-zero,
// with piece-square tables rebalanced so the printed mean sits at zero and
// the difference is folded into the corresponding material term.
package emit

import (
	"fmt"
	"strings"

	"chess-tuner/internal/model"
	"chess-tuner/internal/numeric"
)

// S renders a tapered pair the way the reference implementation's S(mg, eg)
// macro would, as plain text rather than a packed int32: "S(12, -4)", or the
// bare literal "0" when both components round to zero.
func S(p model.Pair) string {
	mg := numeric.RoundHalfAwayFromZero(p.MG)
	eg := numeric.RoundHalfAwayFromZero(p.EG)
	if mg == 0 && eg == 0 {
		return "0"
	}
	return fmt.Sprintf("S(%d, %d)", mg, eg)
}

// PairArray renders a flat slice of pairs as a named, newline-terminated Go
// array literal fragment, eight entries per line.
func PairArray(name string, pairs []model.Pair) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "var %s = [%d]int32{\n", name, len(pairs))
	for i, p := range pairs {
		if i%8 == 0 {
			sb.WriteString("\t")
		}
		fmt.Fprintf(&sb, "%s, ", S(p))
		if i%8 == 7 || i == len(pairs)-1 {
			sb.WriteString("\n")
		}
	}
	sb.WriteString("}\n")
	return sb.String()
}

// pawnExcludedRank reports whether sq (0..63, a1=0) sits on a rank a pawn
// can never occupy — rank 0 (behind the board) or ranks 6-7 (the last two
// ranks, where a pawn promotes on the move) — matching the reference
// implementation's rebalance_psts pawn-table exclusion.
func pawnExcludedRank(sq int) bool {
	rank := sq / 8
	return rank == 0 || rank == 6 || rank == 7
}

// RebalancePSTs returns a copy of params with each of numPieces consecutive
// 64-entry piece-square tables starting at pstStart recentered to zero mean,
// compensating by adding the removed mean back into that piece's own
// material term (materialSlot[pieceIndex+1], since boardrep.PieceType numbers
// pawn..king as 1..6 and materialSlot[0] is the unused PieceTypeNone slot).
// The pawn table (pieceIndex 0) excludes the squares a pawn can never occupy
// from its mean; every other table is recentered over all 64 squares. A
// piece with no material term (materialSlot[pieceIndex+1] < 0, i.e. the
// king) is still recentered but folds nothing back. Every other term is
// copied unchanged. The optimizer's own working vector is never mutated —
// this only affects the printed output.
func RebalancePSTs(params model.Vector, pstStart, numPieces, materialStart int, materialSlot [7]int) model.Vector {
	out := params.Clone()

	for piece := 0; piece < numPieces; piece++ {
		table := out[pstStart+piece*64 : pstStart+(piece+1)*64]
		excludeRank := piece == 0 // pawn table only

		var sumMG, sumEG float64
		count := 0
		for sq, p := range table {
			if excludeRank && pawnExcludedRank(sq) {
				continue
			}
			sumMG += p.MG
			sumEG += p.EG
			count++
		}
		if count == 0 {
			continue
		}
		meanMG := sumMG / float64(count)
		meanEG := sumEG / float64(count)
		for sq := range table {
			if excludeRank && pawnExcludedRank(sq) {
				continue
			}
			table[sq].MG -= meanMG
			table[sq].EG -= meanEG
		}

		slot := materialSlot[piece+1]
		if slot >= 0 {
			idx := materialStart + slot
			out[idx].MG += meanMG
			out[idx].EG += meanEG
		}
	}
	return out
}
