package boardrep

// Startpos is the FEN of the standard chess starting position.
const Startpos = FENStartPos

// ToFen renders the board back to FEN notation.
func (b *Board) ToFen() string { return b.ToFEN() }

// OurKingInCheck reports whether the side to move has its king in check.
func (b *Board) OurKingInCheck() bool { return b.InCheck(b.sideToMove) }

// IsCapture reports whether the given move captures a piece, including en passant.
func IsCapture(m Move, b *Board) bool {
	toBB := uint64(1) << uint(m.To())
	if toBB&b.AllOccupancy() != 0 {
		return true
	}
	if b.enPassantSquare == NoSquare {
		return false
	}
	fromBB := uint64(1) << uint(m.From())
	white := b.Bitboards(White)
	black := b.Bitboards(Black)
	originIsPawn := fromBB&(white.Pawns|black.Pawns) != 0
	epBB := uint64(1) << uint(b.enPassantSquare)
	return originIsPawn && toBB&epBB != 0
}

// phaseWeight is the standard tapered-eval phase contribution per piece type:
// knight/bishop 1, rook 2, queen 4, giving a maximum game phase of 24.
var phaseWeight = [7]int{0, 0, 1, 1, 2, 4, 0}

// MaxPhase is the game phase value of the starting position.
const MaxPhase = 24

// Phase returns the current game phase in [0, MaxPhase], where MaxPhase is
// the opening and 0 is a bare-king-and-pawns endgame. It is the sum of
// phaseWeight over every piece still on the board, clamped to MaxPhase.
func (b *Board) Phase() int {
	p := 0
	for sq := Square(0); sq < 64; sq++ {
		p += phaseWeight[b.pieces[sq].Type()]
	}
	if p > MaxPhase {
		p = MaxPhase
	}
	return p
}

// mvvLvaValue assigns capture-ordering weight to a piece type, heaviest first.
// Used only for move ordering, never for evaluation.
var mvvLvaValue = [7]int{0, 100, 320, 330, 500, 900, 20000}

// MVVLVAScore scores a capturing move by "most valuable victim, least
// valuable attacker": victim value dominates, attacker value breaks ties.
func MVVLVAScore(m Move) int {
	victim := mvvLvaValue[m.CapturedPiece().Type()]
	attacker := mvvLvaValue[m.MovedPiece().Type()]
	return victim<<16 - attacker
}
