package boardrep

import "testing"

func TestFENAndValidate(t *testing.T) {
	b, err := ParseFEN(FENStartPos)
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	if !b.Validate() {
		t.Fatalf("board invariants invalid after FEN parse")
	}
	if b.PieceAt(0) != WhiteRook {
		t.Errorf("expected a1 WhiteRook, got %v", b.PieceAt(0))
	}
	if b.PieceAt(4) != WhiteKing {
		t.Errorf("expected e1 WhiteKing, got %v", b.PieceAt(4))
	}
	if b.PieceAt(56) != BlackRook {
		t.Errorf("expected a8 BlackRook, got %v", b.PieceAt(56))
	}
	if b.PieceAt(60) != BlackKing {
		t.Errorf("expected e8 BlackKing, got %v", b.PieceAt(60))
	}
	if got := b.Phase(); got != MaxPhase {
		t.Errorf("starting phase = %d, want %d", got, MaxPhase)
	}
}

func TestRoundTripFEN(t *testing.T) {
	fens := []string{
		FENStartPos,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	}
	for _, fen := range fens {
		b, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}
		if got := b.ToFEN(); got != fen {
			t.Errorf("round trip: got %q want %q", got, fen)
		}
	}
}

func TestMakeUnmakeNormalMove(t *testing.T) {
	b, err := ParseFEN(FENStartPos)
	if err != nil {
		t.Fatal(err)
	}
	startFEN := b.ToFEN()
	startZ := b.ComputeZobrist()

	from := Square(1*8 + 4)
	to := Square(3*8 + 4)
	m := NewMove(from, to, WhitePawn, NoPiece, NoPiece, FlagNone)
	ok, st := b.MakeMove(m)
	if !ok {
		t.Fatalf("MakeMove failed for normal move")
	}
	if !b.Validate() {
		t.Fatalf("board invalid after MakeMove")
	}

	b.UnmakeMove(m, st)
	if !b.Validate() {
		t.Fatalf("board invalid after UnmakeMove")
	}
	if b.ToFEN() != startFEN {
		t.Fatalf("FEN mismatch after unmake: got %q want %q", b.ToFEN(), startFEN)
	}
	if b.ComputeZobrist() != startZ {
		t.Fatalf("zobrist mismatch after unmake")
	}
}

func TestMakeUnmakeCapture(t *testing.T) {
	b, err := ParseFEN("8/7r/8/8/8/8/8/R3K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	startZ := b.ComputeZobrist()
	from := Square(0)
	to := Square(6*8 + 7)
	m := NewMove(from, to, WhiteRook, BlackRook, NoPiece, FlagNone)
	ok, st := b.MakeMove(m)
	if !ok {
		t.Fatalf("MakeMove failed for capture move")
	}
	if !b.Validate() {
		t.Fatalf("board invalid after capture MakeMove")
	}
	b.UnmakeMove(m, st)
	if !b.Validate() {
		t.Fatalf("board invalid after capture UnmakeMove")
	}
	if b.ComputeZobrist() != startZ {
		t.Fatalf("zobrist mismatch after capture unmake")
	}
}

func TestPerftInitialPosition(t *testing.T) {
	board, err := ParseFEN(FENStartPos)
	if err != nil {
		t.Fatalf("ParseFEN failed for initial position: %v", err)
	}
	if got := Perft(board, 1); got != 20 {
		t.Fatalf("perft depth1: got %d want %d", got, 20)
	}
	if got := Perft(board, 2); got != 400 {
		t.Fatalf("perft depth2: got %d want %d", got, 400)
	}
	if got := Perft(board, 3); got != 8902 {
		t.Fatalf("perft depth3: got %d want %d", got, 8902)
	}
}

func TestPerftKiwipete(t *testing.T) {
	fen := "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"
	board, err := ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN failed for Kiwipete position: %v", err)
	}
	if got := Perft(board, 1); got != 48 {
		t.Fatalf("perft depth1: got %d want %d", got, 48)
	}
	if got := Perft(board, 2); got != 2039 {
		t.Fatalf("perft depth2: got %d want %d", got, 2039)
	}
}

func TestIsCaptureIncludesEnPassant(t *testing.T) {
	b, err := ParseFEN("k7/8/8/3pP3/8/8/8/7K w - d6 0 2")
	if err != nil {
		t.Fatal(err)
	}
	from := Square(4*8 + 4) // e5
	to := Square(5*8 + 3)   // d6
	m := NewMove(from, to, WhitePawn, NoPiece, NoPiece, FlagEnPassant)
	if !IsCapture(m, b) {
		t.Fatalf("expected en passant move to be reported as a capture")
	}
}

func TestMVVLVAOrdersVictimAboveAttacker(t *testing.T) {
	queenTakesPawn := NewMove(0, 1, WhiteQueen, BlackPawn, NoPiece, FlagNone)
	pawnTakesQueen := NewMove(0, 1, WhitePawn, BlackQueen, NoPiece, FlagNone)
	if MVVLVAScore(pawnTakesQueen) <= MVVLVAScore(queenTakesPawn) {
		t.Fatalf("pawn-takes-queen (%d) should outrank queen-takes-pawn (%d)",
			MVVLVAScore(pawnTakesQueen), MVVLVAScore(queenTakesPawn))
	}
}

func TestPhaseDecreasesAsMaterialIsRemoved(t *testing.T) {
	full, _ := ParseFEN(FENStartPos)
	bare, _ := ParseFEN("4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	if full.Phase() <= bare.Phase() {
		t.Fatalf("full-material phase (%d) should exceed bare-kings phase (%d)", full.Phase(), bare.Phase())
	}
	if bare.Phase() != 0 {
		t.Fatalf("bare-kings phase = %d, want 0", bare.Phase())
	}
}
