package qsearch

import (
	"testing"

	"chess-tuner/internal/plugins/classic"
)

func TestSearchFenQuietPositionReturnsImmediately(t *testing.T) {
	d := New(classic.New())
	res, err := d.SearchFen("4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("SearchFen: %v", err)
	}
	if len(res.Line) != 0 {
		t.Fatalf("expected no captures to be played in a quiet bare-king position, got line %v", res.Line)
	}
}

func TestSearchFenFollowsHangingCapture(t *testing.T) {
	d := New(classic.New())
	// White queen can take a hanging black rook.
	res, err := d.SearchFen("4k3/8/8/8/8/8/r7/Q3K3 w - - 0 1")
	if err != nil {
		t.Fatalf("SearchFen: %v", err)
	}
	if len(res.Line) == 0 {
		t.Fatalf("expected quiescence to play the winning capture, got an empty line")
	}
}

func TestSearchFenMalformedFen(t *testing.T) {
	d := New(classic.New())
	if _, err := d.SearchFen("not a fen"); err == nil {
		t.Fatalf("expected an error for a malformed FEN")
	}
}
