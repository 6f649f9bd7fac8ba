package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"chess-tuner/internal/apperr"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadPrependsDebugEntry(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1; 0.5\n")

	entries, err := Load(context.Background(), []DataSource{{Path: path}}, 2)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].Label != 1.0 {
		t.Fatalf("debug entry label = %v, want 1.0", entries[0].Label)
	}
}

func TestLoadStrictMissingMarker(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1; nope\n")

	_, err := Load(context.Background(), []DataSource{{Path: path}}, 2)
	if !apperr.As(err, apperr.WdlMissing) {
		t.Fatalf("err = %v, want WdlMissing", err)
	}
}

func TestLoadStrictAmbiguousMarker(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1; 1.0 0.0\n")

	_, err := Load(context.Background(), []DataSource{{Path: path}}, 2)
	if !apperr.As(err, apperr.WdlAmbiguous) {
		t.Fatalf("err = %v, want WdlAmbiguous", err)
	}
}

func TestLoadStrictAmbiguousMarkerAcrossMultipleSemicolons(t *testing.T) {
	dir := t.TempDir()
	// A second, unrelated "; 2.0" suffix must not be silently swallowed
	// into the FEN by splitting on the last semicolon instead of the first.
	path := writeFile(t, dir, "a.txt", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1; 1.0; 2.0\n")

	_, err := Load(context.Background(), []DataSource{{Path: path}}, 2)
	if !apperr.As(err, apperr.WdlAmbiguous) {
		t.Fatalf("err = %v, want WdlAmbiguous", err)
	}
}

func TestLoadStrictAcceptsBareDecimalOutsideFixedMarkerSet(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1; 0.73\n")

	entries, err := Load(context.Background(), []DataSource{{Path: path}}, 2)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if entries[1].Label != 0.73 {
		t.Fatalf("Label = %v, want 0.73", entries[1].Label)
	}
}

func TestLoadStrictMalformedFen(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "not-a-fen; 1.0\n")

	_, err := Load(context.Background(), []DataSource{{Path: path}}, 2)
	if !apperr.As(err, apperr.MalformedFen) {
		t.Fatalf("err = %v, want MalformedFen", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), []DataSource{{Path: "/no/such/file.txt"}}, 2)
	if !apperr.As(err, apperr.FileOpen) {
		t.Fatalf("err = %v, want FileOpen", err)
	}
}

func TestLoadLenientBracketedLabel(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.csv", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1 [0.5]\n")

	entries, err := Load(context.Background(), []DataSource{{Path: path, Lenient: true}}, 2)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(entries) != 2 || entries[1].Label != 0.5 {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestLoadSideToMoveWdlFlipsBlackToMoveLabels(t *testing.T) {
	dir := t.TempDir()
	// Black to move, labeled a win for the side to move (Black); with
	// SideToMoveWdl set this must come out as 0.0 (a White loss).
	path := writeFile(t, dir, "a.txt", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR b KQkq - 0 1; 1.0\n")

	entries, err := Load(context.Background(), []DataSource{{Path: path, SideToMoveWdl: true}}, 2)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	got := entries[1]
	if got.WhiteToMove {
		t.Fatalf("WhiteToMove = true, want false for a Black-to-move root FEN")
	}
	if got.Label != 0.0 {
		t.Fatalf("Label = %v, want 0.0 (flipped to White's perspective)", got.Label)
	}
}

func TestLoadWithoutSideToMoveWdlLeavesLabelUnflipped(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR b KQkq - 0 1; 1.0\n")

	entries, err := Load(context.Background(), []DataSource{{Path: path}}, 2)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if entries[1].Label != 1.0 {
		t.Fatalf("Label = %v, want 1.0 (unflipped, already White-perspective)", entries[1].Label)
	}
}

func TestLoadRespectsLimit(t *testing.T) {
	dir := t.TempDir()
	var content string
	for i := 0; i < 10; i++ {
		content += "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1; 0.5\n"
	}
	path := writeFile(t, dir, "a.txt", content)

	entries, err := Load(context.Background(), []DataSource{{Path: path, Limit: 3}}, 4)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(entries) != 4 { // 1 debug entry + 3 limited
		t.Fatalf("len(entries) = %d, want 4", len(entries))
	}
}
