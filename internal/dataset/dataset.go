// Package dataset implements the data loader (C5): reading one or more
// FEN+WDL-label files into in-memory training entries, parsed in parallel.
// Strict parsing follows the reference C++ tuner's get_fen_wdl (one
// recognized WDL marker per line, separated from the FEN by "; "); a
// Lenient mode additionally accepts GooseEngine's own looser CSV/TSV-with-
// bracketed-label format (tuner/data.go's LoadDataset), for data files that
// were never produced with the strict separator.
package dataset

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"chess-tuner/internal/apperr"
	"chess-tuner/internal/boardrep"
)

// DataSource names one input file and an optional cap on how many of its
// positions to load (0 or negative means unlimited).
type DataSource struct {
	Path    string
	Limit   int
	Lenient bool

	// SideToMoveWdl marks files whose label is expressed from the root
	// FEN's side to move rather than always from White's: when set, Load
	// flips a line's label (wdl <- 1-wdl) whenever that line's root
	// position has Black to move, so every Entry.Label this package
	// produces is White-perspective regardless of the source file's own
	// convention.
	SideToMoveWdl bool
}

// Entry is one training example: a parsed position and its game-result
// label in [0, 1] (1.0 = white win, 0.5 = draw, 0.0 = black win), already
// normalized to White's perspective per DataSource.SideToMoveWdl.
type Entry struct {
	Fen         string
	Board       boardrep.Board
	Label       float64
	WhiteToMove bool
}

// debugEntryFen is always prepended to a loaded dataset, matching the
// reference implementation's Tuner::run, which seeds the run with the
// starting position minus Black's queen and White's f1 bishop, labeled a
// win for White.
const debugEntryFen = "rnb1kbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQK1NR w KQkq - 0 1"

// Load reads every source in order (serial, preserving file order for
// reproducibility) and parses their lines in parallel across workers
// goroutines. A debug entry is prepended ahead of everything else.
func Load(ctx context.Context, sources []DataSource, workers int) ([]Entry, error) {
	if workers < 1 {
		workers = 1
	}
	debug, err := parseStrictLine(debugEntryFen+"; 1.0", "<debug entry>", 0, false)
	if err != nil {
		return nil, err
	}
	entries := []Entry{debug}

	for _, src := range sources {
		lines, err := readLines(src)
		if err != nil {
			return nil, err
		}
		parsed, err := parseLinesParallel(ctx, lines, src, workers)
		if err != nil {
			return nil, err
		}
		entries = append(entries, parsed...)
	}
	return entries, nil
}

func readLines(src DataSource) ([]string, error) {
	f, err := os.Open(src.Path)
	if err != nil {
		return nil, apperr.New(apperr.FileOpen, src.Path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if src.Limit > 0 && len(lines) >= src.Limit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, apperr.New(apperr.FileOpen, src.Path, err)
	}
	return lines, nil
}

// parseLinesParallel parses lines across workers goroutines, preserving the
// original line order in the result, and stops at the first parse error
// (first-error-wins, via errgroup's context cancellation).
func parseLinesParallel(ctx context.Context, lines []string, src DataSource, workers int) ([]Entry, error) {
	out := make([]Entry, len(lines))
	g, gctx := errgroup.WithContext(ctx)
	chunk := (len(lines) + workers - 1) / workers
	if chunk < 1 {
		chunk = 1
	}
	for start := 0; start < len(lines); start += chunk {
		start := start
		end := start + chunk
		if end > len(lines) {
			end = len(lines)
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				var e Entry
				var err error
				if src.Lenient {
					e, err = parseLenientLine(lines[i], src.Path, i+1, src.SideToMoveWdl)
				} else {
					e, err = parseStrictLine(lines[i], src.Path, i+1, src.SideToMoveWdl)
				}
				if err != nil {
					return err
				}
				out[i] = e
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// wdlMarkers is the recognized set of WDL labels, matching the reference
// tuner's WdlMarker set plus GooseEngine's own decimal/PGN-result spellings.
var wdlMarkers = map[string]float64{
	"1.0":     1.0,
	"0.5":     0.5,
	"0.0":     0.0,
	"1-0":     1.0,
	"0-1":     0.0,
	"1/2-1/2": 0.5,
	"1/2":     0.5,
}

// parseStrictLine implements spec.md §4.4: the FEN runs up to the first
// ";", and every whitespace token after it is checked against wdlMarkers or,
// failing that, parsed as a bare decimal (the reference tuner's get_fen_wdl
// only checks the fixed marker list, via repeated fen.find(marker); this
// extends that with the literal decimal fallback spec.md §4.4 also
// describes). Splitting on the first "; " rather than the last means a
// stray second "; <value>" suffix is scanned as a second label candidate
// rather than silently swallowed into the FEN. Exactly one candidate must be
// found on the line. When flipWdl is set, the label is flipped to White's
// perspective if the root FEN has Black to move.
func parseStrictLine(line, path string, lineNo int, flipWdl bool) (Entry, error) {
	ctx := fmt.Sprintf("%s:%d", path, lineNo)
	sep := strings.Index(line, ";")
	if sep < 0 {
		return Entry{}, apperr.New(apperr.WdlMissing, ctx, nil)
	}
	fen := strings.TrimSpace(line[:sep])
	labelField := line[sep+1:]

	found := 0
	var label float64
	for _, tok := range strings.Fields(labelField) {
		if v, ok := wdlCandidate(tok); ok {
			found++
			label = v
		}
	}
	if found == 0 {
		return Entry{}, apperr.New(apperr.WdlMissing, ctx, nil)
	}
	if found > 1 {
		return Entry{}, apperr.New(apperr.WdlAmbiguous, ctx, nil)
	}
	if label < 0 || label > 1 {
		return Entry{}, apperr.New(apperr.WdlMissing, ctx, fmt.Errorf("label out of [0,1]: %v", label))
	}

	b, err := boardrep.ParseFEN(fen)
	if err != nil {
		return Entry{}, apperr.New(apperr.MalformedFen, ctx, err)
	}
	whiteToMove := b.SideToMove() == boardrep.White
	if flipWdl && !whiteToMove {
		label = 1 - label
	}
	return Entry{Fen: fen, Board: *b, Label: label, WhiteToMove: whiteToMove}, nil
}

// parseLenientLine accepts GooseEngine's own looser formats: "fen,label",
// "fen\tlabel", or a single field with a trailing "[label]" or bare trailing
// token, silently tolerant of PGN-style results as well as decimals. When
// flipWdl is set, the label is flipped to White's perspective if the root
// FEN has Black to move.
func parseLenientLine(line, path string, lineNo int, flipWdl bool) (Entry, error) {
	ctx := fmt.Sprintf("%s:%d", path, lineNo)
	var fen, lab string

	switch {
	case strings.ContainsRune(line, ','):
		parts := strings.SplitN(line, ",", 2)
		fen, lab = strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	case strings.ContainsRune(line, '\t'):
		parts := strings.SplitN(line, "\t", 2)
		fen, lab = strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	default:
		li := strings.LastIndex(line, "[")
		rj := strings.LastIndex(line, "]")
		if li >= 0 && rj > li {
			fen, lab = strings.TrimSpace(line[:li]), strings.TrimSpace(line[li+1:rj])
		} else {
			fields := strings.Fields(line)
			if len(fields) < 7 {
				return Entry{}, apperr.New(apperr.WdlMissing, ctx, nil)
			}
			fen = strings.Join(fields[:6], " ")
			lab = fields[len(fields)-1]
		}
	}

	label, err := parseLabel(lab)
	if err != nil {
		return Entry{}, apperr.New(apperr.WdlMissing, ctx, err)
	}
	b, err := boardrep.ParseFEN(fen)
	if err != nil {
		return Entry{}, apperr.New(apperr.MalformedFen, ctx, err)
	}
	whiteToMove := b.SideToMove() == boardrep.White
	if flipWdl && !whiteToMove {
		label = 1 - label
	}
	return Entry{Fen: fen, Board: *b, Label: label, WhiteToMove: whiteToMove}, nil
}

// wdlCandidate reports whether tok (trimmed of stray punctuation a
// semicolon-joined label list leaves attached) looks like a WDL label at
// all: either an exact wdlMarkers spelling, or anything strconv.ParseFloat
// accepts. Range validation is deliberately left to the caller — strict
// parsing needs to count an out-of-range decimal as a second label
// candidate (and so flag the line as ambiguous) before rejecting it.
func wdlCandidate(tok string) (float64, bool) {
	tok = strings.Trim(tok, ";,")
	if tok == "" {
		return 0, false
	}
	if v, ok := wdlMarkers[tok]; ok {
		return v, true
	}
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func parseLabel(s string) (float64, error) {
	f, ok := wdlCandidate(s)
	if !ok {
		return 0, fmt.Errorf("cannot parse label: %q", s)
	}
	if f < 0 || f > 1 {
		return 0, fmt.Errorf("label out of [0,1]: %v", f)
	}
	return f, nil
}
