// Command tuner trains a sparse linear chess evaluation function against a
// set of labeled FEN files using Texel-style gradient descent.
//
// Usage:
//
//	tuner <path1> [limit1] <path2> [limit2] ...
//
// Each path is followed by an optional signed position limit. Exit codes:
// 0 on success, -1 on a missing-argument or unparseable-limit usage error,
// 1 on any load, parse, or evaluation failure.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strconv"

	"chess-tuner/internal/apperr"
	"chess-tuner/internal/dataset"
	"chess-tuner/internal/plugins/classic"
	"chess-tuner/internal/tuner"
)

func main() {
	sources, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		if apperr.As(err, apperr.ArgsMissing) || apperr.As(err, apperr.InvalidLimit) {
			os.Exit(-1)
		}
		os.Exit(1)
	}

	plugin := classic.New()
	cfg := tuner.DefaultConfig()
	cfg.Threads = runtime.NumCPU()
	cfg.MaxEpoch = plugin.Capabilities().MaxEpoch
	cfg.InitialLearningRate = plugin.Capabilities().InitialLearningRate
	cfg.LearningRateDropInterval = plugin.Capabilities().LearningRateDropInterval
	cfg.LearningRateDropRatio = plugin.Capabilities().LearningRateDropRatio
	cfg.EnableQsearch = plugin.Capabilities().EnableQsearch
	cfg.FilterInCheck = plugin.Capabilities().FilterInCheck
	cfg.K = plugin.Capabilities().PreferredK // zero calibrates

	params, err := tuner.Run(context.Background(), sources, plugin, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Println(plugin.PrintParameters(params))
}

// parseArgs turns the positional "<path> [limit]" pairs from argv into
// dataset sources, matching the historical tuner's own command line.
func parseArgs(argv []string) ([]dataset.DataSource, error) {
	if len(argv) == 0 {
		return nil, apperr.New(apperr.ArgsMissing, "args", fmt.Errorf("usage: tuner <path1> [limit1] <path2> [limit2] ..."))
	}

	var sources []dataset.DataSource
	i := 0
	for i < len(argv) {
		path := argv[i]
		i++
		limit := 0
		if i < len(argv) && looksLikeLimit(argv[i]) {
			n, err := strconv.ParseInt(argv[i], 10, 64)
			if err != nil {
				return nil, apperr.New(apperr.InvalidLimit, argv[i], err)
			}
			limit = int(n)
			i++
		}
		sources = append(sources, dataset.DataSource{Path: path, Limit: limit})
	}
	return sources, nil
}

// looksLikeLimit reports whether tok was evidently intended as a numeric
// limit (optional sign followed by at least one digit), as opposed to the
// next source path.
func looksLikeLimit(tok string) bool {
	if tok == "" {
		return false
	}
	i := 0
	if tok[0] == '+' || tok[0] == '-' {
		i++
	}
	if i == len(tok) {
		return false
	}
	for ; i < len(tok); i++ {
		if tok[i] < '0' || tok[i] > '9' {
			return false
		}
	}
	return true
}
