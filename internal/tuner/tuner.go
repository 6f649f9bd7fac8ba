// Package tuner implements the tuner loop (C7): K-calibration, then Adam
// gradient descent against mean squared sigmoid error, with periodic
// reporting and a learning-rate drop schedule. Grounded in GooseEngine's
// own tuner/tuner.go and tuner/train.go for the epoch loop's overall shape
// and reporting cadence, and in the reference implementation's tuner.cpp
// for the exact K-calibration and Adam-without-bias-correction formulas.
package tuner

import (
	"context"
	"fmt"
	"log"
	"time"

	"chess-tuner/internal/apperr"
	"chess-tuner/internal/boardrep"
	"chess-tuner/internal/coeffs"
	"chess-tuner/internal/dataset"
	"chess-tuner/internal/evalplugin"
	"chess-tuner/internal/model"
	"chess-tuner/internal/workerpool"
)

// linearEval blends a sparse coefficient set against params the same way
// entries are scored generally: a dot product against the current
// parameter vector, tapered by game phase and dampened by the position's
// endgame scale. Shared by scoreOf and by Prepare, which needs the same
// blend against the plug-in's starting parameters to derive an entry's
// additional_score.
func linearEval(c coeffs.Sparse, endgameScale float64, phase, maxPhase int, params model.Vector) float64 {
	var mg, eg float64
	for _, term := range c {
		p := params[term.Index]
		mg += p.MG * float64(term.Value)
		eg += p.EG * float64(term.Value)
	}
	t := float64(phase) / float64(maxPhase)
	return mg*t + eg*(1-t)*endgameScale
}

// scoreOf computes entry's tapered evaluation under params — the linear
// blend of its sparse coefficients plus its cached additional_score, the
// residual a plug-in's score carries that the coefficients alone cannot
// express.
func scoreOf(e Entry, params model.Vector, maxPhase int) float64 {
	return linearEval(e.Coefficients, e.EndgameScale, e.Phase, maxPhase, params) + e.AdditionalScore
}

// Run loads raw, extracts coefficients via plugin, calibrates K if cfg.K is
// zero, and trains params via Adam for cfg.MaxEpoch epochs, returning the
// tuned parameter vector. It never mutates plugin's own parameter vector
// directly; the caller decides whether to install the result.
func Run(ctx context.Context, sources []dataset.DataSource, plugin evalplugin.Plugin, cfg Config) (model.Vector, error) {
	initParams := plugin.InitialParameters()

	raw, err := dataset.Load(ctx, sources, max(cfg.Threads, 1))
	if err != nil {
		return nil, err
	}

	prepared, err := Prepare(ctx, raw, plugin, cfg)
	if err != nil {
		return nil, err
	}
	if len(prepared) == 0 {
		return nil, apperr.New(apperr.MalformedFen, "dataset", fmt.Errorf("no trainable entries after preparation"))
	}

	params := initParams.Clone()
	if plugin.Capabilities().RetuneFromZero {
		for i := range params {
			params[i] = model.Pair{}
		}
	}

	k := cfg.K
	if k == 0 {
		k = CalibrateK(prepared, params, boardrep.MaxPhase, DefaultK)
		log.Printf("calibrated k=%.6f", k)
	}

	opt := newAdam(len(params)*2, cfg.Beta1, cfg.Beta2, cfg.Eps)
	lr := cfg.InitialLearningRate

	pool := workerpool.Start(max(cfg.Threads, 1))
	defer pool.Stop()

	start := time.Now()
	for epoch := 0; epoch < cfg.MaxEpoch; epoch++ {
		grad, err := computeGradient(pool, prepared, params, k, boardrep.MaxPhase, max(cfg.Threads, 1))
		if err != nil {
			return nil, err
		}

		flatParams := params.Flatten()
		opt.step(flatParams, grad, lr)
		params.Unflatten(flatParams)

		if cfg.LearningRateDropInterval > 0 && epoch > 0 && epoch%cfg.LearningRateDropInterval == 0 {
			lr *= cfg.LearningRateDropRatio
		}

		if cfg.ReportInterval > 0 && epoch%cfg.ReportInterval == 0 {
			loss := meanSquaredError(prepared, params, boardrep.MaxPhase, k)
			log.Printf("epoch=%d loss=%.8f k=%.6f lr=%.6f n=%d elapsed=%s",
				epoch, loss, k, lr, len(prepared), time.Since(start).Round(time.Millisecond))
		}
	}

	return params, nil
}

// computeGradient accumulates dL/dparam over every prepared entry, split
// into threads contiguous partitions of [i*chunk, (i+1)*chunk) with any
// remainder folded into the last partition — the canonical partitioning
// rule, not the historical off-by-one split the reference implementation's
// own compute_gradient once had.
func computeGradient(pool *workerpool.Pool, entries []Entry, params model.Vector, k float64, maxPhase, threads int) ([]float64, error) {
	n := len(params)
	partials := make([][]float64, threads)
	chunk := len(entries) / threads

	for t := 0; t < threads; t++ {
		t := t
		lo := t * chunk
		hi := lo + chunk
		if t == threads-1 {
			hi = len(entries)
		}
		local := make([]float64, n*2)
		partials[t] = local
		pool.Enqueue(func() error {
			accumulateRange(entries[lo:hi], params, k, maxPhase, local)
			return nil
		})
	}
	if err := pool.WaitForCompletion(); err != nil {
		return nil, err
	}

	total := make([]float64, n*2)
	for _, local := range partials {
		for i, v := range local {
			total[i] += v
		}
	}

	// g <- -K/400 * G[i] / |D|, applied uniformly to every mg and eg slot.
	scale := -k / 400 / float64(len(entries))
	for i := range total {
		total[i] *= scale
	}
	return total, nil
}

// accumulateRange adds each entry's raw (mg, eg) gradient contribution,
// r*coefficient, into out, which is laid out the same (mg, eg)-interleaved
// way as model.Vector.Flatten. The -K/400/|D| scale factor is applied once,
// by the caller, after every partition's contribution has been summed.
func accumulateRange(entries []Entry, params model.Vector, k float64, maxPhase int, out []float64) {
	for _, e := range entries {
		s := scoreOf(e, params, maxPhase)
		sig := sigmoid(k, s)
		r := (e.Label - sig) * sig * (1 - sig)

		t := float64(e.Phase) / float64(maxPhase)
		mgShare := r * t
		egShare := (r - mgShare) * e.EndgameScale

		for _, c := range e.Coefficients {
			v := float64(c.Value)
			out[2*int(c.Index)] += mgShare * v
			out[2*int(c.Index)+1] += egShare * v
		}
	}
}
