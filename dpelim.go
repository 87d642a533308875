// Package dpelim ties the preprocessor's pipeline together: read a DIMACS
// CNF file, build the ZDD-backed family (package cnf), run Davis–Putnam
// elimination (package dp), write the result back out. It's the facade
// cmd/dpelim's main.go calls into, kept separate from main so the pipeline
// stays usable as a library.
package dpelim

import (
	"context"
	"fmt"
	"math"

	hclog "github.com/hashicorp/go-hclog"

	"github.com/xDarkicex/dpelim/absorb"
	"github.com/xDarkicex/dpelim/cnf"
	"github.com/xDarkicex/dpelim/dp"
	"github.com/xDarkicex/dpelim/errs"
	"github.com/xDarkicex/dpelim/heuristics"
	"github.com/xDarkicex/dpelim/metrics"
	"github.com/xDarkicex/dpelim/zdd"
)

// LogicError and InvariantError re-export package errs's shapes at the
// module root, the way callers of a library typically expect its top-level
// error types to live in the root package.
type LogicError = errs.LogicError
type InvariantError = errs.InvariantError

// Config collects every tunable of one Preprocess run, corresponding to
// original_source/app/args_parser.hpp's flag set.
type Config struct {
	InputPath  string
	OutputPath string

	EliminatedVars            int
	AbsorbedClauseInterval    int
	AbsorbedClausePolicy      absorb.IntervalPolicy
	AbsorbedClauseBackend     absorb.Backend
	MinVar, MaxVar            int
	CacheCapacity             int

	Logger  hclog.Logger
	Metrics *metrics.Registry
}

// Validate rejects configuration conflicts before any core package runs,
// per spec.md §7: a rejected configuration never reaches dp.EliminateVars.
func (c Config) Validate() error {
	if c.InputPath == "" {
		return errs.New("config", "Validate", "input CNF path is required")
	}
	if c.OutputPath == "" {
		return errs.New("config", "Validate", "output CNF path is required")
	}
	if c.EliminatedVars < 0 {
		return errs.New("config", "Validate", "eliminated-vars must be >= 0")
	}
	if c.AbsorbedClauseInterval < 0 {
		return errs.New("config", "Validate", "absorbed-interval must be >= 0")
	}
	if c.MinVar > c.MaxVar {
		return errs.New("config", "Validate", fmt.Sprintf("min-var (%d) must not exceed max-var (%d)", c.MinVar, c.MaxVar))
	}
	if c.CacheCapacity < 0 {
		return errs.New("config", "Validate", "cache-capacity must be >= 0")
	}
	return nil
}

func (c Config) logger() hclog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return hclog.L()
}

// Result reports the outcome of one Preprocess run.
type Result struct {
	InputClauses  int
	OutputClauses int
	StopReason    dp.StopReason
}

// Preprocess reads cfg.InputPath, runs DP elimination for up to
// cfg.EliminatedVars iterations with the MinimalScore[bloat_score]
// heuristic restricted to [cfg.MinVar, cfg.MaxVar], and writes the result
// to cfg.OutputPath.
func Preprocess(ctx context.Context, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	logger := cfg.logger()

	b := cnf.NewBuilder(zdd.NewKernel(), cfg.CacheCapacity)
	input, warnings, err := b.FromFile(cfg.InputPath)
	if err != nil {
		return Result{}, fmt.Errorf("reading %s: %w", cfg.InputPath, err)
	}
	if warnings != nil {
		logger.Warn("tolerated issues while parsing input CNF", "file", cfg.InputPath, "warnings", warnings)
	}
	defer input.Release()

	inputClauses := input.CountClauses()
	logger.Info("loaded input formula", "clauses", inputClauses)

	maxVar := cfg.MaxVar
	if maxVar == 0 {
		maxVar = math.MaxInt32
	}
	heuristic := heuristics.MinimalScore(cfg.MinVar, maxVar, heuristics.BloatScore)

	result, reason := dp.EliminateVars(ctx, input, dp.Options{
		Heuristic:        heuristic,
		NumVars:          cfg.EliminatedVars,
		AbsorbedInterval: cfg.AbsorbedClauseInterval,
		AbsorbedPolicy:   cfg.AbsorbedClausePolicy,
		AbsorbedBackend:  cfg.AbsorbedClauseBackend,
		Logger:           logger,
		Metrics:          cfg.Metrics,
	})
	defer result.Release()

	logger.Info("DP elimination stopped", "reason", reason.String(), "clauses", result.CountClauses())

	if err := result.WriteDimacsToFile(cfg.OutputPath); err != nil {
		return Result{}, fmt.Errorf("writing %s: %w", cfg.OutputPath, err)
	}

	return Result{
		InputClauses:  inputClauses,
		OutputClauses: result.CountClauses(),
		StopReason:    reason,
	}, nil
}
