// Command dpelim runs the Davis–Putnam CNF elimination preprocessor over
// a DIMACS input file, grounded on original_source/app/main.cpp and
// args_parser.{hpp,cpp}.
package main

import (
	"context"
	"fmt"
	"math"
	"os"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"github.com/xDarkicex/dpelim"
	"github.com/xDarkicex/dpelim/absorb"
	"github.com/xDarkicex/dpelim/metrics"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("dpelim", pflag.ContinueOnError)

	inputPath := flags.StringP("input", "i", "", "input CNF file (DIMACS format, required)")
	outputPath := flags.StringP("output", "o", "result.cnf", "output CNF file")
	eliminatedVars := flags.Int("eliminate-vars", 3, "number of variables to eliminate")
	absorbedInterval := flags.Int("absorbed-interval", 0, "run absorbed-clause removal every N eliminations (0 disables it)")
	skipFirstAbsorbed := flags.Bool("absorbed-skip-first", false, "don't run absorbed-clause removal on iteration 0")
	absorbedBackend := flags.String("absorbed-backend", "with-conversion", "absorbed-clause detector back-end: with-conversion|without-conversion")
	minVar := flags.Int("min-var", 0, "smallest variable the heuristic may choose")
	maxVar := flags.Int("max-var", 0, "largest variable the heuristic may choose (0 means unbounded)")
	cacheCapacity := flags.Int("cache-capacity", 0, "per-operation LRU cache capacity (0 uses the package default)")
	logLevel := flags.String("log-level", "info", "log level: trace|debug|info|warn|error")
	logJSON := flags.Bool("log-json", false, "emit logs as JSON")
	metricsAddr := flags.String("metrics-addr", "", "if set, serve Prometheus metrics on this address (e.g. :9090) for the duration of the run")

	if err := flags.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:       "dpelim",
		Level:      hclog.LevelFromString(*logLevel),
		JSONFormat: *logJSON,
	})

	backend := absorb.WithConversion
	if *absorbedBackend == "without-conversion" {
		backend = absorb.WithoutConversion
	} else if *absorbedBackend != "with-conversion" {
		logger.Error("invalid --absorbed-backend", "value", *absorbedBackend)
		return 2
	}

	policy := absorb.IncludeFirstIteration
	if *skipFirstAbsorbed {
		policy = absorb.SkipFirstIteration
	}

	var reg *metrics.Registry
	if *metricsAddr != "" {
		promReg := prometheus.NewRegistry()
		reg = metrics.NewRegistry(promReg)
		stop := serveMetrics(*metricsAddr, promReg, logger)
		defer stop()
	}

	effectiveMaxVar := *maxVar
	if effectiveMaxVar == 0 {
		effectiveMaxVar = math.MaxInt32
	}

	cfg := dpelim.Config{
		InputPath:              *inputPath,
		OutputPath:             *outputPath,
		EliminatedVars:         *eliminatedVars,
		AbsorbedClauseInterval: *absorbedInterval,
		AbsorbedClausePolicy:   policy,
		AbsorbedClauseBackend:  backend,
		MinVar:                 *minVar,
		MaxVar:                 effectiveMaxVar,
		CacheCapacity:          *cacheCapacity,
		Logger:                 logger,
		Metrics:                reg,
	}

	result, err := dpelim.Preprocess(context.Background(), cfg)
	if err != nil {
		logger.Error("preprocessing failed", "error", err)
		return 1
	}

	fmt.Printf("Input formula had %d clauses\n", result.InputClauses)
	fmt.Printf("Formula with %d clauses written to %s (%s)\n", result.OutputClauses, *outputPath, result.StopReason)
	return 0
}
