// Command function is the discount-function entry point: it reads one cart input
// document from stdin and writes one discount result document to stdout.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/noah-isme/tiered-discount/internal/config"
	"github.com/noah-isme/tiered-discount/internal/discount"
	"github.com/noah-isme/tiered-discount/internal/obs"
)

func main() {
	policy := discount.DefaultPolicy
	cfg, err := config.Load()
	logger := obs.NewLoggerTo(os.Stderr, "json", "warn")
	if err != nil {
		logger.Error().Err(err).Str("fallback_policy", policy.String()).Msg("load config")
	} else {
		logger = obs.NewLoggerTo(os.Stderr, cfg.LogFormat, cfg.LogLevel)
		policy = cfg.TierPolicy
	}

	evaluator := discount.Evaluator{Policy: policy, Logger: logger}
	if err := run(os.Stdin, os.Stdout, evaluator, logger); err != nil {
		logger.Error().Err(err).Msg("write result")
		os.Exit(1)
	}
}

// run never fails on bad input: an undecodable document still yields the empty result.
// Only a failure to write the result is returned.
func run(in io.Reader, out io.Writer, evaluator discount.Evaluator, logger zerolog.Logger) error {
	result := discount.EmptyResult()

	var input discount.RunInput
	if err := json.NewDecoder(in).Decode(&input); err != nil {
		logger.Error().Err(err).Msg("decode function input")
	} else {
		result = evaluator.Run(input)
	}

	if err := json.NewEncoder(out).Encode(result); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}
