// Command simulate verifies the weighted selection distribution by
// running repeated allocations in process and comparing empirical
// partner frequencies against the expected weights.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/finbridge/colend/internal/simulate"
)

const (
	defaultTrials   = 10000
	defaultPartners = 3
	runTimeout      = 5 * time.Minute
)

func main() {
	var (
		trials   = flag.Int("trials", defaultTrials, "Number of allocation trials to run")
		seed     = flag.Int64("seed", time.Now().UnixNano(), "Random seed for the selection source")
		partners = flag.Int("partners", defaultPartners, "Number of synthetic partners")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	cfg := simulate.Config{
		Trials:   *trials,
		Seed:     *seed,
		Partners: *partners,
	}

	if _, err := simulate.Run(ctx, cfg, os.Stdout); err != nil {
		os.Stderr.WriteString("simulation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
