package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/projectdiscovery/gologger"

	"project/subnet-aggregator/runner"
)

// Aggregates a bunch of IP addresses into a list of subnets. A /24 is only
// considered once the threshold number of addresses inside it is reached.
func main() {
	options := runner.ParseOptions()
	aggregatorRunner, err := runner.NewRunner(options)
	if err != nil {
		gologger.Fatal().Msgf("Could not create runner: %s\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := aggregatorRunner.Run(ctx); err != nil {
		gologger.Fatal().Msgf("Could not aggregate: %s\n", err)
	}
}
