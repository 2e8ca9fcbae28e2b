// slainsights joins service-queue state and AI risk insight CSVs and reports
// risk distributions, bottlenecks, trends, staffing needs and what-if simulations.
//
// Usage:
//
//	slainsights report   [--format=text|json] [filters]
//	slainsights cases    [filters] [--search=<term>] [--sort=<field>] [--desc] [--page=<n>]
//	slainsights plan     [--group-by=queue|risk|bottleneck|action] [--risk=<level>]
//	slainsights simulate --case=<id> [--agents=<n>] [--queue-depth=<n>] [--automation=<pct>]
//	slainsights staffing [--utilization=<0-1>] [--capacity=<n>]
//	slainsights export   cases|actions [-o <file>]
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
