// Command latencytracedemo exercises the latencytrace library against a
// small synthetic workload and renders the resulting span-group latency
// summary to the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		groupBy     string
		format      string
		noColor     bool
		metricsAddr string
		configFile  string
		htmlOut     string
	)

	cmd := &cobra.Command{
		Use:   "latencytracedemo",
		Short: "Run a synthetic workload under latencytrace and report span-group latencies",
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(runOptions{
				groupBy:     groupBy,
				format:      format,
				noColor:     noColor,
				metricsAddr: metricsAddr,
				configFile:  configFile,
				htmlOut:     htmlOut,
			})
		},
	}

	cmd.Flags().StringVar(&groupBy, "group-by", "callsite", "grouping strategy: callsite, all-fields, or a comma-separated field whitelist")
	cmd.Flags().StringVar(&format, "format", formatTable, "report format: table, json, yaml, or html")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "if set, serve Prometheus metrics on this address (e.g. :9090) until the workload completes")
	cmd.Flags().StringVar(&configFile, "config", "", "optional YAML file overriding defaults for any flag left unset")
	cmd.Flags().StringVar(&htmlOut, "html-out", "latencytrace-report.html", "output file path used when --format=html")

	return cmd
}
