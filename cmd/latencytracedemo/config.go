package main

import (
	"fmt"

	"github.com/spf13/viper"
)

// loadConfigFile merges optional overrides from a YAML config file into
// opts, filling in only the fields still at their flag default: group_by
// when opts.groupBy is empty or "callsite", format when opts.format is
// empty or "table", metrics_addr when empty, and no_color when false. It
// cannot tell a flag left unset from one passed with its default value,
// so the file also overrides a flag passed explicitly with that value.
func loadConfigFile(path string, opts *runOptions) error {
	if path == "" {
		return nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	if opts.groupBy == "" || opts.groupBy == "callsite" {
		if gb := v.GetString("group_by"); gb != "" {
			opts.groupBy = gb
		}
	}

	if opts.metricsAddr == "" {
		opts.metricsAddr = v.GetString("metrics_addr")
	}

	if opts.format == "" || opts.format == formatTable {
		if f := v.GetString("format"); f != "" {
			opts.format = f
		}
	}

	if !opts.noColor {
		opts.noColor = v.GetBool("no_color")
	}

	return nil
}
