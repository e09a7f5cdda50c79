package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

type ResolveCmd struct {
	Format string `help:"Output format (json or yaml)" default:"json" enum:"json,yaml"`
}

func (c *ResolveCmd) Run(ctx context.Context, globals *Globals) error {
	cfg, err := globals.resolve()
	if err != nil {
		return err
	}

	out := globals.stdout()

	switch c.Format {
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("failed to encode configuration: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	}
}

type EntriesCmd struct{}

// Run lists the merged entry map. No mode is needed; the development
// template is used since every template carries the same entries.
func (c *EntriesCmd) Run(ctx context.Context, globals *Globals) error {
	if len(globals.Types) == 0 {
		globals.Types = []string{"development"}
	}

	cfg, err := globals.resolve()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(globals.stdout(), 0, 4, 2, ' ', 0)
	for _, name := range slices.Sorted(maps.Keys(cfg.Entries)) {
		fmt.Fprintf(w, "%s\t%s\n", name, cfg.Entries[name])
	}
	return w.Flush()
}
