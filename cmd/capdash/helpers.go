package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"capdash/internal/config"
	caperrors "capdash/internal/errors"
	"capdash/internal/hypergraph"
	"capdash/internal/view"
)

// readPayload loads a raw payload from a file, or stdin when path is "-".
func readPayload(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, caperrors.Wrap(caperrors.PayloadNotFound, "failed to read payload from stdin", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, caperrors.Wrap(caperrors.PayloadNotFound, fmt.Sprintf("failed to read payload %s", path), err)
	}
	return data, nil
}

// parsePayload decodes the envelope; anything inside it is handled
// tolerantly downstream.
func parsePayload(data []byte) (*hypergraph.RawPayload, error) {
	p, err := hypergraph.ParsePayload(data)
	if err != nil {
		return nil, caperrors.Wrap(caperrors.PayloadMalformed, "payload is not valid JSON", err)
	}
	return p, nil
}

// bucketDefsFromConfig turns the configured recency thresholds into bucket
// definitions.
func bucketDefsFromConfig(cfg *config.Config) []view.BucketDef {
	r := cfg.View.Recency
	return []view.BucketDef{
		{Label: "today", MaxAge: time.Duration(r.TodayHours) * time.Hour},
		{Label: "this week", MaxAge: time.Duration(r.WeekDays) * 24 * time.Hour},
		{Label: "this month", MaxAge: time.Duration(r.MonthDays) * 24 * time.Hour},
	}
}

// writeEncoded prints v to stdout in the requested format.
func writeEncoded(v interface{}, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown output format %q (want json or yaml)", format)
	}
}

// renderViewHuman prints the derived view the way the dashboard groups it.
func renderViewHuman(w io.Writer, v *view.View, showLayers bool, showStats bool) {
	for _, bucket := range v.Buckets {
		fmt.Fprintf(w, "%s\n", bucket.Label)
		for _, c := range bucket.Capabilities {
			marker := ""
			if c.IsMeta() {
				marker = " [meta]"
			}
			fmt.Fprintf(w, "  %s%s  (used %d, success %.0f%%)\n",
				c.Name, marker, c.UsageCount, c.SuccessRate*100)
			if c.Description != "" {
				fmt.Fprintf(w, "      %s\n", c.Description)
			}
			if showLayers {
				for _, layer := range v.Layers[c.ID] {
					fmt.Fprintf(w, "      layer %d:", layer.Index)
					for _, ref := range layer.Tools {
						if ref.Known {
							fmt.Fprintf(w, " %s", ref.Name)
						} else {
							fmt.Fprintf(w, " %s?", ref.Name)
						}
					}
					fmt.Fprintln(w)
				}
			}
		}
	}

	if len(v.FreshIDs) > 0 {
		fmt.Fprintf(w, "\nnew since last poll: %d\n", len(v.FreshIDs))
		for _, id := range v.FreshIDs {
			fmt.Fprintf(w, "  %s\n", id)
		}
	}

	if showStats {
		fmt.Fprintf(w, "\ncapabilities: %d (%d meta, %d top-level)\n",
			v.Stats.Capabilities, v.Stats.MetaCapabilities, v.Stats.TopLevel)
		fmt.Fprintf(w, "tools: %d across %d servers, %d edges\n",
			v.Stats.Tools, v.Stats.Servers, v.Stats.Edges)
	}
}
