// Package diag holds run-scoped counters for data-quality events that are
// skipped rather than fatal: missing prices, unmapped resources, malformed
// source rows. Each worker owns its own Counters and partials are merged at
// the end of the run, so no synchronization happens on the hot path.
package diag

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

type Counters struct {
	MissingPrices     int64
	HubFallbacks      int64
	UnmappedResources int64
	SkippedDays       int64
	Malformed         map[string]int64 // rows skipped per source name
}

func New() *Counters {
	return &Counters{Malformed: make(map[string]int64)}
}

// CountMalformed records one unparseable row from the named source.
func (c *Counters) CountMalformed(source string) {
	c.Malformed[source]++
}

// Merge folds another partial into c. Merge order does not affect the result.
func (c *Counters) Merge(o *Counters) {
	if o == nil {
		return
	}
	c.MissingPrices += o.MissingPrices
	c.HubFallbacks += o.HubFallbacks
	c.UnmappedResources += o.UnmappedResources
	c.SkippedDays += o.SkippedDays
	for src, n := range o.Malformed {
		c.Malformed[src] += n
	}
}

// Summary renders the end-of-run diagnostic line.
func (c *Counters) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "missing_prices=%d hub_fallbacks=%d unmapped_resources=%d skipped_days=%d",
		c.MissingPrices, c.HubFallbacks, c.UnmappedResources, c.SkippedDays)
	sources := make([]string, 0, len(c.Malformed))
	for src := range c.Malformed {
		sources = append(sources, src)
	}
	sort.Strings(sources)
	for _, src := range sources {
		fmt.Fprintf(&b, " malformed[%s]=%d", src, c.Malformed[src])
	}
	return b.String()
}

// Log emits the summary through the given logger.
func (c *Counters) Log(logger *slog.Logger) {
	logger.Info("run diagnostics",
		"missing_prices", c.MissingPrices,
		"hub_fallbacks", c.HubFallbacks,
		"unmapped_resources", c.UnmappedResources,
		"skipped_days", c.SkippedDays,
		"malformed_sources", len(c.Malformed),
	)
}
