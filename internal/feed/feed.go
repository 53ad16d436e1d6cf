// Package feed assembles the set of candidate token addresses a scan
// cycle should evaluate, by combining three independent discovery
// sources and deduplicating the result. Each source tolerates its own
// failure — a dead directory API degrades the candidate set, it never
// aborts the cycle.
package feed

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/memescan/internal/model"
	"github.com/sawpanic/memescan/internal/providers/dexagg"
	"github.com/sawpanic/memescan/internal/providers/directory"
)

// perSourceLimit bounds how many addresses each of the three sources may
// contribute to a single cycle.
const perSourceLimit = 50

// Sources is the set of collaborators a Collector fans out to. Directory
// is optional — a nil Directory just skips that source.
type Sources struct {
	Dex       *dexagg.Client
	Directory *directory.Client
}

// Collector gathers one cycle's worth of candidate addresses.
type Collector struct {
	sources Sources
}

func New(sources Sources) *Collector {
	return &Collector{sources: sources}
}

// Collect queries new pairs, recently-listed directory tokens, and
// trending pairs, in that order, and returns their union with duplicates
// removed. Order of first appearance is preserved so callers that cap
// the candidate list favor the freshest source.
func (c *Collector) Collect(ctx context.Context) []model.TokenAddress {
	seen := make(map[model.TokenAddress]struct{})
	var out []model.TokenAddress

	add := func(addr model.TokenAddress) {
		if _, ok := seen[addr]; ok {
			return
		}
		seen[addr] = struct{}{}
		out = append(out, addr)
	}

	if c.sources.Dex != nil {
		pairs, err := c.sources.Dex.GetNewPairs(ctx, perSourceLimit)
		if err != nil {
			log.Warn().Err(err).Str("source", "dex_new_pairs").Msg("feed source failed, continuing")
		}
		for _, p := range pairs {
			add(p.BaseTokenAddr)
		}
	}

	if c.sources.Directory != nil {
		recent, err := c.sources.Directory.GetRecentTokens(ctx, perSourceLimit)
		if err != nil {
			log.Warn().Err(err).Str("source", "directory_recent").Msg("feed source failed, continuing")
		}
		for _, addr := range recent {
			add(addr)
		}
	}

	if c.sources.Dex != nil {
		trending, err := c.sources.Dex.GetTrending(ctx, perSourceLimit)
		if err != nil {
			log.Warn().Err(err).Str("source", "dex_trending").Msg("feed source failed, continuing")
		}
		for _, addr := range trending {
			add(addr)
		}
	}

	log.Debug().Int("candidates", len(out)).Msg("feed collection complete")
	return out
}
