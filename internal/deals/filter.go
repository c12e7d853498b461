// Package deals turns raw candidates into normalized, deduplicated deals
// below the price threshold.
package deals

import (
	"context"
	"errors"
	"iter"

	"github.com/shopspring/decimal"

	"github.com/law-makers/dealwatch/internal/price"
	"github.com/law-makers/dealwatch/internal/runctx"
	"github.com/law-makers/dealwatch/pkg/models"
)

// DefaultPartySize is the number of travellers the listing prices are quoted for
const DefaultPartySize = 2

// Stats counts what happened to the candidates of one Apply
type Stats struct {
	Candidates     int `json:"candidates"`
	Malformed      int `json:"malformed"`
	AboveThreshold int `json:"above_threshold"`
	Duplicates     int `json:"duplicates"`
	Emitted        int `json:"emitted"`
}

// Filter keeps candidates priced strictly below the threshold
type Filter struct {
	threshold decimal.Decimal
	partySize int
	seen      *SeenDeals
	stats     Stats
}

// NewFilter creates a Filter. A nil seen set starts a fresh one.
func NewFilter(threshold decimal.Decimal, partySize int, seen *SeenDeals) *Filter {
	if partySize <= 0 {
		partySize = DefaultPartySize
	}
	if seen == nil {
		seen = NewSeenDeals()
	}
	return &Filter{threshold: threshold, partySize: partySize, seen: seen}
}

// Apply lazily normalizes, filters and deduplicates candidates. Malformed
// candidates are logged and skipped; duplicates are dropped silently.
// Iteration stops early when ctx is done.
func (f *Filter) Apply(ctx context.Context, candidates iter.Seq[models.DealCandidate]) iter.Seq[models.Deal] {
	return func(yield func(models.Deal) bool) {
		logger := runctx.Logger(ctx)

		for c := range candidates {
			if ctx.Err() != nil {
				return
			}
			f.stats.Candidates++

			pp, err := price.Parse(c.PriceText)
			if err != nil {
				f.stats.Malformed++
				var mpe *price.MalformedPriceError
				if errors.As(err, &mpe) {
					logger.Warn().Str("title", c.Title).Str("raw", mpe.Raw).Str("reason", mpe.Reason).Msg("Skipping candidate with malformed price")
				} else {
					logger.Warn().Str("title", c.Title).Err(err).Msg("Skipping candidate")
				}
				continue
			}

			if !pp.LessThan(f.threshold) {
				f.stats.AboveThreshold++
				logger.Debug().Str("title", c.Title).Str("price", pp.String()).Msg("Above threshold")
				continue
			}

			deal := models.Deal{
				Name:           c.Title,
				PricePerPerson: pp,
				TotalPrice:     price.Total(pp, f.partySize),
				URL:            orUnknown(c.Link),
				DepartureDate:  orUnknown(c.DepartureDate),
				Duration:       orUnknown(c.Duration),
			}

			if !f.seen.Add(deal.Identity()) {
				f.stats.Duplicates++
				continue
			}

			f.stats.Emitted++
			if !yield(deal) {
				return
			}
		}
	}
}

// Stats returns the counters accumulated so far
func (f *Filter) Stats() Stats {
	return f.stats
}

func orUnknown(s string) string {
	if s == "" {
		return models.Unknown
	}
	return s
}
