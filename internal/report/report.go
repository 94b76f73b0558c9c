// Package report runs the filter and aggregation steps for one dataset.
package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/AngelCh415/ngram-report/internal/filter"
	"github.com/AngelCh415/ngram-report/internal/metrics"
	"github.com/AngelCh415/ngram-report/internal/models"
	"github.com/AngelCh415/ngram-report/internal/ngram"
	"github.com/AngelCh415/ngram-report/internal/textnorm"
)

var ErrInputMissing = errors.New("input missing")

const (
	ReasonNoRows   = "no rows matched the product filter"
	ReasonNoNGrams = "no n-grams were generated at any order"
)

// Observer receives run statistics. utils.Metrics implements it.
type Observer interface {
	ObserveRun(st filter.Stats, rep models.Report)
}

// Pipeline is built once and shared; it holds no per-run state.
type Pipeline struct {
	agg                *metrics.Aggregator
	includeCampaignIDs bool
	log                *slog.Logger
	obs                Observer
}

type Option func(*Pipeline)

func WithCampaignIDs(on bool) Option   { return func(p *Pipeline) { p.includeCampaignIDs = on } }
func WithLogger(l *slog.Logger) Option { return func(p *Pipeline) { p.log = l } }
func WithObserver(o Observer) Option   { return func(p *Pipeline) { p.obs = o } }

func NewPipeline(n *textnorm.Normalizer, opts ...Option) *Pipeline {
	p := &Pipeline{agg: metrics.NewAggregator(n), log: slog.Default()}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Provenance returns a copy of p with campaign-id tracking set to on.
func (p *Pipeline) Provenance(on bool) *Pipeline {
	cp := *p
	cp.includeCampaignIDs = on
	return &cp
}

func (p *Pipeline) IncludesCampaignIDs() bool { return p.includeCampaignIDs }

// Assemble aggregates rows at orders 1, 2 and 3 and builds the combined
// table: monograms first, then bigrams, then trigrams, each spend-descending.
func (p *Pipeline) Assemble(rows []models.SearchTermRow) models.Report {
	rep := models.Report{IncludeCampaignIDs: p.includeCampaignIDs, Combined: []models.LabeledMetrics{}}
	per := make([][]models.AggregatedMetrics, len(ngram.Orders))
	for i, o := range ngram.Orders {
		per[i] = p.agg.Aggregate(rows, o, p.includeCampaignIDs)
		for _, m := range per[i] {
			rep.Combined = append(rep.Combined, models.LabeledMetrics{Type: o.Label(), AggregatedMetrics: m})
		}
	}
	rep.Monograms, rep.Bigrams, rep.Trigrams = per[0], per[1], per[2]
	if rep.Empty() {
		rep.EmptyReason = ReasonNoNGrams
	}
	return rep
}

// Input is everything one run needs. Rows and Filter are request scoped.
type Input struct {
	Rows    []models.SearchTermRow
	Filter  models.ProductFilter
	Dataset bool // false when no dataset was supplied at all
}

// Run validates the input, filters the rows and assembles the report. An
// empty report is not an error; its EmptyReason says why.
func (p *Pipeline) Run(ctx context.Context, in Input) (models.Report, filter.Stats, error) {
	if !in.Dataset {
		return models.Report{}, filter.Stats{}, fmt.Errorf("%w: no dataset supplied", ErrInputMissing)
	}
	if len(in.Filter.Accepted) == 0 {
		return models.Report{}, filter.Stats{}, fmt.Errorf("%w: %v", ErrInputMissing, filter.ErrNoProductFilter)
	}
	if err := ctx.Err(); err != nil {
		return models.Report{}, filter.Stats{}, err
	}

	rows, st := filter.Apply(in.Rows, in.Filter)
	var rep models.Report
	if len(rows) == 0 {
		rep = p.Assemble(nil)
		rep.EmptyReason = ReasonNoRows
	} else {
		rep = p.Assemble(rows)
	}

	p.log.InfoContext(ctx, "report assembled",
		slog.Int("rows_in", st.In),
		slog.Int("rows_kept", st.Kept),
		slog.Int("branded", st.Branded),
		slog.Int("monograms", len(rep.Monograms)),
		slog.Int("bigrams", len(rep.Bigrams)),
		slog.Int("trigrams", len(rep.Trigrams)),
		slog.Bool("campaign_ids", p.includeCampaignIDs),
	)
	if rep.EmptyReason != "" {
		p.log.WarnContext(ctx, "empty report", slog.String("reason", rep.EmptyReason))
	}
	if p.obs != nil {
		p.obs.ObserveRun(st, rep)
	}
	return rep, st, nil
}
