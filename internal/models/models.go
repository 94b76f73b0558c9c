package models

import (
	"encoding/json"
	"math"
	"strings"
)

// SearchTermRow is one line of a sponsored-products search term report.
type SearchTermRow struct {
	Line         int
	SearchTerm   string
	CampaignName string
	CampaignID   string
	ProductID    string // empty when the report carries no identifier column
	Impressions  uint64
	Clicks       uint64
	Spend        float64
	Sales        float64
	Units        uint64
}

// ProductFilter selects rows by product identifier and drops branded queries.
type ProductFilter struct {
	Accepted        map[string]struct{}
	BrandExclusions []string
}

func (pf ProductFilter) Accepts(id string) bool {
	if id == "" {
		return false
	}
	_, ok := pf.Accepted[id]
	return ok
}

// NGram is an ordered tuple of tokens.
type NGram []string

// keySep never survives normalization, so joined keys are collision free.
const keySep = "\x1f"

func (g NGram) Key() string    { return strings.Join(g, keySep) }
func (g NGram) String() string { return strings.Join(g, " ") }
func (g NGram) Order() int     { return len(g) }

// NGramFromKey is the inverse of NGram.Key.
func NGramFromKey(k string) NGram {
	if k == "" {
		return NGram{}
	}
	return NGram(strings.Split(k, keySep))
}

// Ratio is a derived metric; NaN marks a zero denominator.
type Ratio float64

func (r Ratio) Defined() bool { return !math.IsNaN(float64(r)) }

func (r Ratio) MarshalJSON() ([]byte, error) {
	if !r.Defined() || math.IsInf(float64(r), 0) {
		return []byte("null"), nil
	}
	return json.Marshal(float64(r))
}

func (r *Ratio) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*r = Ratio(math.NaN())
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*r = Ratio(f)
	return nil
}

type AggregatedMetrics struct {
	NGram          NGram    `json:"-"`
	Term           string   `json:"ngram"`
	Impressions    uint64   `json:"impressions"`
	Clicks         uint64   `json:"clicks"`
	Spend          float64  `json:"spend"`
	Sales          float64  `json:"sales"`
	Units          uint64   `json:"units"`
	CTR            Ratio    `json:"ctr"`
	ConversionRate Ratio    `json:"conversion_rate"`
	ACOS           Ratio    `json:"acos"`
	CPA            Ratio    `json:"cpa"`
	CPC            Ratio    `json:"cpc"`
	CampaignIDs    []string `json:"campaign_ids,omitempty"`
}

// LabeledMetrics is a row of the combined report.
type LabeledMetrics struct {
	Type string `json:"ngram_type"`
	AggregatedMetrics
}

type Report struct {
	Monograms          []AggregatedMetrics `json:"monograms"`
	Bigrams            []AggregatedMetrics `json:"bigrams"`
	Trigrams           []AggregatedMetrics `json:"trigrams"`
	Combined           []LabeledMetrics    `json:"combined"`
	IncludeCampaignIDs bool                `json:"include_campaign_ids"`
	EmptyReason        string              `json:"empty_reason,omitempty"`
}

func (r Report) Empty() bool { return len(r.Combined) == 0 }

// Slices returns the per-order tables in order 1,2,3.
func (r Report) Slices() [][]AggregatedMetrics {
	return [][]AggregatedMetrics{r.Monograms, r.Bigrams, r.Trigrams}
}
