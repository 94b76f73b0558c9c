package report

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/AngelCh415/ngram-report/internal/filter"
	"github.com/AngelCh415/ngram-report/internal/models"
	"github.com/AngelCh415/ngram-report/internal/textnorm"
)

func newPipeline(opts ...Option) *Pipeline {
	n := textnorm.New(textnorm.DefaultStopWords(), textnorm.NounLemmatizer{})
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return NewPipeline(n, opts...)
}

func sampleInput() Input {
	return Input{
		Dataset: true,
		Rows: []models.SearchTermRow{
			{SearchTerm: "blue shoe", Impressions: 100, Clicks: 10, Spend: 5, Sales: 50, Units: 2, ProductID: "B0ABCDEFGH", CampaignID: "1"},
			{SearchTerm: "blue shoe sale", Impressions: 50, Clicks: 5, Spend: 2, Sales: 20, Units: 1, ProductID: "B0ABCDEFGH", CampaignID: "2"},
			{SearchTerm: "acme shoe", Impressions: 9, Clicks: 9, Spend: 9, ProductID: "B0ABCDEFGH"},
			{SearchTerm: "blue shoe", Impressions: 1000, Spend: 100, ProductID: "B0OTHERXXX"},
		},
		Filter: models.ProductFilter{
			Accepted:        map[string]struct{}{"B0ABCDEFGH": {}},
			BrandExclusions: []string{"acme"},
		},
	}
}

type recorder struct{ runs int }

func (r *recorder) ObserveRun(filter.Stats, models.Report) { r.runs++ }

func TestRunEndToEnd(t *testing.T) {
	obs := &recorder{}
	rep, st, err := newPipeline(WithObserver(obs)).Run(context.Background(), sampleInput())
	if err != nil {
		t.Fatal(err)
	}
	if st.Kept != 2 || st.Branded != 1 || st.OtherProduct != 1 {
		t.Fatalf("filter stats %+v", st)
	}
	if obs.runs != 1 {
		t.Fatal("observer not called")
	}

	var terms []string
	for _, m := range rep.Monograms {
		terms = append(terms, m.Term)
	}
	if !reflect.DeepEqual(terms, []string{"blue", "shoe", "sale"}) {
		t.Fatalf("monograms = %q", terms)
	}
	if rep.Monograms[0].Impressions != 150 || rep.Monograms[0].Clicks != 15 || rep.Monograms[0].Spend != 7 {
		t.Fatalf("blue = %+v", rep.Monograms[0])
	}
	if len(rep.Bigrams) != 2 || rep.Bigrams[0].Term != "blue shoe" || rep.Bigrams[0].Impressions != 150 {
		t.Fatalf("bigrams = %+v", rep.Bigrams)
	}
	if len(rep.Trigrams) != 1 || rep.Trigrams[0].Term != "blue shoe sale" || rep.Trigrams[0].Spend != 2 {
		t.Fatalf("trigrams = %+v", rep.Trigrams)
	}

	var labels []string
	for _, c := range rep.Combined {
		labels = append(labels, c.Type+":"+c.Term)
	}
	want := []string{"Monograms:blue", "Monograms:shoe", "Monograms:sale", "Bigrams:blue shoe", "Bigrams:shoe sale", "Trigrams:blue shoe sale"}
	if !reflect.DeepEqual(labels, want) {
		t.Fatalf("combined = %q", labels)
	}
	if rep.EmptyReason != "" || rep.Empty() {
		t.Fatalf("unexpected empty report: %q", rep.EmptyReason)
	}
	if rep.Monograms[0].CampaignIDs != nil {
		t.Fatal("campaign ids present without provenance")
	}
}

func TestRunWithCampaignIDs(t *testing.T) {
	p := newPipeline().Provenance(true)
	rep, _, err := p.Run(context.Background(), sampleInput())
	if err != nil {
		t.Fatal(err)
	}
	if !rep.IncludeCampaignIDs || !reflect.DeepEqual(rep.Monograms[0].CampaignIDs, []string{"1", "2"}) {
		t.Fatalf("campaign ids = %q", rep.Monograms[0].CampaignIDs)
	}
	if !reflect.DeepEqual(rep.Combined[0].CampaignIDs, []string{"1", "2"}) {
		t.Fatal("combined rows lost campaign ids")
	}
}

func TestRunIdempotent(t *testing.T) {
	p := newPipeline()
	a, _, _ := p.Run(context.Background(), sampleInput())
	b, _, _ := p.Run(context.Background(), sampleInput())
	if len(a.Combined) != len(b.Combined) {
		t.Fatal("different lengths")
	}
	for i := range a.Combined {
		if a.Combined[i].Term != b.Combined[i].Term || a.Combined[i].Spend != b.Combined[i].Spend {
			t.Fatalf("row %d differs", i)
		}
	}
}

func TestRunInputMissing(t *testing.T) {
	p := newPipeline()
	in := sampleInput()
	in.Dataset = false
	if _, _, err := p.Run(context.Background(), in); !errors.Is(err, ErrInputMissing) {
		t.Fatalf("expected ErrInputMissing, got %v", err)
	}
	in = sampleInput()
	in.Filter.Accepted = nil
	if _, _, err := p.Run(context.Background(), in); !errors.Is(err, ErrInputMissing) {
		t.Fatalf("expected ErrInputMissing, got %v", err)
	}
}

func TestRunEmptyResults(t *testing.T) {
	p := newPipeline()
	in := sampleInput()
	in.Filter.Accepted = map[string]struct{}{"B0NOTHERE0": {}}
	rep, _, err := p.Run(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	if !rep.Empty() || rep.EmptyReason != ReasonNoRows {
		t.Fatalf("expected no-rows report, got %+v", rep)
	}

	in = sampleInput()
	in.Rows = []models.SearchTermRow{{SearchTerm: "123 456", ProductID: "B0ABCDEFGH"}}
	rep, _, err = p.Run(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	if !rep.Empty() || rep.EmptyReason != ReasonNoNGrams {
		t.Fatalf("expected no-ngrams report, got %+v", rep)
	}
}

func TestAssembleOnlyMonograms(t *testing.T) {
	rep := newPipeline().Assemble([]models.SearchTermRow{{SearchTerm: "shoe", Spend: 1}})
	if len(rep.Monograms) != 1 || len(rep.Bigrams) != 0 || len(rep.Trigrams) != 0 || len(rep.Combined) != 1 {
		t.Fatalf("unexpected report %+v", rep)
	}
}
