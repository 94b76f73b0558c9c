package filter

import (
	"errors"
	"testing"

	"github.com/AngelCh415/ngram-report/internal/models"
)

func TestExtractProductID(t *testing.T) {
	for in, want := range map[string]string{
		"SP - B0ABCDEFGH - exact":    "B0ABCDEFGH",
		"sp_b0abcdefgh_auto":         "B0ABCDEFGH",
		"Brand | B012345678 | broad": "B012345678",
		"no asin here":               "",
		"B0SHORT":                    "",
		"":                           "",
	} {
		if got := ExtractProductID(in); got != want {
			t.Errorf("ExtractProductID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseProductFilter(t *testing.T) {
	pf, err := ParseProductFilter("b0abcdefgh\r\n\n  B0ZZZZZZZZ  \n", "  Nike\n\nADIDAS\nnike\n")
	if err != nil {
		t.Fatal(err)
	}
	if len(pf.Accepted) != 2 || !pf.Accepts("B0ABCDEFGH") || !pf.Accepts("B0ZZZZZZZZ") {
		t.Fatalf("accepted = %v", pf.Accepted)
	}
	if len(pf.BrandExclusions) != 2 || pf.BrandExclusions[0] != "nike" || pf.BrandExclusions[1] != "adidas" {
		t.Fatalf("brands = %q", pf.BrandExclusions)
	}

	if _, err := ParseProductFilter(" \n ", "nike"); !errors.Is(err, ErrNoProductFilter) {
		t.Fatalf("expected ErrNoProductFilter, got %v", err)
	}
}

func TestEmptyBrandBoxKeepsRows(t *testing.T) {
	pf, err := ParseProductFilter("B0ABCDEFGH", "\n")
	if err != nil {
		t.Fatal(err)
	}
	rows := []models.SearchTermRow{{SearchTerm: "blue shoe", ProductID: "B0ABCDEFGH"}}
	out, _ := Apply(rows, pf)
	if len(out) != 1 {
		t.Fatalf("expected row kept, got %d", len(out))
	}
}

func TestApply(t *testing.T) {
	pf := models.ProductFilter{
		Accepted:        map[string]struct{}{"B0ABCDEFGH": {}},
		BrandExclusions: []string{"nike"},
	}
	rows := []models.SearchTermRow{
		{SearchTerm: "Nike Running Shoe", CampaignName: "SP B0ABCDEFGH"},
		{SearchTerm: "running shoe", CampaignName: "SP b0abcdefgh auto"},
		{SearchTerm: "running shoe", CampaignName: "SP B0ZZZZZZZZ"},
		{SearchTerm: "running shoe", CampaignName: "generic campaign"},
		{SearchTerm: "trail shoe", ProductID: "B0ABCDEFGH", CampaignName: "B0ZZZZZZZZ"},
	}
	out, st := Apply(rows, pf)
	if len(out) != 2 {
		t.Fatalf("kept %d rows, want 2: %+v", len(out), out)
	}
	if out[0].SearchTerm != "running shoe" || out[0].ProductID != "B0ABCDEFGH" {
		t.Fatalf("unexpected first row %+v", out[0])
	}
	if out[1].SearchTerm != "trail shoe" {
		t.Fatalf("provided product id should win over campaign name: %+v", out[1])
	}
	want := Stats{In: 5, NoProductID: 1, OtherProduct: 1, Branded: 1, Kept: 2}
	if st != want {
		t.Fatalf("stats = %+v, want %+v", st, want)
	}
	if rows[1].ProductID != "" {
		t.Fatal("Apply mutated its input")
	}
}

func TestBrandExclusionToggle(t *testing.T) {
	rows := []models.SearchTermRow{{SearchTerm: "nike running shoe", ProductID: "B0ABCDEFGH"}}
	accepted := map[string]struct{}{"B0ABCDEFGH": {}}

	out, _ := Apply(rows, models.ProductFilter{Accepted: accepted, BrandExclusions: []string{"nike"}})
	if len(out) != 0 {
		t.Fatal("branded row should be excluded")
	}
	out, _ = Apply(rows, models.ProductFilter{Accepted: accepted})
	if len(out) != 1 {
		t.Fatal("row should be kept without exclusions")
	}
}
