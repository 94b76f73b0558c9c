package store

import (
	"reflect"
	"testing"

	"github.com/AngelCh415/ngram-report/internal/models"
)

func TestGroupTableAccumulates(t *testing.T) {
	tb := NewGroupTable()
	a := models.SearchTermRow{CampaignID: "C-2", Impressions: 100, Clicks: 10, Spend: 5, Sales: 50, Units: 2}
	b := models.SearchTermRow{CampaignID: "C-1", Impressions: 50, Clicks: 5, Spend: 2, Sales: 20, Units: 1}

	tb.Add(models.NGram{"shoe"}, a)
	tb.Add(models.NGram{"blue"}, a)
	tb.Add(models.NGram{"shoe"}, b)
	tb.Add(models.NGram{"shoe"}, b)

	if tb.Len() != 2 {
		t.Fatalf("expected 2 groups, got %d", tb.Len())
	}
	all := tb.All()
	if all[0].NGram.String() != "shoe" || all[1].NGram.String() != "blue" {
		t.Fatalf("first-seen order lost: %q, %q", all[0].NGram, all[1].NGram)
	}
	g, ok := tb.Get(models.NGram{"shoe"})
	if !ok {
		t.Fatal("missing shoe group")
	}
	if g.Impressions != 200 || g.Clicks != 20 || g.Spend != 9 || g.Units != 4 {
		t.Fatalf("unexpected sums %+v", g)
	}
	if ids := g.CampaignIDs(); !reflect.DeepEqual(ids, []string{"C-1", "C-2"}) {
		t.Fatalf("campaign ids = %q", ids)
	}
}

func TestGroupTableSkipsBlankCampaignID(t *testing.T) {
	tb := NewGroupTable()
	tb.Add(models.NGram{"shoe"}, models.SearchTermRow{CampaignID: "111", Spend: 1})
	tb.Add(models.NGram{"shoe"}, models.SearchTermRow{Spend: 2})
	g, _ := tb.Get(models.NGram{"shoe"})
	if g.Spend != 3 {
		t.Fatalf("blank campaign row must still add to sums, spend=%v", g.Spend)
	}
	if ids := g.CampaignIDs(); !reflect.DeepEqual(ids, []string{"111"}) {
		t.Fatalf("campaign ids = %q", ids)
	}
}

func TestGroupTableTupleKeys(t *testing.T) {
	tb := NewGroupTable()
	r := models.SearchTermRow{Impressions: 1}
	tb.Add(models.NGram{"blue", "shoe"}, r)
	tb.Add(models.NGram{"shoe", "blue"}, r)
	if tb.Len() != 2 {
		t.Fatalf("token order must matter, got %d groups", tb.Len())
	}
}
