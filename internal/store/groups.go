package store

import (
	"sort"

	"github.com/AngelCh415/ngram-report/internal/models"
)

// Group holds the running sums for one n-gram.
type Group struct {
	Key         string
	NGram       models.NGram
	Impressions uint64
	Clicks      uint64
	Spend       float64
	Sales       float64
	Units       uint64
	campaigns   map[string]struct{}
}

// CampaignIDs returns the distinct contributing campaign identifiers, sorted.
func (g *Group) CampaignIDs() []string {
	out := make([]string, 0, len(g.campaigns))
	for id := range g.campaigns {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// GroupTable accumulates contributions keyed by n-gram and remembers the
// order in which keys were first seen. It belongs to a single aggregation
// run and is not safe for concurrent use.
type GroupTable struct {
	idx    map[string]int
	groups []*Group
}

func NewGroupTable() *GroupTable {
	return &GroupTable{idx: make(map[string]int)}
}

// Add folds one row's full metrics into the group for g. Rows without a
// campaign identifier add to the sums but not to the campaign set.
func (t *GroupTable) Add(g models.NGram, r models.SearchTermRow) {
	k := g.Key()
	i, ok := t.idx[k]
	if !ok {
		i = len(t.groups)
		t.idx[k] = i
		t.groups = append(t.groups, &Group{Key: k, NGram: g, campaigns: map[string]struct{}{}})
	}
	grp := t.groups[i]
	grp.Impressions += r.Impressions
	grp.Clicks += r.Clicks
	grp.Spend += r.Spend
	grp.Sales += r.Sales
	grp.Units += r.Units
	if r.CampaignID != "" {
		grp.campaigns[r.CampaignID] = struct{}{}
	}
}

func (t *GroupTable) Len() int { return len(t.groups) }

// All returns groups in first-seen order.
func (t *GroupTable) All() []*Group {
	out := make([]*Group, len(t.groups))
	copy(out, t.groups)
	return out
}

// Get looks up a group by n-gram.
func (t *GroupTable) Get(g models.NGram) (*Group, bool) {
	i, ok := t.idx[g.Key()]
	if !ok {
		return nil, false
	}
	return t.groups[i], true
}
