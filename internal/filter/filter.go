// Package filter selects report rows by product identifier and brand terms.
package filter

import (
	"errors"
	"regexp"
	"strings"

	"github.com/AngelCh415/ngram-report/internal/models"
)

var ErrNoProductFilter = errors.New("no product identifiers supplied")

var asinPattern = regexp.MustCompile(`(?i)B0[A-Z0-9]{8}`)

// ExtractProductID returns the first ASIN-like code in a campaign name,
// upper-cased, or "" when there is none.
func ExtractProductID(campaignName string) string {
	return strings.ToUpper(asinPattern.FindString(campaignName))
}

// ParseProductFilter builds a filter from newline-separated free text.
func ParseProductFilter(idText, brandText string) (models.ProductFilter, error) {
	pf := models.ProductFilter{Accepted: map[string]struct{}{}}
	for _, l := range splitLines(idText) {
		pf.Accepted[strings.ToUpper(l)] = struct{}{}
	}
	if len(pf.Accepted) == 0 {
		return pf, ErrNoProductFilter
	}
	pf.BrandExclusions = BrandTerms(splitLines(brandText))
	return pf, nil
}

// BrandTerms lower-cases and de-duplicates terms, dropping blanks. A blank
// term would match every query.
func BrandTerms(terms []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func splitLines(s string) []string {
	var out []string
	for _, l := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// Stats counts where rows went.
type Stats struct {
	In           int `json:"in"`
	NoProductID  int `json:"no_product_id"`
	OtherProduct int `json:"other_product"`
	Branded      int `json:"branded"`
	Kept         int `json:"kept"`
}

// Apply keeps rows whose product identifier is accepted and whose search term
// mentions none of the brand terms. Rows without an identifier get one derived
// from the campaign name; the input slice is not modified.
func Apply(rows []models.SearchTermRow, pf models.ProductFilter) ([]models.SearchTermRow, Stats) {
	st := Stats{In: len(rows)}
	out := make([]models.SearchTermRow, 0, len(rows))
	for _, r := range rows {
		if r.ProductID == "" {
			r.ProductID = ExtractProductID(r.CampaignName)
		}
		if r.ProductID == "" {
			st.NoProductID++
			continue
		}
		if !pf.Accepts(r.ProductID) {
			st.OtherProduct++
			continue
		}
		if IsBranded(r.SearchTerm, pf.BrandExclusions) {
			st.Branded++
			continue
		}
		out = append(out, r)
	}
	st.Kept = len(out)
	return out, st
}

// IsBranded reports whether the lowercased term contains any brand substring.
func IsBranded(term string, brands []string) bool {
	if len(brands) == 0 {
		return false
	}
	lt := strings.ToLower(term)
	for _, b := range brands {
		if b != "" && strings.Contains(lt, b) {
			return true
		}
	}
	return false
}
