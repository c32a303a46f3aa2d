package catalog

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type SortOrder string

const (
	SortNewest    SortOrder = "newest"
	SortPriceAsc  SortOrder = "price-asc"
	SortPriceDesc SortOrder = "price-desc"
	SortNameAsc   SortOrder = "name-asc"
	SortNameDesc  SortOrder = "name-desc"
)

func ParseSortOrder(s string) (SortOrder, bool) {
	switch SortOrder(s) {
	case SortNewest, SortPriceAsc, SortPriceDesc, SortNameAsc, SortNameDesc:
		return SortOrder(s), true
	case "":
		return SortNewest, true
	}
	return "", false
}

type FilterState struct {
	SearchTerm string
	Department string
	Category   string
	SortBy     SortOrder
}

// newNameCollator compares product names the way an es-AR storefront
// orders them (accent-folding, case-insensitive). Collators keep
// internal buffers, so each sort gets its own.
func newNameCollator() *collate.Collator {
	return collate.New(language.Spanish, collate.IgnoreCase)
}

// FilterProducts applies search, then department, then category, then
// sort, over a copy of products. SortNewest keeps the arrival order of
// the underlying list; the feed contract is newest-first, established
// at ingestion, never re-derived here.
func FilterProducts(products []Product, f FilterState) []Product {
	out := make([]Product, 0, len(products))

	term := strings.ToLower(strings.TrimSpace(f.SearchTerm))
	for _, p := range products {
		if term != "" && !matchesTerm(p, term) {
			continue
		}
		if f.Department != "" && p.Department != f.Department {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		out = append(out, p)
	}

	switch f.SortBy {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	case SortNameAsc:
		col := newNameCollator()
		sort.SliceStable(out, func(i, j int) bool {
			return col.CompareString(out[i].Name, out[j].Name) < 0
		})
	case SortNameDesc:
		col := newNameCollator()
		sort.SliceStable(out, func(i, j int) bool {
			return col.CompareString(out[i].Name, out[j].Name) > 0
		})
	case SortNewest:
		// identity order
	}

	return out
}

func matchesTerm(p Product, term string) bool {
	return strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.Description), term)
}

// DepartmentsOf returns the distinct non-empty departments, sorted.
func DepartmentsOf(products []Product) []string {
	return distinct(products, func(p Product) string { return p.Department })
}

// CategoriesOf returns the distinct non-empty categories, optionally
// scoped to one department, sorted.
func CategoriesOf(products []Product, department string) []string {
	return distinct(products, func(p Product) string {
		if department != "" && p.Department != department {
			return ""
		}
		return p.Category
	})
}

func distinct(products []Product, key func(Product) string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, 8)
	for _, p := range products {
		k := key(p)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
