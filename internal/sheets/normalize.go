package sheets

import (
	"errors"
	"strings"

	"EstiloSol/internal/catalog"
)

const (
	placeholderName = "Producto sin nombre"
	defaultDept     = "GENERAL"
	defaultCategory = "General"

	shortDescLimit = 140
)

var (
	// errNoID: rows with no usable id are dropped, not defaulted. A
	// synthesized id would change on every refetch and break cart and
	// detail-page references.
	errNoID     = errors.New("row has no id")
	errInactive = errors.New("row marked inactive")
)

// normalizeRow coerces one raw feed row into a Product.
func normalizeRow(r Row, defaultCurrency string) (catalog.Product, error) {
	id := r.stringField(idAliases)
	if id == "" {
		return catalog.Product{}, errNoID
	}
	if !r.boolField(activeAliases, true) {
		return catalog.Product{}, errInactive
	}

	p := catalog.Product{
		ID:          id,
		Slug:        r.stringField(slugAliases),
		Name:        r.stringField(nameAliases),
		Price:       parsePrice(mustLookup(r, priceAliases)),
		Currency:    r.stringField(currencyAliases),
		Department:  r.stringField(deptAliases),
		Category:    r.stringField(categoryAliases),
		Description: r.stringField(descAliases),
		Images:      r.listField(imagesAliases, ","),
		Tags:        r.listField(tagsAliases, ","),
		IsNew:       r.boolField(isNewAliases, false),
		IsSale:      r.boolField(isSaleAliases, false),
	}

	if p.Slug == "" {
		p.Slug = p.ID
	}
	if p.Name == "" {
		p.Name = placeholderName
	}
	if p.Currency == "" {
		p.Currency = defaultCurrency
	}
	if p.Department == "" {
		p.Department = defaultDept
	}
	if p.Category == "" {
		p.Category = defaultCategory
	}

	p.ShortDescription = r.stringField(shortDescAliases)
	if p.ShortDescription == "" {
		p.ShortDescription = shortDescription(p.Description)
	}

	switch strings.ToUpper(r.stringField(typeAliases)) {
	case string(catalog.ProductTypeKit):
		p.ProductType = catalog.ProductTypeKit
		p.Includes = r.listField(includesAliases, ",\n")
	default:
		p.ProductType = catalog.ProductTypeUnico
	}

	return p, nil
}

func mustLookup(r Row, aliases []string) any {
	v, _ := r.lookup(aliases)
	return v
}

// shortDescription derives the teaser text: the first sentence of the
// long description, capped at 140 runes.
func shortDescription(desc string) string {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return ""
	}

	if i := strings.IndexAny(desc, ".!?"); i >= 0 {
		desc = strings.TrimSpace(desc[:i+1])
	}

	runes := []rune(desc)
	if len(runes) > shortDescLimit {
		desc = strings.TrimSpace(string(runes[:shortDescLimit]))
	}
	return desc
}
