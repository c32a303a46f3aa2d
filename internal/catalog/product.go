package catalog

type ProductType string

const (
	ProductTypeUnico ProductType = "UNICO"
	ProductTypeKit   ProductType = "KIT"
)

// Product is one normalized catalog entry. The sheet feed is the only
// writer; the service never mutates individual products.
type Product struct {
	ID               string      `json:"id"`
	Slug             string      `json:"slug"`
	Name             string      `json:"name"`
	Price            float64     `json:"price"`
	Currency         string      `json:"currency"`
	Department       string      `json:"department"`
	Category         string      `json:"category"`
	Description      string      `json:"description,omitempty"`
	ShortDescription string      `json:"short_description,omitempty"`
	Images           []string    `json:"images,omitempty"`
	Tags             []string    `json:"tags,omitempty"`
	ProductType      ProductType `json:"product_type"`
	Includes         []string    `json:"includes,omitempty"`
	IsNew            bool        `json:"is_new"`
	IsSale           bool        `json:"is_sale"`
}
