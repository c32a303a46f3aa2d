package cart

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// CheckoutRequest is the hand-off form: there is no order processing,
// the cart is turned into a WhatsApp message for the seller.
type CheckoutRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Notes string `json:"notes,omitempty"`
}

// BuildMessage renders the order text sent through the messaging link.
func BuildMessage(c Cart, req CheckoutRequest) string {
	lines := []string{
		"Compra desde Estilo Sol",
		"Cliente: " + req.Name,
		"Tel: " + req.Phone,
		"",
		"Items:",
	}

	for _, it := range c.Items {
		lines = append(lines, fmt.Sprintf("%dx %s - $%s", it.Qty, it.Name, formatAmount(it.UnitPrice)))
	}

	lines = append(lines, "", "Subtotal: $"+formatAmount(c.Subtotal()))

	if req.Notes != "" {
		lines = append(lines, "Notas: "+req.Notes)
	}

	return strings.Join(lines, "\n")
}

// CheckoutURL builds the wa.me deep link. Empty sellerPhone means the
// link is disabled and callers get the message only.
func CheckoutURL(sellerPhone, message string) string {
	if sellerPhone == "" {
		return ""
	}
	return "https://wa.me/" + sellerPhone + "?text=" + url.QueryEscape(message)
}

func formatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
