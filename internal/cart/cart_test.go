package cart

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddItem_MergesQuantity(t *testing.T) {
	items := []Item{{ProductID: "p1", Name: "Shampoo", UnitPrice: 1200, Qty: 2}}

	items = addItem(items, Item{ProductID: "p1", Qty: 1})

	require.Len(t, items, 1, "same product must merge, not duplicate")
	assert.Equal(t, 3, items[0].Qty)
	assert.Equal(t, "Shampoo", items[0].Name, "original line data kept")
}

func TestAddItem_AppendsNewProduct(t *testing.T) {
	items := []Item{{ProductID: "p1", Qty: 1}}
	items = addItem(items, Item{ProductID: "p2", Qty: 4})

	require.Len(t, items, 2)
	assert.Equal(t, "p2", items[1].ProductID)
}

func TestSetQty(t *testing.T) {
	items := []Item{{ProductID: "p1", Qty: 2}, {ProductID: "p2", Qty: 1}}

	items = setQty(items, "p1", 5)
	assert.Equal(t, 5, items[0].Qty)

	items = setQty(items, "p2", 0)
	require.Len(t, items, 1, "qty<=0 removes the line")
	assert.Equal(t, "p1", items[0].ProductID)
}

func TestRemoveItem(t *testing.T) {
	items := []Item{{ProductID: "p1", Qty: 1}, {ProductID: "p2", Qty: 1}}
	items = removeItem(items, "p1")

	require.Len(t, items, 1)
	assert.Equal(t, "p2", items[0].ProductID)
}

func TestSanitize(t *testing.T) {
	items := Sanitize([]Item{
		{ProductID: "p1", Qty: 2},
		{ProductID: "", Qty: 3},
		{ProductID: "p2", Qty: 0},
		{ProductID: "p3", Qty: -1},
		{ProductID: "p4", Qty: 1, UnitPrice: -50},
	})

	require.Len(t, items, 2)
	assert.Equal(t, "p1", items[0].ProductID)
	assert.Equal(t, "p4", items[1].ProductID)
	assert.Equal(t, float64(0), items[1].UnitPrice, "negative price clamped")
}

func TestSubtotal(t *testing.T) {
	c := Cart{Items: []Item{
		{ProductID: "p1", UnitPrice: 1200, Qty: 2},
		{ProductID: "p2", UnitPrice: 450.5, Qty: 1},
	}}
	assert.Equal(t, 2850.5, c.Subtotal())
}

func TestBuildMessage(t *testing.T) {
	c := Cart{Items: []Item{
		{ProductID: "p1", Name: "Shampoo Argán", UnitPrice: 1200, Qty: 2},
		{ProductID: "p2", Name: "Aros Luna", UnitPrice: 450, Qty: 1},
	}}

	msg := BuildMessage(c, CheckoutRequest{Name: "Ana", Phone: "54911555", Notes: "entregar sábado"})

	lines := strings.Split(msg, "\n")
	assert.Equal(t, "Compra desde Estilo Sol", lines[0])
	assert.Contains(t, msg, "Cliente: Ana")
	assert.Contains(t, msg, "2x Shampoo Argán - $1200")
	assert.Contains(t, msg, "1x Aros Luna - $450")
	assert.Contains(t, msg, "Subtotal: $2850")
	assert.Contains(t, msg, "Notas: entregar sábado")
}

func TestBuildMessage_NoNotes(t *testing.T) {
	c := Cart{Items: []Item{{ProductID: "p1", Name: "X", UnitPrice: 10, Qty: 1}}}
	msg := BuildMessage(c, CheckoutRequest{Name: "Ana", Phone: "x"})
	assert.NotContains(t, msg, "Notas:")
}

func TestCheckoutURL(t *testing.T) {
	u := CheckoutURL("5491123456789", "hola mundo\nlinea 2")
	assert.True(t, strings.HasPrefix(u, "https://wa.me/5491123456789?text="))

	parsed, err := url.Parse(u)
	require.NoError(t, err)
	assert.Equal(t, "hola mundo\nlinea 2", parsed.Query().Get("text"))

	assert.Empty(t, CheckoutURL("", "msg"), "no seller phone disables the link")
}
