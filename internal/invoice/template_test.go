package invoice

import (
	"strings"
	"testing"

	"inventory-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderHTML(t *testing.T) {
	ev := &models.OrderCreatedEvent{
		OrderID:      7,
		CustomerName: "Asha Kulkarni",
		Mobile:       "9876543210",
		Email:        "asha@example.com",
		Address:      "12 MG Road, Pune",
		TotalAmount:  135000,
		Lines: []models.OrderLineData{
			{
				ItemID:      1,
				Name:        "Glossy White",
				UnitPrice:   45000,
				Quantity:    3,
				SizeLabel:   "600x600",
				DesignLabel: "Marble",
				LineTotal:   135000,
			},
		},
	}

	html, err := RenderHTML(ev)

	require.NoError(t, err)
	assert.Contains(t, html, "ABC Pvt ltd.")
	assert.Contains(t, html, "Customer: Asha Kulkarni")
	assert.Contains(t, html, "Mobile: 9876543210")
	assert.Contains(t, html, "Glossy White")
	assert.Contains(t, html, "600x600")
	assert.Contains(t, html, "Marble")
	assert.Contains(t, html, "Rs 450.00")
	assert.Contains(t, html, "Total Amount: Rs 1350.00")
}

func TestRenderHTMLEscapesMarkup(t *testing.T) {
	ev := &models.OrderCreatedEvent{
		CustomerName: "<script>alert(1)</script>",
		Lines:        []models.OrderLineData{{Name: "Tile"}},
	}

	html, err := RenderHTML(ev)

	require.NoError(t, err)
	assert.NotContains(t, html, "<script>alert(1)</script>")
}

func TestRenderHTMLNumbersRows(t *testing.T) {
	ev := &models.OrderCreatedEvent{
		CustomerName: "Asha",
		Lines: []models.OrderLineData{
			{Name: "Tile A"},
			{Name: "Tile B"},
		},
	}

	html, err := RenderHTML(ev)

	require.NoError(t, err)
	assert.Less(t, strings.Index(html, "Tile A"), strings.Index(html, "Tile B"))
	assert.Contains(t, html, "<td>1</td>")
	assert.Contains(t, html, "<td>2</td>")
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "0.00", formatMoney(0))
	assert.Equal(t, "0.05", formatMoney(5))
	assert.Equal(t, "450.00", formatMoney(45000))
	assert.Equal(t, "1234.56", formatMoney(123456))
	assert.Equal(t, "-12.34", formatMoney(-1234))
}
