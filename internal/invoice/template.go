package invoice

import (
	"bytes"
	"fmt"
	"html/template"

	"inventory-service/internal/models"
)

var invoiceTmpl = template.Must(template.New("invoice").Funcs(template.FuncMap{
	"money": formatMoney,
	"inc":   func(i int) int { return i + 1 },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: Helvetica, Arial, sans-serif; color: #222; }
  .header { text-align: center; }
  .header h1 { margin-bottom: 2px; }
  .header p { margin-top: 0; font-size: 12px; }
  hr { border: none; border-top: 1px solid #222; }
  .customer p { margin: 2px 0; font-size: 13px; }
  table { width: 100%; border-collapse: collapse; margin-top: 14px; font-size: 12px; }
  th, td { border-bottom: 1px solid #ccc; padding: 6px 4px; text-align: left; }
  td.num, th.num { text-align: right; }
  .total { text-align: right; font-size: 15px; font-weight: bold; margin-top: 16px; }
  .note { font-size: 10px; margin-top: 30px; }
</style>
</head>
<body>
  <div class="header">
    <h1>ABC Pvt ltd.</h1>
    <p>Address: Shivaji Nagar, Tehsil - Barshi, District - Osmanabad | Contact: 91 8888724838</p>
  </div>
  <hr>
  <div class="customer">
    <p>Customer: {{.CustomerName}}</p>
    <p>Email: {{.Email}}</p>
    <p>Mobile: {{.Mobile}}</p>
    <p>Address: {{.Address}}</p>
  </div>
  <h3 style="text-align:center">Order Items List</h3>
  <table>
    <tr><th>#</th><th>Item</th><th>Size</th><th>Design</th><th class="num">Price</th><th class="num">Qty</th><th class="num">Total</th></tr>
    {{range $i, $l := .Lines}}
    <tr>
      <td>{{inc $i}}</td>
      <td>{{$l.Name}}</td>
      <td>{{$l.SizeLabel}}</td>
      <td>{{$l.DesignLabel}}</td>
      <td class="num">Rs {{money $l.UnitPrice}}</td>
      <td class="num">{{$l.Quantity}}</td>
      <td class="num">Rs {{money $l.LineTotal}}</td>
    </tr>
    {{end}}
  </table>
  <p class="total">Total Amount: Rs {{money .TotalAmount}}</p>
  <p class="note">Note:<br>This is a computer-generated bill. No stamp required.</p>
</body>
</html>`))

// RenderHTML renders the invoice markup for an order event. Split from
// the PDF step so it can be exercised without Chrome.
func RenderHTML(ev *models.OrderCreatedEvent) (string, error) {
	var buf bytes.Buffer
	if err := invoiceTmpl.Execute(&buf, ev); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// formatMoney renders paise as rupees with two decimals.
func formatMoney(paise int64) string {
	sign := ""
	if paise < 0 {
		sign = "-"
		paise = -paise
	}
	return fmt.Sprintf("%s%d.%02d", sign, paise/100, paise%100)
}
