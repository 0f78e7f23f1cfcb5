package order

import (
	"bytes"
	"html/template"
	"io"

	"github.com/yuditriaji/atelie-lacos/pkg/database"
	"github.com/yuditriaji/atelie-lacos/pkg/money"
	"github.com/yuditriaji/atelie-lacos/pkg/ordertotal"
)

type DocumentLine struct {
	Name      string
	Quantity  int
	UnitPrice string
	Subtotal  string
}

// Document is the printable order: store header, customer, lines and totals
type Document struct {
	StoreName    string
	Logo         string
	Instagram    string
	Phone        string
	WhatsApp     string
	ThemeColor   string
	OrderNumber  string
	Date         string
	Paid         bool
	StatusLabel  string
	PaymentLabel string
	Customer     database.Customer
	Lines        []DocumentLine
	Subtotal     string
	Shipping     string
	Total        string
}

// NewDocument formats an order for print. o.Customer must be loaded.
func NewDocument(store database.StoreSettings, o database.Order) Document {
	lines := o.Lines()
	doc := Document{
		StoreName:    store.DisplayName(),
		Logo:         store.Logo,
		Instagram:    store.Instagram,
		Phone:        store.Phone,
		WhatsApp:     store.WhatsApp,
		ThemeColor:   store.ThemeColor,
		OrderNumber:  o.OrderNumber,
		Date:         money.FormatDateLong(o.CreatedAt),
		Paid:         o.Status == ordertotal.StatusReceived,
		StatusLabel:  o.Status.Label(),
		PaymentLabel: o.PaymentMethod.Label(),
		Subtotal:     money.FormatBRL(ordertotal.LineItemsTotal(lines)),
		Shipping:     money.FormatBRL(o.ShippingValue),
		Total:        money.FormatBRL(o.TotalValue),
	}
	if doc.ThemeColor == "" {
		doc.ThemeColor = database.DefaultThemeColor
	}
	if o.Customer != nil {
		doc.Customer = *o.Customer
	}
	for _, line := range lines {
		doc.Lines = append(doc.Lines, DocumentLine{
			Name:      line.ProductName,
			Quantity:  line.Quantity,
			UnitPrice: money.FormatBRL(line.UnitPrice),
			Subtotal:  money.FormatBRL(ordertotal.LineSubtotal(line)),
		})
	}
	return doc
}

func (d Document) Render(w io.Writer) error {
	return documentTemplate.Execute(w, d)
}

func (d Document) HTML() (string, error) {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var documentTemplate = template.Must(template.New("order").Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<title>Pedido {{.OrderNumber}}</title>
<style>
  body { font-family: Arial, sans-serif; margin: 0; padding: 32px; color: #1f2937; }
  .doc { max-width: 800px; margin: 0 auto; }
  header { text-align: center; border-bottom: 1px solid #e5e7eb; padding-bottom: 16px; margin-bottom: 32px; }
  header img { height: 64px; margin-bottom: 8px; }
  h1 { font-size: 24px; margin: 0; color: {{.ThemeColor}}; }
  .muted { color: #4b5563; font-size: 14px; margin: 2px 0; }
  .paid { color: #16a34a; }
  .pending { color: #d97706; }
  table { width: 100%; border-collapse: collapse; margin-bottom: 24px; }
  th, td { border: 1px solid #e5e7eb; padding: 8px; }
  th { background: #f3f4f6; }
  .right { text-align: right; }
  .center { text-align: center; }
  .totals { margin-left: auto; width: 260px; }
  .totals div { display: flex; justify-content: space-between; }
  .total { font-weight: bold; font-size: 18px; border-top: 1px solid #e5e7eb; padding-top: 8px; }
  footer { text-align: center; color: #6b7280; font-size: 14px; margin-top: 64px; border-top: 1px solid #e5e7eb; padding-top: 16px; }
</style>
</head>
<body>
<div class="doc">
  <header>
    {{if .Logo}}<img src="{{.Logo}}" alt="{{.StoreName}}">{{end}}
    <h1>{{.StoreName}}</h1>
    {{if .Instagram}}<p class="muted">Instagram: {{.Instagram}}</p>{{end}}
    {{if .Phone}}<p class="muted">Telefone: {{.Phone}}</p>{{end}}
    {{if .WhatsApp}}<p class="muted">WhatsApp: {{.WhatsApp}}</p>{{end}}
  </header>

  <section>
    <h2>Pedido #{{.OrderNumber}}</h2>
    <p class="muted">Data: {{.Date}}</p>
    <p class="muted">Status: <span class="{{if .Paid}}paid{{else}}pending{{end}}">{{.StatusLabel}}</span></p>
    <p class="muted">Forma de pagamento: {{.PaymentLabel}}</p>
  </section>

  <section>
    <h3>Cliente:</h3>
    <p>{{.Customer.Name}}</p>
    {{if .Customer.Phone}}<p class="muted">Telefone: {{.Customer.Phone}}</p>{{end}}
    {{if .Customer.Email}}<p class="muted">Email: {{.Customer.Email}}</p>{{end}}
  </section>

  <table>
    <thead>
      <tr><th>Produto</th><th class="center">Qtd</th><th class="right">Valor Unit.</th><th class="right">Subtotal</th></tr>
    </thead>
    <tbody>
      {{range .Lines}}<tr><td>{{.Name}}</td><td class="center">{{.Quantity}}</td><td class="right">{{.UnitPrice}}</td><td class="right">{{.Subtotal}}</td></tr>
      {{end}}
    </tbody>
  </table>

  <div class="totals">
    <div><span>Subtotal:</span><span>{{.Subtotal}}</span></div>
    <div><span>Frete:</span><span>{{.Shipping}}</span></div>
    <div class="total"><span>Total:</span><span>{{.Total}}</span></div>
  </div>

  <footer>
    <p>Obrigado por escolher {{.StoreName}}!</p>
    {{if .Instagram}}<p>Instagram: {{.Instagram}}</p>{{end}}
  </footer>
</div>
</body>
</html>
`))
