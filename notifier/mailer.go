package notifier

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/ravinder1302/ARS-Kart/models"
)

// ConfirmationLine is one row of the order confirmation email.
type ConfirmationLine struct {
	Name     string
	Quantity int
	Price    models.Money
}

// Notifier dispatches order emails. Every call is best-effort from the
// orchestrator's point of view: errors are logged by the caller, never
// surfaced to the buyer.
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, email, orderID string, lines []ConfirmationLine, total models.Money, shipping models.ShippingSnapshot) error
	SendOrderStatusUpdate(ctx context.Context, email, orderID, newStatus, recipientName string) error
}

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`
<h2>Thank you for your order!</h2>
<p>Hi {{.Shipping.FirstName}}, your order <strong>{{.OrderID}}</strong> has been placed.</p>
<table style="border-collapse: collapse;">
  <tr><th align="left">Product</th><th align="left">Qty</th><th align="left">Price</th><th align="left">Subtotal</th></tr>
  {{range .Lines}}
  <tr>
    <td style="padding: 6px 12px;">{{.Name}}</td>
    <td style="padding: 6px 12px;">{{.Quantity}}</td>
    <td style="padding: 6px 12px;">${{.Price}}</td>
    <td style="padding: 6px 12px;">${{.Subtotal}}</td>
  </tr>
  {{end}}
</table>
<p><strong>Total: ${{.Total}}</strong></p>
<p>Shipping to: {{.Shipping.Address}}, {{.Shipping.City}}, {{.Shipping.State}} {{.Shipping.ZipCode}}</p>
`))

var statusTmpl = template.Must(template.New("status").Parse(`
<h2>Order update</h2>
<p>Hi {{.Name}},</p>
<p>{{.Message}}</p>
<p>Order: <strong>{{.OrderID}}</strong></p>
`))

// Mailer renders order emails and sends them through an EmailSender.
type Mailer struct {
	sender EmailSender
}

func NewMailer(sender EmailSender) *Mailer {
	return &Mailer{sender: sender}
}

type confirmationLineView struct {
	Name     string
	Quantity int
	Price    string
	Subtotal string
}

func (m *Mailer) SendOrderConfirmation(ctx context.Context, email, orderID string, lines []ConfirmationLine, total models.Money, shipping models.ShippingSnapshot) error {
	views := make([]confirmationLineView, 0, len(lines))
	for _, l := range lines {
		views = append(views, confirmationLineView{
			Name:     l.Name,
			Quantity: l.Quantity,
			Price:    l.Price.StringFixed(2),
			Subtotal: l.Price.MulQty(l.Quantity).StringFixed(2),
		})
	}

	var body bytes.Buffer
	err := confirmationTmpl.Execute(&body, map[string]interface{}{
		"OrderID":  orderID,
		"Lines":    views,
		"Total":    total.StringFixed(2),
		"Shipping": shipping,
	})
	if err != nil {
		return fmt.Errorf("render confirmation email: %w", err)
	}

	_, err = m.sender.SendEmail(ctx, email, "Order Confirmation - ARS Kart", body.String())
	return err
}

func (m *Mailer) SendOrderStatusUpdate(ctx context.Context, email, orderID, newStatus, recipientName string) error {
	var body bytes.Buffer
	err := statusTmpl.Execute(&body, map[string]interface{}{
		"Name":    recipientName,
		"OrderID": orderID,
		"Message": statusMessage(newStatus),
	})
	if err != nil {
		return fmt.Errorf("render status email: %w", err)
	}

	_, err = m.sender.SendEmail(ctx, email, "Order Status Update - ARS Kart", body.String())
	return err
}

func statusMessage(status string) string {
	switch status {
	case "shipped":
		return "Great news! Your order is on its way."
	case "delivered":
		return "Your order has been delivered successfully."
	case "cancelled":
		return "Your order has been cancelled as requested."
	default:
		return fmt.Sprintf("Your order status has been updated to: %s", status)
	}
}
