package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"storefront_back_end/internal/models"

	"github.com/shopspring/decimal"
	"github.com/wneessen/go-mail"
)

type MailerConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer sends the order confirmation email once an order is committed.
type Mailer struct {
	from string
	send func(ctx context.Context, msg *mail.Msg) error
}

func NewMailer(cfg MailerConfig) (*Mailer, error) {
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	return &Mailer{
		from: cfg.From,
		send: func(ctx context.Context, msg *mail.Msg) error {
			return client.DialAndSendWithContext(ctx, msg)
		},
	}, nil
}

func (m *Mailer) Name() string { return "confirmation email" }

func (m *Mailer) OrderPlaced(ctx context.Context, placed *models.PlacedOrder) error {
	msg, err := m.confirmationMessage(placed)
	if err != nil {
		return err
	}
	if err := m.send(ctx, msg); err != nil {
		return fmt.Errorf("send confirmation to %s: %w", placed.Customer.Email, err)
	}
	log.Println("📧 Confirmation email sent to", placed.Customer.Email)
	return nil
}

func (m *Mailer) confirmationMessage(placed *models.PlacedOrder) (*mail.Msg, error) {
	body, err := RenderOrderConfirmation(placed)
	if err != nil {
		return nil, err
	}

	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return nil, err
	}
	if err := msg.To(placed.Customer.Email); err != nil {
		return nil, err
	}
	msg.Subject("Your order " + placed.Order.OrderNumber + " is confirmed")
	msg.SetBodyString(mail.TypeTextHTML, body)
	return msg, nil
}

var confirmationTemplate = template.Must(template.New("confirmation").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<title>Order confirmation</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Thank you for your order, {{.Name}}</h2>
		<p>Order <strong>{{.OrderNumber}}</strong> has been paid and is being prepared.</p>
		<table style="width: 100%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background-color: #f0f0f0;">
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Product</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Quantity</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Amount</th>
				</tr>
			</thead>
			<tbody>
				{{range .Lines}}<tr>
					<td style="padding: 10px; border: 1px solid #ddd;">{{.ProductID}}</td>
					<td style="padding: 10px; border: 1px solid #ddd;">{{.Quantity}}</td>
					<td style="padding: 10px; border: 1px solid #ddd;">{{.Amount}}</td>
				</tr>{{end}}
			</tbody>
			<tfoot>
				<tr>
					<td colspan="2" style="padding: 10px; text-align: right; font-weight: bold;">Total:</td>
					<td style="padding: 10px; font-weight: bold;">{{.Total}}</td>
				</tr>
			</tfoot>
		</table>
	</div>
</body>
</html>`))

type confirmationLine struct {
	ProductID string
	Quantity  int
	Amount    string
}

// RenderOrderConfirmation renders the HTML body of the confirmation email.
func RenderOrderConfirmation(placed *models.PlacedOrder) (string, error) {
	data := struct {
		Name        string
		OrderNumber string
		Total       string
		Lines       []confirmationLine
	}{
		Name:        placed.Customer.Name,
		OrderNumber: placed.Order.OrderNumber,
		Total:       money(placed.Order.Total),
	}
	for _, item := range placed.Order.Items {
		data.Lines = append(data.Lines, confirmationLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Amount:    money(item.PriceAtPurchase),
		})
	}

	var buf bytes.Buffer
	if err := confirmationTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render confirmation: %w", err)
	}
	return buf.String(), nil
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
