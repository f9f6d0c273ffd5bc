package utils

import (
	"bytes"
	"encoding/base64"
	"html/template"
	"log"
	"strconv"

	"easyticket/config"

	"gopkg.in/gomail.v2"
)

// TicketLine is one issued ticket rendered in the confirmation email.
type TicketLine struct {
	TicketNumber string
	Name         string
	EventDate    string
	Price        string
	QRCodeBase64 string
}

// OrderConfirmationData feeds templates/order_confirmation.html.
type OrderConfirmationData struct {
	OrderNumber string
	BuyerName   string
	EventTitle  string
	VenueName   string
	TotalAmount string
	Currency    string
	Tickets     []TicketLine
}

// OrderCancellationData feeds templates/order_cancellation.html.
type OrderCancellationData struct {
	OrderNumber string
	BuyerName   string
	EventTitle  string
	Reason      string
	Refunded    bool
	TotalAmount string
	Currency    string
}

// EmbedQRCode renders a ticket code as a base64 PNG for inline email use.
func EmbedQRCode(content string) string {
	png, err := GenerateQRCode(content, 256)
	if err != nil {
		log.Printf("qr render failed: %v", err)
		return ""
	}
	return base64.StdEncoding.EncodeToString(png)
}

// SendOrderConfirmationEmail sends the confirmation with embedded ticket QR
// codes. Fire-and-forget: a mail failure is logged, never fatal.
func SendOrderConfirmationEmail(to string, data OrderConfirmationData) {
	go sendTemplate(to, "Your tickets for "+data.EventTitle+" - order "+data.OrderNumber,
		"templates/order_confirmation.html", data)
}

// SendOrderCancellationEmail notifies the buyer of a cancellation or refund.
func SendOrderCancellationEmail(to string, data OrderCancellationData) {
	subject := "Order " + data.OrderNumber + " cancelled"
	if data.Refunded {
		subject = "Order " + data.OrderNumber + " refunded"
	}
	go sendTemplate(to, subject, "templates/order_cancellation.html", data)
}

func sendTemplate(to, subject, tmplPath string, data any) {
	if to == "" {
		return
	}
	tmpl, err := template.ParseFiles(tmplPath)
	if err != nil {
		log.Printf("email template %s: %v", tmplPath, err)
		return
	}
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		log.Printf("email template render: %v", err)
		return
	}

	host := config.Config("SMTP_HOST")
	if host == "" {
		log.Printf("SMTP not configured, skipping email to %s", to)
		return
	}
	port, _ := strconv.Atoi(config.ConfigOr("SMTP_PORT", "587"))

	m := gomail.NewMessage()
	m.SetHeader("From", config.Config("SMTP_FROM"))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(host, port, config.Config("SMTP_USERNAME"), config.Config("SMTP_PASSWORD"))
	if err := d.DialAndSend(m); err != nil {
		log.Printf("email send to %s: %v", to, err)
	}
}
