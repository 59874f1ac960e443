package mail

import (
	"agv-finance/internal/config"
	"agv-finance/internal/domain/payment"
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"

	"gopkg.in/gomail.v2"
)

// Sender delivers composed messages. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type Mailer struct {
	sender Sender
	from   string
	logger *slog.Logger
}

var _ payment.ReceiptSender = (*Mailer)(nil)

func NewMailer(cfg config.SMTPConfig, logger *slog.Logger) *Mailer {
	return NewMailerWithSender(gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), cfg.From, logger)
}

func NewMailerWithSender(s Sender, from string, logger *slog.Logger) *Mailer {
	return &Mailer{sender: s, from: from, logger: logger.With(slog.String("component", "mailer"))}
}

var receiptTemplate = template.Must(template.New("receipt").Parse(`<h2>Payment receipt {{.Payment.ReceiptNumber}}</h2>
<p>Dear {{.Loan.CustomerName}},</p>
<p>We have received your payment towards loan <strong>{{.Loan.LoanNumber}}</strong>.</p>
<table cellpadding="4">
<tr><td>Payment number</td><td>{{.Payment.PaymentNumber}}</td></tr>
<tr><td>Date</td><td>{{.Payment.PaymentDate.Format "02 Jan 2006"}}</td></tr>
<tr><td>Amount</td><td>&#8377;{{.Payment.Amount.StringFixed 2}}</td></tr>
<tr><td>Towards interest</td><td>&#8377;{{.Payment.InterestAmount.StringFixed 2}}</td></tr>
<tr><td>Towards principal</td><td>&#8377;{{.Payment.PrincipalAmount.StringFixed 2}}</td></tr>
<tr><td>Method</td><td>{{.Payment.PaymentMethod}}</td></tr>
{{- if .Payment.TransactionID}}
<tr><td>Transaction id</td><td>{{.Payment.TransactionID}}</td></tr>
{{- end}}
<tr><td>Outstanding principal</td><td>&#8377;{{.OutstandingPrincipal.StringFixed 2}}</td></tr>
</table>
<p>Thank you,<br>AGV Finance</p>
`))

func (m *Mailer) SendPaymentReceipt(ctx context.Context, to string, r payment.Receipt) error {
	if r.Payment == nil || r.Loan == nil {
		return fmt.Errorf("receipt needs both payment and loan")
	}
	var body bytes.Buffer
	if err := receiptTemplate.Execute(&body, r); err != nil {
		return fmt.Errorf("render receipt: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("Payment receipt %s for loan %s", r.Payment.ReceiptNumber, r.Loan.LoanNumber))
	msg.SetBody("text/html", body.String())

	if err := m.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("send receipt %s: %w", r.Payment.ReceiptNumber, err)
	}
	m.logger.InfoContext(ctx, "Payment receipt sent", slog.String("receiptNumber", r.Payment.ReceiptNumber))
	return nil
}
