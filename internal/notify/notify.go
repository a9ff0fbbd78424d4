// Package notify emails ranking summaries.
package notify

import (
	"context"
	"fmt"
	"html"
	"net/smtp"
	"strings"

	"marketwatch-backend/internal/components/telemetry"
	"marketwatch-backend/internal/scrapers/marketwatch"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("marketwatch.internal.notify")

const report_send = "send"

type SmtpConfig struct {
	Server       string `json:"server"`
	Port         int    `json:"port"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
}

type sendFunc func(mail *email.Email, addr string, auth smtp.Auth) error

func send(mail *email.Email, addr string, auth smtp.Auth) error {
	return mail.Send(addr, auth)
}

type Mailer struct {
	config SmtpConfig
	send   sendFunc
	tel    telemetry.API
}

func NewMailer(config SmtpConfig, tel telemetry.API) Mailer {
	return Mailer{
		config: config,
		send:   send,
		tel:    telemetry.NewScopedAPI("notify", tel),
	}
}

func (m Mailer) deliver(mail *email.Email) error {
	addr := fmt.Sprintf("%s:%d", m.config.Server, m.config.Port)
	err := m.send(
		mail,
		addr,
		smtp.PlainAuth("", m.config.EmailAddress, m.config.Password, m.config.Server),
	)
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = m.send(mail, addr, nil)
	}
	return err
}

func formatRankings(rankings []marketwatch.Ranking) table.Writer {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Rank", "Player", "Value", "Gain %", "Trades", "Gain"})
	for _, r := range rankings {
		t.AppendRow(table.Row{
			r.Rank,
			r.Player,
			fmt.Sprintf("$%.2f", r.PortfolioValue),
			fmt.Sprintf("%.2f%%", r.GainPercentage*100),
			r.Transactions,
			fmt.Sprintf("$%.2f", r.Gain),
		})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	return t
}

// SendRankSummary emails the rankings of a game to every address in to.
func (m Mailer) SendRankSummary(ctx context.Context, to []string, gameId string, rankings []marketwatch.Ranking) error {
	_, span := tracer.Start(ctx, "SendRankSummary")
	defer span.End()

	if len(to) == 0 {
		return nil
	}

	t := formatRankings(rankings)

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("MarketWatch Rankings <%s>", m.config.EmailAddress)
	mail.To = to
	mail.Subject = fmt.Sprintf("Rankings for %s", gameId)
	mail.Text = []byte(fmt.Sprintf("Current rankings for %s:\n\n%s\n", gameId, t.Render()))
	mail.HTML = []byte(fmt.Sprintf("<p>Current rankings for <b>%s</b>:</p>\n%s\n", html.EscapeString(gameId), t.RenderHTML()))

	err := m.deliver(mail)
	if err != nil {
		span.RecordError(err)
		m.tel.ReportBroken(report_send, err, gameId)
		return err
	}
	return nil
}
