package mailer

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"
)

// Delivery statuses recorded after each send attempt.
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

const bodyTimeLayout = "January 02, 2006 at 03:04 PM"

const reportBodyTemplate = `Hello,

Attached is the evaluation plan you requested from the LogicalOutcomes Evaluation Planner.

It is for %s delivered by %s. It was generated on %s.

This is just a draft. If it is inaccurate, feel free to re-try the Evaluation Planner app but add additional useful information in the form.

If you have any questions, contact support@logicaloutcomes.com.

Best regards,
LogicalOutcomes Evaluation Planner`

type deliveryLog interface {
	Record(ctx context.Context, recipient, subject, filename, status string) error
}

// ReportMailer builds and dispatches one evaluation-plan email per request.
type ReportMailer struct {
	sender     Sender
	deliveries deliveryLog
	log        *slog.Logger
	now        func() time.Time
}

func NewReportMailer(sender Sender, deliveries deliveryLog, logger *slog.Logger) *ReportMailer {
	return &ReportMailer{
		sender:     sender,
		deliveries: deliveries,
		log:        logger,
		now:        time.Now,
	}
}

// SendReport composes the email for a validated request and performs a single
// synchronous send. The attempt is recorded in the delivery log either way;
// a log write failure never fails the request on its own.
func (m *ReportMailer) SendReport(ctx context.Context, to, programName, organizationName, htmlContent string) error {
	msg := BuildReportMessage(to, programName, organizationName, htmlContent, m.now())

	err := m.sender.Send(ctx, msg)

	status := StatusSent
	if err != nil {
		status = StatusFailed
	}
	if m.deliveries != nil {
		if dbErr := m.deliveries.Record(ctx, msg.To, msg.Subject, msg.Attachments[0].Filename, status); dbErr != nil {
			m.log.Error("delivery log write failed", "error", dbErr)
		}
	}

	return err
}

// BuildReportMessage derives the outgoing message from the request fields and
// the given timestamp. The HTML document travels as a base64 text/html
// attachment; the body is a fixed plain-text template.
func BuildReportMessage(to, programName, organizationName, htmlContent string, now time.Time) Message {
	subject := fmt.Sprintf("Evaluation Plan for %s - %s", programName, organizationName)
	body := fmt.Sprintf(reportBodyTemplate, programName, organizationName, now.Format(bodyTimeLayout))
	filename := SanitizeFilename(organizationName + "_" + programName + "_Evaluation_Plan.html")

	return Message{
		To:      to,
		Subject: subject,
		Body:    body,
		Attachments: []Attachment{{
			Filename:    filename,
			Content:     base64.StdEncoding.EncodeToString([]byte(htmlContent)),
			ContentType: "text/html",
			Encoding:    "base64",
		}},
	}
}

// SanitizeFilename keeps letters, digits, '.', '_' and '-'. Anything else is
// dropped, not replaced.
func SanitizeFilename(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
