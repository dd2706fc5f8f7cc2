package email

import (
	"fmt"
	"html"
	"strings"
	"time"
)

// LeadNotificationData describes a newly captured record for the sales inbox.
type LeadNotificationData struct {
	RecordID     string
	Store        string
	Source       string
	Name         string
	Email        string
	Organization string
	CreatedAt    time.Time
	// Fields holds the remaining form answers in display order.
	Fields [][2]string
}

// BuildLeadNotificationEmail renders the internal "new lead" message.
// Reply-To points at the submitter so sales can answer directly.
func BuildLeadNotificationEmail(to []string, data LeadNotificationData) Message {
	who := data.Name
	if data.Organization != "" {
		who = fmt.Sprintf("%s (%s)", data.Name, data.Organization)
	}
	subject := fmt.Sprintf("[HospIntel] New %s submission from %s", data.Source, who)

	var text strings.Builder
	fmt.Fprintf(&text, "A new submission was stored in %q.\n\n", data.Store)
	fmt.Fprintf(&text, "Record:  %s\n", data.RecordID)
	fmt.Fprintf(&text, "Name:    %s\n", data.Name)
	fmt.Fprintf(&text, "Email:   %s\n", data.Email)
	if data.Organization != "" {
		fmt.Fprintf(&text, "Org:     %s\n", data.Organization)
	}
	fmt.Fprintf(&text, "Created: %s\n", data.CreatedAt.UTC().Format(time.RFC3339))
	for _, f := range data.Fields {
		fmt.Fprintf(&text, "%s: %s\n", f[0], f[1])
	}

	var rows strings.Builder
	row := func(k, v string) {
		fmt.Fprintf(&rows, `<tr><td style="padding: 4px 12px 4px 0; color: #6b7280;">%s</td><td style="padding: 4px 0;">%s</td></tr>`,
			html.EscapeString(k), html.EscapeString(v))
	}
	row("Record", data.RecordID)
	row("Name", data.Name)
	row("Email", data.Email)
	if data.Organization != "" {
		row("Organization", data.Organization)
	}
	row("Created", data.CreatedAt.UTC().Format(time.RFC3339))
	for _, f := range data.Fields {
		row(f[0], f[1])
	}

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #0f766e;">New %s submission</h2>
    <p>Stored in <strong>%s</strong>.</p>
    <table>%s</table>
</body>
</html>`,
		html.EscapeString(data.Source), html.EscapeString(data.Store), rows.String())

	return Message{
		To:       to,
		ReplyTo:  data.Email,
		Subject:  subject,
		TextBody: text.String(),
		HTMLBody: htmlBody,
	}
}
