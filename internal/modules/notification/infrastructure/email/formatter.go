package email

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/eduticket/eduticket-api/internal/modules/notification/domain"
)

// Formatter renders a dispatch request into a self-contained HTML email.
// Formatting is pure: the same request always renders the same document.
type Formatter struct {
	baseURL string
}

func NewFormatter(baseURL string) *Formatter {
	return &Formatter{baseURL: strings.TrimRight(baseURL, "/")}
}

var emailTmpl = template.Must(template.New("notification").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="margin:0;padding:0;background-color:#f4f5f7;font-family:Arial,Helvetica,sans-serif;">
<table role="presentation" width="100%" cellpadding="0" cellspacing="0">
<tr><td align="center" style="padding:24px;">
<table role="presentation" width="600" cellpadding="0" cellspacing="0" style="background:#ffffff;border-radius:8px;overflow:hidden;">
<tr><td style="background:#1d4ed8;padding:20px 32px;">
<h1 style="margin:0;color:#ffffff;font-size:20px;">EduTicket</h1>
</td></tr>
<tr><td style="padding:32px;">
<h2 style="margin:0 0 12px;color:#111827;font-size:18px;">{{.Title}}</h2>
<p style="margin:0 0 20px;color:#374151;font-size:14px;line-height:1.6;">{{.Message}}</p>
{{if .Context}}
<table role="presentation" width="100%" cellpadding="0" cellspacing="0" style="background:#f9fafb;border-radius:6px;margin-bottom:20px;">
<tr><td style="padding:16px;">
{{range .Context}}<p style="margin:0 0 4px;color:#6b7280;font-size:13px;"><strong>{{.Label}}:</strong> {{.Value}}</p>
{{end}}</td></tr>
</table>
{{end}}
{{range .Actions}}<p style="margin:0 0 12px;"><a href="{{.URL}}" style="display:inline-block;background:#1d4ed8;color:#ffffff;text-decoration:none;padding:10px 20px;border-radius:6px;font-size:14px;">{{.Label}}</a></p>
{{end}}</td></tr>
<tr><td style="padding:20px 32px;background:#f9fafb;">
<p style="margin:0;color:#9ca3af;font-size:12px;">You are receiving this because of activity on your EduTicket account.</p>
</td></tr>
</table>
</td></tr>
</table>
</body>
</html>
`))

type contextRow struct {
	Label string
	Value string
}

type emailData struct {
	Title   string
	Message string
	Context []contextRow
	Actions []domain.Action
}

// Format renders the subject and HTML body for a request. It degrades
// rather than fails: empty actions get a default link, absent context
// fields omit the panel, unknown kinds get a generic subject.
func (f *Formatter) Format(req domain.Request) (string, string) {
	data := emailData{
		Title:   orDefault(req.Title, "Notification"),
		Message: orDefault(req.Message, "You have a new notification."),
		Context: f.contextRows(req),
		Actions: req.Actions,
	}
	if len(data.Actions) == 0 {
		data.Actions = []domain.Action{f.defaultAction(req)}
	}

	var body strings.Builder
	if err := emailTmpl.Execute(&body, data); err != nil {
		// The template is static and the data plain; execution cannot
		// realistically fail, but the fallback keeps Format total.
		return f.subject(req), fmt.Sprintf("<html><body><p>%s</p></body></html>",
			template.HTMLEscapeString(data.Message))
	}
	return f.subject(req), body.String()
}

func (f *Formatter) subject(req domain.Request) string {
	ticket := "your ticket"
	if t, ok := req.Metadata["ticket_title"].(string); ok && t != "" {
		ticket = fmt.Sprintf("%q", t)
	}
	switch req.Kind {
	case domain.KindTicketAssigned:
		return fmt.Sprintf("[EduTicket] You have been assigned %s", ticket)
	case domain.KindCommentAdded:
		return fmt.Sprintf("[EduTicket] New comment on %s", ticket)
	case domain.KindTicketResolved:
		return fmt.Sprintf("[EduTicket] %s has been resolved", ticket)
	default:
		if req.Title != "" {
			return fmt.Sprintf("[EduTicket] %s", req.Title)
		}
		return "[EduTicket] Notification"
	}
}

func (f *Formatter) defaultAction(req domain.Request) domain.Action {
	if req.TicketID != nil {
		return domain.Action{
			Label: "View Ticket",
			URL:   fmt.Sprintf("%s/tickets/%s", f.baseURL, req.TicketID),
		}
	}
	if id, ok := req.Metadata["ticket_id"].(string); ok && id != "" {
		return domain.Action{
			Label: "View Ticket",
			URL:   fmt.Sprintf("%s/tickets/%s", f.baseURL, id),
		}
	}
	return domain.Action{Label: "Open Dashboard", URL: f.baseURL + "/dashboard"}
}

func (f *Formatter) contextRows(req domain.Request) []contextRow {
	var rows []contextRow
	if course, ok := req.Metadata["course_code"].(string); ok && course != "" {
		rows = append(rows, contextRow{Label: "Course", Value: course})
	}
	if ec := req.EducationalContext; ec != nil {
		if ec.AcademicLevel != "" {
			rows = append(rows, contextRow{Label: "Academic level", Value: ec.AcademicLevel})
		}
		if ec.Deadline != nil {
			rows = append(rows, contextRow{Label: "Deadline", Value: ec.Deadline.Format("Mon, 02 Jan 2006 15:04 MST")})
		}
		if ec.UrgencyScore > 0 {
			rows = append(rows, contextRow{Label: "Urgency", Value: fmt.Sprintf("%.1f/10", ec.UrgencyScore)})
		}
	}
	return rows
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
