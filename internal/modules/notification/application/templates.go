package application

import (
	"fmt"

	"github.com/eduticket/eduticket-api/internal/modules/notification/domain"
)

// Content is a rendered title/message pair.
type Content struct {
	Title   string
	Message string
}

// ResolveContent maps a kind and context to human-readable content. It is
// total: every known kind has exactly one template and unknown kinds fall
// back to a generic pair, so callers never handle an error here.
func ResolveContent(kind domain.Kind, ctx domain.TitleContext) Content {
	ticket := fallback(ctx.TicketTitle, "a ticket")
	user := fallback(ctx.UserName, "Someone")
	status := fallback(ctx.Status, "updated")
	course := ctx.CourseCode

	switch kind {
	case domain.KindTicketCreated:
		return Content{
			Title:   withCourse("New ticket", course),
			Message: fmt.Sprintf("%s opened %q.", user, ticket),
		}
	case domain.KindTicketAssigned:
		return Content{
			Title:   withCourse("Ticket assigned to you", course),
			Message: fmt.Sprintf("You have been assigned %q.", ticket),
		}
	case domain.KindTicketStatusChanged:
		return Content{
			Title:   withCourse("Ticket status changed", course),
			Message: fmt.Sprintf("%q is now %s.", ticket, status),
		}
	case domain.KindTicketResolved:
		return Content{
			Title:   withCourse("Ticket resolved", course),
			Message: fmt.Sprintf("%q has been resolved.", ticket),
		}
	case domain.KindTicketDueSoon:
		return Content{
			Title:   withCourse("Ticket due soon", course),
			Message: fmt.Sprintf("%q is approaching its deadline.", ticket),
		}
	case domain.KindCommentAdded:
		return Content{
			Title:   withCourse("New comment", course),
			Message: fmt.Sprintf("%s commented on %q.", user, ticket),
		}
	case domain.KindMention:
		return Content{
			Title:   withCourse("You were mentioned", course),
			Message: fmt.Sprintf("%s mentioned you on %q.", user, ticket),
		}
	case domain.KindAITriageComplete:
		return Content{
			Title:   withCourse("Triage suggestion ready", course),
			Message: fmt.Sprintf("AI triage finished analyzing %q.", ticket),
		}
	case domain.KindAssignmentFailed:
		return Content{
			Title:   withCourse("Assignment failed", course),
			Message: fmt.Sprintf("%q could not be assigned automatically.", ticket),
		}
	case domain.KindDeadlineWarning:
		return Content{
			Title:   withCourse("Deadline warning", course),
			Message: fmt.Sprintf("The deadline for %q is close.", ticket),
		}
	case domain.KindSimilarTicketFound:
		return Content{
			Title:   withCourse("Similar ticket found", course),
			Message: fmt.Sprintf("A ticket similar to %q already exists.", ticket),
		}
	case domain.KindWeeklyReport:
		return Content{
			Title:   "Your weekly report",
			Message: "Your weekly support activity summary is ready.",
		}
	case domain.KindTrendAlert:
		return Content{
			Title:   withCourse("Trend alert", course),
			Message: "An unusual pattern was detected in recent tickets.",
		}
	case domain.KindWorkloadHigh:
		return Content{
			Title:   "High workload",
			Message: fmt.Sprintf("%s currently has a high open-ticket load.", user),
		}
	case domain.KindSLABreach:
		return Content{
			Title:   withCourse("SLA breach", course),
			Message: fmt.Sprintf("%q exceeded its response-time target.", ticket),
		}
	default:
		return Content{Title: "Notification", Message: "You have a new notification."}
	}
}

func withCourse(title, course string) string {
	if course == "" {
		return title
	}
	return fmt.Sprintf("[%s] %s", course, title)
}

func fallback(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
