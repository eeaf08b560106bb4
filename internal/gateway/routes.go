package gateway

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eduticket/eduticket-api/internal/gateway/middleware"
	auth_http "github.com/eduticket/eduticket-api/internal/modules/auth/interfaces/http"
	notification_http "github.com/eduticket/eduticket-api/internal/modules/notification/interfaces/http"
	ticket_http "github.com/eduticket/eduticket-api/internal/modules/ticket/interfaces/http"
)

// RouterConfig holds the handlers and middleware needed for routing.
type RouterConfig struct {
	AuthHandler         *auth_http.AuthHandler
	AuthMiddleware      *middleware.AuthMiddleware
	TicketHandler       *ticket_http.TicketHandler
	NotificationHandler *notification_http.NotificationHandler
}

// SetupRoutes configures all application routes.
func SetupRoutes(config RouterConfig) *http.ServeMux {
	mux := http.NewServeMux()
	auth := config.AuthMiddleware

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.Handle("/metrics", promhttp.Handler())

	// Auth
	mux.HandleFunc("POST /register", config.AuthHandler.Register)
	mux.HandleFunc("POST /login", config.AuthHandler.Login)
	mux.HandleFunc("POST /auth/google", config.AuthHandler.GoogleLogin)
	mux.Handle("GET /me", auth.RequireAuth(http.HandlerFunc(config.AuthHandler.Me)))

	// Tickets
	mux.Handle("POST /tickets", auth.RequireAuth(http.HandlerFunc(config.TicketHandler.Create)))
	mux.Handle("GET /tickets", auth.RequireAuth(http.HandlerFunc(config.TicketHandler.List)))
	mux.Handle("GET /tickets/{id}", auth.RequireAuth(http.HandlerFunc(config.TicketHandler.Get)))
	mux.Handle("PATCH /tickets/{id}/status", auth.RequireAuth(http.HandlerFunc(config.TicketHandler.UpdateStatus)))
	mux.Handle("PATCH /tickets/{id}/assignee", auth.RequireAuth(http.HandlerFunc(config.TicketHandler.UpdateAssignee)))
	mux.Handle("POST /tickets/{id}/comments", auth.RequireAuth(http.HandlerFunc(config.TicketHandler.AddComment)))
	mux.Handle("GET /tickets/{id}/comments", auth.RequireAuth(http.HandlerFunc(config.TicketHandler.ListComments)))
	mux.Handle("POST /tickets/{id}/attachments", auth.RequireAuth(http.HandlerFunc(config.TicketHandler.UploadAttachment)))
	mux.Handle("GET /tickets/{id}/attachments", auth.RequireAuth(http.HandlerFunc(config.TicketHandler.ListAttachments)))

	// Notifications
	mux.Handle("GET /notifications", auth.RequireAuth(http.HandlerFunc(config.NotificationHandler.List)))
	mux.Handle("PATCH /notifications/{id}/read", auth.RequireAuth(http.HandlerFunc(config.NotificationHandler.MarkRead)))
	mux.Handle("PATCH /notifications/read-all", auth.RequireAuth(http.HandlerFunc(config.NotificationHandler.MarkAllRead)))
	mux.Handle("DELETE /notifications/{id}", auth.RequireAuth(http.HandlerFunc(config.NotificationHandler.Delete)))
	mux.Handle("GET /notifications/unread-count", auth.RequireAuth(http.HandlerFunc(config.NotificationHandler.UnreadCount)))
	mux.Handle("GET /ws", auth.RequireAuth(http.HandlerFunc(config.NotificationHandler.Subscribe)))

	return mux
}
