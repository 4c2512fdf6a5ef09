package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"tribeboard/internal/config"
	"tribeboard/internal/transport/httpserver/handler"
	authmw "tribeboard/internal/transport/httpserver/middleware"
	"tribeboard/pkg/logger"
)

func NewRouter(cfg config.Config, handlers *handler.Handlers, profiles authmw.ProfileSaver, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(authmw.NewCORS(cfg.AllowedOrigins))

	metrics := authmw.NewMetrics()
	r.Use(metrics.Middleware)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)

		auth := authmw.NewTokenAuth(cfg.Auth, profiles, log)
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)

			r.Get("/auth/me", handlers.AuthMe)
			r.Post("/sync", handlers.SyncBatch)

			r.Get("/families/me", handlers.GetFamilyMe)
			r.Post("/families", handlers.CreateFamily)
			r.Post("/families/join", handlers.JoinFamily)
			r.Post("/families/leave", handlers.LeaveFamily)
			r.Patch("/families/me", handlers.UpdateFamily)
			r.Get("/families/me/members", handlers.ListFamilyMembers)
			r.Delete("/families/me/members/{user_id}", handlers.RemoveFamilyMember)
			r.Patch("/families/me/members/{user_id}/role", handlers.SetFamilyMemberRole)

			r.Get("/task-lists", handlers.ListTaskLists)
			r.Post("/task-lists", handlers.CreateTaskList)
			r.Patch("/task-lists/{list_id}", handlers.UpdateTaskList)
			r.Delete("/task-lists/{list_id}", handlers.DeleteTaskList)
			r.Get("/task-lists/{list_id}/tasks", handlers.ListTasks)
			r.Post("/task-lists/{list_id}/tasks", handlers.CreateTask)
			r.Patch("/tasks/{task_id}", handlers.UpdateTask)
			r.Delete("/tasks/{task_id}", handlers.DeleteTask)

			r.Get("/events", handlers.ListEvents)
			r.Post("/events", handlers.CreateEvent)
			r.Patch("/events/{event_id}", handlers.UpdateEvent)
			r.Delete("/events/{event_id}", handlers.DeleteEvent)

			r.Get("/messages", handlers.ListMessages)
			r.Post("/messages", handlers.PostMessage)
			r.Delete("/messages/{message_id}", handlers.DeleteMessage)
		})
	})

	return r
}
