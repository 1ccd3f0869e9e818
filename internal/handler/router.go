package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	custommiddleware "github.com/rewear/rewear/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware сервиса ReWear.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware.Middleware)

			r.Get("/user/profile", h.GetProfile)
			r.Get("/points", h.GetPoints)

			r.Post("/items", h.CreateItem)
			r.Get("/items", h.GetItems)
			r.Get("/items/{id}", h.GetItem)
			r.Delete("/items/{id}", h.DeleteItem)
			r.Get("/browse", h.Browse)

			r.Post("/swaps", h.CreateSwap)
			r.Get("/swaps", h.GetSwaps)
			r.Patch("/swaps/{id}", h.UpdateSwap)

			r.Post("/messages", h.SendMessage)
			r.Get("/messages", h.GetMessages)
			r.Post("/messages/read", h.MarkMessagesRead)

			r.Group(func(r chi.Router) {
				r.Use(h.authMiddleware.RequireStaff)

				r.Get("/admin/items", h.AdminGetPendingItems)
				r.Patch("/admin/items", h.AdminModerateItem)
				r.Get("/admin/users", h.AdminGetUsers)
				r.Patch("/admin/users", h.AdminUserAction)
				r.Get("/admin/stats", h.AdminGetStats)
				r.Get("/admin/swaps", h.AdminGetSwaps)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
