package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/Structurer/nav-front-build/internal/httpserver/deps"
	"github.com/Structurer/nav-front-build/internal/httpserver/handlers"
	"github.com/Structurer/nav-front-build/internal/httpserver/mw"
)

func init() { Register(registerCatalog) }

func registerCatalog(r chi.Router, d deps.Deps) {
	r.Group(func(r chi.Router) {
		r.Use(mw.EnforceHost(d.AllowedHosts, d.Logger))

		r.Get("/api/catalog", handlers.Catalog(d))
		r.Get("/api/notices", handlers.Notices(d))
		r.Get("/go/{id}", handlers.Go(d))

		r.Post("/api/icons", handlers.AddIcon(d))
		r.Put("/api/icons/{id}", handlers.EditIcon(d))
		r.Delete("/api/icons/{id}", handlers.DeleteIcon(d))
		r.Post("/api/icons/move", handlers.MoveIcons(d))

		r.Get("/api/export", handlers.Export(d))
		r.Post("/api/import", handlers.Import(d))
		r.Post("/api/reset", handlers.Reset(d))
	})
}
