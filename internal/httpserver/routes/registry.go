package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/Structurer/nav-front-build/internal/httpserver/deps"
)

// Registrar mounts a group of routes. Middlewares that depend on deps are
// applied inside the registrar.
type Registrar func(r chi.Router, d deps.Deps)

var registry []Registrar

// Register adds a registrar; call it from init().
func Register(reg Registrar) {
	registry = append(registry, reg)
}

// RegisterAll mounts every registered group. Called once from httpserver.New.
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, reg := range registry {
		reg(r, d)
	}
}
