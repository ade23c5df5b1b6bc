package handlers

import (
	"encoding/json"
	"net/http"

	"imagerelay/internal/infra"
	"imagerelay/internal/providers/image"
)

// App bundles the dependencies shared by all HTTP handlers.
type App struct {
	Config    *infra.Config
	Logger    *infra.Logger
	Generator image.Generator
}

func NewApp(cfg *infra.Config, logger *infra.Logger, generator image.Generator) *App {
	return &App{Config: cfg, Logger: logger, Generator: generator}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
