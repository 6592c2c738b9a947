package serverhttp

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"resolver-service/internal/config"
	"resolver-service/internal/middleware"
	"resolver-service/internal/resolve/handler"
)

func NewRouter(cfg config.Config, logger zerolog.Logger, h *handler.Handler) *chi.Mux {
	r := chi.NewRouter()

	// order matters: recover -> requestID -> logging -> cors -> limit
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.LimitBytes(int64(cfg.MaxUploadMB) * 1024 * 1024))

	r.Get("/api/health", h.Health)
	r.Post("/api/refresh-cache", h.Refresh)

	r.Get("/api/resolve", h.Resolve)
	r.Post("/api/process-order", h.ProcessOrder)
	r.Get("/api/download/{filename}", h.Download)

	r.Get("/api/orders", h.Orders)
	r.Get("/api/orders/{id}", h.OrderByID)

	r.Get("/api/synonyms/pending", h.PendingSynonyms)
	r.Post("/api/synonyms/approve", h.ApproveSynonym)
	r.Post("/api/synonyms/reject", h.RejectSynonym)
	r.Get("/api/synonyms/stats", h.SynonymStats)

	r.Get("/api/products", h.Products)
	r.Post("/api/products", h.AddProduct)
	r.Put("/api/products/{code}", h.UpdateProduct)
	r.Post("/api/products/soft-delete", h.SoftDeleteProduct)
	r.Post("/api/products/restore", h.RestoreProduct)
	r.Get("/api/products/stats", h.ProductStats)
	r.Get("/api/products/changelog", h.ProductChangelog)
	r.Get("/api/products/{code}/versions", h.ProductVersions)

	return r
}
