package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/nexusfind/backend/internal/middleware"
	"github.com/nexusfind/backend/internal/services"
)

type RouterConfig struct {
	Cache          *services.ItemCache
	Identity       *services.IdentityState
	Images         *services.ImageService
	Advisor        services.Advisor // optional
	CORSOrigin     string
	MaxUploadBytes int64
	Logger         *zap.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	itemHandler := NewItemHandler(cfg.Cache, cfg.Identity, cfg.Images, cfg.MaxUploadBytes, logger)
	identityHandler := NewIdentityHandler(cfg.Identity, cfg.Advisor, logger)
	advisorHandler := NewAdvisorHandler(cfg.Advisor, logger)

	origin := cfg.CORSOrigin
	if origin == "" {
		origin = "*"
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{origin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: origin != "*",
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/institutions", ListInstitutions)
		r.Get("/categories", ListCategories)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Identity(cfg.Identity, logger))

			r.Get("/me", identityHandler.Me)
			r.Post("/verify", identityHandler.Verify)
			r.Post("/unverify", identityHandler.Unverify)
			r.Post("/optimize", advisorHandler.Optimize)

			r.Route("/items", func(r chi.Router) {
				r.Get("/", itemHandler.ListItems)
				r.Post("/", itemHandler.CreateItem)
				r.Get("/stream", itemHandler.StreamItems)
				r.Post("/{itemId}/resolve", itemHandler.ResolveItem)
			})

			r.Post("/upload", itemHandler.Upload)
		})
	})

	return r
}
