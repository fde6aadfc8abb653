package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/medilens/patient-portal/internal/http/handlers"
	httpmiddleware "github.com/medilens/patient-portal/internal/http/middleware"
	"github.com/medilens/patient-portal/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	SymptomHandler     *handlers.SymptomHandler
	LabHandler         *handlers.LabHandler
	BookingHandler     *handlers.BookingHandler
	ComplaintsHandler  *handlers.ComplaintsHandler
	AdminDashboard     *handlers.AdminDashboardHandler
	AuthHandler        *handlers.AuthHandler
	SpeechHandler      *handlers.SpeechHandler
	AdminAuthSecret    string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}

		public.Route("/api", func(api chi.Router) {
			if cfg.SymptomHandler != nil {
				api.Route("/symptoms", func(r chi.Router) {
					r.Post("/prepare", cfg.SymptomHandler.Prepare)
					r.Post("/submit", cfg.SymptomHandler.Submit)
					r.Post("/analyze", cfg.SymptomHandler.Analyze)
				})
			}
			if cfg.LabHandler != nil {
				api.Post("/lab/analyze", cfg.LabHandler.Analyze)
			}
			if cfg.BookingHandler != nil {
				api.Post("/appointments", cfg.BookingHandler.Book)
			}
			if cfg.ComplaintsHandler != nil {
				api.Post("/complaints", cfg.ComplaintsHandler.Submit)
			}
			if cfg.SpeechHandler != nil {
				api.Post("/speak", cfg.SpeechHandler.Speak)
			}
			if cfg.AuthHandler != nil {
				api.Route("/auth", func(r chi.Router) {
					r.Post("/login", cfg.AuthHandler.Login)
					r.Post("/register", cfg.AuthHandler.Register)
					r.Post("/logout", cfg.AuthHandler.Logout)
				})
			}
		})
	})

	// Admin routes (protected by JWT)
	if cfg.AdminDashboard != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Post("/refresh", cfg.AdminDashboard.Refresh)
			admin.Get("/dashboard", cfg.AdminDashboard.Dashboard)
			admin.Get("/summary", cfg.AdminDashboard.Summary)
			admin.Post("/suggestions/{suggestionID}/ack", cfg.AdminDashboard.AcknowledgeSuggestion)
			admin.Post("/logout", cfg.AdminDashboard.Logout)
			if cfg.ComplaintsHandler != nil {
				admin.Get("/complaints", cfg.ComplaintsHandler.List)
				admin.Post("/complaints/{complaintID}/assign", cfg.ComplaintsHandler.Assign)
				admin.Post("/complaints/{complaintID}/resolve", cfg.ComplaintsHandler.Resolve)
			}
		})
	}

	return r
}
