package http

import (
	"log/slog"
	"os"

	"github.com/campustrack/attendance-backend-go/internal/config"
	"github.com/campustrack/attendance-backend-go/internal/handler/http/middleware"
	"github.com/campustrack/attendance-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(
	cfg *config.Config,
	jwtService jwt.Service,
	authHandler AuthHandler,
	studentHandler StudentHandler,
	attendanceHandler AttendanceHandler,
	qrSessionHandler QRSessionHandler,
	leaveHandler LeaveHandler,
	reportHandler ReportHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "campustrack-attendance"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.App.FrontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/refresh", authHandler.RefreshToken)
			r.Post("/logout", authHandler.Logout)
			r.Route("/oauth/callback", func(r chi.Router) {
				r.Get("/google", authHandler.OAuthCallbackGoogle)
			})

			r.Route("/login", func(r chi.Router) {
				r.Post("/", authHandler.Login)
				r.Route("/oauth", func(r chi.Router) {
					r.Get("/google", authHandler.LoginWithGoogle)
				})
			})

			// Requires authentication
			r.Group(func(r chi.Router) {
				r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
				r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

				r.Get("/me", authHandler.Me)
				r.Put("/profile", authHandler.UpdateProfile)
				r.Put("/change-password", authHandler.ChangePassword)
			})
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/attendance", func(r chi.Router) {
				r.Get("/history", attendanceHandler.History)
				r.Get("/stats", attendanceHandler.Stats)

				// Students only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireStudent)
					r.Post("/mark", attendanceHandler.Mark)
				})

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Get("/{id}", attendanceHandler.GetByID)
					r.Put("/{id}", attendanceHandler.Update)
				})
			})

			r.Route("/qr-sessions", func(r chi.Router) {
				r.Post("/validate", qrSessionHandler.Validate)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Post("/", qrSessionHandler.Generate)
					r.Get("/", qrSessionHandler.List)
					r.Get("/stats", qrSessionHandler.Stats)
					r.Post("/cleanup", qrSessionHandler.Cleanup)
					r.Get("/{id}", qrSessionHandler.GetByID)
					r.Delete("/{id}", qrSessionHandler.Deactivate)
				})
			})

			// Admin only
			r.Route("/students", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/", studentHandler.List)
				r.Get("/{id}", studentHandler.GetByID)
				r.Put("/{id}", studentHandler.Update)
				r.Delete("/{id}", studentHandler.Delete)
			})

			r.Route("/leaves", func(r chi.Router) {
				r.Get("/", leaveHandler.List)
				r.Get("/stats", leaveHandler.Stats)
				r.Get("/{id}", leaveHandler.GetByID)
				r.Delete("/{id}", leaveHandler.Delete)

				// Students only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireStudent)
					r.Post("/", leaveHandler.Apply)
					r.Put("/{id}", leaveHandler.Update)
				})

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Put("/{id}/review", leaveHandler.Review)
				})
			})

			// Admin only
			r.Route("/reports", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/dashboard", reportHandler.Dashboard)
				r.Get("/monthly", reportHandler.MonthlyReport)
				r.Get("/monthly/export", reportHandler.ExportMonthlyReportCSV)
			})
		})
	})
	return r
}
