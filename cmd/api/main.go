package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campustrack/attendance-backend-go/internal/config"
	appHTTP "github.com/campustrack/attendance-backend-go/internal/handler/http"
	"github.com/campustrack/attendance-backend-go/internal/pkg/cron"
	"github.com/campustrack/attendance-backend-go/internal/pkg/database"
	"github.com/campustrack/attendance-backend-go/internal/pkg/jwt"
	"github.com/campustrack/attendance-backend-go/internal/pkg/oauth"
	"github.com/campustrack/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/campustrack/attendance-backend-go/internal/service/attendance"
	serviceAuth "github.com/campustrack/attendance-backend-go/internal/service/auth"
	leaveService "github.com/campustrack/attendance-backend-go/internal/service/leave"
	qrsessionService "github.com/campustrack/attendance-backend-go/internal/service/qrsession"
	reportService "github.com/campustrack/attendance-backend-go/internal/service/report"
	studentService "github.com/campustrack/attendance-backend-go/internal/service/student"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	setupLogger(cfg.App.LogLevel)

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	userRepo := postgresql.NewUserRepository(db)
	studentRepo := postgresql.NewStudentRepository(db)
	JWTRepository := postgresql.NewJWTRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	sessionRepo := postgresql.NewSessionRepository(db)
	leaveRepo := postgresql.NewLeaveRepository(db)
	reportRepo := postgresql.NewReportRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)
	var GoogleService oauth.GoogleService
	if cfg.GoogleEnabled() {
		GoogleService = oauth.NewGoogleService(cfg.OAuth2Google.ClientID, cfg.OAuth2Google.ClientSecret, cfg.OAuth2Google.RedirectURL, cfg.OAuth2Google.Scopes)
	}

	authService := serviceAuth.NewAuthService(db, userRepo, studentRepo, JWTService, JWTRepository, GoogleService)
	studentSvc := studentService.NewStudentService(studentRepo)
	sessionSvc := qrsessionService.NewSessionService(sessionRepo)
	attendanceSvc := attendanceService.NewAttendanceService(db, attendanceRepo, sessionRepo, studentRepo)
	leaveSvc := leaveService.NewLeaveService(leaveRepo)
	reportSvc := reportService.NewReportService(reportRepo)

	authHandler := appHTTP.NewAuthHandler(JWTService, authService, GoogleService, cfg.App.FrontendURL)
	studentHandler := appHTTP.NewStudentHandler(studentSvc)
	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	qrSessionHandler := appHTTP.NewQRSessionHandler(sessionSvc)
	leaveHandler := appHTTP.NewLeaveHandler(leaveSvc)
	reportHandler := appHTTP.NewReportHandler(reportSvc)

	router := appHTTP.NewRouter(
		cfg,
		JWTService,
		authHandler,
		studentHandler,
		attendanceHandler,
		qrSessionHandler,
		leaveHandler,
		reportHandler,
	)

	scheduler := cron.NewScheduler()
	cron.NewAttendanceJobs(attendanceSvc, sessionSvc).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	port := fmt.Sprintf(":%d", cfg.App.Port)
	server := &http.Server{
		Addr:         port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", fmt.Sprintf("http://localhost%s", port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
}
