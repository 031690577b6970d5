package server

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"math"
	"os"
	"strings"

	"candor-backend/internal/common"
	"candor-backend/internal/config"
	"candor-backend/internal/email"
	"candor-backend/internal/handlers"
	"candor-backend/internal/models"

	"github.com/go-playground/validator"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	resend "github.com/resend/resend-go/v2"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// CustomValidator Source: https://echo.labstack.com/docs/request#validate-data
type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		// Optionally, you could return the error to give each route more control over the status code
		return err
	}
	return nil
}

type Template struct {
	templates *template.Template
}

func (t *Template) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return t.templates.ExecuteTemplate(w, name, data)
}

type SentryLogger struct {
	echo.Logger
}

func (l *SentryLogger) Error(i ...interface{}) {
	// Capture in Sentry
	if err, ok := i[0].(error); ok {
		handlers.CaptureError(err)
	} else {
		handlers.CaptureError(fmt.Errorf("%v", i...))
	}
	// Call original logger
	l.Logger.Error(i...)
}

type Server struct {
	common.ServerState
}

func New(cfg *config.Config) *Server {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}
	e.Logger = &SentryLogger{Logger: e.Logger}
	e.Logger.SetLevel(log.DEBUG)

	return &Server{
		common.ServerState{
			Echo:   e,
			Config: cfg,
		},
	}
}

func (s *Server) Initialize() error {
	// Initialize database
	s.setupDatabase()

	// Initialize the outbound mail transport
	s.setupNotifier()

	// Setup templates
	s.setupTemplates()

	// Setup routes
	s.setupRoutes()

	// Run Migrations
	s.runMigrations()

	s.setupMetrics()

	// Setup middleware -
	// Keep last to avoid Recover middleware and panic if something goes wrong on init
	s.setupMiddleware()

	return nil
}

func (s *Server) setupDatabase() {
	dsn := s.Config.Database.DSN
	if dsn == "" {
		s.Echo.Logger.Fatal("DATABASE_DSN environment variable is required")
	}

	var db *gorm.DB
	var err error

	// Detect database driver from DSN
	// SQLite DSNs typically start with "file:"
	if strings.HasPrefix(dsn, "file:") {
		db, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true, Logger: logger.Default.LogMode(logger.Silent)})
	} else {
		// Use PostgreSQL driver for production
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true, Logger: logger.Default.LogMode(logger.Silent)})
	}

	if err != nil {
		s.Echo.Logger.Fatal(err)
	}
	s.DB = db
}

// setupNotifier picks the outbound mail transport: Resend when an API key is
// present, SMTP when a relay is configured, otherwise none. Invites are still
// issued without a transport; delivery is just reported as failed.
func (s *Server) setupNotifier() {
	if apiKey := s.Config.Resend.APIKey; apiKey != "" {
		resendClient := resend.NewClient(apiKey)
		s.Notifier = email.NewResendClient(resendClient,
			s.Config.Resend.DefaultSender,
			s.Echo.Logger)
		return
	}

	if s.Config.SMTP.Server != "" {
		s.Notifier = email.NewSMTPClient(email.SMTPServer{
			HostPort:    s.Config.SMTP.Server + ":" + s.Config.SMTP.Port,
			User:        s.Config.SMTP.Username,
			Password:    s.Config.SMTP.Password,
			ImplicitTLS: s.Config.SMTP.UseSSL,
			StartTLS:    s.Config.SMTP.UseTLS,
		}, s.Config.SMTP.DefaultSender, s.Echo.Logger)
		return
	}

	s.Echo.Logger.Warn("Neither RESEND_API_KEY nor MAIL_SERVER configured, email notifications will be disabled")
}

func (s *Server) setupTemplates() {
	// Try to load templates, but don't fail if they don't exist (e.g., in tests)
	tmpl, err := template.ParseGlob("./web/*.html")
	if err != nil {
		s.Echo.Logger.Warnf("Failed to load templates: %v, template rendering will be disabled", err)
		return
	}
	t := &Template{
		templates: tmpl,
	}
	s.Echo.Renderer = t
}

func (s *Server) runMigrations() {
	err := s.DB.AutoMigrate(
		&models.InviteToken{},
		&models.FeedbackRecord{},
	)
	if err != nil {
		s.Echo.Logger.Fatal(err)
	}
}

func (s *Server) setupMiddleware() {
	s.Echo.Use(middleware.CORS())
	s.Echo.Use(middleware.Recover())
	// Try to add prometheus middleware, but don't panic if already registered (e.g., in tests)
	// This allows multiple test runs without panicking
	defer func() {
		if r := recover(); r != nil {
			if err, ok := r.(error); ok && err.Error() == "duplicate metrics collector registration attempted" {
				s.Echo.Logger.Warn("Prometheus middleware already registered, skipping")
			} else {
				panic(r)
			}
		}
	}()
	s.Echo.Use(echoprometheus.NewMiddleware("candor_backend"))
}

func (s *Server) setupMetrics() {
	pendingInvites := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Subsystem: "invites",
			Name:      "pending",
			Help:      "The number of invite tokens that have not been redeemed yet",
		},
		func() float64 {
			var count int64
			if err := s.DB.Model(&models.InviteToken{}).Where("redeemed = ?", false).Count(&count).Error; err != nil {
				return math.NaN()
			}
			return float64(count)
		},
	)

	collectedFeedback := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Subsystem: "feedback",
			Name:      "collected",
			Help:      "The number of feedback entries submitted so far",
		},
		func() float64 {
			var count int64
			if err := s.DB.Model(&models.FeedbackRecord{}).Count(&count).Error; err != nil {
				return math.NaN()
			}
			return float64(count)
		},
	)

	// Register without panicking so test setups that build several servers
	// in one process keep working
	for _, collector := range []prometheus.Collector{pendingInvites, collectedFeedback} {
		if err := prometheus.Register(collector); err != nil {
			var already prometheus.AlreadyRegisteredError
			if !errors.As(err, &already) {
				s.Echo.Logger.Warnf("Failed to register metrics collector: %v", err)
			}
		}
	}
}

func (s *Server) setupRoutes() {
	handlers.SetupSentry(s.Echo, s.Config)

	// Initialize handlers
	fb := handlers.NewFeedbackHandler(s.DB, s.Config, s.Notifier, s.Echo.Logger)

	// Pages
	s.Echo.GET("/", fb.IndexPage)
	s.Echo.GET("/admin", fb.AdminPage)
	s.Echo.GET("/feedback-form", fb.FeedbackFormPage)

	// Feedback API
	s.Echo.GET("/feedbacks", fb.ListFeedbacks)
	s.Echo.POST("/invites", fb.SendInvites)
	s.Echo.POST("/feedback", fb.SubmitFeedback)

	// API routes group
	api := s.Echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})
	api.GET("/hello", fb.Hello)
	api.GET("/metrics", echoprometheus.NewHandler())
}

func (s *Server) Start() error {
	serverURL := s.Config.Server.Host + ":" + s.Config.Server.Port

	if s.Config.Server.TLS.Enabled {
		if _, err := os.Stat(s.Config.Server.TLS.CertFile); os.IsNotExist(err) {
			s.Echo.Logger.Warn("TLS certificate file not found, falling back to HTTP")
			return s.Echo.Start(serverURL)
		}
		if _, err := os.Stat(s.Config.Server.TLS.KeyFile); os.IsNotExist(err) {
			s.Echo.Logger.Warn("TLS key file not found, falling back to HTTP")
			return s.Echo.Start(serverURL)
		}
		return s.Echo.StartTLS(serverURL, s.Config.Server.TLS.CertFile, s.Config.Server.TLS.KeyFile)
	}

	return s.Echo.Start(serverURL)
}
