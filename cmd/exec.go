package cmd

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	pubnub "github.com/pubnub/go"
	"github.com/redis/go-redis/v9"

	"magis-site/config"
	"magis-site/internal/backend"
	"magis-site/internal/handlers"
	"magis-site/internal/services"
	"magis-site/models"
	"magis-site/monitoring"
	"magis-site/security"
	"magis-site/utils"

	_ "magis-site/migrations"
)

func Start() error {
	app := pocketbase.New()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	// Initialize Redis
	redisClient, err := utils.NewRedisClient(cfg.RedisURL)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	// Initialize PubNub
	pnConfig := pubnub.NewConfig()
	pnConfig.PublishKey = cfg.PubNubPublishKey
	pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
	pnConfig.SecretKey = cfg.PubNubSecretKey

	var notifier services.ContentNotifier
	if cfg.PubNubPublishKey != "" {
		notifier = services.NewNotifier(pubnub.NewPubNub(pnConfig), cfg.ContentChannel)
	}

	var mailer services.Mailer = services.NopMailer{}
	if cfg.ResendAPIKey != "" {
		mailer = services.NewResendMailer(cfg.ResendAPIKey, cfg.MailFrom, cfg.AdminEmails)
	}

	// Initialize services
	tables := backend.NewClient(app)
	svc := handlers.Services{
		Events:       services.NewEventService(tables, notifier),
		Statistics:   services.NewStatisticService(tables, notifier),
		Products:     services.NewProductService(tables, notifier),
		Posts:        services.NewPostService(tables, notifier),
		Team:         services.NewTeamService(tables, notifier),
		Sponsors:     services.NewSponsorService(tables, notifier),
		Appointments: services.NewAppointmentService(tables, mailer),
	}
	heartbeat := services.NewHeartbeat(redisClient, cfg)
	bucket := backend.NewBucket(app, cfg.BackendURL)

	// Initialize handlers
	renderer, err := handlers.NewRenderer(cfg.SiteName)
	if err != nil {
		return err
	}
	publicHandler := handlers.NewPublicHandler(renderer, svc, heartbeat, cfg.Location)
	apiHandler := handlers.NewAPIHandler(svc, services.NewHeartbeatLog(tables), cfg.BackendKey, cfg.Location)
	gate := security.NewAdminGate(cfg.AdminEmails)
	authHandler := handlers.NewAuthHandler(renderer, gate, cfg.SecureCookies)
	adminHandler := handlers.NewAdminHandler(renderer, svc, bucket, cfg.Location)

	limiter := security.NewRateLimiter(redisClient)
	var trusted []string
	if host := hostOf(cfg.BackendURL); host != "" {
		trusted = append(trusted, host)
	}
	csrf := security.CSRF(cfg.CSRFKey, cfg.SecureCookies, trusted)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: cfg.IsDevelopment(),
	})

	// Create context for background tasks
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup graceful shutdown
	go handleShutdown(cancel)
	app.OnTerminate().BindFunc(func(e *core.TerminateEvent) error {
		cancel()
		return e.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		// Start background tasks
		go heartbeat.Run(ctx)
		go monitoring.NewMonitor(svc.Appointments.CountPending, time.Minute).Run(ctx)
		if cfg.EnableMetrics {
			go func() {
				if err := monitoring.Serve(ctx, ":"+cfg.MetricsPort); err != nil {
					slog.Error("Metrics server stopped", "error", err)
				}
			}()
		}

		se.Router.BindFunc(security.SecurityHeaders)
		se.Router.BindFunc(security.LoadAuthCookie)

		// Public pages
		se.Router.GET("/{$}", publicHandler.Home)
		se.Router.GET("/sobre", publicHandler.About)
		se.Router.GET("/eventos", publicHandler.Events)
		se.Router.GET("/produtos", publicHandler.Products)
		se.Router.GET("/blog", publicHandler.Blog)
		se.Router.GET("/blog/{slug}", publicHandler.Post)
		se.Router.GET("/diretoria", publicHandler.Team(models.RoleDiretoria, "Diretoria",
			"As pessoas que coordenam a Academia MAGIS."))
		se.Router.GET("/voluntarios", publicHandler.Team(models.RoleVoluntario, "Voluntários",
			"Quem dedica seu tempo para que cada evento aconteça."))
		se.Router.GET("/mentores", publicHandler.Team(models.RoleMentor, "Mentores",
			"Profissionais que acompanham nossos delegados."))
		se.Router.GET("/patrocinadores", publicHandler.Sponsors)
		se.Router.GET("/links", publicHandler.Links)
		se.Router.GET("/storage/{key...}", bucket.Serve)

		// Public JSON endpoints
		se.Router.GET("/api/v1/public/events", apiHandler.Events)
		se.Router.GET("/api/v1/public/statistics", apiHandler.Statistics)
		se.Router.GET("/api/v1/public/posts", apiHandler.Posts)
		se.Router.POST("/api/v1/heartbeat", apiHandler.Heartbeat).
			BindFunc(limiter.Limit("heartbeat", 30, time.Hour))

		// Form endpoints
		forms := se.Router.Group("")
		forms.BindFunc(csrf)
		forms.GET("/contato", publicHandler.ContactForm)
		forms.POST("/contato", publicHandler.Contact).
			BindFunc(limiter.Limit("contact", 5, 10*time.Minute))
		forms.GET(security.LoginPath, authHandler.LoginForm)
		forms.POST(security.LoginPath, authHandler.Login).
			BindFunc(limiter.Limit("login", 10, 15*time.Minute))
		forms.POST("/admin/logout", authHandler.Logout)

		// Admin panel
		admin := forms.Group("/admin")
		admin.BindFunc(gate.RequireAdmin)
		adminHandler.Register(admin)

		// Health check
		se.Router.GET("/health", healthCheck(app, redisClient))

		log.Println("Server routes registered")

		return se.Next()
	})

	// Start server
	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
	return nil
}

func healthCheck(app core.App, redisClient *redis.Client) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if _, err := app.DB().NewQuery("SELECT 1").Execute(); err != nil {
			return e.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
		}
		if err := utils.RedisHealthCheck(redisClient); err != nil {
			return e.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
		}
		return e.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	}
}

// hostOf returns the host part of the public site URL for the CSRF origin
// check; an unparsable or empty URL trusts nothing extra.
func hostOf(siteURL string) string {
	u, err := url.Parse(siteURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// handleShutdown handles graceful shutdown
func handleShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
	cancel()
}
