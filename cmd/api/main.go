package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "vaops/api/swagger" // swagger docs
	"vaops/internal/app"
	"vaops/internal/config"
	"vaops/internal/database"
	"vaops/internal/discordbot"
	"vaops/internal/handler"
	"vaops/internal/logger"
	"vaops/internal/metrics"
	"vaops/internal/middleware"
	"vaops/internal/notify"
	"vaops/internal/scheduler"
	"vaops/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// @title           Virtual Airline Operations API
// @version         1.0
// @description     Pilot careers, dispatch, PIREPs, fleet and briefing for a virtual airline.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.GinMode, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(cfg.DSN(), log)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		log.Warn("failed to auto-migrate models", zap.Error(err))
	}
	if n, err := database.SeedDefaults(ctx, db); err != nil {
		log.Warn("failed to seed defaults", zap.Error(err))
	} else if n > 0 {
		log.Info("seeded default hour rules", zap.Int("count", n))
	}

	infra := app.NewInfra(ctx, cfg, log)
	defer infra.Close()

	// Set up WebSocket Hub
	wsHub := websocket.NewHub(log)
	go wsHub.Run(ctx)

	notifier := notify.NewFanout(log, infra.Webhook, infra.Events, wsHub)

	// Set up dependencies (Repository -> Service -> Handler)
	repos := app.NewRepositories(db)
	svc := app.NewServices(cfg, repos, app.Deps{Store: infra.Store, Notifier: notifier, Mailer: infra.Mailer}, log)

	var discord []handler.Registrar
	if cfg.DiscordPublicKey != "" {
		bot, err := discordbot.New(cfg.DiscordPublicKey, svc.Career, svc.Dispatch, repos.Profiles, log)
		if err != nil {
			return err
		}
		discord = append(discord, handler.NewDiscordHandler(bot))
	} else {
		log.Info("DISCORD_PUBLIC_KEY not set, discord interactions endpoint disabled")
	}

	jobs, err := scheduler.New(cfg.MaintenanceSchedule, svc.Fleet, log)
	if err != nil {
		return err
	}
	jobs.Start()

	auth := middleware.NewAuthenticator([]byte(cfg.JWTSecret), cfg.IsRelease())

	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(middleware.RequestID(), logger.GinLogger(log), logger.GinRecovery(log), metrics.Middleware())
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", metrics.Handler())
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, auth.Secret())
	})

	routes := handler.NewRoutes(router, auth, infra.Store, log)
	handler.Register(routes,
		handler.NewAuthHandler(svc.Auth, auth),
		handler.NewRegistrationHandler(svc.Registration),
		handler.NewCareerHandler(svc.Career),
		handler.NewDispatchHandler(svc.Dispatch),
		handler.NewPirepHandler(svc.Pirep),
		handler.NewFleetHandler(svc.Fleet),
		handler.NewShopHandler(svc.Shop),
		handler.NewWalletHandler(svc.Wallet),
		handler.NewLogbookHandler(svc.Logbook, svc.Leaderboard, log),
		handler.NewReferenceHandler(svc.Reference, svc.Catalog),
		handler.NewNotamHandler(svc.Notam),
		handler.NewProxyHandler(svc.Proxy),
		handler.NewAuditHandler(svc.Audit),
		handler.NewStatisticsHandler(svc.Statistics),
		handler.NewRoleHandler(svc.Roles),
	)
	handler.Register(routes, discord...)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		jobs.Stop(shutdownCtx)
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func corsConfig(origins []string) cors.Config {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", middleware.RequestIDHeader}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader, "Retry-After"}

	for _, o := range origins {
		if o == "*" {
			// credentials cannot be combined with a literal wildcard, so echo the caller's origin
			corsConfig.AllowOriginFunc = func(string) bool { return true }
			return corsConfig
		}
	}
	corsConfig.AllowOrigins = origins
	return corsConfig
}
