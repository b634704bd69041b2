package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prefeitura-rio/app-fomento/internal/config"
	"github.com/prefeitura-rio/app-fomento/internal/handlers"
	"github.com/prefeitura-rio/app-fomento/internal/logging"
	"github.com/prefeitura-rio/app-fomento/internal/middleware"
	"github.com/prefeitura-rio/app-fomento/internal/observability"
	"github.com/prefeitura-rio/app-fomento/internal/services"
	"github.com/prefeitura-rio/app-fomento/internal/utils/httpclient"
	"github.com/prefeitura-rio/app-fomento/internal/wizard"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	_ "github.com/prefeitura-rio/app-fomento/docs"
)

// @title           Fomento API
// @version         1.0
// @description     API de cadastro de proponentes e projetos culturais. Os cadastros são preenchidos em etapas, validados contra o formulário do tipo de proponente e agregados em estatísticas por cidade.

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @tag.name cadastro
// @tag.description Cadastro de proponentes em etapas

// @tag.name proponentes
// @tag.description Consulta de proponentes cadastrados

// @tag.name projetos
// @tag.description Projetos inscritos em editais

// @tag.name admin
// @tag.description Operações de gestão

// @tag.name health
// @tag.description Health check operations

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	logger, err := logging.New(cfg.LogLevel, "app-fomento", cfg.ServiceVersion)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	shutdownTracer := observability.InitTracer(ctx, cfg, logger)
	defer shutdownTracer()

	db, err := config.NewMongoDB(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	cache := config.NewRedis(ctx, cfg, logger)

	pool := httpclient.NewHTTPClientPool(10)
	defer pool.Close()

	emails := services.NewEmailService(services.EmailConfig{
		URL:       cfg.EmailAPIURL,
		Token:     cfg.EmailAPIToken,
		From:      cfg.EmailFrom,
		Workers:   cfg.EmailWorkers,
		QueueSize: cfg.EmailQueueSize,
	}, pool, logger)

	userLogs := services.NewUserLogService(db, cfg.UserLogCollection, logger.Named("user_log_service"))
	profiles := services.NewProfileService(db, cfg.ProfileCollection, cache, cfg.ProfileCacheTTL, cfg.AdminRole, logger.Named("profile_service"))
	zones := services.NewZoneService(db, cache, cfg, logger.Named("zone_service"))
	ceps := services.NewCEPService(cfg.ViaCEPURL, pool, cache, cfg.CEPCacheTTL, logger.Named("cep_service"))
	proponentes := services.NewProponenteService(db, cfg.ProponenteCollection, cache, userLogs, cfg.SubmitLockTTL, logger)
	projetos := services.NewProjetoService(db, cfg.ProjetoCollection, proponentes, emails, userLogs, logger)
	statistics := services.NewStatisticsService(proponentes, zones, logger.Named("statistics_service"))

	var verifier middleware.TokenVerifier = middleware.GatewayVerifier{}
	if cfg.AuthProvider == "firebase" {
		fv, err := middleware.NewFirebaseVerifier(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsFile)
		if err != nil {
			logger.Fatal("failed to initialize Firebase auth", zap.Error(err))
		}
		verifier = fv
	}
	auth := middleware.NewAuthenticator(verifier, profiles, logger)

	drafts := wizard.NewRegistry(cfg.DraftTTL, logger)
	drafts.Start(cfg.DraftJanitorPeriod)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", "X-Request-ID")

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestTiming(logger),
		middleware.RequestTracker(),
		cors.New(corsConfig),
		middleware.Audit(userLogs),
	)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	routes := &handlers.Routes{
		Health: handlers.NewHealthHandlers(map[string]handlers.HealthCheck{
			"mongodb": func(ctx context.Context) error { return db.Client().Ping(ctx, readpref.Primary()) },
			"redis":   func(ctx context.Context) error { return cache.Ping(ctx).Err() },
		}, logger),
		Schemas: handlers.NewSchemaHandlers(logger),
		CEP:     handlers.NewCEPHandlers(ceps, logger),
		Cadastro: handlers.NewCadastroHandlers(drafts, proponentes, ceps, handlers.CadastroOptions{
			StepValidation: cfg.DraftStepValidation,
			LookupTimeout:  httpclient.DefaultTimeout,
		}, logger),
		Proponentes: handlers.NewProponenteHandlers(proponentes, auth, logger),
		Statistics:  handlers.NewStatisticsHandlers(statistics, logger),
		Projetos:    handlers.NewProjetoHandlers(projetos, logger),
		Logs:        handlers.NewUserLogHandlers(userLogs, logger),
		Admin:       handlers.NewAdminHandlers(zones, profiles, logger),
	}
	routes.Register(router.Group("/v1"), auth)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server",
			zap.Int("port", cfg.Port),
			zap.String("environment", cfg.Environment),
			zap.String("auth_provider", cfg.AuthProvider),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	drafts.Stop()
	emails.Stop()
	if err := db.Client().Disconnect(shutdownCtx); err != nil {
		logger.Error("failed to disconnect from MongoDB", zap.Error(err))
	}

	logger.Info("server exited")
}
