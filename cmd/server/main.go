package main // Entry point package

import (
	"context" // shutdown signalling for the audit worker
	"log"     // logging library

	"github.com/joho/godotenv"    // loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/esidoc/hr-document-service/internal/audit"
	"github.com/esidoc/hr-document-service/internal/config"
	"github.com/esidoc/hr-document-service/internal/database"
	"github.com/esidoc/hr-document-service/internal/handler"
	appmw "github.com/esidoc/hr-document-service/internal/middleware"
	"github.com/esidoc/hr-document-service/internal/mailer"
	"github.com/esidoc/hr-document-service/internal/notify"
	"github.com/esidoc/hr-document-service/internal/queue"
	"github.com/esidoc/hr-document-service/internal/reference"
	"github.com/esidoc/hr-document-service/internal/repository"
	"github.com/esidoc/hr-document-service/internal/router"
	queue_publisher "github.com/esidoc/hr-document-service/internal/service"
	"github.com/esidoc/hr-document-service/internal/stats"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load() // load environment config, fatal on missing keys

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Repositories share the pool; document repositories also share the
	// reference allocator so both kinds draw from the counters table.
	refs := reference.NewAllocator()
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	employeeRepo := repository.NewEmployeeRepo(db)
	certRepo := repository.NewCertificateRepo(db, refs)
	missionRepo := repository.NewMissionRepo(db, refs)
	activityRepo := repository.NewActivityRepo(db)
	notificationRepo := repository.NewNotificationRepo(db)

	// The audit recorder persists events off the request path and mirrors
	// them onto the message queue for external consumers.
	recorder := audit.NewRecorder(activityRepo, queue_publisher.ActivityPublisher{}, 0)
	ctx, stopRecorder := context.WithCancel(context.Background())
	defer stopRecorder()
	go recorder.Run(ctx)

	// The consumer tails the queue and appends entries to logs/activity.log.
	// It reconnects on its own; a missing broker only logs.
	go func() {
		if err := queue.StartActivityConsumer(); err != nil {
			log.Printf("queue consumer: %v", err)
		}
	}()

	mail := mailer.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	dispatcher := notify.NewDispatcher(notificationRepo, mail, cfg.MailFrom)

	aggregator := &stats.Aggregator{
		Users:        userRepo,
		Employees:    employeeRepo,
		Certificates: certRepo,
		Missions:     missionRepo,
		Activity:     activityRepo,
	}

	authHandler := handler.NewAuthHandler(cfg, userRepo, tokenRepo, dispatcher, recorder)
	userHandler := handler.NewUserHandler(cfg, userRepo, dispatcher, recorder)
	employeeHandler := handler.NewEmployeeHandler(employeeRepo, recorder)
	certHandler := handler.NewCertificateHandler(certRepo, recorder)
	missionHandler := handler.NewMissionHandler(missionRepo, recorder)
	notificationHandler := handler.NewNotificationHandler(notificationRepo, userRepo, dispatcher)
	activityHandler := handler.NewActivityHandler(activityRepo)
	statsHandler := handler.NewStatsHandler(aggregator)

	e := echo.New()

	// Redis-backed token bucket on the credential endpoints.  When Redis
	// is unreachable the middleware passes requests through.
	var limiter echo.MiddlewareFunc
	if rdb := config.NewRedisClient(); rdb != nil {
		limiter = appmw.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	}

	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret, limiter)
	router.RegisterAdmin(e, cfg.JWTSecret, userHandler, employeeHandler, activityHandler, statsHandler, authHandler)
	router.RegisterDocuments(e, cfg.JWTSecret, certHandler, missionHandler, notificationHandler)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		recorder.Close()
		log.Fatal(err)
	}
}
