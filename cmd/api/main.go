package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/duitapp/ledger/internal/config"
	"github.com/duitapp/ledger/internal/dispatcher"
	"github.com/duitapp/ledger/internal/handlers"
	"github.com/duitapp/ledger/internal/repository"
	"github.com/duitapp/ledger/internal/services"
	xhttp "github.com/duitapp/ledger/pkg/http"
	"github.com/duitapp/ledger/pkg/logger"
	"github.com/duitapp/ledger/pkg/pg"
	"github.com/duitapp/ledger/pkg/prom"
	"github.com/duitapp/ledger/pkg/redis"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {

	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	// transport (tcp for now)
	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Server.ReadBufferSize = 1024 * 16
	s.Server.WriteBufferSize = 1024 * 16
	s.Use(xhttp.CompressMiddleware(6))
	s.Use(xhttp.TimeoutMiddleware(time.Second * 5))
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.RecoverMiddleware)
	s.Router = xhttp.CreateDefaultRouter()

	readConf := pg.Config{
		User:     config.Get().PostgresReadUser,
		Host:     config.Get().PostgresReadHost,
		Port:     config.Get().PostgresReadPort,
		Password: config.Get().PostgresReadPassword,
		Database: config.Get().PostgresReadDatabase,
	}
	writeConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}

	pgDebug := false
	if config.Get().AppEnv == "dev" {
		pgDebug = true
	}
	db, err := pg.CreateReadWrite(readConf, writeConf, pgDebug)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	redisAdap, err := redis.NewRedisAdapter("default", config.Get().RedisUniversalKeyPrefix, &redis.Options{
		Addrs:      []string{config.Get().RedisAddr},
		ClientName: "default",
		DB:         config.Get().RedisDatabase,
		Username:   config.Get().RedisUsername,
		Password:   config.Get().RedisPassword,
	})
	if err != nil {
		logger.Error("failed connecting to redis", "error", err)
		return
	}

	var hostname string
	hostname, err = os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	err = prom.Create(hostname, config.Get().AppEnv, config.Get().PromNamespace)
	if err != nil {
		logger.Error("failed to create prometheus metrics", "error", err)
		return
	}

	go func() {
		prom.ListenAndServer(":9100", "/metrics")
	}()

	userRepo := repository.NewUserRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	budgetRepo := repository.NewBudgetRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	billRepo := repository.NewBillRepository(db)
	investmentRepo := repository.NewInvestmentRepository(db)
	debtRepo := repository.NewDebtRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	merchantRepo := repository.NewMerchantRepository(db)
	scheduledMessageRepo := repository.NewScheduledMessageRepository(db)

	// services
	statsService := services.NewStatsService(transactionRepo, budgetRepo, goalRepo, investmentRepo)
	reconcileService := services.NewReconcileService(db, userRepo, settingsRepo,
		transactionRepo, budgetRepo, goalRepo, billRepo,
		investmentRepo, debtRepo, merchantRepo, scheduledMessageRepo)

	idempotencyStore := dispatcher.NewIdempotencyStore(redisAdap, config.Get().IdempotencyTTL)
	toolDispatcher := dispatcher.New(db, transactionRepo, budgetRepo, goalRepo,
		billRepo, investmentRepo, categoryRepo, merchantRepo, settingsRepo, idempotencyStore)

	// v1 handlers
	transactionHandler := handlers.NewTransactionHandler(transactionRepo, categoryRepo)
	budgetHandler := handlers.NewBudgetHandler(budgetRepo, categoryRepo)
	goalHandler := handlers.NewGoalHandler(goalRepo, settingsRepo, db)
	billHandler := handlers.NewBillHandler(billRepo)
	investmentHandler := handlers.NewInvestmentHandler(investmentRepo)
	debtHandler := handlers.NewDebtHandler(debtRepo)
	settingsHandler := handlers.NewSettingsHandler(settingsRepo, goalRepo)
	statsHandler := handlers.NewStatsHandler(statsService)
	identityHandler := handlers.NewIdentityHandler(reconcileService)
	webhookHandler := handlers.NewWebhookHandler(config.Get().WebhookSecret,
		userRepo, toolDispatcher, debtRepo, scheduledMessageRepo,
		config.Get().CashWithdrawalThreshold)
	healthHandler := handlers.NewHealthHandler()

	g := s.Router.Group("/api/v1")
	handlers.RegisterTransactionRoutes(g, transactionHandler)
	handlers.RegisterBudgetRoutes(g, budgetHandler)
	handlers.RegisterGoalRoutes(g, goalHandler)
	handlers.RegisterBillRoutes(g, billHandler)
	handlers.RegisterInvestmentRoutes(g, investmentHandler)
	handlers.RegisterDebtRoutes(g, debtHandler)
	handlers.RegisterSettingsRoutes(g, settingsHandler)
	handlers.RegisterStatsRoutes(g, statsHandler)
	handlers.RegisterIdentityRoutes(g, identityHandler)
	handlers.RegisterWebhookRoutes(g, webhookHandler)
	handlers.RegisterHealthRoutes(g, healthHandler)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Kill, os.Interrupt, syscall.SIGTERM)

	go func() {
		var err = s.ListenAndServe(config.Get().HttpListenAddr)
		if err != nil {
			logger.Error("error in running http-server", "error", err)
		}
	}()

	select {
	case <-c:
		s.Shutdown()
	}
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
