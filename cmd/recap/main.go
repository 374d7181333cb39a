package main

import (
	"context"
	"os"
	"strings"

	"github.com/duitapp/ledger/internal/config"
	"github.com/duitapp/ledger/internal/notify"
	"github.com/duitapp/ledger/internal/recap"
	"github.com/duitapp/ledger/internal/repository"
	"github.com/duitapp/ledger/internal/services"
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

// Run-once batch binary. Cron fires it once a day; it walks every
// chat-linked user, sends their digest and exits.
func main() {

	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

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

	var sink notify.Sink
	switch config.Get().NotifyMode {
	case "outbox":
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
		sink = notify.NewOutboxSink(redisAdap, config.Get().NotifyOutboxStream, config.Get().NotifyOutboxMaxLen)
	default:
		sink = notify.NewHTTPSink(config.Get().NotifyGatewayURL, config.Get().RecapDeliverTimeout)
	}

	userRepo := repository.NewUserRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	budgetRepo := repository.NewBudgetRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	investmentRepo := repository.NewInvestmentRepository(db)
	scheduledMessageRepo := repository.NewScheduledMessageRepository(db)

	statsService := services.NewStatsService(transactionRepo, budgetRepo, goalRepo, investmentRepo)

	job := recap.NewJob(userRepo, goalRepo, scheduledMessageRepo, transactionRepo, statsService, sink, recap.Options{
		PageSize:               config.Get().RecapPageSize,
		Workers:                config.Get().RecapWorkers,
		DailyAllowanceFallback: config.Get().RecapDailyAllowanceFallback,
		IdleCashThreshold:      config.Get().RecapIdleCashThreshold,
		CashBurnThreshold:      config.Get().RecapCashBurnThreshold,
		InflationFactor:        config.Get().RecapInflationFactor,
		DeliverTimeout:         config.Get().RecapDeliverTimeout,
	})

	report, err := job.Run(context.Background())
	if err != nil {
		logger.Error("recap run aborted", "error", err)
		os.Exit(1)
	}
	logger.Info("recap run finished",
		"processed", report.Processed,
		"delivered", report.Delivered,
		"failed", report.Failed)
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
