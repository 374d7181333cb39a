package main

import (
	"context"
	"os"
	"strings"

	"github.com/duitapp/ledger/internal/config"
	"github.com/duitapp/ledger/internal/model"
	"github.com/duitapp/ledger/internal/repository"
	"github.com/duitapp/ledger/pkg/logger"
	"github.com/duitapp/ledger/pkg/pg"
)

func main() {
	err := config.Load(getEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
	}
	// main.go --dir=./migrations
	pgConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}
	err = pg.Migrate(pgConf, getMigrationPath())
	if err != nil {
		logger.Error("migration: error running migrations", "error", err)
		return
	}

	db, err := pg.CreateReadWrite(pgConf, pgConf, false)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}
	err = repository.NewCategoryRepository(db).Seed(context.Background(), defaultCategories())
	if err != nil {
		logger.Error("failed seeding categories", "error", err)
		return
	}
	logger.Info("migrations and category seed applied")
}

// defaultCategories is the fixed global set. Seeding is idempotent; rows
// already present keep their ids.
func defaultCategories() []*model.Category {
	return []*model.Category{
		{Name: "Food", Type: model.CategoryTypeExpense, Color: "#e74c3c", Icon: "utensils"},
		{Name: "Transport", Type: model.CategoryTypeExpense, Color: "#3498db", Icon: "bus"},
		{Name: "Housing", Type: model.CategoryTypeExpense, Color: "#9b59b6", Icon: "home"},
		{Name: "Utilities", Type: model.CategoryTypeExpense, Color: "#f39c12", Icon: "bolt"},
		{Name: "Health", Type: model.CategoryTypeExpense, Color: "#2ecc71", Icon: "heartbeat"},
		{Name: "Entertainment", Type: model.CategoryTypeExpense, Color: "#e67e22", Icon: "film"},
		{Name: "Shopping", Type: model.CategoryTypeExpense, Color: "#1abc9c", Icon: "bag"},
		{Name: "Education", Type: model.CategoryTypeExpense, Color: "#34495e", Icon: "book"},
		{Name: "Salary", Type: model.CategoryTypeIncome, Color: "#27ae60", Icon: "wallet"},
		{Name: "Bonus", Type: model.CategoryTypeIncome, Color: "#16a085", Icon: "gift"},
		{Name: "Investment", Type: model.CategoryTypeIncome, Color: "#2980b9", Icon: "chart"},
		{Name: model.DefaultCategoryName, Type: model.CategoryTypeExpense, Color: "#95a5a6", Icon: "tag"},
	}
}

func getEnvPath() string {
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
	if _, err := os.Open(".env"); err != nil {
		logger.Error("failed to open the passed env file, got error" + err.Error())
		return ""
	}
	return ".env"
}

func getMigrationPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--dir=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed migration dir, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	if _, err := os.Open("./migrations"); err != nil {
		logger.Error("failed to open the passed migration dir, got error" + err.Error())
		return ""
	}
	return "./migrations"
}
