package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/finly-app/expense-service/internal/application/service"
	"github.com/finly-app/expense-service/internal/config"
	"github.com/finly-app/expense-service/internal/infrastructure/auth"
	"github.com/finly-app/expense-service/internal/infrastructure/currency"
	"github.com/finly-app/expense-service/internal/infrastructure/export"
	"github.com/finly-app/expense-service/internal/infrastructure/persistence/repository"
	"github.com/finly-app/expense-service/internal/infrastructure/persistence/sqlite"
	httpserver "github.com/finly-app/expense-service/internal/interfaces/http"
	"github.com/finly-app/expense-service/pkg/database"
	"github.com/finly-app/expense-service/pkg/logging"
)

func main() {
	// Load .env if present; real environments set variables directly
	_ = gotenv.Load()

	cfg, err := config.Load(configPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(logging.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting expense service",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.Run(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Repositories share one transaction-aware handle
	store := sqlite.NewDB(db.DB, logger)
	expenseRepo := repository.NewExpenseRepository(store, logger)
	ruleRepo := repository.NewRuleRepository(store, logger)
	userRepo := repository.NewUserRepository(store, logger)
	companyRepo := repository.NewCompanyRepository(store, logger)
	historyRepo := repository.NewHistoryRepository(store, logger)

	converter, err := currency.NewStaticConverter(cfg.Currency.Rates, logger)
	if err != nil {
		logger.Fatal("Failed to initialize currency converter", zap.Error(err))
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	expenseService := service.NewExpenseService(
		expenseRepo, ruleRepo, userRepo, companyRepo, historyRepo,
		store, converter, logger)
	ruleService := service.NewRuleService(ruleRepo, expenseRepo, logger)
	authService := service.NewAuthService(userRepo, tokens, logger)

	server := httpserver.NewServer(
		httpserver.ServerConfig{
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		expenseService,
		ruleService,
		authService,
		export.NewExcelWriter(logger),
		tokens,
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}

func configPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return "configs/config.yaml"
}
