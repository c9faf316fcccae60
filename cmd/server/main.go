package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"venture-ledger.backend/internal/config"
	"venture-ledger.backend/internal/domain/entities"
	"venture-ledger.backend/internal/infrastructure/blockchain"
	"venture-ledger.backend/internal/infrastructure/jobs"
	"venture-ledger.backend/internal/infrastructure/models"
	"venture-ledger.backend/internal/infrastructure/repositories"
	"venture-ledger.backend/internal/interfaces/http/handlers"
	"venture-ledger.backend/internal/interfaces/http/middleware"
	"venture-ledger.backend/internal/usecases"
	"venture-ledger.backend/pkg/jwt"
	"venture-ledger.backend/pkg/logger"
	"venture-ledger.backend/pkg/metrics"
	"venture-ledger.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	}
	migrateDB = func(db *gorm.DB) error {
		return db.AutoMigrate(
			&models.Account{},
			&models.WalletAssociation{},
			&models.WalletSyncTask{},
			&models.InvestmentTransaction{},
			&models.OnchainIDMapping{},
		)
	}
	newProvider = func(factory *blockchain.ClientFactory, signerKey string, target entities.NetworkParams) (blockchain.ChainProvider, error) {
		return blockchain.NewEVMProvider(factory, signerKey, target)
	}
	runServer = serveHTTP
	getStdDB  = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

// serveHTTP serves until ctx is cancelled, then drains in-flight requests
func serveHTTP(ctx context.Context, handler http.Handler, port string) error {
	srv := &http.Server{Addr: ":" + port, Handler: handler}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func targetNetwork(cfg config.BlockchainConfig) entities.NetworkParams {
	return entities.NetworkParams{
		ChainID:        big.NewInt(cfg.ChainID),
		Name:           cfg.ChainName,
		RPCURL:         cfg.RPCURL,
		CurrencySymbol: cfg.CurrencySymbol,
		ExplorerURL:    cfg.ExplorerURL,
	}
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	if level, err := zapcore.ParseLevel(cfg.Server.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	ctx := context.Background()
	logger.Info(ctx, "Logger initialized", zap.String("env", cfg.Server.Env), zap.String("level", cfg.Server.LogLevel))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.PASSWORD); err != nil {
		logger.Error(ctx, "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(ctx, "Redis initialized")

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database.URL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		logger.Warn(ctx, "Database not available, ledger endpoints will return errors", zap.Error(err))
	} else if err := migrateDB(db); err != nil {
		logger.Warn(ctx, "Schema migration failed", zap.Error(err))
	} else {
		logger.Info(ctx, "Connected to PostgreSQL via GORM")
	}

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)
	recorder := metrics.New()

	// Repositories
	accountRepo := repositories.NewAccountRepository(db)
	walletRepo := repositories.NewWalletAssociationRepository(db)
	walletSyncRepo := repositories.NewWalletSyncTaskRepository(db)
	transactionRepo := repositories.NewTransactionRepository(db)
	onchainIDRepo := repositories.NewOnchainIDRepository(db)
	uow := repositories.NewUnitOfWork(db)
	walletCache := redis.NewWalletCache(redis.GetClient(), cfg.Redis.WalletTTL)

	// Chain provider
	clientFactory := blockchain.NewClientFactory()
	defer clientFactory.Close()

	target := targetNetwork(cfg.Blockchain)
	provider, err := newProvider(clientFactory, cfg.Blockchain.SignerPrivateKey, target)
	if err != nil {
		return fmt.Errorf("failed to initialize chain provider: %w", err)
	}
	if cfg.Blockchain.ContractAddress == "" {
		logger.Warn(ctx, "INVESTMENT_CONTRACT_ADDRESS is not set, on-chain investments will fail")
	}

	// Usecases
	session := usecases.NewChainSessionManager(provider, target, recorder)
	defer session.Close()
	gateway := usecases.NewInvestmentGateway(session, provider, cfg.Blockchain.ContractAddress, cfg.Blockchain.ConfirmationTimeout)
	resolver := usecases.NewOnchainIDResolver(usecases.OnchainIDStrategy(cfg.Investment.OnchainIDStrategy), onchainIDRepo, cfg.Investment.OnchainIDMappingFloor)
	ledger := usecases.NewTransactionLedgerUsecase(transactionRepo, accountRepo, recorder)
	manual := usecases.NewManualPaymentWorkflow(ledger, accountRepo, cfg.Investment.ManualReferenceMinLen)
	wallets := usecases.NewWalletIdentityUsecase(walletRepo, walletSyncRepo, uow, walletCache, recorder)
	investments := usecases.NewInvestmentUsecase(session, gateway, resolver, ledger, manual, wallets)
	logger.Info(ctx, "On-chain id strategy selected", zap.String("strategy", string(resolver.Strategy())))

	// Handlers
	walletHandler := handlers.NewWalletHandler(wallets)
	sessionHandler := handlers.NewSessionHandler(session, investments)
	investmentHandler := handlers.NewInvestmentHandler(investments)
	transactionHandler := handlers.NewTransactionHandler(ledger)
	startupHandler := handlers.NewStartupHandler(resolver, gateway)

	// Cancelled on SIGINT/SIGTERM; stops the job and drains the server
	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	syncJob := jobs.NewWalletProfileSyncJob(walletSyncRepo, accountRepo, recorder, cfg.Jobs.WalletSyncInterval, cfg.Jobs.WalletSyncMaxAttempts)
	go syncJob.Start(runCtx)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware("/health", "/metrics"))

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerMetricsRoute(r, recorder)
	registerAPIV1Routes(r, routeDeps{
		walletHandler:      walletHandler,
		sessionHandler:     sessionHandler,
		investmentHandler:  investmentHandler,
		transactionHandler: transactionHandler,
		startupHandler:     startupHandler,
		authMiddleware:     middleware.AuthMiddleware(jwtService),
	})

	for _, route := range r.Routes() {
		logger.Debug(ctx, "Route registered", zap.String("method", route.Method), zap.String("path", route.Path))
	}

	logger.Info(ctx, "Venture Ledger backend starting",
		zap.String("port", cfg.Server.Port),
		zap.String("chain", target.Name),
		zap.String("chain_id", target.ChainID.String()),
	)

	err = runServer(runCtx, r, cfg.Server.Port)
	logger.Info(ctx, "Shutting down server")
	stop()
	logger.Sync()
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
