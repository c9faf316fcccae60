package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"venture-ledger.backend/internal/config"
	"venture-ledger.backend/internal/domain/entities"
	"venture-ledger.backend/internal/infrastructure/repositories"
	"venture-ledger.backend/pkg/jwt"
)

var openIssueTokenDB = func(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{DSN: dsn, PreferSimpleProtocol: true}), &gorm.Config{PrepareStmt: false})
}

var openIssueTokenSQLDB = func(db *gorm.DB) (io.Closer, error) {
	return db.DB()
}

type issueTokenRuntime interface {
	GetAccount(ctx context.Context, identity entities.Identity) (*entities.Account, error)
	IssueTokens(identity, role string) (*jwt.TokenPair, error)
}

type issueTokenDeps struct {
	loadEnv func() error
	loadCfg func() *config.Config
	prepare func(cfg *config.Config) (issueTokenRuntime, io.Closer, error)
	out     io.Writer
}

type issueTokenRuntimeImpl struct {
	accounts *repositories.AccountRepository
	tokens   *jwt.JWTService
}

func (r issueTokenRuntimeImpl) GetAccount(ctx context.Context, identity entities.Identity) (*entities.Account, error) {
	return r.accounts.GetByIdentity(ctx, identity)
}

func (r issueTokenRuntimeImpl) IssueTokens(identity, role string) (*jwt.TokenPair, error) {
	return r.tokens.GenerateTokenPair(identity, role)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func defaultIssueTokenDeps() issueTokenDeps {
	return issueTokenDeps{
		loadEnv: func() error { return godotenv.Load() },
		loadCfg: config.Load,
		prepare: func(cfg *config.Config) (issueTokenRuntime, io.Closer, error) {
			db, err := openIssueTokenDB(cfg.Database.URL())
			if err != nil {
				return nil, nil, fmt.Errorf("failed to connect db: %w", err)
			}

			sqlDB, err := openIssueTokenSQLDB(db)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to init sql db: %w", err)
			}

			return issueTokenRuntimeImpl{
				accounts: repositories.NewAccountRepository(db),
				tokens:   jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry),
			}, sqlDB, nil
		},
		out: os.Stdout,
	}
}

// parseUserIdentity accepts "user:<id>" or a bare id
func parseUserIdentity(raw string) (entities.Identity, error) {
	if raw == "" {
		return entities.Identity{}, fmt.Errorf("--identity is required")
	}
	identity, err := entities.ParseIdentityKey(raw)
	if err != nil {
		identity, err = entities.ParseIdentity(entities.AccountKindUser, raw)
	}
	if err != nil {
		return entities.Identity{}, err
	}
	if identity.Account != entities.AccountKindUser {
		return entities.Identity{}, fmt.Errorf("%s is not a user account", identity.Key())
	}
	return identity, nil
}

func runIssueToken(args []string, deps issueTokenDeps) error {
	if deps.loadEnv == nil {
		deps.loadEnv = func() error { return godotenv.Load() }
	}
	if deps.loadCfg == nil {
		deps.loadCfg = config.Load
	}
	if deps.prepare == nil {
		deps.prepare = defaultIssueTokenDeps().prepare
	}
	if deps.out == nil {
		deps.out = os.Stdout
	}

	fs := flag.NewFlagSet("issue-token", flag.ContinueOnError)
	identityFlag := fs.String("identity", "", "user identity, e.g. user:42 or user:uid_AbC (required)")
	requireAdmin := fs.Bool("admin", false, "refuse unless the account has the admin role")
	if err := fs.Parse(args); err != nil {
		return err
	}

	identity, err := parseUserIdentity(*identityFlag)
	if err != nil {
		return err
	}

	if err := deps.loadEnv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := deps.loadCfg()
	runtime, closer, err := deps.prepare(cfg)
	if err != nil {
		return err
	}
	if closer == nil {
		closer = nopCloser{}
	}
	defer closer.Close()

	account, err := runtime.GetAccount(context.Background(), identity)
	if err != nil {
		return fmt.Errorf("failed to load account %s: %w", identity.Key(), err)
	}
	if *requireAdmin && account.Role != entities.UserRoleAdmin {
		return fmt.Errorf("account %s is not admin (role=%s)", identity.Key(), account.Role)
	}

	pair, err := runtime.IssueTokens(identity.Key(), string(account.Role))
	if err != nil {
		return fmt.Errorf("failed issuing tokens: %w", err)
	}

	_, _ = fmt.Fprintln(deps.out, "Issued session tokens")
	_, _ = fmt.Fprintf(deps.out, "identity=%s\n", identity.Key())
	_, _ = fmt.Fprintf(deps.out, "role=%s\n", account.Role)
	_, _ = fmt.Fprintf(deps.out, "ACCESS_TOKEN=%s\n", pair.AccessToken)
	_, _ = fmt.Fprintf(deps.out, "REFRESH_TOKEN=%s\n", pair.RefreshToken)
	return nil
}

func main() {
	if err := runIssueToken(os.Args[1:], defaultIssueTokenDeps()); err != nil {
		log.Fatal(err)
	}
}
