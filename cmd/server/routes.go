package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"venture-ledger.backend/internal/domain/entities"
	"venture-ledger.backend/internal/interfaces/http/handlers"
	"venture-ledger.backend/internal/interfaces/http/middleware"
	"venture-ledger.backend/pkg/metrics"
)

const (
	serviceName    = "venture-ledger-backend"
	serviceVersion = "0.1.0"
)

type routeDeps struct {
	walletHandler      *handlers.WalletHandler
	sessionHandler     *handlers.SessionHandler
	investmentHandler  *handlers.InvestmentHandler
	transactionHandler *handlers.TransactionHandler
	startupHandler     *handlers.StartupHandler
	authMiddleware     gin.HandlerFunc
}

func applyCORSMiddleware(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, Idempotency-Key, X-Request-ID")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
			"version": serviceVersion,
		})
	})
}

func registerMetricsRoute(r *gin.Engine, recorder *metrics.Recorder) {
	r.GET("/metrics", gin.WrapH(recorder.Handler()))
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Public contract view
		v1.GET("/startups/:ref/onchain", d.startupHandler.GetOnchain)

		// Wallet routes (protected)
		wallets := v1.Group("/wallets")
		wallets.Use(d.authMiddleware)
		{
			wallets.PUT("/me", d.walletHandler.Associate)
			wallets.GET("/me", d.walletHandler.GetMine)
			wallets.DELETE("/me", d.walletHandler.Disassociate)
			wallets.GET("/:address/identity", d.walletHandler.LookupIdentity)
		}

		// Chain session routes (protected). The session is process-wide,
		// so only admins may change it.
		session := v1.Group("/session")
		session.Use(d.authMiddleware)
		{
			session.GET("", d.sessionHandler.Get)
			session.POST("/connect", middleware.RequireAdmin(), d.sessionHandler.Connect)
			session.POST("/disconnect", middleware.RequireAdmin(), d.sessionHandler.Disconnect)
			session.POST("/network", middleware.RequireAdmin(), d.sessionHandler.SwitchNetwork)
		}

		// Investment routes (investors only)
		investments := v1.Group("/investments")
		investments.Use(d.authMiddleware, middleware.RequireRole(entities.UserRoleInvestor))
		{
			investments.POST("/onchain", middleware.IdempotencyMiddleware(), d.investmentHandler.InvestOnchain)
			investments.GET("/manual/:startupRef", d.investmentHandler.ManualDetails)
			investments.POST("/manual", middleware.IdempotencyMiddleware(), d.investmentHandler.InvestManual)
		}

		// Ledger routes (protected)
		transactions := v1.Group("/transactions")
		transactions.Use(d.authMiddleware)
		{
			transactions.GET("", d.transactionHandler.List)
			transactions.GET("/:id", d.transactionHandler.Get)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(d.authMiddleware, middleware.RequireAdmin())
		{
			admin.POST("/wallets/migrate", d.walletHandler.Migrate)
			admin.POST("/transactions/:id/approve", d.investmentHandler.Approve)
			admin.POST("/transactions/:id/reject", d.investmentHandler.Reject)
		}
	}
}
