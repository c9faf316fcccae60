package handlers

import (
	"github.com/gin-gonic/gin"
	domainerrors "venture-ledger.backend/internal/domain/errors"
	"venture-ledger.backend/internal/domain/entities"
	"venture-ledger.backend/internal/interfaces/http/middleware"
	"venture-ledger.backend/internal/interfaces/http/response"
)

func requireSession(c *gin.Context) (entities.SessionContext, bool) {
	sc, ok := middleware.GetSessionContext(c)
	if !ok || sc.Identity.IsZero() {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return entities.SessionContext{}, false
	}
	return sc, true
}
