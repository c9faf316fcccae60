package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"venture-ledger.backend/internal/domain/entities"
	"venture-ledger.backend/internal/interfaces/http/middleware"
)

var (
	investorID = entities.NumericIdentity(entities.AccountKindUser, 7)
	startupID  = entities.OpaqueIdentity(entities.AccountKindStartup, "doc_s1")
	adminID    = entities.NumericIdentity(entities.AccountKindUser, 1)
)

func init() {
	gin.SetMode(gin.TestMode)
}

func withSession(sc entities.SessionContext) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.SessionContextKey, sc)
		c.Set(middleware.UserRoleKey, string(sc.Role))
		c.Next()
	}
}

func investorSession() entities.SessionContext {
	return entities.SessionContext{Identity: investorID, Role: entities.UserRoleInvestor}
}

func doRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch v := body.(type) {
		case string:
			buf.WriteString(v)
		default:
			_ = json.NewEncoder(&buf).Encode(v)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
