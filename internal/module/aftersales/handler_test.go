package aftersales

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(env *testEnv) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	enricher := NewEnricher(env.orders, env.vars, zap.NewNop())
	h := NewHandler(env.returns, env.exchanges, enricher, env.repo)
	h.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func postJSON(r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_CreateReturn(t *testing.T) {
	env := newTestEnv()
	router := newTestRouter(env)

	t.Run("creates and enriches", func(t *testing.T) {
		w := postJSON(router, "/api/v1/returns", gin.H{
			"order_id":    env.orderID,
			"customer_id": env.customerID,
			"variant_id":  env.variantA,
			"quantity":    1,
			"reason":      "wrong size",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var resp struct {
			Return ReturnView `json:"return"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, ReturnPending, resp.Return.Status)
		assert.Equal(t, "ORD-20260828-AAAAA", resp.Return.OrderNo)
		assert.Equal(t, "AT-BLK-M", resp.Return.SKU)
		assert.Equal(t, "Ao thun basic", resp.Return.ProductName)
	})

	t.Run("missing fields are rejected", func(t *testing.T) {
		w := postJSON(router, "/api/v1/returns", gin.H{"reason": "x"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_StatusMapping(t *testing.T) {
	env := newTestEnv()
	router := newTestRouter(env)

	req, err := env.returns.Create(context.Background(), env.createReturn(), Actor{Type: ActorCustomer})
	require.NoError(t, err)

	t.Run("conflict maps to 409", func(t *testing.T) {
		w := postJSON(router, fmt.Sprintf("/api/v1/returns/%s/receive", req.ID), nil)
		assert.Equal(t, http.StatusConflict, w.Code)

		var resp struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "CONFLICT", resp.Error.Code)
	})

	t.Run("unknown id maps to 404", func(t *testing.T) {
		w := postJSON(router, "/api/v1/returns/00000000-0000-0000-0000-000000000001/valid", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed id maps to 400", func(t *testing.T) {
		w := postJSON(router, "/api/v1/returns/not-a-uuid/valid", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("eligibility failure maps to 422", func(t *testing.T) {
		w := postJSON(router, "/api/v1/returns", gin.H{
			"order_id":    env.orderID,
			"customer_id": env.customerID,
			"variant_id":  env.variantA,
			"quantity":    5,
			"reason":      "too many",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestHandler_OptionalDecisionFields(t *testing.T) {
	env := newTestEnv()
	router := newTestRouter(env)

	t.Run("accept without shipping details succeeds", func(t *testing.T) {
		req, err := env.returns.Create(context.Background(), env.createReturn(), Actor{Type: ActorCustomer})
		require.NoError(t, err)

		w := postJSON(router, fmt.Sprintf("/api/v1/returns/%s/accept", req.ID), gin.H{})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("reject without reason succeeds", func(t *testing.T) {
		req, err := env.exchanges.Create(context.Background(), env.createExchange(), Actor{Type: ActorCustomer})
		require.NoError(t, err)

		w := postJSON(router, fmt.Sprintf("/api/v1/exchanges/%s/reject", req.ID), gin.H{})
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestHandler_RefundPreview(t *testing.T) {
	env := newTestEnv()
	router := newTestRouter(env)

	req, err := env.returns.Create(context.Background(), env.createReturn(), Actor{Type: ActorCustomer})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/v1/returns/%s/refund/preview", req.ID), nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		RefundAmount string `json:"refund_amount"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "150000", resp.RefundAmount)
}

func TestHandler_ExchangeDiff(t *testing.T) {
	env := newTestEnv()
	router := newTestRouter(env)

	req, err := env.exchanges.Create(context.Background(), env.createExchange(), Actor{Type: ActorCustomer})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/v1/exchanges/%s/diff", req.ID), nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Diff struct {
			Difference string             `json:"difference"`
			Settlement ExtraPaymentStatus `json:"settlement"`
		} `json:"diff"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "30000", resp.Diff.Difference)
	assert.Equal(t, ExtraPaymentRequested, resp.Diff.Settlement)
}

func TestHandler_AuditLogs(t *testing.T) {
	env := newTestEnv()
	router := newTestRouter(env)

	req, err := env.returns.Create(context.Background(), env.createReturn(), Actor{Type: ActorCustomer})
	require.NoError(t, err)
	_, err = env.returns.Accept(context.Background(), req.ID, "addr", "", testStaff)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/v1/returns/%s/logs", req.ID), nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Logs []AuditLogEntry `json:"logs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Logs, 2)
	assert.Equal(t, ActionCreate, resp.Logs[0].Action)
	assert.Equal(t, ActionAccept, resp.Logs[1].Action)
}
