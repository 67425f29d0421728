package coupon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/pricing"
)

func TestClient_Validate(t *testing.T) {
	t.Run("有効なクーポンを検証できる", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/coupons/validate", r.URL.Path)

			var req validateRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "SUMMER10", req.Code)
			assert.Equal(t, 10000, req.Subtotal)

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(validateResponse{
				Valid: true,
				Mode:  "percent",
				Value: 10,
			})
		}))
		defer server.Close()

		client := NewClient(server.URL, 5*time.Second)
		coupon, err := client.Validate(context.Background(), "SUMMER10", "session-1", 10000)

		require.NoError(t, err)
		assert.Equal(t, "SUMMER10", coupon.Code)
		assert.Equal(t, pricing.CouponModePercent, coupon.Mode)
		assert.Equal(t, 10, coupon.Value)
	})

	t.Run("存在しないクーポンはErrCouponInvalidを返す", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := NewClient(server.URL, 5*time.Second)
		_, err := client.Validate(context.Background(), "NOPE", "session-1", 10000)

		assert.ErrorIs(t, err, pricing.ErrCouponInvalid)
	})

	t.Run("validがfalseの場合はErrCouponInvalidを返す", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(validateResponse{Valid: false})
		}))
		defer server.Close()

		client := NewClient(server.URL, 5*time.Second)
		_, err := client.Validate(context.Background(), "EXPIRED", "session-1", 10000)

		assert.ErrorIs(t, err, pricing.ErrCouponInvalid)
	})

	t.Run("サービス停止時はErrServiceUnavailableを返す", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		client := NewClient(server.URL, 1*time.Second)
		_, err := client.Validate(context.Background(), "SUMMER10", "session-1", 10000)

		assert.ErrorIs(t, err, ErrServiceUnavailable)
	})
}
