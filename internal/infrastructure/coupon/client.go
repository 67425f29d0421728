package coupon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/pricing"
)

var (
	ErrServiceUnavailable = errors.New("クーポンサービスに接続できません")
)

// Client は外部クーポン検証サービスの HTTP クライアント
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient は新しいClientを作成する
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type validateRequest struct {
	Code      string `json:"code"`
	SessionID string `json:"session_id"`
	Subtotal  int    `json:"subtotal"`
}

type validateResponse struct {
	Valid bool   `json:"valid"`
	Mode  string `json:"mode"`
	Value int    `json:"value"`
}

// Validate はクーポンコードを検証し、有効であれば割引内容を返す
// 無効なコードは pricing.ErrCouponInvalid を返す
func (c *Client) Validate(ctx context.Context, code, sessionID string, subtotal int) (*pricing.Coupon, error) {
	body, err := json.Marshal(validateRequest{
		Code:      code,
		SessionID: sessionID,
		Subtotal:  subtotal,
	})
	if err != nil {
		return nil, fmt.Errorf("リクエストのエンコードに失敗: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/coupons/validate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("リクエストの作成に失敗: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusUnprocessableEntity:
		return nil, pricing.ErrCouponInvalid
	default:
		return nil, fmt.Errorf("クーポンサービスが予期しないステータスを返しました: %d", resp.StatusCode)
	}

	var result validateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("レスポンスのデコードに失敗: %w", err)
	}
	if !result.Valid {
		return nil, pricing.ErrCouponInvalid
	}

	return &pricing.Coupon{
		Code:  code,
		Mode:  pricing.CouponMode(result.Mode),
		Value: result.Value,
	}, nil
}
