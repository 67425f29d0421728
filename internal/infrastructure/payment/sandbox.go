package payment

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-ticket-inventory-engine/internal/application"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/pkg/logger"
)

// SandboxGateway は全ての課金を承認する開発用ゲートウェイ
// 本番の決済プロバイダー連携はこのエンジンの範囲外で、
// application.PaymentGateway の差し替えで対応する
type SandboxGateway struct{}

func NewSandboxGateway() *SandboxGateway {
	return &SandboxGateway{}
}

// Charge は課金を記録して常に成功を返す
func (g *SandboxGateway) Charge(ctx context.Context, input application.ChargeInput) error {
	if input.Amount < 0 {
		return fmt.Errorf("課金額が不正です: %d", input.Amount)
	}
	logger.Info("サンドボックス課金を承認",
		zap.String("user_id", input.UserID),
		zap.Int("amount", input.Amount),
		zap.String("reference", input.Reference),
	)
	return nil
}
