package reservation

import (
	"context"

	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/transaction"
)

// Repository は予約リポジトリのインターフェース
type Repository interface {
	// Create は新しい予約を作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, reservation *Reservation) error

	// GetByID はIDから予約を取得する
	GetByID(ctx context.Context, id string) (*Reservation, error)

	// GetByIdempotencyKey は冪等性キーから予約を取得する
	GetByIdempotencyKey(ctx context.Context, key string) (*Reservation, error)

	// GetByUserID はユーザーIDから予約一覧を取得する
	GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*Reservation, error)

	// TransitionStatus は予約の状態を compare-and-swap で遷移させる
	// 現在の状態が from と一致する場合のみ to へ更新し、一致しなければ false を返す
	// リーパー・Confirm・Cancel の競合で解放処理を一度だけ行うためのガード
	TransitionStatus(ctx context.Context, tx transaction.Tx, id string, from, to Status) (bool, error)

	// GetExpiredActive は期限切れの有効な予約を取得する
	GetExpiredActive(ctx context.Context, limit int) ([]*Reservation, error)
}
