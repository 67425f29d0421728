package inventory

import (
	"context"

	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/transaction"
)

// Store は在庫の唯一の更新窓口となるインターフェース
// 座席・ティアの状態遷移はすべてここを経由し、トランザクション内で直列化される
type Store interface {
	// CreateSeat は新しい座席を作成する
	CreateSeat(ctx context.Context, seat *Seat) error

	// CreateSeatsBulk は複数の座席を一括作成する
	CreateSeatsBulk(ctx context.Context, seats []*Seat) error

	// CreateTier は新しいティアを作成する
	CreateTier(ctx context.Context, tier *Tier) error

	// GetSeatByID はIDから座席を取得する
	GetSeatByID(ctx context.Context, id string) (*Seat, error)

	// GetSeatsByIDs は複数IDから座席を取得する
	GetSeatsByIDs(ctx context.Context, ids []string) ([]*Seat, error)

	// GetSeatsBySession はセッションIDから座席一覧を取得する
	GetSeatsBySession(ctx context.Context, sessionID string) ([]*Seat, error)

	// GetTierByID はIDからティアを取得する
	GetTierByID(ctx context.Context, id string) (*Tier, error)

	// GetTiersBySession はセッションIDからティア一覧を取得する
	GetTiersBySession(ctx context.Context, sessionID string) ([]*Tier, error)

	// HoldSeats は座席集合をホールド状態に遷移させる（全件成功か全件失敗、トランザクション必須）
	HoldSeats(ctx context.Context, tx transaction.Tx, seatIDs []string, reservationID string) error

	// MarkSeatsSold はホールド中の座席を販売済みに遷移させる（トランザクション必須）
	MarkSeatsSold(ctx context.Context, tx transaction.Tx, seatIDs []string) error

	// ReleaseSeats はホールド中の座席を解放する（販売済みは対象外、トランザクション必須）
	ReleaseSeats(ctx context.Context, tx transaction.Tx, seatIDs []string) error

	// TakeTierCapacity はティアの残数を比較減算する
	// remaining >= quantity の場合のみ成功する（トランザクション必須）
	TakeTierCapacity(ctx context.Context, tx transaction.Tx, tierID string, quantity int) error

	// RestoreTierCapacity は解放された数量をティアに戻す（トランザクション必須）
	RestoreTierCapacity(ctx context.Context, tx transaction.Tx, tierID string, quantity int) error

	// CountAvailableBySession はセッションの空席数を取得する
	CountAvailableBySession(ctx context.Context, sessionID string) (int, error)
}
