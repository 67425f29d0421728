package ticket

import (
	"context"

	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/transaction"
)

// Repository は注文・チケットリポジトリのインターフェース
type Repository interface {
	// CreateOrder は注文とチケットを作成する（トランザクション必須）
	// 在庫の販売済み遷移と同一トランザクションで呼び出すこと
	CreateOrder(ctx context.Context, tx transaction.Tx, order *Order, tickets []*Ticket) error

	// GetOrderByID はIDから注文を取得する
	GetOrderByID(ctx context.Context, id string) (*Order, error)

	// GetTicketsByOrderID は注文IDからチケット一覧を取得する
	GetTicketsByOrderID(ctx context.Context, orderID string) ([]*Ticket, error)
}
