package session

import "context"

// Repository はセッションリポジトリのインターフェース
type Repository interface {
	// Create は新しいセッションを作成する
	Create(ctx context.Context, session *Session) error

	// GetByID はIDからセッションを取得する
	GetByID(ctx context.Context, id string) (*Session, error)

	// List はセッション一覧を取得する
	List(ctx context.Context, limit, offset int) ([]*Session, error)
}
