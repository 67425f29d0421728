package ticket

import "errors"

// Ticket ドメインのエラー定義
var (
	ErrOrderNotFound  = errors.New("注文が見つかりません")
	ErrTicketNotFound = errors.New("チケットが見つかりません")
)
