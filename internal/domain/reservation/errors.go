package reservation

import "errors"

// Reservation ドメインのエラー定義
var (
	ErrReservationNotFound         = errors.New("予約が見つかりません")
	ErrReservationExpired          = errors.New("予約の有効期限が切れています")
	ErrReservationReleased         = errors.New("予約は既に解放されています")
	ErrAlreadyConfirmed            = errors.New("予約は既に確定されています")
	ErrSessionIDRequired           = errors.New("セッションIDは必須です")
	ErrUserIDRequired              = errors.New("ユーザーIDは必須です")
	ErrUnitsRequired               = errors.New("座席またはティア数量の指定は必須です")
	ErrInvalidTierQuantity         = errors.New("ティア数量は1以上である必要があります")
	ErrIdempotencyKeyRequired      = errors.New("冪等性キーは必須です")
	ErrIdempotencyKeyAlreadyExists = errors.New("同じ冪等性キーの予約が既に存在します")
)
