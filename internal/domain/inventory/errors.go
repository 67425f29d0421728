package inventory

import "errors"

// Inventory ドメインのエラー定義
var (
	ErrSeatNotFound       = errors.New("座席が見つかりません")
	ErrSeatConflict       = errors.New("座席は既にホールドまたは販売済みです")
	ErrSeatNotHeld        = errors.New("座席はホールドされていません")
	ErrSeatAlreadySold    = errors.New("座席は既に販売済みです")
	ErrTierNotFound       = errors.New("ティアが見つかりません")
	ErrCapacityExceeded   = errors.New("ティアの残数が不足しています")
	ErrInvalidQuantity    = errors.New("数量は1以上である必要があります")
	ErrInvalidCapacity    = errors.New("定員は1以上である必要があります")
	ErrSessionIDRequired  = errors.New("セッションIDは必須です")
	ErrSeatNumberRequired = errors.New("座席番号は必須です")
	ErrTierNameRequired   = errors.New("ティア名は必須です")
	ErrInvalidPrice       = errors.New("価格は0以上である必要があります")
)
