package session

import "errors"

// Session ドメインのエラー定義
var (
	ErrSessionNotFound     = errors.New("セッションが見つかりません")
	ErrSessionNameRequired = errors.New("セッション名は必須です")
	ErrInvalidSessionTime  = errors.New("終了時刻は開始時刻より後である必要があります")
	ErrInvalidSalePeriod   = errors.New("販売終了時刻は販売開始時刻より後である必要があります")
	ErrInvalidServiceFee   = errors.New("手数料は0以上である必要があります")
	ErrSaleClosed          = errors.New("セッションの販売期間外です")
)
