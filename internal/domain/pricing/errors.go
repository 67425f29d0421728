package pricing

import "errors"

// Pricing ドメインのエラー定義
var (
	ErrPriceMismatch = errors.New("提示された合計金額がサーバー計算と一致しません")
	ErrCouponInvalid = errors.New("クーポンが無効です")
)
