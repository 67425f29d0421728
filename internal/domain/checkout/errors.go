package checkout

import "errors"

// Checkout ドメインのエラー定義
var (
	ErrCheckoutNotFound  = errors.New("チェックアウトセッションが見つかりません")
	ErrInvalidTransition = errors.New("現在のステップからは遷移できません")
)
