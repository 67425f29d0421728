package pricing

// FeeMode はセッション手数料の計算方式を表す
type FeeMode string

const (
	FeeModePercent      FeeMode = "percent"        // 小計に対する百分率
	FeeModeFixedPerUnit FeeMode = "fixed_per_unit" // ユニットあたり固定額
)

// FeeConfig はセッションごとの手数料設定
type FeeConfig struct {
	Mode  FeeMode
	Value int // percent の場合は百分率（例: 10 = 10%）、fixed_per_unit の場合は円
}

// CouponMode はクーポンの割引方式を表す
type CouponMode string

const (
	CouponModePercent CouponMode = "percent" // 小計+手数料に対する百分率
	CouponModeFixed   CouponMode = "fixed"   // 固定額
)

// Coupon は外部クーポンサービスで検証済みの割引情報
type Coupon struct {
	Code  string
	Mode  CouponMode
	Value int
}

// Unit は見積り対象の在庫ユニット（座席1席またはティア数量）
type Unit struct {
	UnitPrice  int
	Quantity   int
	PerUnitFee int
}

// PriceQuote は価格の内訳を表す一時的な値
// 永続化されず、同一入力に対して常に同一の結果を返す
type PriceQuote struct {
	Subtotal int
	Fees     int
	Discount int
	Total    int
}

// Quote は在庫ユニット・手数料設定・クーポンから価格見積りを計算する
// 副作用を持たない純粋関数であり、同一入力に対してビット単位で同一の結果を返す
// Confirm 時のクライアント提示額の再検証はこの決定性に依存している
func Quote(units []Unit, fee FeeConfig, coupon *Coupon) PriceQuote {
	var subtotal, unitFees, unitCount int
	for _, u := range units {
		subtotal += u.UnitPrice * u.Quantity
		unitFees += u.PerUnitFee * u.Quantity
		unitCount += u.Quantity
	}

	fees := unitFees
	switch fee.Mode {
	case FeeModePercent:
		fees += subtotal * fee.Value / 100
	case FeeModeFixedPerUnit:
		fees += fee.Value * unitCount
	}

	var discount int
	if coupon != nil {
		switch coupon.Mode {
		case CouponModePercent:
			discount = (subtotal + fees) * coupon.Value / 100
		case CouponModeFixed:
			discount = coupon.Value
		}
	}

	total := subtotal + fees - discount
	if total < 0 {
		total = 0
	}

	return PriceQuote{
		Subtotal: subtotal,
		Fees:     fees,
		Discount: discount,
		Total:    total,
	}
}

// WithinTolerance はクライアント提示額とサーバー再計算額の差が許容範囲内かを返す
func (q PriceQuote) WithinTolerance(clientTotal, tolerance int) bool {
	diff := q.Total - clientTotal
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance
}
