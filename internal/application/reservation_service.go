package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/inventory"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/pricing"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/reservation"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/session"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/ticket"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/transaction"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/infrastructure/eventbus"
	redisinfra "github.com/sanosuguru/go-ticket-inventory-engine/internal/infrastructure/redis"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/pkg/logger"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/pkg/metrics"
)

// ReservationServiceOptions はReservationServiceの任意依存をまとめる
// nil のフィールドは単に使用されない（テストでは省略できる）
type ReservationServiceOptions struct {
	CouponValidator CouponValidator
	Publisher       EventPublisher
	Cache           CacheInvalidator
	Metrics         *metrics.Metrics
	HoldTTL         time.Duration
	PriceTolerance  int
}

// ReservationService はホールドのライフサイクル（作成・取消・確定・期限切れ解放）を扱う
type ReservationService struct {
	txManager       transaction.Manager
	reservationRepo reservation.Repository
	inventoryStore  inventory.Store
	sessionRepo     session.Repository
	ticketRepo      ticket.Repository
	lockManager     *redisinfra.LockManager
	couponValidator CouponValidator
	publisher       EventPublisher
	cache           CacheInvalidator
	metrics         *metrics.Metrics
	holdTTL         time.Duration
	priceTolerance  int
}

func NewReservationService(
	txManager transaction.Manager,
	rr reservation.Repository,
	store inventory.Store,
	sessRepo session.Repository,
	tr ticket.Repository,
	lm *redisinfra.LockManager,
	opts ReservationServiceOptions,
) *ReservationService {
	if opts.HoldTTL <= 0 {
		opts.HoldTTL = reservation.DefaultTTL
	}
	return &ReservationService{
		txManager:       txManager,
		reservationRepo: rr,
		inventoryStore:  store,
		sessionRepo:     sessRepo,
		ticketRepo:      tr,
		lockManager:     lm,
		couponValidator: opts.CouponValidator,
		publisher:       opts.Publisher,
		cache:           opts.Cache,
		metrics:         opts.Metrics,
		holdTTL:         opts.HoldTTL,
		priceTolerance:  opts.PriceTolerance,
	}
}

type TierQuantityInput struct {
	TierID   string
	Quantity int
}

type CreateHoldInput struct {
	SessionID      string
	UserID         string
	SeatIDs        []string
	TierQuantities []TierQuantityInput
	IdempotencyKey string
}

// CreateHold は座席集合・ティア数量に対する時限付きホールドを作成する
// 全件成功か全件失敗のみで、部分的なホールドは残らない
func (s *ReservationService) CreateHold(ctx context.Context, input CreateHoldInput) (*reservation.Reservation, error) {
	// 冪等性チェック: 同じキーでの再送には既存の予約を返す
	existing, err := s.reservationRepo.GetByIdempotencyKey(ctx, input.IdempotencyKey)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, reservation.ErrReservationNotFound) {
		return nil, fmt.Errorf("冪等性チェックに失敗: %w", err)
	}

	// 分散ロックを取得（座席IDをソートしてデッドロックを防止）
	// ティアのみのホールドはSQLの比較減算が直列化するためロック不要
	if s.lockManager != nil && len(input.SeatIDs) > 0 {
		lockKey := buildSeatLockKey(input.SeatIDs)
		start := time.Now()
		lock, err := s.lockManager.AcquireLockWithRetry(ctx, lockKey, 10*time.Second, 3, 100*time.Millisecond)
		if err != nil {
			s.observeLock("acquire", "failed", start)
			if errors.Is(err, redisinfra.ErrLockNotAcquired) {
				s.countHold("lock_failed")
				return nil, inventory.ErrSeatConflict
			}
			return nil, fmt.Errorf("ロック取得に失敗: %w", err)
		}
		s.observeLock("acquire", "success", start)
		defer lock.Release(ctx)
	}

	sess, err := s.sessionRepo.GetByID(ctx, input.SessionID)
	if err != nil {
		return nil, fmt.Errorf("セッション取得に失敗: %w", err)
	}
	if !sess.IsSaleOpen(time.Now()) {
		return nil, session.ErrSaleClosed
	}

	// 座席の事前確認と価格の取得
	var units []pricing.Unit
	if len(input.SeatIDs) > 0 {
		seats, err := s.inventoryStore.GetSeatsByIDs(ctx, input.SeatIDs)
		if err != nil {
			return nil, fmt.Errorf("座席取得に失敗: %w", err)
		}
		seatMap := make(map[string]*inventory.Seat, len(seats))
		for _, seat := range seats {
			seatMap[seat.ID] = seat
		}
		for _, id := range input.SeatIDs {
			seat, ok := seatMap[id]
			if !ok {
				return nil, inventory.ErrSeatNotFound
			}
			if !seat.IsAvailable() {
				s.countHold("conflict")
				return nil, inventory.ErrSeatConflict
			}
			units = append(units, pricing.Unit{UnitPrice: seat.Price, Quantity: 1, PerUnitFee: sess.PerUnitFee})
		}
	}

	// ティアの事前確認（確定的な減算はトランザクション内で行う）
	tierQuantities := make([]reservation.TierQuantity, 0, len(input.TierQuantities))
	for _, tq := range input.TierQuantities {
		if tq.Quantity <= 0 {
			return nil, inventory.ErrInvalidQuantity
		}
		tier, err := s.inventoryStore.GetTierByID(ctx, tq.TierID)
		if err != nil {
			return nil, fmt.Errorf("ティア取得に失敗: %w", err)
		}
		if tier.Remaining < tq.Quantity {
			s.countHold("capacity_exceeded")
			return nil, inventory.ErrCapacityExceeded
		}
		tierQuantities = append(tierQuantities, reservation.TierQuantity{
			TierID:    tq.TierID,
			Quantity:  tq.Quantity,
			UnitPrice: tier.Price,
		})
		units = append(units, pricing.Unit{UnitPrice: tier.Price, Quantity: tq.Quantity, PerUnitFee: sess.PerUnitFee})
	}

	quote := pricing.Quote(units, sess.FeeConfig(), nil)
	res := reservation.NewReservation(input.SessionID, input.UserID, input.IdempotencyKey, input.SeatIDs, tierQuantities, quote.Total, s.holdTTL)
	if err := res.Validate(); err != nil {
		return nil, err
	}

	// 予約の作成・座席のホールド・ティアの減算を単一トランザクションで行う
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.reservationRepo.Create(ctx, tx, res); err != nil {
		if errors.Is(err, reservation.ErrIdempotencyKeyAlreadyExists) {
			// 同時再送との競合: 勝者の予約を返す
			return s.reservationRepo.GetByIdempotencyKey(ctx, input.IdempotencyKey)
		}
		return nil, err
	}
	if len(res.SeatIDs) > 0 {
		if err := s.inventoryStore.HoldSeats(ctx, tx, res.SeatIDs, res.ID); err != nil {
			s.countHold("conflict")
			return nil, err
		}
	}
	for _, tq := range res.TierQuantities {
		if err := s.inventoryStore.TakeTierCapacity(ctx, tx, tq.TierID, tq.Quantity); err != nil {
			if errors.Is(err, inventory.ErrCapacityExceeded) {
				s.countHold("capacity_exceeded")
			}
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	s.countHold("success")
	if s.metrics != nil {
		s.metrics.ActiveHolds.Inc()
	}
	s.invalidateCache(ctx, res.SessionID)
	s.publishEvent(ctx, func(p EventPublisher) error {
		return p.PublishHoldCreated(ctx, eventbus.HoldCreated{
			ReservationID: res.ID,
			SessionID:     res.SessionID,
			UserID:        res.UserID,
			SeatIDs:       res.SeatIDs,
			ExpiresAt:     res.ExpiresAt,
			OccurredAt:    time.Now(),
		})
	})
	return res, nil
}

// Cancel はホールドを取り消し、占有していた在庫を解放する
// 既に cancelled / expired の場合は冪等な成功として既存の予約を返す
func (s *ReservationService) Cancel(ctx context.Context, id string) (*reservation.Reservation, error) {
	res, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch res.Status {
	case reservation.StatusConfirmed:
		return nil, reservation.ErrAlreadyConfirmed
	case reservation.StatusCancelled, reservation.StatusExpired:
		return res, nil
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	// CAS ガード: リーパー・Confirm と競合しても解放処理は一度だけ行われる
	ok, err := s.reservationRepo.TransitionStatus(ctx, tx, id, reservation.StatusActive, reservation.StatusCancelled)
	if err != nil {
		return nil, err
	}
	if !ok {
		// 競合に敗れた: 現在の状態を見て冪等に解決する
		current, err := s.reservationRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if current.Status == reservation.StatusConfirmed {
			return nil, reservation.ErrAlreadyConfirmed
		}
		return current, nil
	}

	if err := s.releaseUnits(ctx, tx, res); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	res.Status = reservation.StatusCancelled
	if s.metrics != nil {
		s.metrics.ActiveHolds.Dec()
	}
	s.invalidateCache(ctx, res.SessionID)
	s.publishEvent(ctx, func(p EventPublisher) error {
		return p.PublishHoldCancelled(ctx, eventbus.HoldCancelled{
			ReservationID: res.ID,
			SessionID:     res.SessionID,
			OccurredAt:    time.Now(),
		})
	})
	return res, nil
}

type ConfirmInput struct {
	ReservationID string
	ClientTotal   int
	CouponCode    string
	BuyerName     string
	BuyerEmail    string
}

type ConfirmResult struct {
	Reservation *reservation.Reservation
	Order       *ticket.Order
	Tickets     []*ticket.Ticket
	Quote       pricing.PriceQuote
}

// Confirm はホールドを購入に確定する
// サーバー側で価格を再計算し、提示額との差が許容範囲を超える場合は
// ErrPriceMismatch を返してホールドを active のまま残す
func (s *ReservationService) Confirm(ctx context.Context, input ConfirmInput) (*ConfirmResult, error) {
	res, err := s.reservationRepo.GetByID(ctx, input.ReservationID)
	if err != nil {
		return nil, err
	}
	switch res.Status {
	case reservation.StatusConfirmed:
		return nil, reservation.ErrAlreadyConfirmed
	case reservation.StatusCancelled, reservation.StatusExpired:
		return nil, reservation.ErrReservationReleased
	}
	if res.IsExpired() {
		// 期限切れは失敗する。解放はリーパーの責務であり、ここでは行わない
		s.countPurchase("seated", "expired")
		return nil, reservation.ErrReservationExpired
	}

	sess, err := s.sessionRepo.GetByID(ctx, res.SessionID)
	if err != nil {
		return nil, fmt.Errorf("セッション取得に失敗: %w", err)
	}

	// 価格の再計算: ホールド時と同じ入力からの決定的な見積り
	units, seats, err := s.loadUnits(ctx, res, sess.PerUnitFee)
	if err != nil {
		return nil, err
	}
	var subtotal int
	for _, u := range units {
		subtotal += u.UnitPrice * u.Quantity
	}

	var coupon *pricing.Coupon
	var couponCode *string
	if input.CouponCode != "" {
		if s.couponValidator == nil {
			return nil, pricing.ErrCouponInvalid
		}
		coupon, err = s.couponValidator.Validate(ctx, input.CouponCode, res.SessionID, subtotal)
		if err != nil {
			return nil, err
		}
		couponCode = &input.CouponCode
	}

	quote := pricing.Quote(units, sess.FeeConfig(), coupon)
	if !quote.WithinTolerance(input.ClientTotal, s.priceTolerance) {
		s.countPurchase("seated", "price_mismatch")
		return nil, pricing.ErrPriceMismatch
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	// CAS ガード: リーパー・Cancel との競合、および事前チェック後の期限超過で
	// 確定は一度だけ・期限内にのみ成功する
	ok, err := s.reservationRepo.TransitionStatus(ctx, tx, res.ID, reservation.StatusActive, reservation.StatusConfirmed)
	if err != nil {
		return nil, err
	}
	if !ok {
		current, err := s.reservationRepo.GetByID(ctx, res.ID)
		if err != nil {
			return nil, err
		}
		switch current.Status {
		case reservation.StatusConfirmed:
			return nil, reservation.ErrAlreadyConfirmed
		case reservation.StatusActive:
			// active のまま CAS に敗れた = 期限ガードに弾かれた。解放はリーパーが行う
			s.countPurchase("seated", "expired")
			return nil, reservation.ErrReservationExpired
		}
		return nil, reservation.ErrReservationReleased
	}

	if len(res.SeatIDs) > 0 {
		if err := s.inventoryStore.MarkSeatsSold(ctx, tx, res.SeatIDs); err != nil {
			return nil, err
		}
	}
	// ティアの在庫はホールド時に減算済みで、そのまま確定される

	order := ticket.NewOrder(&res.ID, res.SessionID, res.UserID, input.BuyerName, input.BuyerEmail, quote.Subtotal, quote.Fees, quote.Discount, quote.Total, couponCode)
	tickets := buildTickets(res, seats)
	if err := s.ticketRepo.CreateOrder(ctx, tx, order, tickets); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	now := time.Now()
	res.Status = reservation.StatusConfirmed
	res.ConfirmedAt = &now
	s.countPurchase("seated", "success")
	if s.metrics != nil {
		s.metrics.ActiveHolds.Dec()
	}
	s.invalidateCache(ctx, res.SessionID)
	s.publishEvent(ctx, func(p EventPublisher) error {
		return p.PublishPurchaseCompleted(ctx, eventbus.PurchaseCompleted{
			OrderID:       order.ID,
			ReservationID: &res.ID,
			SessionID:     res.SessionID,
			UserID:        res.UserID,
			TotalAmount:   order.Total,
			TicketCount:   len(tickets),
			OccurredAt:    now,
		})
	})
	return &ConfirmResult{Reservation: res, Order: order, Tickets: tickets, Quote: quote}, nil
}

// ReleaseExpired は期限切れの有効なホールドを解放し、解放件数を返す
// CAS ガードにより Confirm / Cancel と競合しても二重解放は起きない
func (s *ReservationService) ReleaseExpired(ctx context.Context, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 100
	}
	expired, err := s.reservationRepo.GetExpiredActive(ctx, batchSize)
	if err != nil {
		return 0, fmt.Errorf("期限切れ予約取得に失敗: %w", err)
	}

	released := 0
	for _, res := range expired {
		if err := s.releaseOne(ctx, res); err != nil {
			if errors.Is(err, errAlreadyReleased) {
				// Confirm / Cancel に先を越された正常な競合
				continue
			}
			logger.Error("期限切れホールドの解放に失敗",
				zap.String("reservation_id", res.ID),
				zap.Error(err))
			continue
		}
		released++
		if s.metrics != nil {
			s.metrics.ReaperReleasedTotal.Inc()
			s.metrics.ActiveHolds.Dec()
		}
		s.invalidateCache(ctx, res.SessionID)
		s.publishEvent(ctx, func(p EventPublisher) error {
			return p.PublishHoldExpired(ctx, eventbus.HoldExpired{
				ReservationID: res.ID,
				SessionID:     res.SessionID,
				OccurredAt:    time.Now(),
			})
		})
	}
	return released, nil
}

func (s *ReservationService) releaseOne(ctx context.Context, res *reservation.Reservation) error {
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	ok, err := s.reservationRepo.TransitionStatus(ctx, tx, res.ID, reservation.StatusActive, reservation.StatusExpired)
	if err != nil {
		return err
	}
	if !ok {
		// Confirm / Cancel に先を越された: 何もしない
		return errAlreadyReleased
	}
	if err := s.releaseUnits(ctx, tx, res); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("コミットに失敗: %w", err)
	}
	return nil
}

var errAlreadyReleased = errors.New("ホールドは既に解放済みです")

// releaseUnits はホールドが占有する座席・ティア在庫を解放する
func (s *ReservationService) releaseUnits(ctx context.Context, tx transaction.Tx, res *reservation.Reservation) error {
	if len(res.SeatIDs) > 0 {
		if err := s.inventoryStore.ReleaseSeats(ctx, tx, res.SeatIDs); err != nil {
			return err
		}
	}
	for _, tq := range res.TierQuantities {
		if err := s.inventoryStore.RestoreTierCapacity(ctx, tx, tq.TierID, tq.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// loadUnits は予約の在庫ユニットを価格計算用に読み込む
func (s *ReservationService) loadUnits(ctx context.Context, res *reservation.Reservation, perUnitFee int) ([]pricing.Unit, []*inventory.Seat, error) {
	var units []pricing.Unit
	var seats []*inventory.Seat
	if len(res.SeatIDs) > 0 {
		var err error
		seats, err = s.inventoryStore.GetSeatsByIDs(ctx, res.SeatIDs)
		if err != nil {
			return nil, nil, fmt.Errorf("座席取得に失敗: %w", err)
		}
		for _, seat := range seats {
			units = append(units, pricing.Unit{UnitPrice: seat.Price, Quantity: 1, PerUnitFee: perUnitFee})
		}
	}
	for _, tq := range res.TierQuantities {
		units = append(units, pricing.Unit{UnitPrice: tq.UnitPrice, Quantity: tq.Quantity, PerUnitFee: perUnitFee})
	}
	return units, seats, nil
}

// buildTickets は在庫ユニット1つにつき1枚のチケットを発行する
// OrderID はリポジトリが注文作成時に採番して設定する
func buildTickets(res *reservation.Reservation, seats []*inventory.Seat) []*ticket.Ticket {
	var tickets []*ticket.Ticket
	for _, seat := range seats {
		tickets = append(tickets, ticket.NewSeatTicket("", res.SessionID, seat.ID, seat.Price))
	}
	for _, tq := range res.TierQuantities {
		for i := 0; i < tq.Quantity; i++ {
			tickets = append(tickets, ticket.NewTierTicket("", res.SessionID, tq.TierID, tq.UnitPrice))
		}
	}
	return tickets
}

func (s *ReservationService) GetReservation(ctx context.Context, id string) (*reservation.Reservation, error) {
	return s.reservationRepo.GetByID(ctx, id)
}

func (s *ReservationService) GetUserReservations(ctx context.Context, userID string, limit, offset int) ([]*reservation.Reservation, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.reservationRepo.GetByUserID(ctx, userID, limit, offset)
}

// buildSeatLockKey は座席IDからロックキーを生成（ソートしてデッドロック防止）
func buildSeatLockKey(seatIDs []string) string {
	sorted := make([]string, len(seatIDs))
	copy(sorted, seatIDs)
	sort.Strings(sorted)
	return "seats:" + strings.Join(sorted, ",")
}

func (s *ReservationService) countHold(status string) {
	if s.metrics != nil {
		s.metrics.HoldsTotal.WithLabelValues(status).Inc()
	}
}

func (s *ReservationService) countPurchase(kind, status string) {
	if s.metrics != nil {
		s.metrics.PurchasesTotal.WithLabelValues(kind, status).Inc()
	}
}

func (s *ReservationService) observeLock(operation, status string, start time.Time) {
	if s.metrics != nil {
		s.metrics.DistributedLockDuration.WithLabelValues(operation, status).Observe(time.Since(start).Seconds())
	}
}

func (s *ReservationService) invalidateCache(ctx context.Context, sessionID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, sessionID); err != nil {
		logger.Warn("キャッシュ無効化に失敗", zap.String("session_id", sessionID), zap.Error(err))
	}
}

func (s *ReservationService) publishEvent(ctx context.Context, publish func(EventPublisher) error) {
	if s.publisher == nil {
		return
	}
	if err := publish(s.publisher); err != nil {
		logger.Warn("イベント発行に失敗", zap.Error(err))
	}
}
