package application

import (
	"context"
	"fmt"
	"time"

	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/inventory"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/pricing"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/session"
)

// SessionService はセッションの管理と在庫の初期投入を扱う
type SessionService struct {
	sessionRepo    session.Repository
	inventoryStore inventory.Store
}

func NewSessionService(sr session.Repository, store inventory.Store) *SessionService {
	return &SessionService{sessionRepo: sr, inventoryStore: store}
}

type CreateSessionInput struct {
	Name            string
	Venue           string
	StartAt         time.Time
	EndAt           time.Time
	SaleStartAt     time.Time
	SaleEndAt       time.Time
	ServiceFeeMode  string
	ServiceFeeValue int
	PerUnitFee      int
}

func (s *SessionService) CreateSession(ctx context.Context, input CreateSessionInput) (*session.Session, error) {
	sess := session.NewSession(input.Name, input.Venue, input.StartAt, input.EndAt, input.SaleStartAt, input.SaleEndAt, pricing.FeeMode(input.ServiceFeeMode), input.ServiceFeeValue, input.PerUnitFee)
	if err := sess.Validate(); err != nil {
		return nil, fmt.Errorf("バリデーションエラー: %w", err)
	}
	if err := s.sessionRepo.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("セッション作成に失敗しました: %w", err)
	}
	return sess, nil
}

func (s *SessionService) GetSession(ctx context.Context, id string) (*session.Session, error) {
	return s.sessionRepo.GetByID(ctx, id)
}

func (s *SessionService) ListSessions(ctx context.Context, limit, offset int) ([]*session.Session, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.sessionRepo.List(ctx, limit, offset)
}

type SeedSeatsInput struct {
	SessionID string
	Zone      string
	Count     int
	Price     int
}

// SeedSeats はゾーン内の座席を連番で一括作成する
func (s *SessionService) SeedSeats(ctx context.Context, input SeedSeatsInput) ([]*inventory.Seat, error) {
	if _, err := s.sessionRepo.GetByID(ctx, input.SessionID); err != nil {
		return nil, fmt.Errorf("セッション取得に失敗: %w", err)
	}
	seats := make([]*inventory.Seat, 0, input.Count)
	for i := 1; i <= input.Count; i++ {
		seatNumber := fmt.Sprintf("%s-%d", input.Zone, i)
		seat := inventory.NewSeat(input.SessionID, input.Zone, seatNumber, input.Price)
		if err := seat.Validate(); err != nil {
			return nil, err
		}
		seats = append(seats, seat)
	}
	if err := s.inventoryStore.CreateSeatsBulk(ctx, seats); err != nil {
		return nil, err
	}
	return seats, nil
}

type CreateTierInput struct {
	SessionID string
	Name      string
	Capacity  int
	Price     int
}

// CreateTier はGA価格ティアを作成する（残数は定員と同数で初期化）
func (s *SessionService) CreateTier(ctx context.Context, input CreateTierInput) (*inventory.Tier, error) {
	if _, err := s.sessionRepo.GetByID(ctx, input.SessionID); err != nil {
		return nil, fmt.Errorf("セッション取得に失敗: %w", err)
	}
	tier := inventory.NewTier(input.SessionID, input.Name, input.Capacity, input.Price)
	if err := tier.Validate(); err != nil {
		return nil, err
	}
	if err := s.inventoryStore.CreateTier(ctx, tier); err != nil {
		return nil, err
	}
	return tier, nil
}
