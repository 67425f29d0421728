package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/inventory"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/transaction"
)

type seatRow struct {
	ID         string     `db:"id"`
	SessionID  string     `db:"session_id"`
	Zone       string     `db:"zone"`
	SeatNumber string     `db:"seat_number"`
	Status     string     `db:"status"`
	Price      int        `db:"price"`
	HeldBy     *string    `db:"held_by"`
	HeldAt     *time.Time `db:"held_at"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
	Version    int        `db:"version"`
}

func (r *seatRow) toEntity() *inventory.Seat {
	return &inventory.Seat{
		ID: r.ID, SessionID: r.SessionID, Zone: r.Zone, SeatNumber: r.SeatNumber,
		Status: inventory.Status(r.Status), Price: r.Price,
		HeldBy: r.HeldBy, HeldAt: r.HeldAt,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt, Version: r.Version,
	}
}

type tierRow struct {
	ID        string    `db:"id"`
	SessionID string    `db:"session_id"`
	Name      string    `db:"name"`
	Capacity  int       `db:"capacity"`
	Remaining int       `db:"remaining"`
	Price     int       `db:"price"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
	Version   int       `db:"version"`
}

func (r *tierRow) toEntity() *inventory.Tier {
	return &inventory.Tier{
		ID: r.ID, SessionID: r.SessionID, Name: r.Name,
		Capacity: r.Capacity, Remaining: r.Remaining, Price: r.Price,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt, Version: r.Version,
	}
}

// InventoryStore は座席・ティア在庫の PostgreSQL 実装
// 状態遷移はすべて条件付き UPDATE で行い、RowsAffected で全件成功を検証する
type InventoryStore struct{ db *sqlx.DB }

func NewInventoryStore(db *sqlx.DB) *InventoryStore { return &InventoryStore{db: db} }

const seatColumns = `id, session_id, zone, seat_number, status, price, held_by, held_at, created_at, updated_at, version`

func (s *InventoryStore) CreateSeat(ctx context.Context, seat *inventory.Seat) error {
	query := `INSERT INTO seats (session_id, zone, seat_number, status, price, created_at, updated_at, version) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	return s.db.QueryRowContext(ctx, query, seat.SessionID, seat.Zone, seat.SeatNumber, string(seat.Status), seat.Price, seat.CreatedAt, seat.UpdatedAt, seat.Version).Scan(&seat.ID)
}

func (s *InventoryStore) CreateSeatsBulk(ctx context.Context, seats []*inventory.Seat) error {
	if len(seats) == 0 {
		return nil
	}

	// バッチサイズごとに分割してマルチバリューINSERTを実行
	const batchSize = 1000
	for i := 0; i < len(seats); i += batchSize {
		end := i + batchSize
		if end > len(seats) {
			end = len(seats)
		}
		if err := s.createSeatsBatch(ctx, seats[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (s *InventoryStore) createSeatsBatch(ctx context.Context, seats []*inventory.Seat) error {
	query := `INSERT INTO seats (session_id, zone, seat_number, status, price, created_at, updated_at, version) VALUES `
	args := make([]interface{}, 0, len(seats)*8)
	placeholders := make([]string, 0, len(seats))

	for i, seat := range seats {
		base := i * 8
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8))
		args = append(args, seat.SessionID, seat.Zone, seat.SeatNumber, string(seat.Status), seat.Price, seat.CreatedAt, seat.UpdatedAt, seat.Version)
	}

	query += strings.Join(placeholders, ", ")
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("座席一括作成に失敗: %w", err)
	}
	return nil
}

func (s *InventoryStore) CreateTier(ctx context.Context, tier *inventory.Tier) error {
	query := `INSERT INTO tiers (session_id, name, capacity, remaining, price, created_at, updated_at, version) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	return s.db.QueryRowContext(ctx, query, tier.SessionID, tier.Name, tier.Capacity, tier.Remaining, tier.Price, tier.CreatedAt, tier.UpdatedAt, tier.Version).Scan(&tier.ID)
}

func (s *InventoryStore) GetSeatByID(ctx context.Context, id string) (*inventory.Seat, error) {
	var row seatRow
	if err := s.db.GetContext(ctx, &row, `SELECT `+seatColumns+` FROM seats WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, inventory.ErrSeatNotFound
		}
		return nil, fmt.Errorf("座席取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (s *InventoryStore) GetSeatsByIDs(ctx context.Context, ids []string) ([]*inventory.Seat, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []seatRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT `+seatColumns+` FROM seats WHERE id = ANY($1) ORDER BY seat_number`, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("座席取得に失敗: %w", err)
	}
	seats := make([]*inventory.Seat, len(rows))
	for i, row := range rows {
		seats[i] = row.toEntity()
	}
	return seats, nil
}

func (s *InventoryStore) GetSeatsBySession(ctx context.Context, sessionID string) ([]*inventory.Seat, error) {
	var rows []seatRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT `+seatColumns+` FROM seats WHERE session_id = $1 ORDER BY zone, seat_number`, sessionID); err != nil {
		return nil, fmt.Errorf("座席取得に失敗: %w", err)
	}
	seats := make([]*inventory.Seat, len(rows))
	for i, row := range rows {
		seats[i] = row.toEntity()
	}
	return seats, nil
}

func (s *InventoryStore) GetTierByID(ctx context.Context, id string) (*inventory.Tier, error) {
	var row tierRow
	if err := s.db.GetContext(ctx, &row, `SELECT id, session_id, name, capacity, remaining, price, created_at, updated_at, version FROM tiers WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, inventory.ErrTierNotFound
		}
		return nil, fmt.Errorf("ティア取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (s *InventoryStore) GetTiersBySession(ctx context.Context, sessionID string) ([]*inventory.Tier, error) {
	var rows []tierRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, session_id, name, capacity, remaining, price, created_at, updated_at, version FROM tiers WHERE session_id = $1 ORDER BY name`, sessionID); err != nil {
		return nil, fmt.Errorf("ティア取得に失敗: %w", err)
	}
	tiers := make([]*inventory.Tier, len(rows))
	for i, row := range rows {
		tiers[i] = row.toEntity()
	}
	return tiers, nil
}

// HoldSeats は available な座席集合を held に遷移させる
// 更新件数が要求件数と一致しない場合は ErrSeatConflict を返し、
// 呼び出し側のロールバックで全件が available のまま残る（全件成功か全件失敗）
func (s *InventoryStore) HoldSeats(ctx context.Context, tx transaction.Tx, seatIDs []string, reservationID string) error {
	if len(seatIDs) == 0 {
		return nil
	}
	sqlxTx := UnwrapTx(tx)
	query := `UPDATE seats SET status = 'held', held_by = $1, held_at = NOW(), updated_at = NOW(), version = version + 1 WHERE id = ANY($2) AND status = 'available'`
	result, err := sqlxTx.ExecContext(ctx, query, reservationID, pq.Array(seatIDs))
	if err != nil {
		return fmt.Errorf("座席ホールドに失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if int(rows) != len(seatIDs) {
		return inventory.ErrSeatConflict
	}
	return nil
}

func (s *InventoryStore) MarkSeatsSold(ctx context.Context, tx transaction.Tx, seatIDs []string) error {
	if len(seatIDs) == 0 {
		return nil
	}
	sqlxTx := UnwrapTx(tx)
	query := `UPDATE seats SET status = 'sold', updated_at = NOW(), version = version + 1 WHERE id = ANY($1) AND status = 'held'`
	result, err := sqlxTx.ExecContext(ctx, query, pq.Array(seatIDs))
	if err != nil {
		return fmt.Errorf("座席販売確定に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if int(rows) != len(seatIDs) {
		return inventory.ErrSeatNotHeld
	}
	return nil
}

// ReleaseSeats は held の座席を available に戻す
// sold は対象外（WHERE 句で除外され、販売済み座席が戻ることはない）
func (s *InventoryStore) ReleaseSeats(ctx context.Context, tx transaction.Tx, seatIDs []string) error {
	if len(seatIDs) == 0 {
		return nil
	}
	sqlxTx := UnwrapTx(tx)
	query := `UPDATE seats SET status = 'available', held_by = NULL, held_at = NULL, updated_at = NOW(), version = version + 1 WHERE id = ANY($1) AND status = 'held'`
	if _, err := sqlxTx.ExecContext(ctx, query, pq.Array(seatIDs)); err != nil {
		return fmt.Errorf("座席解放に失敗: %w", err)
	}
	return nil
}

// TakeTierCapacity はティア残数の比較減算を行う
// remaining >= quantity の行のみ更新されるため、残数は決して負にならない
func (s *InventoryStore) TakeTierCapacity(ctx context.Context, tx transaction.Tx, tierID string, quantity int) error {
	if quantity <= 0 {
		return inventory.ErrInvalidQuantity
	}
	sqlxTx := UnwrapTx(tx)
	query := `UPDATE tiers SET remaining = remaining - $1, updated_at = NOW(), version = version + 1 WHERE id = $2 AND remaining >= $1`
	result, err := sqlxTx.ExecContext(ctx, query, quantity, tierID)
	if err != nil {
		return fmt.Errorf("ティア減算に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return inventory.ErrCapacityExceeded
	}
	return nil
}

func (s *InventoryStore) RestoreTierCapacity(ctx context.Context, tx transaction.Tx, tierID string, quantity int) error {
	if quantity <= 0 {
		return inventory.ErrInvalidQuantity
	}
	sqlxTx := UnwrapTx(tx)
	query := `UPDATE tiers SET remaining = LEAST(capacity, remaining + $1), updated_at = NOW(), version = version + 1 WHERE id = $2`
	result, err := sqlxTx.ExecContext(ctx, query, quantity, tierID)
	if err != nil {
		return fmt.Errorf("ティア復元に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return inventory.ErrTierNotFound
	}
	return nil
}

func (s *InventoryStore) CountAvailableBySession(ctx context.Context, sessionID string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM seats WHERE session_id = $1 AND status = 'available'`, sessionID)
	return count, err
}

var _ inventory.Store = (*InventoryStore)(nil)
