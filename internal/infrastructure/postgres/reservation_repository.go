package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/reservation"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/transaction"
)

type reservationRow struct {
	ID             string     `db:"id"`
	SessionID      string     `db:"session_id"`
	UserID         string     `db:"user_id"`
	Status         string     `db:"status"`
	IdempotencyKey string     `db:"idempotency_key"`
	TotalAmount    int        `db:"total_amount"`
	ExpiresAt      time.Time  `db:"expires_at"`
	ConfirmedAt    *time.Time `db:"confirmed_at"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

type reservationTierRow struct {
	TierID    string `db:"tier_id"`
	Quantity  int    `db:"quantity"`
	UnitPrice int    `db:"unit_price"`
}

// ReservationRepository は予約の PostgreSQL 実装
type ReservationRepository struct{ db *sqlx.DB }

func NewReservationRepository(db *sqlx.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

const reservationColumns = `id, session_id, user_id, status, idempotency_key, total_amount, expires_at, confirmed_at, created_at, updated_at`

func (r *ReservationRepository) Create(ctx context.Context, tx transaction.Tx, res *reservation.Reservation) error {
	sqlxTx := UnwrapTx(tx)
	query := `INSERT INTO reservations (session_id, user_id, status, idempotency_key, total_amount, expires_at, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	if err := sqlxTx.QueryRowContext(ctx, query, res.SessionID, res.UserID, string(res.Status), res.IdempotencyKey, res.TotalAmount, res.ExpiresAt, res.CreatedAt, res.UpdatedAt).Scan(&res.ID); err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			return reservation.ErrIdempotencyKeyAlreadyExists
		}
		return fmt.Errorf("予約作成に失敗: %w", err)
	}
	for _, seatID := range res.SeatIDs {
		if _, err := sqlxTx.ExecContext(ctx, `INSERT INTO reservation_seats (reservation_id, seat_id) VALUES ($1, $2)`, res.ID, seatID); err != nil {
			return fmt.Errorf("予約座席関連付けに失敗: %w", err)
		}
	}
	for _, tq := range res.TierQuantities {
		if _, err := sqlxTx.ExecContext(ctx, `INSERT INTO reservation_tiers (reservation_id, tier_id, quantity, unit_price) VALUES ($1, $2, $3, $4)`, res.ID, tq.TierID, tq.Quantity, tq.UnitPrice); err != nil {
			return fmt.Errorf("予約ティア関連付けに失敗: %w", err)
		}
	}
	return nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, id string) (*reservation.Reservation, error) {
	var row reservationRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reservation.ErrReservationNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return r.loadUnits(ctx, &row)
}

func (r *ReservationRepository) GetByIdempotencyKey(ctx context.Context, key string) (*reservation.Reservation, error) {
	var row reservationRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+reservationColumns+` FROM reservations WHERE idempotency_key = $1`, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reservation.ErrReservationNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return r.loadUnits(ctx, &row)
}

func (r *ReservationRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*reservation.Reservation, error) {
	var rows []reservationRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+reservationColumns+` FROM reservations WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("予約一覧取得に失敗: %w", err)
	}
	result := make([]*reservation.Reservation, len(rows))
	for i := range rows {
		res, err := r.loadUnits(ctx, &rows[i])
		if err != nil {
			return nil, err
		}
		result[i] = res
	}
	return result, nil
}

// TransitionStatus は状態を compare-and-swap で遷移させる
// WHERE status = from がガードとなり、競合した遷移のうち1つだけが成功する
// confirmed への遷移は期限もガードし、expires_at を過ぎた active は確定できない
func (r *ReservationRepository) TransitionStatus(ctx context.Context, tx transaction.Tx, id string, from, to reservation.Status) (bool, error) {
	sqlxTx := UnwrapTx(tx)
	var query string
	if to == reservation.StatusConfirmed {
		query = `UPDATE reservations SET status = $1, confirmed_at = NOW(), updated_at = NOW() WHERE id = $2 AND status = $3 AND expires_at > NOW()`
	} else {
		query = `UPDATE reservations SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`
	}
	result, err := sqlxTx.ExecContext(ctx, query, string(to), id, string(from))
	if err != nil {
		return false, fmt.Errorf("予約状態遷移に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows == 1, nil
}

func (r *ReservationRepository) GetExpiredActive(ctx context.Context, limit int) ([]*reservation.Reservation, error) {
	var rows []reservationRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+reservationColumns+` FROM reservations WHERE status = 'active' AND expires_at <= NOW() ORDER BY expires_at LIMIT $1`, limit); err != nil {
		return nil, fmt.Errorf("期限切れ予約取得に失敗: %w", err)
	}
	result := make([]*reservation.Reservation, len(rows))
	for i := range rows {
		res, err := r.loadUnits(ctx, &rows[i])
		if err != nil {
			return nil, err
		}
		result[i] = res
	}
	return result, nil
}

func (r *ReservationRepository) loadUnits(ctx context.Context, row *reservationRow) (*reservation.Reservation, error) {
	var seatIDs []string
	if err := r.db.SelectContext(ctx, &seatIDs, `SELECT seat_id FROM reservation_seats WHERE reservation_id = $1`, row.ID); err != nil {
		return nil, fmt.Errorf("予約座席取得に失敗: %w", err)
	}
	var tierRows []reservationTierRow
	if err := r.db.SelectContext(ctx, &tierRows, `SELECT tier_id, quantity, unit_price FROM reservation_tiers WHERE reservation_id = $1`, row.ID); err != nil {
		return nil, fmt.Errorf("予約ティア取得に失敗: %w", err)
	}
	tiers := make([]reservation.TierQuantity, len(tierRows))
	for i, tr := range tierRows {
		tiers[i] = reservation.TierQuantity{TierID: tr.TierID, Quantity: tr.Quantity, UnitPrice: tr.UnitPrice}
	}
	return &reservation.Reservation{
		ID: row.ID, SessionID: row.SessionID, UserID: row.UserID,
		SeatIDs: seatIDs, TierQuantities: tiers,
		Status: reservation.Status(row.Status), IdempotencyKey: row.IdempotencyKey,
		TotalAmount: row.TotalAmount, ExpiresAt: row.ExpiresAt, ConfirmedAt: row.ConfirmedAt,
		CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt,
	}, nil
}

var _ reservation.Repository = (*ReservationRepository)(nil)
