package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/pricing"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/session"
)

type sessionRow struct {
	ID              string    `db:"id"`
	Name            string    `db:"name"`
	Venue           string    `db:"venue"`
	StartAt         time.Time `db:"start_at"`
	EndAt           time.Time `db:"end_at"`
	SaleStartAt     time.Time `db:"sale_start_at"`
	SaleEndAt       time.Time `db:"sale_end_at"`
	ServiceFeeMode  string    `db:"service_fee_mode"`
	ServiceFeeValue int       `db:"service_fee_value"`
	PerUnitFee      int       `db:"per_unit_fee"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
	Version         int       `db:"version"`
}

func (r *sessionRow) toEntity() *session.Session {
	return &session.Session{
		ID: r.ID, Name: r.Name, Venue: r.Venue,
		StartAt: r.StartAt, EndAt: r.EndAt,
		SaleStartAt: r.SaleStartAt, SaleEndAt: r.SaleEndAt,
		ServiceFeeMode: pricing.FeeMode(r.ServiceFeeMode), ServiceFeeValue: r.ServiceFeeValue,
		PerUnitFee: r.PerUnitFee,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt, Version: r.Version,
	}
}

// SessionRepository はセッションの PostgreSQL 実装
type SessionRepository struct{ db *sqlx.DB }

func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `id, name, venue, start_at, end_at, sale_start_at, sale_end_at, service_fee_mode, service_fee_value, per_unit_fee, created_at, updated_at, version`

func (r *SessionRepository) Create(ctx context.Context, s *session.Session) error {
	query := `INSERT INTO sessions (name, venue, start_at, end_at, sale_start_at, sale_end_at, service_fee_mode, service_fee_value, per_unit_fee, created_at, updated_at, version) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`
	return r.db.QueryRowContext(ctx, query, s.Name, s.Venue, s.StartAt, s.EndAt, s.SaleStartAt, s.SaleEndAt, string(s.ServiceFeeMode), s.ServiceFeeValue, s.PerUnitFee, s.CreatedAt, s.UpdatedAt, s.Version).Scan(&s.ID)
}

func (r *SessionRepository) GetByID(ctx context.Context, id string) (*session.Session, error) {
	var row sessionRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, session.ErrSessionNotFound
		}
		return nil, fmt.Errorf("セッション取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *SessionRepository) List(ctx context.Context, limit, offset int) ([]*session.Session, error) {
	var rows []sessionRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+sessionColumns+` FROM sessions ORDER BY start_at LIMIT $1 OFFSET $2`, limit, offset); err != nil {
		return nil, fmt.Errorf("セッション一覧取得に失敗: %w", err)
	}
	sessions := make([]*session.Session, len(rows))
	for i, row := range rows {
		sessions[i] = row.toEntity()
	}
	return sessions, nil
}

var _ session.Repository = (*SessionRepository)(nil)
