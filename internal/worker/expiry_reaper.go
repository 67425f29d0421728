package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-ticket-inventory-engine/internal/pkg/logger"
)

// HoldReleaser は期限切れホールドを解放するインターフェース
type HoldReleaser interface {
	ReleaseExpired(ctx context.Context, batchSize int) (int, error)
}

// ExpiryReaper は期限切れホールドを定期的に解放するワーカー
// 解放の正しさは予約状態のCASガードが保証するため、
// Confirm / Cancel と同時に動いても二重解放は起きない
type ExpiryReaper struct {
	reservationService HoldReleaser
	interval           time.Duration
	batchSize          int
	stopCh             chan struct{}
	doneCh             chan struct{}
}

// NewExpiryReaper は新しいリーパーを作成
func NewExpiryReaper(rs HoldReleaser, interval time.Duration, batchSize int) *ExpiryReaper {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &ExpiryReaper{
		reservationService: rs,
		interval:           interval,
		batchSize:          batchSize,
		stopCh:             make(chan struct{}),
		doneCh:             make(chan struct{}),
	}
}

// Start はリーパーを開始
func (r *ExpiryReaper) Start(ctx context.Context) {
	logger.Info("期限切れホールドリーパー開始",
		zap.Duration("interval", r.interval),
		zap.Int("batch_size", r.batchSize),
	)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer close(r.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("期限切れホールドリーパー停止（コンテキストキャンセル）")
			return
		case <-r.stopCh:
			logger.Info("期限切れホールドリーパー停止（シグナル受信）")
			return
		case <-ticker.C:
			r.reap(ctx)
		}
	}
}

// Stop はリーパーを停止
func (r *ExpiryReaper) Stop() {
	close(r.stopCh)
	<-r.doneCh
}

// reap は期限切れホールドを解放
func (r *ExpiryReaper) reap(ctx context.Context) {
	log := logger.Get()
	log.Debug("期限切れホールドの解放開始")

	count, err := r.reservationService.ReleaseExpired(ctx, r.batchSize)
	if err != nil {
		log.Error("期限切れホールドの解放失敗", zap.Error(err))
		return
	}

	if count > 0 {
		log.Info("期限切れホールドを解放", zap.Int("count", count))
	} else {
		log.Debug("期限切れホールドなし")
	}
}
