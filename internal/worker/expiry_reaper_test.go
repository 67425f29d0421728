package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockHoldReleaser はHoldReleaserのモック
type MockHoldReleaser struct {
	mock.Mock
}

func (m *MockHoldReleaser) ReleaseExpired(ctx context.Context, batchSize int) (int, error) {
	args := m.Called(ctx, batchSize)
	return args.Int(0), args.Error(1)
}

func TestNewExpiryReaper(t *testing.T) {
	mockService := new(MockHoldReleaser)

	reaper := NewExpiryReaper(mockService, 30*time.Second, 100)

	assert.NotNil(t, reaper)
	assert.Equal(t, 30*time.Second, reaper.interval)
	assert.Equal(t, 100, reaper.batchSize)
	assert.NotNil(t, reaper.stopCh)
	assert.NotNil(t, reaper.doneCh)
}

func TestNewExpiryReaper_Defaults(t *testing.T) {
	mockService := new(MockHoldReleaser)

	reaper := NewExpiryReaper(mockService, 0, 0)

	assert.Equal(t, 30*time.Second, reaper.interval)
	assert.Equal(t, 100, reaper.batchSize)
}

func TestExpiryReaper_Reap(t *testing.T) {
	t.Run("期限切れホールドを解放する", func(t *testing.T) {
		mockService := new(MockHoldReleaser)
		mockService.On("ReleaseExpired", mock.Anything, 100).Return(3, nil)

		reaper := NewExpiryReaper(mockService, 30*time.Second, 100)
		reaper.reap(context.Background())

		mockService.AssertExpectations(t)
	})

	t.Run("解放対象がない場合も正常に動作する", func(t *testing.T) {
		mockService := new(MockHoldReleaser)
		mockService.On("ReleaseExpired", mock.Anything, 100).Return(0, nil)

		reaper := NewExpiryReaper(mockService, 30*time.Second, 100)
		reaper.reap(context.Background())

		mockService.AssertExpectations(t)
	})

	t.Run("エラーが発生しても継続する", func(t *testing.T) {
		mockService := new(MockHoldReleaser)
		mockService.On("ReleaseExpired", mock.Anything, 100).Return(0, assert.AnError)

		reaper := NewExpiryReaper(mockService, 30*time.Second, 100)

		// パニックしないことを確認
		reaper.reap(context.Background())

		mockService.AssertExpectations(t)
	})
}

func TestExpiryReaper_StartStop(t *testing.T) {
	t.Run("開始と停止が正常に動作する", func(t *testing.T) {
		mockService := new(MockHoldReleaser)
		mockService.On("ReleaseExpired", mock.Anything, 10).Return(0, nil).Maybe()

		reaper := NewExpiryReaper(mockService, 10*time.Millisecond, 10)

		go reaper.Start(context.Background())
		time.Sleep(50 * time.Millisecond)
		reaper.Stop()

		// Stop が doneCh を待つため、ここに到達すればループは終了している
		select {
		case <-reaper.doneCh:
		default:
			t.Fatal("doneCh should be closed after Stop")
		}
	})

	t.Run("コンテキストキャンセルで停止する", func(t *testing.T) {
		mockService := new(MockHoldReleaser)
		mockService.On("ReleaseExpired", mock.Anything, 10).Return(0, nil).Maybe()

		reaper := NewExpiryReaper(mockService, 10*time.Millisecond, 10)
		ctx, cancel := context.WithCancel(context.Background())

		go reaper.Start(ctx)
		time.Sleep(30 * time.Millisecond)
		cancel()

		select {
		case <-reaper.doneCh:
		case <-time.After(1 * time.Second):
			t.Fatal("reaper did not stop after context cancel")
		}
	})
}
