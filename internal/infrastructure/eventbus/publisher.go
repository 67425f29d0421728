package eventbus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Publisher は予約ライフサイクルイベントを Redis Streams に発行する
// イベント発行の失敗は業務処理を失敗させない（呼び出し側でログのみ）
type Publisher struct {
	publisher message.Publisher
}

// NewPublisher は新しいPublisherを作成する
func NewPublisher(client *redis.Client, logger *zap.Logger) (*Publisher, error) {
	pub, err := redisstream.NewPublisher(redisstream.PublisherConfig{
		Client: client,
	}, NewZapLoggerAdapter(logger))
	if err != nil {
		return nil, fmt.Errorf("パブリッシャーの作成に失敗: %w", err)
	}
	return &Publisher{publisher: pub}, nil
}

// Close は下層のパブリッシャーを閉じる
func (p *Publisher) Close() error {
	return p.publisher.Close()
}

// PublishHoldCreated はホールド作成イベントを発行する
func (p *Publisher) PublishHoldCreated(ctx context.Context, event HoldCreated) error {
	return p.publish(ctx, TopicHoldCreated, event)
}

// PublishHoldCancelled はホールド取消イベントを発行する
func (p *Publisher) PublishHoldCancelled(ctx context.Context, event HoldCancelled) error {
	return p.publish(ctx, TopicHoldCancelled, event)
}

// PublishHoldExpired はホールド期限切れイベントを発行する
func (p *Publisher) PublishHoldExpired(ctx context.Context, event HoldExpired) error {
	return p.publish(ctx, TopicHoldExpired, event)
}

// PublishPurchaseCompleted は購入確定イベントを発行する
func (p *Publisher) PublishPurchaseCompleted(ctx context.Context, event PurchaseCompleted) error {
	return p.publish(ctx, TopicPurchaseCompleted, event)
}

func (p *Publisher) publish(ctx context.Context, topic string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("イベントのエンコードに失敗: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("イベント発行に失敗: %w", err)
	}
	return nil
}
