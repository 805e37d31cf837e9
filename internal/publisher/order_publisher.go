// Package publisher 提供 Kafka 消息发布功能
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/markfender/transorder/internal/kafka"
	"github.com/markfender/transorder/internal/model"
	"github.com/markfender/transorder/internal/service"
	"github.com/markfender/transorder/pkg/logger"
)

// OrderPublisher 订单事件发布者
// 发布消息到 gas-order-updates / gas-order-redemptions topic
type OrderPublisher struct {
	producer KafkaProducer
}

// KafkaProducer Kafka 生产者接口
type KafkaProducer interface {
	SendWithContext(ctx context.Context, topic string, key, value []byte) error
}

// NewOrderPublisher 创建订单发布者
func NewOrderPublisher(producer KafkaProducer) *OrderPublisher {
	return &OrderPublisher{
		producer: producer,
	}
}

// OrderUpdateMessage 订单状态更新消息
type OrderUpdateMessage struct {
	EventID           string `json:"event_id"` // 事件唯一标识
	OrderID           int64  `json:"order_id"`
	Creator           string `json:"creator"`
	Executor          string `json:"executor,omitempty"`
	GasUnits          int64  `json:"gas_units"`
	ExecutionStart    int64  `json:"execution_start"`
	ExecutionDeadline int64  `json:"execution_deadline"`
	RewardToken       string `json:"reward_token"`
	RewardAmount      string `json:"reward_amount"`
	CostToken         string `json:"cost_token"`
	CostPerUnit       string `json:"cost_per_unit"`
	GuaranteeToken    string `json:"guarantee_token"`
	Category          string `json:"category"`
	Status            string `json:"status"` // created, accepted, claimed, revoked
	CreatedAt         int64  `json:"created_at"`
	UpdatedAt         int64  `json:"updated_at"`
	Timestamp         int64  `json:"timestamp"` // 消息时间戳
}

// RedemptionMessage 凭证赎回消息
type RedemptionMessage struct {
	EventID   string `json:"event_id"`
	OrderID   int64  `json:"order_id"`
	Holder    string `json:"holder"`
	Units     int64  `json:"units"`
	Token     string `json:"token"`
	Amount    string `json:"amount"`
	Timestamp int64  `json:"timestamp"`
}

// PublishOrderUpdate 发布订单状态更新
func (p *OrderPublisher) PublishOrderUpdate(ctx context.Context, order *model.Order) error {
	if p.producer == nil {
		return nil // Kafka 未启用
	}

	msg := &OrderUpdateMessage{
		EventID:           uuid.NewString(),
		OrderID:           order.ID,
		Creator:           order.Creator,
		Executor:          order.Executor,
		GasUnits:          order.GasUnits,
		ExecutionStart:    order.ExecutionStart,
		ExecutionDeadline: order.ExecutionDeadline,
		RewardToken:       order.RewardToken,
		RewardAmount:      order.RewardAmount.String(),
		CostToken:         order.CostToken,
		CostPerUnit:       order.CostPerUnit.String(),
		GuaranteeToken:    order.GuaranteeToken,
		Category:          order.Category.String(),
		Status:            order.Status.String(),
		CreatedAt:         order.CreatedAt,
		UpdatedAt:         order.UpdatedAt,
		Timestamp:         time.Now().UnixMilli(),
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal order update message: %w", err)
	}

	// 使用订单号作为 key, 保证同一订单的消息有序
	key := []byte(strconv.FormatInt(order.ID, 10))

	if err := p.producer.SendWithContext(ctx, kafka.TopicOrderUpdates, key, data); err != nil {
		logger.Error("publish order update failed",
			zap.Int64("order_id", order.ID),
			zap.Error(err),
		)
		return fmt.Errorf("send order update: %w", err)
	}

	logger.Debug("order update published",
		zap.Int64("order_id", order.ID),
		zap.String("status", order.Status.String()),
	)

	return nil
}

// PublishRedemption 发布凭证赎回事件
func (p *OrderPublisher) PublishRedemption(ctx context.Context, event *service.RedemptionEvent) error {
	if p.producer == nil {
		return nil // Kafka 未启用
	}

	msg := &RedemptionMessage{
		EventID:   uuid.NewString(),
		OrderID:   event.OrderID,
		Holder:    event.Holder,
		Units:     event.Units,
		Token:     event.Token,
		Amount:    event.Amount.String(),
		Timestamp: event.Timestamp,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal redemption message: %w", err)
	}

	key := []byte(strconv.FormatInt(event.OrderID, 10))

	if err := p.producer.SendWithContext(ctx, kafka.TopicRedemptions, key, data); err != nil {
		logger.Error("publish redemption failed",
			zap.Int64("order_id", event.OrderID),
			zap.Error(err),
		)
		return fmt.Errorf("send redemption: %w", err)
	}

	return nil
}
