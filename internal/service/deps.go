package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/markfender/transorder/internal/cache"
	"github.com/markfender/transorder/internal/metrics"
	"github.com/markfender/transorder/internal/model"
	"github.com/markfender/transorder/pkg/logger"
)

// TokenLedger 代币资金账本接口
// 托管资金统一存放于金库账户, 入金出金都通过原子转账完成
type TokenLedger interface {
	// TransferToVault 从账户转入托管金库
	TransferToVault(ctx context.Context, from, token string, amount decimal.Decimal) error
	// TransferFromVault 从托管金库转出到账户
	TransferFromVault(ctx context.Context, to, token string, amount decimal.Decimal) error
	// GetBalance 获取账户余额
	GetBalance(ctx context.Context, holder, token string) (decimal.Decimal, error)
}

// OrderPublisher 订单事件发布接口
type OrderPublisher interface {
	// PublishOrderUpdate 发布订单状态变更事件
	PublishOrderUpdate(ctx context.Context, order *model.Order) error
	// PublishRedemption 发布凭证赎回事件
	PublishRedemption(ctx context.Context, event *RedemptionEvent) error
}

// RedemptionEvent 凭证赎回事件
type RedemptionEvent struct {
	OrderID   int64           `json:"order_id"`
	Holder    string          `json:"holder"`
	Units     int64           `json:"units"`
	Token     string          `json:"token"`
	Amount    decimal.Decimal `json:"amount"`
	Timestamp int64           `json:"timestamp"`
}

// IDGenerator 流水号生成器接口
type IDGenerator interface {
	GenerateString() string
}

// mapLedgerError 转换资金账本错误到业务错误
func mapLedgerError(err error) error {
	if errors.Is(err, cache.ErrInsufficientFunds) {
		metrics.RecordRejection("insufficient_funds")
		return ErrInsufficientFunds
	}
	if errors.Is(err, cache.ErrInvalidAmount) {
		return ErrInvalidAmount
	}
	return err
}

// publishOrderUpdate 发布订单状态更新事件
// 异步发布, 失败只记录日志, 客户端可以通过 API 查询最新状态
func publishOrderUpdate(ctx context.Context, publisher OrderPublisher, order *model.Order) {
	if publisher == nil {
		return
	}
	go func() {
		if err := publisher.PublishOrderUpdate(ctx, order); err != nil {
			logger.Warn("publish order update failed",
				zap.Int64("order_id", order.ID),
				zap.Error(err))
		}
	}()
}

// newEscrowLog 构建托管流水记录
// amount 正数表示资金进入托管, 负数表示资金离开托管
func newEscrowLog(idGen IDGenerator, orderID int64, account, token string, logType model.EscrowLogType, amount decimal.Decimal, remark string) *model.EscrowLog {
	return &model.EscrowLog{
		LogID:   idGen.GenerateString(),
		OrderID: orderID,
		Account: account,
		Token:   token,
		Type:    logType,
		Amount:  amount,
		Remark:  remark,
	}
}
