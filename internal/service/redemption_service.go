package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/markfender/transorder/internal/clock"
	"github.com/markfender/transorder/internal/metrics"
	"github.com/markfender/transorder/internal/model"
	"github.com/markfender/transorder/internal/repository"
	"github.com/markfender/transorder/pkg/logger"
)

// RedemptionService 凭证赎回服务接口
type RedemptionService interface {
	// RetrieveGasCost 赎回 Gas 预算
	// 销毁调用方持有的凭证, 按 单位数 × 单位价格 释放托管预算给调用方
	// 余额按当下持仓校验, 凭证转走后原持有人无法再赎回
	RetrieveGasCost(ctx context.Context, caller string, orderID int64, units int64) (*RedemptionEvent, error)

	// TransferReceipts 转移凭证
	// 凭证即可转让的赎回权, 赎回资格跟随凭证流转
	TransferReceipts(ctx context.Context, orderID int64, from, to string, units int64) error

	// ReceiptBalance 查询持有人的凭证余额
	ReceiptBalance(ctx context.Context, orderID int64, holder string) (int64, error)
}

// redemptionService 凭证赎回服务实现
type redemptionService struct {
	orderRepo   repository.OrderRepository
	escrowRepo  repository.EscrowRepository
	receiptRepo repository.ReceiptRepository
	ledger      TokenLedger
	idGen       IDGenerator
	clk         clock.Clock
	publisher   OrderPublisher
}

// NewRedemptionService 创建凭证赎回服务
func NewRedemptionService(
	orderRepo repository.OrderRepository,
	escrowRepo repository.EscrowRepository,
	receiptRepo repository.ReceiptRepository,
	ledger TokenLedger,
	idGen IDGenerator,
	clk clock.Clock,
	publisher OrderPublisher,
) RedemptionService {
	return &redemptionService{
		orderRepo:   orderRepo,
		escrowRepo:  escrowRepo,
		receiptRepo: receiptRepo,
		ledger:      ledger,
		idGen:       idGen,
		clk:         clk,
		publisher:   publisher,
	}
}

// RetrieveGasCost 赎回 Gas 预算
func (s *redemptionService) RetrieveGasCost(ctx context.Context, caller string, orderID int64, units int64) (*RedemptionEvent, error) {
	// 1. 验证参数
	if caller == "" {
		return nil, fmt.Errorf("%w: caller is required", ErrInvalidAmount)
	}
	if units <= 0 {
		return nil, fmt.Errorf("%w: units must be positive", ErrInvalidAmount)
	}

	// 2. 获取订单, 凭证只在接单后存在
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.Status != model.OrderStatusAccepted && order.Status != model.OrderStatusClaimed {
		metrics.RecordRejection("invalid_state")
		return nil, ErrInvalidState
	}

	// 3. 按当下持仓校验余额, 历史持有记录不作数
	balance, err := s.receiptRepo.BalanceOf(ctx, orderID, caller)
	if err != nil {
		return nil, err
	}
	if balance < units {
		metrics.RecordRejection("insufficient_receipts")
		return nil, ErrInsufficientReceipts
	}

	amount := order.CostForUnits(units)

	// 4. 销毁凭证 + 释放托管预算 (同一事务)
	err = s.escrowRepo.Transaction(ctx, func(txCtx context.Context) error {
		// Burn 自带余额条件, 并发赎回时不会透支
		if err := s.receiptRepo.Burn(txCtx, orderID, caller, units); err != nil {
			if errors.Is(err, repository.ErrInsufficientReceipts) {
				return ErrInsufficientReceipts
			}
			return err
		}

		if err := s.escrowRepo.AddReleased(txCtx, orderID, amount); err != nil {
			return err
		}

		redeemLog := newEscrowLog(s.idGen, orderID, caller, order.CostToken,
			model.EscrowLogTypeRedeem, amount.Neg(), fmt.Sprintf("gas budget redeemed for %d units", units))
		return s.escrowRepo.CreateLog(txCtx, redeemLog)
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientReceipts) {
			metrics.RecordRejection("insufficient_receipts")
		}
		return nil, err
	}

	// 5. 从金库转出预算
	// 金库恒有足额托管资金, 转出失败属于数据一致性事故
	if err := s.ledger.TransferFromVault(ctx, caller, order.CostToken, amount); err != nil {
		metrics.RecordDataIntegrityCritical("escrow", "redeem_payout_failed")
		logger.Error("redeem payout failed",
			zap.Int64("order_id", orderID),
			zap.String("caller", caller),
			zap.Error(err))
	}

	// 6. 记录指标并发布赎回事件
	metrics.RecordEscrowOperation("redeem", order.CostToken)
	metrics.AddReceiptsOutstanding(-float64(units))

	event := &RedemptionEvent{
		OrderID:   orderID,
		Holder:    caller,
		Units:     units,
		Token:     order.CostToken,
		Amount:    amount,
		Timestamp: s.clk.Now().UnixMilli(),
	}
	s.publishRedemption(ctx, event)

	return event, nil
}

// TransferReceipts 转移凭证
func (s *redemptionService) TransferReceipts(ctx context.Context, orderID int64, from, to string, units int64) error {
	if from == "" || to == "" || from == to {
		return fmt.Errorf("%w: invalid transfer parties", ErrInvalidAmount)
	}
	if units <= 0 {
		return fmt.Errorf("%w: units must be positive", ErrInvalidAmount)
	}

	if _, err := s.orderRepo.GetByID(ctx, orderID); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return ErrOrderNotFound
		}
		return err
	}

	if err := s.receiptRepo.Transfer(ctx, orderID, from, to, units); err != nil {
		if errors.Is(err, repository.ErrInsufficientReceipts) {
			metrics.RecordRejection("insufficient_receipts")
			return ErrInsufficientReceipts
		}
		return err
	}
	return nil
}

// ReceiptBalance 查询持有人的凭证余额
func (s *redemptionService) ReceiptBalance(ctx context.Context, orderID int64, holder string) (int64, error) {
	return s.receiptRepo.BalanceOf(ctx, orderID, holder)
}

// publishRedemption 发布赎回事件
// 异步发布, 不阻塞主流程
func (s *redemptionService) publishRedemption(ctx context.Context, event *RedemptionEvent) {
	if s.publisher == nil {
		return
	}
	go func() {
		if err := s.publisher.PublishRedemption(ctx, event); err != nil {
			logger.Warn("publish redemption failed",
				zap.Int64("order_id", event.OrderID),
				zap.Error(err))
		}
	}()
}
