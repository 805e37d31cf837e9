package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/markfender/transorder/internal/clock"
	"github.com/markfender/transorder/internal/metrics"
	"github.com/markfender/transorder/internal/model"
	"github.com/markfender/transorder/internal/repository"
	"github.com/markfender/transorder/pkg/logger"
)

// ClaimService 报酬领取服务接口
type ClaimService interface {
	// Claim 领取报酬
	// 调用方以 (代币, 金额) 维度领取, 按订单号从小到大依次扣减各订单的未领余额
	// 没有任何可领订单的调用方无权领取; 请求金额超出可领总额时整体拒绝
	// 某订单的应得报酬被全部领完时, 该订单流转为已领取并退还保证金
	Claim(ctx context.Context, caller, token string, amount decimal.Decimal) (*ClaimResult, error)

	// ClaimableAmount 查询调用方在指定代币下的可领取总额
	ClaimableAmount(ctx context.Context, caller, token string) (decimal.Decimal, error)
}

// ClaimResult 领取结果
type ClaimResult struct {
	Token        string          `json:"token"`
	Amount       decimal.Decimal `json:"amount"`
	OrderIDs     []int64         `json:"order_ids"`     // 本次扣减涉及的订单
	ClosedOrders []int64         `json:"closed_orders"` // 本次被领完的订单
}

// claimService 报酬领取服务实现
type claimService struct {
	orderRepo  repository.OrderRepository
	escrowRepo repository.EscrowRepository
	ledger     TokenLedger
	idGen      IDGenerator
	clk        clock.Clock
	publisher  OrderPublisher
}

// NewClaimService 创建报酬领取服务
func NewClaimService(
	orderRepo repository.OrderRepository,
	escrowRepo repository.EscrowRepository,
	ledger TokenLedger,
	idGen IDGenerator,
	clk clock.Clock,
	publisher OrderPublisher,
) ClaimService {
	return &claimService{
		orderRepo:  orderRepo,
		escrowRepo: escrowRepo,
		ledger:     ledger,
		idGen:      idGen,
		clk:        clk,
		publisher:  publisher,
	}
}

// guaranteeRefund 领取完成后待退还的保证金
type guaranteeRefund struct {
	orderID  int64
	executor string
	token    string
	amount   decimal.Decimal
	category model.OrderCategory
}

// Claim 领取报酬
func (s *claimService) Claim(ctx context.Context, caller, token string, amount decimal.Decimal) (*ClaimResult, error) {
	// 1. 验证参数
	if caller == "" || token == "" {
		return nil, fmt.Errorf("%w: caller and token are required", ErrInvalidAmount)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: claim amount must be positive", ErrInvalidAmount)
	}

	// 2. 查询可领取的托管账户, 按订单号升序
	accounts, err := s.escrowRepo.ListClaimableByExecutor(ctx, caller, token)
	if err != nil {
		return nil, err
	}

	// 3. 校验领取资格与可领总额
	// 不是任何可领订单的执行方, 与余额不足区分开
	if len(accounts) == 0 {
		metrics.RecordRejection("unauthorized")
		return nil, ErrUnauthorized
	}
	total := decimal.Zero
	for _, account := range accounts {
		total = total.Add(account.RewardOutstanding())
	}
	if amount.GreaterThan(total) {
		metrics.RecordRejection("insufficient_claimable")
		return nil, ErrInsufficientClaimable
	}

	// 4. 按订单号从小到大扣减 (同一事务)
	result := &ClaimResult{Token: token, Amount: amount}
	var refunds []guaranteeRefund

	err = s.escrowRepo.Transaction(ctx, func(txCtx context.Context) error {
		remaining := amount
		for _, account := range accounts {
			if remaining.IsZero() {
				break
			}

			outstanding := account.RewardOutstanding()
			take := decimal.Min(outstanding, remaining)

			if err := s.escrowRepo.AddClaimed(txCtx, account.OrderID, take); err != nil {
				return err
			}

			claimLog := newEscrowLog(s.idGen, account.OrderID, caller, token,
				model.EscrowLogTypeClaim, take.Neg(), "reward claimed")
			if err := s.escrowRepo.CreateLog(txCtx, claimLog); err != nil {
				return err
			}

			result.OrderIDs = append(result.OrderIDs, account.OrderID)
			remaining = remaining.Sub(take)

			// 应得报酬全部领完, 订单流转为已领取并退还保证金
			if take.Equal(outstanding) {
				order, err := s.orderRepo.GetByID(txCtx, account.OrderID)
				if err != nil {
					return err
				}
				if err := s.orderRepo.UpdateStatus(txCtx, account.OrderID, model.OrderStatusAccepted, model.OrderStatusClaimed); err != nil {
					if errors.Is(err, repository.ErrOptimisticLock) {
						return ErrInvalidState
					}
					return err
				}
				result.ClosedOrders = append(result.ClosedOrders, account.OrderID)
				refunds = append(refunds, guaranteeRefund{
					orderID:  account.OrderID,
					executor: account.Executor,
					token:    account.GuaranteeToken,
					amount:   account.GuaranteeAmount,
					category: order.Category,
				})
				if account.GuaranteeAmount.IsPositive() {
					guaranteeLog := newEscrowLog(s.idGen, account.OrderID, account.Executor, account.GuaranteeToken,
						model.EscrowLogTypeGuarantee, account.GuaranteeAmount.Neg(), "guarantee released")
					if err := s.escrowRepo.CreateLog(txCtx, guaranteeLog); err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidState) {
			metrics.RecordRejection("invalid_state")
		}
		return nil, err
	}

	// 5. 从金库转出报酬
	// 金库恒有足额托管资金, 转出失败属于数据一致性事故
	if err := s.ledger.TransferFromVault(ctx, caller, token, amount); err != nil {
		metrics.RecordDataIntegrityCritical("escrow", "claim_payout_failed")
		logger.Error("claim payout failed",
			zap.String("caller", caller),
			zap.String("token", token),
			zap.Error(err))
	}
	metrics.RecordEscrowOperation("claim", token)

	// 6. 退还保证金并发布订单状态变更
	for _, refund := range refunds {
		if refund.amount.IsPositive() {
			if err := s.ledger.TransferFromVault(ctx, refund.executor, refund.token, refund.amount); err != nil {
				metrics.RecordDataIntegrityCritical("escrow", "guarantee_refund_failed")
				logger.Error("guarantee refund failed",
					zap.Int64("order_id", refund.orderID),
					zap.String("executor", refund.executor),
					zap.Error(err))
			}
		}
		metrics.RecordOrderClaimed(refund.category.String())

		if order, err := s.orderRepo.GetByID(ctx, refund.orderID); err == nil {
			publishOrderUpdate(ctx, s.publisher, order)
		}
	}

	return result, nil
}

// ClaimableAmount 查询调用方在指定代币下的可领取总额
func (s *claimService) ClaimableAmount(ctx context.Context, caller, token string) (decimal.Decimal, error) {
	accounts, err := s.escrowRepo.ListClaimableByExecutor(ctx, caller, token)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, account := range accounts {
		total = total.Add(account.RewardOutstanding())
	}
	return total, nil
}
