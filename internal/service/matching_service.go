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

// MatchingService 接单服务接口
type MatchingService interface {
	// AcceptOrder 接单
	// 1. 校验执行窗口与订单状态
	// 2. 校验保证金与订单要求完全一致
	// 3. 锁定执行方保证金到托管金库
	// 4. 绑定执行方并为创建者铸造 Gas 凭证
	// 同一订单至多一次接单成功
	// 应得报酬为零的订单 (全额费率) 接单即闭单并退还保证金
	AcceptOrder(ctx context.Context, req *AcceptOrderRequest) (*model.Order, error)

	// ListAcceptableOrders 查询公开接单列表
	// 只返回标记了自动撮合、且当前时间在执行窗口内的已创建订单
	ListAcceptableOrders(ctx context.Context, page *repository.Pagination) ([]*model.Order, error)
}

// AcceptOrderRequest 接单请求
type AcceptOrderRequest struct {
	OrderID         int64           // 订单号
	Executor        string          // 执行方地址
	GuaranteeToken  string          // 保证金代币
	GuaranteeAmount decimal.Decimal // 保证金金额, 必须精确等于 单位保证金 × Gas 单位数
}

// matchingService 接单服务实现
type matchingService struct {
	orderRepo   repository.OrderRepository
	escrowRepo  repository.EscrowRepository
	receiptRepo repository.ReceiptRepository
	feeRepo     repository.FeeRepository
	ledger      TokenLedger
	idGen       IDGenerator
	clk         clock.Clock
	publisher   OrderPublisher
}

// NewMatchingService 创建接单服务
func NewMatchingService(
	orderRepo repository.OrderRepository,
	escrowRepo repository.EscrowRepository,
	receiptRepo repository.ReceiptRepository,
	feeRepo repository.FeeRepository,
	ledger TokenLedger,
	idGen IDGenerator,
	clk clock.Clock,
	publisher OrderPublisher,
) MatchingService {
	return &matchingService{
		orderRepo:   orderRepo,
		escrowRepo:  escrowRepo,
		receiptRepo: receiptRepo,
		feeRepo:     feeRepo,
		ledger:      ledger,
		idGen:       idGen,
		clk:         clk,
		publisher:   publisher,
	}
}

// AcceptOrder 接单
func (s *matchingService) AcceptOrder(ctx context.Context, req *AcceptOrderRequest) (*model.Order, error) {
	if req.Executor == "" {
		return nil, fmt.Errorf("%w: executor is required", ErrInvalidAmount)
	}

	// 1. 获取订单
	order, err := s.orderRepo.GetByID(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	// 2. 检查状态
	if order.Status != model.OrderStatusCreated {
		metrics.RecordRejection("invalid_state")
		return nil, ErrInvalidState
	}

	// 3. 检查执行窗口
	now := s.clk.Now().Unix()
	if !order.InWindow(now) {
		metrics.RecordRejection("window_closed")
		return nil, ErrWindowClosed
	}

	// 4. 校验保证金, 必须精确等于订单要求
	required := order.GuaranteeRequired()
	if req.GuaranteeToken != order.GuaranteeToken || !req.GuaranteeAmount.Equal(required) {
		metrics.RecordRejection("guarantee_mismatch")
		return nil, ErrGuaranteeMismatch
	}

	// 5. 锁定执行方保证金 (Redis Lua 原子操作), 零保证金订单无需划转
	if required.IsPositive() {
		if err := s.ledger.TransferToVault(ctx, req.Executor, order.GuaranteeToken, required); err != nil {
			return nil, mapLedgerError(err)
		}
	}

	// 6. 接单时读取类别费率并快照, 之后的费率调整不影响本单
	feeBps, err := s.feeRepo.GetBps(ctx, order.Category)
	if err != nil {
		s.refundGuarantee(ctx, req.Executor, order.GuaranteeToken, required)
		return nil, err
	}
	payable := rewardPayable(order.RewardAmount, feeBps)
	// 应得报酬为零的订单 (全额费率) 没有可领余额, 接单即闭单
	closed := payable.IsZero()

	// 7. 绑定执行方 + 托管更新 + 铸造凭证 (同一事务)
	err = s.escrowRepo.Transaction(ctx, func(txCtx context.Context) error {
		// 状态条件更新, 并发接单时至多一人成功
		if err := s.orderRepo.BindExecutor(txCtx, order.ID, req.Executor, model.OrderStatusCreated, model.OrderStatusAccepted); err != nil {
			if errors.Is(err, repository.ErrOptimisticLock) {
				return ErrInvalidState
			}
			return err
		}

		if err := s.escrowRepo.BindAcceptance(txCtx, order.ID, req.Executor, order.GuaranteeToken, required, payable, feeBps); err != nil {
			return err
		}

		guaranteeLog := newEscrowLog(s.idGen, order.ID, req.Executor, order.GuaranteeToken,
			model.EscrowLogTypeGuarantee, required, "executor guarantee locked")
		if err := s.escrowRepo.CreateLog(txCtx, guaranteeLog); err != nil {
			return err
		}

		// 无可领余额时直接流转为已领取, 保证金不能永久滞留金库
		if closed {
			if err := s.orderRepo.UpdateStatus(txCtx, order.ID, model.OrderStatusAccepted, model.OrderStatusClaimed); err != nil {
				return err
			}
			if required.IsPositive() {
				releaseLog := newEscrowLog(s.idGen, order.ID, req.Executor, order.GuaranteeToken,
					model.EscrowLogTypeGuarantee, required.Neg(), "guarantee released")
				if err := s.escrowRepo.CreateLog(txCtx, releaseLog); err != nil {
					return err
				}
			}
		}

		// 按 Gas 单位数 1:1 为创建者铸造凭证
		return s.receiptRepo.Mint(txCtx, order.ID, order.Creator, order.GasUnits)
	})
	if err != nil {
		// 事务整体回滚, 退还已锁定的保证金
		s.refundGuarantee(ctx, req.Executor, order.GuaranteeToken, required)
		if errors.Is(err, ErrInvalidState) {
			metrics.RecordRejection("invalid_state")
			return nil, ErrInvalidState
		}
		return nil, err
	}

	// 8. 记录指标并发布事件
	metrics.RecordOrderAccepted(order.Category.String())
	metrics.RecordEscrowOperation("guarantee", order.GuaranteeToken)
	metrics.AddReceiptsOutstanding(float64(order.GasUnits))

	order.Status = model.OrderStatusAccepted
	order.Executor = req.Executor
	order.UpdatedAt = s.clk.Now().UnixMilli()

	// 接单即闭单时立即退还保证金
	if closed {
		s.refundGuarantee(ctx, req.Executor, order.GuaranteeToken, required)
		metrics.RecordOrderClaimed(order.Category.String())
		order.Status = model.OrderStatusClaimed
	}
	publishOrderUpdate(ctx, s.publisher, order)

	return order, nil
}

// ListAcceptableOrders 查询公开接单列表
func (s *matchingService) ListAcceptableOrders(ctx context.Context, page *repository.Pagination) ([]*model.Order, error) {
	return s.orderRepo.ListAcceptable(ctx, s.clk.Now().Unix(), page)
}

// refundGuarantee 退还保证金
func (s *matchingService) refundGuarantee(ctx context.Context, executor, token string, amount decimal.Decimal) {
	if !amount.IsPositive() {
		return
	}
	if err := s.ledger.TransferFromVault(ctx, executor, token, amount); err != nil {
		metrics.RecordDataIntegrityCritical("escrow", "guarantee_refund_failed")
		logger.Error("guarantee refund failed",
			zap.String("executor", executor),
			zap.String("token", token),
			zap.Error(err))
	}
}

// rewardPayable 计算扣费后执行方应得的报酬
// 以基点计费并向下取整: payable = floor(reward × (10000 − feeBps) / 10000)
func rewardPayable(reward decimal.Decimal, feeBps int32) decimal.Decimal {
	if feeBps <= 0 {
		return reward
	}
	if feeBps >= model.MaxFeeBps {
		return decimal.Zero
	}
	keep := decimal.NewFromInt(int64(model.MaxFeeBps - feeBps))
	// 除以 10000 基点用指数平移完成, 避免 Div 在既定精度上先舍入再取整
	return reward.Mul(keep).Shift(-4).Floor()
}
