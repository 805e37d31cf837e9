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

// OrderService 订单服务接口
type OrderService interface {
	// CreateOrder 创建订单
	// 1. 验证订单参数
	// 2. 从创建者账户划转报酬与 Gas 预算到托管金库
	// 3. 创建订单与托管账户记录
	CreateOrder(ctx context.Context, req *CreateOrderRequest) (*model.Order, error)

	// RevokeOrder 撤销订单
	// 仅创建者可撤销, 且订单必须仍处于已创建状态
	// 托管的报酬与预算全额退回创建者
	RevokeOrder(ctx context.Context, caller string, orderID int64) error

	// GetOrder 获取订单详情
	GetOrder(ctx context.Context, orderID int64) (*model.Order, error)

	// GetEscrow 获取订单托管账户
	GetEscrow(ctx context.Context, orderID int64) (*model.EscrowAccount, error)
}

// CreateOrderRequest 创建订单请求
type CreateOrderRequest struct {
	Creator           string              // 创建者地址
	GasUnits          int64               // 购买的 Gas 单位数
	ExecutionStart    int64               // 执行窗口起点 (秒)
	ExecutionDeadline int64               // 执行窗口终点 (秒)
	MaxUnitPrice      decimal.Decimal     // 单位 Gas 价格上限 (0 表示不设上限)
	RewardToken       string              // 报酬代币
	RewardAmount      decimal.Decimal     // 报酬总额
	CostToken         string              // Gas 预算代币
	CostPerUnit       decimal.Decimal     // 单位 Gas 价格
	GuaranteeToken    string              // 保证金代币
	GuaranteePerUnit  decimal.Decimal     // 单位保证金要求
	Category          model.OrderCategory // 费率类别
	AutoAccept        bool                // 是否进入公开接单列表
}

// orderService 订单服务实现
type orderService struct {
	orderRepo  repository.OrderRepository
	escrowRepo repository.EscrowRepository
	ledger     TokenLedger
	idGen      IDGenerator
	clk        clock.Clock
	publisher  OrderPublisher
}

// NewOrderService 创建订单服务
func NewOrderService(
	orderRepo repository.OrderRepository,
	escrowRepo repository.EscrowRepository,
	ledger TokenLedger,
	idGen IDGenerator,
	clk clock.Clock,
	publisher OrderPublisher,
) OrderService {
	return &orderService{
		orderRepo:  orderRepo,
		escrowRepo: escrowRepo,
		ledger:     ledger,
		idGen:      idGen,
		clk:        clk,
		publisher:  publisher,
	}
}

// CreateOrder 创建订单
// 先从资金账本原子划转托管资金, 再落库; DB 写入失败时执行补偿退款
func (s *orderService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*model.Order, error) {
	// 1. 验证参数
	if err := s.validateCreateOrderRequest(req); err != nil {
		return nil, err
	}

	// 2. 计算托管金额
	costTotal := req.CostPerUnit.Mul(decimal.NewFromInt(req.GasUnits))

	// 3. 从创建者账户划转资金到托管金库 (Redis Lua 原子操作)
	if err := s.depositEscrow(ctx, req, costTotal); err != nil {
		return nil, err
	}

	// 4. 构建订单对象 (订单号由数据库自增分配, 永不复用)
	order := &model.Order{
		Creator:           req.Creator,
		GasUnits:          req.GasUnits,
		ExecutionStart:    req.ExecutionStart,
		ExecutionDeadline: req.ExecutionDeadline,
		MaxUnitPrice:      req.MaxUnitPrice,
		RewardToken:       req.RewardToken,
		RewardAmount:      req.RewardAmount,
		CostToken:         req.CostToken,
		CostPerUnit:       req.CostPerUnit,
		CostTotal:         costTotal,
		GuaranteeToken:    req.GuaranteeToken,
		GuaranteePerUnit:  req.GuaranteePerUnit,
		Category:          req.Category,
		Status:            model.OrderStatusCreated,
		AutoAccept:        req.AutoAccept,
	}

	// 5. 同步落库 (订单 + 托管账户 + 流水)
	if err := s.persistOrder(ctx, order, costTotal); err != nil {
		// 严重错误: 金库已入账但 DB 写入失败
		// 执行补偿退款, 退款失败时资金滞留金库, 需要人工对账
		s.refundEscrow(ctx, req.Creator, req.RewardToken, req.RewardAmount, req.CostToken, costTotal)
		return nil, fmt.Errorf("persist order failed: %w", err)
	}

	// 6. 记录指标并发布事件
	metrics.RecordOrderCreated(order.Category.String())
	metrics.RecordEscrowOperation("deposit", req.RewardToken)
	s.publishOrderUpdate(ctx, order)

	return order, nil
}

// depositEscrow 划转托管资金
// 报酬与预算代币相同时合并为一次转账, 否则分两次并对第二次失败做回滚
func (s *orderService) depositEscrow(ctx context.Context, req *CreateOrderRequest, costTotal decimal.Decimal) error {
	if req.RewardToken == req.CostToken {
		if err := s.ledger.TransferToVault(ctx, req.Creator, req.RewardToken, req.RewardAmount.Add(costTotal)); err != nil {
			return s.mapLedgerError(err)
		}
		return nil
	}

	if err := s.ledger.TransferToVault(ctx, req.Creator, req.RewardToken, req.RewardAmount); err != nil {
		return s.mapLedgerError(err)
	}
	if err := s.ledger.TransferToVault(ctx, req.Creator, req.CostToken, costTotal); err != nil {
		// 回滚已入账的报酬
		if rbErr := s.ledger.TransferFromVault(ctx, req.Creator, req.RewardToken, req.RewardAmount); rbErr != nil {
			metrics.RecordDataIntegrityCritical("escrow", "deposit_rollback_failed")
			logger.Error("deposit rollback failed",
				zap.String("creator", req.Creator),
				zap.String("token", req.RewardToken),
				zap.Error(rbErr))
		}
		return s.mapLedgerError(err)
	}
	return nil
}

// persistOrder 持久化订单、托管账户与流水
func (s *orderService) persistOrder(ctx context.Context, order *model.Order, costTotal decimal.Decimal) error {
	return s.escrowRepo.Transaction(ctx, func(txCtx context.Context) error {
		// 1. 创建订单 (自增主键即订单号)
		if err := s.orderRepo.Create(txCtx, order); err != nil {
			return err
		}

		// 2. 创建托管账户
		account := &model.EscrowAccount{
			OrderID:      order.ID,
			RewardToken:  order.RewardToken,
			RewardAmount: order.RewardAmount,
			CostToken:    order.CostToken,
			CostAmount:   costTotal,
		}
		if err := s.escrowRepo.Create(txCtx, account); err != nil {
			return err
		}

		// 3. 写入托管流水
		rewardLog := newEscrowLog(s.idGen, order.ID, order.Creator, order.RewardToken,
			model.EscrowLogTypeDeposit, order.RewardAmount, "order reward deposit")
		if err := s.escrowRepo.CreateLog(txCtx, rewardLog); err != nil {
			return err
		}
		costLog := newEscrowLog(s.idGen, order.ID, order.Creator, order.CostToken,
			model.EscrowLogTypeDeposit, costTotal, "order gas budget deposit")
		return s.escrowRepo.CreateLog(txCtx, costLog)
	})
}

// refundEscrow 补偿退款
func (s *orderService) refundEscrow(ctx context.Context, creator, rewardToken string, rewardAmount decimal.Decimal, costToken string, costTotal decimal.Decimal) {
	if rewardToken == costToken {
		if err := s.ledger.TransferFromVault(ctx, creator, rewardToken, rewardAmount.Add(costTotal)); err != nil {
			metrics.RecordDataIntegrityCritical("escrow", "create_refund_failed")
			logger.Error("create order refund failed", zap.String("creator", creator), zap.Error(err))
		}
		return
	}

	if err := s.ledger.TransferFromVault(ctx, creator, rewardToken, rewardAmount); err != nil {
		metrics.RecordDataIntegrityCritical("escrow", "create_refund_failed")
		logger.Error("create order reward refund failed", zap.String("creator", creator), zap.Error(err))
	}
	if err := s.ledger.TransferFromVault(ctx, creator, costToken, costTotal); err != nil {
		metrics.RecordDataIntegrityCritical("escrow", "create_refund_failed")
		logger.Error("create order cost refund failed", zap.String("creator", creator), zap.Error(err))
	}
}

// RevokeOrder 撤销订单
// 乐观并发控制: 状态条件更新保证与接单竞争时只有一方成功
func (s *orderService) RevokeOrder(ctx context.Context, caller string, orderID int64) error {
	// 1. 获取订单
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return ErrOrderNotFound
		}
		return err
	}

	// 2. 验证调用方
	if order.Creator != caller {
		return ErrUnauthorized
	}

	// 3. 检查状态
	if order.Status != model.OrderStatusCreated {
		metrics.RecordRejection("invalid_state")
		return ErrInvalidState
	}

	// 4. 状态流转 + 退款流水 (同一事务)
	err = s.escrowRepo.Transaction(ctx, func(txCtx context.Context) error {
		if err := s.orderRepo.UpdateStatus(txCtx, orderID, model.OrderStatusCreated, model.OrderStatusRevoked); err != nil {
			if errors.Is(err, repository.ErrOptimisticLock) {
				return ErrInvalidState
			}
			return err
		}

		rewardLog := newEscrowLog(s.idGen, orderID, order.Creator, order.RewardToken,
			model.EscrowLogTypeRefund, order.RewardAmount.Neg(), "order revoked reward refund")
		if err := s.escrowRepo.CreateLog(txCtx, rewardLog); err != nil {
			return err
		}
		costLog := newEscrowLog(s.idGen, orderID, order.Creator, order.CostToken,
			model.EscrowLogTypeRefund, order.CostTotal.Neg(), "order revoked gas budget refund")
		return s.escrowRepo.CreateLog(txCtx, costLog)
	})
	if err != nil {
		if errors.Is(err, ErrInvalidState) {
			metrics.RecordRejection("invalid_state")
		}
		return err
	}

	// 5. 全额退款
	// 金库恒有足额托管资金, 转出失败属于数据一致性事故
	s.refundEscrow(ctx, order.Creator, order.RewardToken, order.RewardAmount, order.CostToken, order.CostTotal)

	// 6. 记录指标并发布事件
	metrics.RecordOrderRevoked(order.Category.String())
	metrics.RecordEscrowOperation("refund", order.RewardToken)
	order.Status = model.OrderStatusRevoked
	order.UpdatedAt = s.clk.Now().UnixMilli()
	s.publishOrderUpdate(ctx, order)

	return nil
}

// GetOrder 获取订单详情
func (s *orderService) GetOrder(ctx context.Context, orderID int64) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

// GetEscrow 获取订单托管账户
func (s *orderService) GetEscrow(ctx context.Context, orderID int64) (*model.EscrowAccount, error) {
	account, err := s.escrowRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrEscrowNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return account, nil
}

// validateCreateOrderRequest 验证创建订单请求
func (s *orderService) validateCreateOrderRequest(req *CreateOrderRequest) error {
	if req.Creator == "" {
		return fmt.Errorf("%w: creator is required", ErrInvalidAmount)
	}
	if req.GasUnits <= 0 {
		return fmt.Errorf("%w: gas units must be positive", ErrInvalidAmount)
	}
	if req.RewardToken == "" || req.CostToken == "" || req.GuaranteeToken == "" {
		return fmt.Errorf("%w: token is required", ErrInvalidAmount)
	}
	if req.RewardAmount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: reward must be positive", ErrInvalidAmount)
	}
	if req.CostPerUnit.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: cost per unit must be positive", ErrInvalidAmount)
	}
	if req.GuaranteePerUnit.IsNegative() {
		return fmt.Errorf("%w: guarantee per unit must not be negative", ErrInvalidAmount)
	}
	if req.MaxUnitPrice.IsNegative() {
		return fmt.Errorf("%w: max unit price must not be negative", ErrInvalidAmount)
	}
	// 设置了价格上限时, 单位成本不得超出
	if req.MaxUnitPrice.IsPositive() && req.CostPerUnit.GreaterThan(req.MaxUnitPrice) {
		return fmt.Errorf("%w: cost per unit exceeds max unit price", ErrInvalidAmount)
	}
	if !req.Category.IsValid() {
		return ErrInvalidCategory
	}
	// 执行窗口必须整体落在未来且非空
	if req.ExecutionStart <= s.clk.Now().Unix() {
		return fmt.Errorf("%w: execution start must be in the future", ErrInvalidWindow)
	}
	if req.ExecutionStart >= req.ExecutionDeadline {
		return fmt.Errorf("%w: execution start must precede deadline", ErrInvalidWindow)
	}
	return nil
}

// mapLedgerError 转换资金账本错误
func (s *orderService) mapLedgerError(err error) error {
	return mapLedgerError(err)
}

// publishOrderUpdate 发布订单状态更新事件
// 异步发布, 不阻塞主流程
func (s *orderService) publishOrderUpdate(ctx context.Context, order *model.Order) {
	publishOrderUpdate(ctx, s.publisher, order)
}
