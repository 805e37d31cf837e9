package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/markfender/transorder/internal/model"
)

var (
	ErrEscrowNotFound = errors.New("escrow account not found")
	// ErrEscrowConflict 托管账户并发更新冲突或可用额度不足
	ErrEscrowConflict = errors.New("escrow account conflict")
)

// EscrowRepository 托管账户仓储接口
type EscrowRepository interface {
	// Transaction 执行事务, fn 中的所有数据库操作都在同一事务中执行
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Create 创建托管账户
	Create(ctx context.Context, account *model.EscrowAccount) error

	// GetByOrderID 根据订单 ID 查询托管账户
	GetByOrderID(ctx context.Context, orderID int64) (*model.EscrowAccount, error)

	// BindAcceptance 接单时绑定执行方、保证金和费率快照
	BindAcceptance(ctx context.Context, orderID int64, executor string, guaranteeToken string, guaranteeAmount decimal.Decimal, rewardPayable decimal.Decimal, feeBps int32) error

	// AddClaimed 累加已领取报酬 (带额度检查的原子更新)
	// 只有 claimed + amount <= payable 时才会生效
	AddClaimed(ctx context.Context, orderID int64, amount decimal.Decimal) error

	// AddReleased 累加已释放的燃料成本 (带额度检查的原子更新)
	// 只有 released + amount <= cost_amount 时才会生效
	AddReleased(ctx context.Context, orderID int64, amount decimal.Decimal) error

	// ListClaimableByExecutor 查询执行方在指定报酬代币下有未领余额的托管账户, 按订单 ID 升序
	ListClaimableByExecutor(ctx context.Context, executor, rewardToken string) ([]*model.EscrowAccount, error)

	// CreateLog 写入托管流水
	CreateLog(ctx context.Context, log *model.EscrowLog) error

	// ListLogs 查询订单的托管流水
	ListLogs(ctx context.Context, orderID int64) ([]*model.EscrowLog, error)
}

// escrowRepository 托管账户仓储实现
type escrowRepository struct {
	*Repository
}

// NewEscrowRepository 创建托管账户仓储
func NewEscrowRepository(db *gorm.DB) EscrowRepository {
	return &escrowRepository{
		Repository: NewRepository(db),
	}
}

// Create 创建托管账户
func (r *escrowRepository) Create(ctx context.Context, account *model.EscrowAccount) error {
	result := r.DB(ctx).Create(account)
	if result.Error != nil {
		return fmt.Errorf("create escrow account failed: %w", result.Error)
	}
	return nil
}

// GetByOrderID 根据订单 ID 查询托管账户
func (r *escrowRepository) GetByOrderID(ctx context.Context, orderID int64) (*model.EscrowAccount, error) {
	var account model.EscrowAccount
	result := r.DB(ctx).Where("order_id = ?", orderID).First(&account)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrEscrowNotFound
		}
		return nil, fmt.Errorf("get escrow account failed: %w", result.Error)
	}
	return &account, nil
}

// BindAcceptance 接单时绑定执行方、保证金和费率快照
func (r *escrowRepository) BindAcceptance(ctx context.Context, orderID int64, executor string, guaranteeToken string, guaranteeAmount decimal.Decimal, rewardPayable decimal.Decimal, feeBps int32) error {
	result := r.DB(ctx).Model(&model.EscrowAccount{}).
		Where("order_id = ? AND executor = ''", orderID).
		Updates(map[string]interface{}{
			"executor":         executor,
			"guarantee_token":  guaranteeToken,
			"guarantee_amount": guaranteeAmount,
			"reward_payable":   rewardPayable,
			"fee_bps_snapshot": feeBps,
			"updated_at":       nowMilli(),
		})

	if result.Error != nil {
		return fmt.Errorf("bind acceptance failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrEscrowConflict
	}
	return nil
}

// AddClaimed 累加已领取报酬 (带额度检查的原子更新)
func (r *escrowRepository) AddClaimed(ctx context.Context, orderID int64, amount decimal.Decimal) error {
	sql := `UPDATE escrow_accounts
			SET reward_claimed = reward_claimed + ?,
				version = version + 1,
				updated_at = ?
			WHERE order_id = ? AND reward_claimed + ? <= reward_payable`

	result := r.DB(ctx).Exec(sql, amount, nowMilli(), orderID, amount)
	if result.Error != nil {
		return fmt.Errorf("add claimed failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrEscrowConflict
	}
	return nil
}

// AddReleased 累加已释放的燃料成本 (带额度检查的原子更新)
func (r *escrowRepository) AddReleased(ctx context.Context, orderID int64, amount decimal.Decimal) error {
	sql := `UPDATE escrow_accounts
			SET cost_released = cost_released + ?,
				version = version + 1,
				updated_at = ?
			WHERE order_id = ? AND cost_released + ? <= cost_amount`

	result := r.DB(ctx).Exec(sql, amount, nowMilli(), orderID, amount)
	if result.Error != nil {
		return fmt.Errorf("add released failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrEscrowConflict
	}
	return nil
}

// ListClaimableByExecutor 查询执行方在指定报酬代币下有未领余额的托管账户, 按订单 ID 升序
func (r *escrowRepository) ListClaimableByExecutor(ctx context.Context, executor, rewardToken string) ([]*model.EscrowAccount, error) {
	var accounts []*model.EscrowAccount
	result := r.DB(ctx).
		Where("executor = ? AND reward_token = ?", executor, rewardToken).
		Where("reward_claimed < reward_payable").
		Order("order_id ASC").
		Find(&accounts)

	if result.Error != nil {
		return nil, fmt.Errorf("list claimable escrow accounts failed: %w", result.Error)
	}
	return accounts, nil
}

// CreateLog 写入托管流水
func (r *escrowRepository) CreateLog(ctx context.Context, log *model.EscrowLog) error {
	result := r.DB(ctx).Create(log)
	if result.Error != nil {
		return fmt.Errorf("create escrow log failed: %w", result.Error)
	}
	return nil
}

// ListLogs 查询订单的托管流水
func (r *escrowRepository) ListLogs(ctx context.Context, orderID int64) ([]*model.EscrowLog, error) {
	var logs []*model.EscrowLog
	result := r.DB(ctx).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&logs)

	if result.Error != nil {
		return nil, fmt.Errorf("list escrow logs failed: %w", result.Error)
	}
	return logs, nil
}
