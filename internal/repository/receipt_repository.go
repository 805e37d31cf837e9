package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/markfender/transorder/internal/model"
)

// ErrInsufficientReceipts 凭证余额不足
var ErrInsufficientReceipts = errors.New("insufficient receipt balance")

// ReceiptRepository 燃料凭证仓储接口
// 凭证按 订单+持有人 维度记账, 类似 ERC-1155 的单 ID 余额表
type ReceiptRepository interface {
	// Mint 铸造凭证 (接单时为创建者铸造)
	Mint(ctx context.Context, orderID int64, holder string, units int64) error

	// Burn 销毁凭证 (兑付时从持有人销毁)
	// 余额不足时返回 ErrInsufficientReceipts
	Burn(ctx context.Context, orderID int64, holder string, units int64) error

	// Transfer 转移凭证
	Transfer(ctx context.Context, orderID int64, from, to string, units int64) error

	// BalanceOf 查询持有人的凭证余额
	BalanceOf(ctx context.Context, orderID int64, holder string) (int64, error)
}

// receiptRepository 燃料凭证仓储实现
type receiptRepository struct {
	*Repository
}

// NewReceiptRepository 创建燃料凭证仓储
func NewReceiptRepository(db *gorm.DB) ReceiptRepository {
	return &receiptRepository{
		Repository: NewRepository(db),
	}
}

// Mint 铸造凭证
func (r *receiptRepository) Mint(ctx context.Context, orderID int64, holder string, units int64) error {
	if units <= 0 {
		return fmt.Errorf("mint units must be positive: %d", units)
	}

	// 存在则累加, 不存在则插入
	result := r.DB(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "order_id"}, {Name: "holder"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"units":      gorm.Expr("units + ?", units),
			"updated_at": nowMilli(),
		}),
	}).Create(&model.ReceiptBalance{
		OrderID: orderID,
		Holder:  holder,
		Units:   units,
	})

	if result.Error != nil {
		return fmt.Errorf("mint receipts failed: %w", result.Error)
	}
	return nil
}

// Burn 销毁凭证
// 带余额检查的原子更新, 并发销毁时不会透支
func (r *receiptRepository) Burn(ctx context.Context, orderID int64, holder string, units int64) error {
	if units <= 0 {
		return fmt.Errorf("burn units must be positive: %d", units)
	}

	result := r.DB(ctx).Model(&model.ReceiptBalance{}).
		Where("order_id = ? AND holder = ? AND units >= ?", orderID, holder, units).
		Updates(map[string]interface{}{
			"units":      gorm.Expr("units - ?", units),
			"updated_at": nowMilli(),
		})

	if result.Error != nil {
		return fmt.Errorf("burn receipts failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientReceipts
	}
	return nil
}

// Transfer 转移凭证
func (r *receiptRepository) Transfer(ctx context.Context, orderID int64, from, to string, units int64) error {
	if units <= 0 {
		return fmt.Errorf("transfer units must be positive: %d", units)
	}

	return r.Transaction(ctx, func(txCtx context.Context) error {
		if err := r.Burn(txCtx, orderID, from, units); err != nil {
			return err
		}
		return r.Mint(txCtx, orderID, to, units)
	})
}

// BalanceOf 查询持有人的凭证余额
func (r *receiptRepository) BalanceOf(ctx context.Context, orderID int64, holder string) (int64, error) {
	var balance model.ReceiptBalance
	result := r.DB(ctx).Where("order_id = ? AND holder = ?", orderID, holder).First(&balance)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("get receipt balance failed: %w", result.Error)
	}
	return balance.Units, nil
}
