package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/markfender/transorder/internal/model"
)

// FeeRepository 费率仓储接口
type FeeRepository interface {
	// GetBps 查询类别费率, 未设置的类别返回 0
	GetBps(ctx context.Context, category model.OrderCategory) (int32, error)

	// Upsert 设置类别费率
	Upsert(ctx context.Context, category model.OrderCategory, bps int32, updatedBy string) error

	// ListAll 查询所有已设置的费率
	ListAll(ctx context.Context) ([]*model.FeeRate, error)
}

// feeRepository 费率仓储实现
type feeRepository struct {
	*Repository
}

// NewFeeRepository 创建费率仓储
func NewFeeRepository(db *gorm.DB) FeeRepository {
	return &feeRepository{
		Repository: NewRepository(db),
	}
}

// GetBps 查询类别费率, 未设置的类别返回 0
func (r *feeRepository) GetBps(ctx context.Context, category model.OrderCategory) (int32, error) {
	var rate model.FeeRate
	result := r.DB(ctx).Where("category = ?", category).First(&rate)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("get fee rate failed: %w", result.Error)
	}
	return rate.Bps, nil
}

// Upsert 设置类别费率
func (r *feeRepository) Upsert(ctx context.Context, category model.OrderCategory, bps int32, updatedBy string) error {
	result := r.DB(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "category"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"bps":        bps,
			"updated_by": updatedBy,
			"updated_at": nowMilli(),
		}),
	}).Create(&model.FeeRate{
		Category:  category,
		Bps:       bps,
		UpdatedBy: updatedBy,
	})

	if result.Error != nil {
		return fmt.Errorf("upsert fee rate failed: %w", result.Error)
	}
	return nil
}

// ListAll 查询所有已设置的费率
func (r *feeRepository) ListAll(ctx context.Context) ([]*model.FeeRate, error) {
	var rates []*model.FeeRate
	result := r.DB(ctx).Order("category ASC").Find(&rates)
	if result.Error != nil {
		return nil, fmt.Errorf("list fee rates failed: %w", result.Error)
	}
	return rates, nil
}
