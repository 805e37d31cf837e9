package service

import (
	"context"

	"github.com/markfender/transorder/internal/model"
	"github.com/markfender/transorder/internal/repository"
)

// FeeService 费率服务接口
type FeeService interface {
	// SetFeeRate 设置类别费率 (基点, 0-10000)
	// 只影响之后的接单, 已接订单按接单时的快照计费
	SetFeeRate(ctx context.Context, caller string, category model.OrderCategory, bps int32) error

	// GetFeeRate 查询类别费率, 未设置的类别返回 0
	GetFeeRate(ctx context.Context, category model.OrderCategory) (int32, error)

	// ListFeeRates 查询所有已设置的费率
	ListFeeRates(ctx context.Context) ([]*model.FeeRate, error)
}

// feeService 费率服务实现
type feeService struct {
	feeRepo repository.FeeRepository
	admins  map[string]struct{} // 有权更新费率的地址, 为空时不限制
}

// NewFeeService 创建费率服务
func NewFeeService(feeRepo repository.FeeRepository, adminWallets []string) FeeService {
	admins := make(map[string]struct{}, len(adminWallets))
	for _, wallet := range adminWallets {
		admins[wallet] = struct{}{}
	}
	return &feeService{
		feeRepo: feeRepo,
		admins:  admins,
	}
}

// SetFeeRate 设置类别费率
func (s *feeService) SetFeeRate(ctx context.Context, caller string, category model.OrderCategory, bps int32) error {
	if len(s.admins) > 0 {
		if _, ok := s.admins[caller]; !ok {
			return ErrUnauthorized
		}
	}
	if !category.IsValid() {
		return ErrInvalidCategory
	}
	if bps < 0 || bps > model.MaxFeeBps {
		return ErrInvalidFeeRate
	}

	return s.feeRepo.Upsert(ctx, category, bps, caller)
}

// GetFeeRate 查询类别费率
func (s *feeService) GetFeeRate(ctx context.Context, category model.OrderCategory) (int32, error) {
	if !category.IsValid() {
		return 0, ErrInvalidCategory
	}
	return s.feeRepo.GetBps(ctx, category)
}

// ListFeeRates 查询所有已设置的费率
func (s *feeService) ListFeeRates(ctx context.Context) ([]*model.FeeRate, error) {
	return s.feeRepo.ListAll(ctx)
}
