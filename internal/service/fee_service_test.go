package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/markfender/transorder/internal/model"
)

func TestFeeService_SetFeeRate_Success(t *testing.T) {
	feeRepo := new(MockFeeRepository)
	admin := "0xadmin000000000000000000000000000000000001"
	svc := NewFeeService(feeRepo, []string{admin})

	ctx := context.Background()
	feeRepo.On("Upsert", ctx, model.CategoryStandard, int32(250), admin).Return(nil)

	err := svc.SetFeeRate(ctx, admin, model.CategoryStandard, 250)

	assert.NoError(t, err)
	feeRepo.AssertExpectations(t)
}

func TestFeeService_SetFeeRate_NotAdmin(t *testing.T) {
	feeRepo := new(MockFeeRepository)
	svc := NewFeeService(feeRepo, []string{"0xadmin000000000000000000000000000000000001"})

	ctx := context.Background()
	err := svc.SetFeeRate(ctx, "0xnobody", model.CategoryStandard, 250)

	assert.True(t, errors.Is(err, ErrUnauthorized))
	feeRepo.AssertNotCalled(t, "Upsert")
}

func TestFeeService_SetFeeRate_Bounds(t *testing.T) {
	feeRepo := new(MockFeeRepository)
	admin := "0xadmin000000000000000000000000000000000001"
	svc := NewFeeService(feeRepo, []string{admin})

	ctx := context.Background()

	// 边界值 0 和 10000 合法
	feeRepo.On("Upsert", ctx, model.CategoryStandard, int32(0), admin).Return(nil)
	feeRepo.On("Upsert", ctx, model.CategoryStandard, int32(10000), admin).Return(nil)
	assert.NoError(t, svc.SetFeeRate(ctx, admin, model.CategoryStandard, 0))
	assert.NoError(t, svc.SetFeeRate(ctx, admin, model.CategoryStandard, 10000))

	// 越界拒绝
	assert.True(t, errors.Is(svc.SetFeeRate(ctx, admin, model.CategoryStandard, -1), ErrInvalidFeeRate))
	assert.True(t, errors.Is(svc.SetFeeRate(ctx, admin, model.CategoryStandard, 10001), ErrInvalidFeeRate))
}

func TestFeeService_SetFeeRate_InvalidCategory(t *testing.T) {
	feeRepo := new(MockFeeRepository)
	admin := "0xadmin000000000000000000000000000000000001"
	svc := NewFeeService(feeRepo, []string{admin})

	err := svc.SetFeeRate(context.Background(), admin, model.OrderCategory(9), 100)

	assert.True(t, errors.Is(err, ErrInvalidCategory))
}

func TestFeeService_GetFeeRate_UnsetDefaultsToZero(t *testing.T) {
	feeRepo := new(MockFeeRepository)
	svc := NewFeeService(feeRepo, nil)

	ctx := context.Background()
	feeRepo.On("GetBps", ctx, model.CategoryBulk).Return(int32(0), nil)

	bps, err := svc.GetFeeRate(ctx, model.CategoryBulk)

	assert.NoError(t, err)
	assert.Equal(t, int32(0), bps)
}
