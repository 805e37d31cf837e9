package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/markfender/transorder/internal/model"
	"github.com/markfender/transorder/internal/repository"
)

// ========== Mock Implementations ==========

// MockOrderRepository 订单仓储模拟
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *model.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByIDForUpdate(ctx context.Context, id int64) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, filter *repository.OrderFilter, page *repository.Pagination) ([]*model.Order, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Order), args.Error(1)
}

func (m *MockOrderRepository) Count(ctx context.Context, filter *repository.OrderFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) ListAcceptable(ctx context.Context, windowNow int64, page *repository.Pagination) ([]*model.Order, error) {
	args := m.Called(ctx, windowNow, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, orderID int64, oldStatus, newStatus model.OrderStatus) error {
	args := m.Called(ctx, orderID, oldStatus, newStatus)
	return args.Error(0)
}

func (m *MockOrderRepository) BindExecutor(ctx context.Context, orderID int64, executor string, oldStatus, newStatus model.OrderStatus) error {
	args := m.Called(ctx, orderID, executor, oldStatus, newStatus)
	return args.Error(0)
}

// MockEscrowRepository 托管账户仓储模拟
type MockEscrowRepository struct {
	mock.Mock
}

// Transaction 直接执行 fn, 模拟事务透传
func (m *MockEscrowRepository) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

func (m *MockEscrowRepository) Create(ctx context.Context, account *model.EscrowAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockEscrowRepository) GetByOrderID(ctx context.Context, orderID int64) (*model.EscrowAccount, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EscrowAccount), args.Error(1)
}

func (m *MockEscrowRepository) BindAcceptance(ctx context.Context, orderID int64, executor string, guaranteeToken string, guaranteeAmount decimal.Decimal, rewardPayable decimal.Decimal, feeBps int32) error {
	args := m.Called(ctx, orderID, executor, guaranteeToken, guaranteeAmount, rewardPayable, feeBps)
	return args.Error(0)
}

func (m *MockEscrowRepository) AddClaimed(ctx context.Context, orderID int64, amount decimal.Decimal) error {
	args := m.Called(ctx, orderID, amount)
	return args.Error(0)
}

func (m *MockEscrowRepository) AddReleased(ctx context.Context, orderID int64, amount decimal.Decimal) error {
	args := m.Called(ctx, orderID, amount)
	return args.Error(0)
}

func (m *MockEscrowRepository) ListClaimableByExecutor(ctx context.Context, executor, rewardToken string) ([]*model.EscrowAccount, error) {
	args := m.Called(ctx, executor, rewardToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.EscrowAccount), args.Error(1)
}

func (m *MockEscrowRepository) CreateLog(ctx context.Context, log *model.EscrowLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockEscrowRepository) ListLogs(ctx context.Context, orderID int64) ([]*model.EscrowLog, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.EscrowLog), args.Error(1)
}

// MockReceiptRepository 燃料凭证仓储模拟
type MockReceiptRepository struct {
	mock.Mock
}

func (m *MockReceiptRepository) Mint(ctx context.Context, orderID int64, holder string, units int64) error {
	args := m.Called(ctx, orderID, holder, units)
	return args.Error(0)
}

func (m *MockReceiptRepository) Burn(ctx context.Context, orderID int64, holder string, units int64) error {
	args := m.Called(ctx, orderID, holder, units)
	return args.Error(0)
}

func (m *MockReceiptRepository) Transfer(ctx context.Context, orderID int64, from, to string, units int64) error {
	args := m.Called(ctx, orderID, from, to, units)
	return args.Error(0)
}

func (m *MockReceiptRepository) BalanceOf(ctx context.Context, orderID int64, holder string) (int64, error) {
	args := m.Called(ctx, orderID, holder)
	return args.Get(0).(int64), args.Error(1)
}

// MockFeeRepository 费率仓储模拟
type MockFeeRepository struct {
	mock.Mock
}

func (m *MockFeeRepository) GetBps(ctx context.Context, category model.OrderCategory) (int32, error) {
	args := m.Called(ctx, category)
	return args.Get(0).(int32), args.Error(1)
}

func (m *MockFeeRepository) Upsert(ctx context.Context, category model.OrderCategory, bps int32, updatedBy string) error {
	args := m.Called(ctx, category, bps, updatedBy)
	return args.Error(0)
}

func (m *MockFeeRepository) ListAll(ctx context.Context) ([]*model.FeeRate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.FeeRate), args.Error(1)
}

// MockTokenLedger 资金账本模拟
type MockTokenLedger struct {
	mock.Mock
}

func (m *MockTokenLedger) TransferToVault(ctx context.Context, from, token string, amount decimal.Decimal) error {
	args := m.Called(ctx, from, token, amount)
	return args.Error(0)
}

func (m *MockTokenLedger) TransferFromVault(ctx context.Context, to, token string, amount decimal.Decimal) error {
	args := m.Called(ctx, to, token, amount)
	return args.Error(0)
}

func (m *MockTokenLedger) GetBalance(ctx context.Context, holder, token string) (decimal.Decimal, error) {
	args := m.Called(ctx, holder, token)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// stubIDGenerator 流水号生成桩
type stubIDGenerator struct {
	n int64
}

func (s *stubIDGenerator) GenerateString() string {
	s.n++
	return fmt.Sprintf("L%08d", s.n)
}
