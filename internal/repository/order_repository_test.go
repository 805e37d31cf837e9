package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/markfender/transorder/internal/model"
)

// setupMockDB 创建 mock 数据库连接
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	dialector := postgres.New(postgres.Config{
		Conn:       db,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open gorm db: %v", err)
	}

	cleanup := func() {
		db.Close()
	}

	return gormDB, mock, cleanup
}

func TestOrderRepository_Create_Success(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	repo := NewOrderRepository(db)
	ctx := context.Background()

	order := &model.Order{
		Creator:           "0x1111111111111111111111111111111111111111",
		GasUnits:          100,
		ExecutionStart:    1_700_000_100,
		ExecutionDeadline: 1_700_003_600,
		RewardToken:       "USDT",
		RewardAmount:      decimal.NewFromInt(500),
		CostToken:         "ETH",
		CostPerUnit:       decimal.NewFromInt(2),
		CostTotal:         decimal.NewFromInt(200),
		GuaranteeToken:    "USDT",
		GuaranteePerUnit:  decimal.NewFromInt(3),
		Status:            model.OrderStatusCreated,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "gas_orders"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := repo.Create(ctx, order)

	assert.NoError(t, err)
	assert.Equal(t, int64(1), order.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_GetByID_Success(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	repo := NewOrderRepository(db)
	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"id", "creator", "gas_units", "status", "reward_amount"}).
		AddRow(7, "0x1111111111111111111111111111111111111111", 100, int8(model.OrderStatusCreated), "500")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "gas_orders" WHERE id = $1`)).
		WillReturnRows(rows)

	order, err := repo.GetByID(ctx, 7)

	assert.NoError(t, err)
	assert.Equal(t, int64(7), order.ID)
	assert.Equal(t, model.OrderStatusCreated, order.Status)
	assert.True(t, order.RewardAmount.Equal(decimal.NewFromInt(500)))
}

func TestOrderRepository_GetByID_NotFound(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	repo := NewOrderRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "gas_orders"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	order, err := repo.GetByID(ctx, 404)

	assert.Nil(t, order)
	assert.True(t, errors.Is(err, ErrOrderNotFound))
}

func TestOrderRepository_UpdateStatus_Success(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	repo := NewOrderRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "gas_orders" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdateStatus(ctx, 7, model.OrderStatusCreated, model.OrderStatusRevoked)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_UpdateStatus_Conflict(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	repo := NewOrderRepository(db)
	ctx := context.Background()

	// 状态条件不满足, 0 行受影响
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "gas_orders" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.UpdateStatus(ctx, 7, model.OrderStatusCreated, model.OrderStatusAccepted)

	assert.True(t, errors.Is(err, ErrOptimisticLock))
}

func TestOrderRepository_BindExecutor_Conflict(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	repo := NewOrderRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "gas_orders" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.BindExecutor(ctx, 7, "0x2222222222222222222222222222222222222222",
		model.OrderStatusCreated, model.OrderStatusAccepted)

	assert.True(t, errors.Is(err, ErrOptimisticLock))
}

func TestOrderRepository_Count(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	repo := NewOrderRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "gas_orders"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(6))

	count, err := repo.Count(ctx, &OrderFilter{})

	assert.NoError(t, err)
	assert.Equal(t, int64(6), count)
}

func TestOrderRepository_Count_WithFilter(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	repo := NewOrderRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "gas_orders" WHERE creator = $1 AND status = $2`)).
		WithArgs("0x3333333333333333333333333333333333333333", int8(model.OrderStatusCreated)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.Count(ctx, &OrderFilter{
		Owner:  "0x3333333333333333333333333333333333333333",
		Status: model.OrderStatusCreated,
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestPagination_EffectiveLimit(t *testing.T) {
	tests := []struct {
		limit int
		want  int
	}{
		{0, MaxPageSize},
		{-1, MaxPageSize},
		{10, 10},
		{100, 100},
		{101, MaxPageSize},
		{1000, MaxPageSize},
	}

	for _, tt := range tests {
		page := &Pagination{Limit: tt.limit}
		assert.Equal(t, tt.want, page.EffectiveLimit(), "limit=%d", tt.limit)
	}
}

func TestPagination_EffectiveOffset(t *testing.T) {
	assert.Equal(t, 0, (&Pagination{Offset: -5}).EffectiveOffset())
	assert.Equal(t, 0, (&Pagination{}).EffectiveOffset())
	assert.Equal(t, 30, (&Pagination{Offset: 30}).EffectiveOffset())
}
