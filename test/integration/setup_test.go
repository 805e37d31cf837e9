// Package integration 提供集成测试
//
// 运行方式: go test ./test/integration/... -v -p=1
// 注意: 使用 -p=1 顺序执行测试以避免 SQLite 并发锁冲突
package integration

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/markfender/transorder/internal/cache"
	"github.com/markfender/transorder/internal/clock"
	"github.com/markfender/transorder/internal/model"
	"github.com/markfender/transorder/internal/repository"
	"github.com/markfender/transorder/internal/service"
	"github.com/markfender/transorder/pkg/id"
)

// 固定基准时刻, 所有集成测试围绕这个时间点构造执行窗口
var baseTime = time.Unix(1_700_000_000, 0)

// TestSuite 集成测试套件
type TestSuite struct {
	t   *testing.T
	ctx context.Context

	// 基础设施
	db      *gorm.DB
	rdb     *redis.Client
	minirdb *miniredis.Miniredis
	idGen   *id.Generator
	clk     *clock.Fixed

	// 仓储层
	orderRepo   repository.OrderRepository
	escrowRepo  repository.EscrowRepository
	receiptRepo repository.ReceiptRepository
	feeRepo     repository.FeeRepository

	// 资金账本
	ledger *cache.TokenLedger

	// 服务层
	orderSvc      service.OrderService
	matchingSvc   service.MatchingService
	claimSvc      service.ClaimService
	redemptionSvc service.RedemptionService
	feeSvc        service.FeeService
	querySvc      service.QueryService
}

// NewTestSuite 创建测试套件
func NewTestSuite(t *testing.T) *TestSuite {
	t.Helper()

	suite := &TestSuite{
		t:   t,
		ctx: context.Background(),
	}

	// 初始化 miniredis
	suite.minirdb = miniredis.RunT(t)
	suite.rdb = redis.NewClient(&redis.Options{
		Addr: suite.minirdb.Addr(),
	})

	// 初始化 SQLite (in-memory)
	// 注意: SQLite 不支持真正的并发写入，集成测试应顺序执行 (-p=1)
	var err error
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	// 自动迁移
	if err := suite.db.AutoMigrate(
		&model.Order{},
		&model.EscrowAccount{},
		&model.EscrowLog{},
		&model.ReceiptBalance{},
		&model.FeeRate{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	// 初始化 ID 生成器与时钟
	suite.idGen, err = id.NewGenerator(1)
	if err != nil {
		t.Fatalf("failed to create id generator: %v", err)
	}
	suite.clk = &clock.Fixed{Time: baseTime}

	// 初始化仓储层
	suite.orderRepo = repository.NewOrderRepository(suite.db)
	suite.escrowRepo = repository.NewEscrowRepository(suite.db)
	suite.receiptRepo = repository.NewReceiptRepository(suite.db)
	suite.feeRepo = repository.NewFeeRepository(suite.db)

	// 初始化资金账本
	suite.ledger = cache.NewTokenLedger(suite.rdb, "ledger", 18)

	// 初始化服务层
	suite.orderSvc = service.NewOrderService(
		suite.orderRepo,
		suite.escrowRepo,
		suite.ledger,
		suite.idGen,
		suite.clk,
		nil, // no order publisher in tests
	)

	suite.matchingSvc = service.NewMatchingService(
		suite.orderRepo,
		suite.escrowRepo,
		suite.receiptRepo,
		suite.feeRepo,
		suite.ledger,
		suite.idGen,
		suite.clk,
		nil, // no order publisher in tests
	)

	suite.claimSvc = service.NewClaimService(
		suite.orderRepo,
		suite.escrowRepo,
		suite.ledger,
		suite.idGen,
		suite.clk,
		nil, // no order publisher in tests
	)

	suite.redemptionSvc = service.NewRedemptionService(
		suite.orderRepo,
		suite.escrowRepo,
		suite.receiptRepo,
		suite.ledger,
		suite.idGen,
		suite.clk,
		nil, // no order publisher in tests
	)

	// 空管理员列表, 测试中不限制费率更新权限
	suite.feeSvc = service.NewFeeService(suite.feeRepo, nil)

	suite.querySvc = service.NewQueryService(suite.orderRepo)

	return suite
}

// Cleanup 清理测试资源
func (s *TestSuite) Cleanup() {
	// 等待异步任务完成，避免后台 goroutine 访问已关闭的资源
	time.Sleep(100 * time.Millisecond)

	if s.rdb != nil {
		s.rdb.Close()
	}
}

// Fund 为账户充值资金账本余额
func (s *TestSuite) Fund(holder, token string, amount decimal.Decimal) {
	s.t.Helper()
	if _, err := s.ledger.Credit(s.ctx, holder, token, amount); err != nil {
		s.t.Fatalf("failed to fund %s: %v", holder, err)
	}
}

// Balance 查询账户的资金账本余额
func (s *TestSuite) Balance(holder, token string) decimal.Decimal {
	s.t.Helper()
	balance, err := s.ledger.GetBalance(s.ctx, holder, token)
	if err != nil {
		s.t.Fatalf("failed to get balance of %s: %v", holder, err)
	}
	return balance
}

// VaultBalance 查询托管金库余额
func (s *TestSuite) VaultBalance(token string) decimal.Decimal {
	return s.Balance(cache.VaultAccount, token)
}

// EnterWindow 将时钟推进到默认执行窗口内
func (s *TestSuite) EnterWindow() {
	s.clk.Time = baseTime.Add(200 * time.Second)
}

// CreateOrder 以默认参数创建订单 (100 单位, 报酬 500 USDT, 预算 2 ETH/单位, 保证金 3 USDT/单位)
// 执行窗口从基准时刻 100 秒后开始, 接单前需要 EnterWindow 推进时钟
func (s *TestSuite) CreateOrder(creator string, autoAccept bool) (*model.Order, error) {
	return s.orderSvc.CreateOrder(s.ctx, &service.CreateOrderRequest{
		Creator:           creator,
		GasUnits:          100,
		ExecutionStart:    baseTime.Unix() + 100,
		ExecutionDeadline: baseTime.Unix() + 3600,
		RewardToken:       "USDT",
		RewardAmount:      decimal.NewFromInt(500),
		CostToken:         "ETH",
		CostPerUnit:       decimal.NewFromInt(2),
		GuaranteeToken:    "USDT",
		GuaranteePerUnit:  decimal.NewFromInt(3),
		Category:          model.CategoryStandard,
		AutoAccept:        autoAccept,
	})
}

// AcceptOrder 以订单要求的保证金接单
func (s *TestSuite) AcceptOrder(executor string, order *model.Order) (*model.Order, error) {
	return s.matchingSvc.AcceptOrder(s.ctx, &service.AcceptOrderRequest{
		OrderID:         order.ID,
		Executor:        executor,
		GuaranteeToken:  order.GuaranteeToken,
		GuaranteeAmount: order.GuaranteeRequired(),
	})
}
