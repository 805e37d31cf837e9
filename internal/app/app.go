// Package app 提供应用生命周期管理
package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/markfender/transorder/internal/cache"
	"github.com/markfender/transorder/internal/clock"
	"github.com/markfender/transorder/internal/config"
	"github.com/markfender/transorder/internal/handler"
	"github.com/markfender/transorder/internal/kafka"
	"github.com/markfender/transorder/internal/model"
	"github.com/markfender/transorder/internal/publisher"
	"github.com/markfender/transorder/internal/repository"
	"github.com/markfender/transorder/internal/service"
	"github.com/markfender/transorder/pkg/id"
	"github.com/markfender/transorder/pkg/logger"
)

// App 应用实例
type App struct {
	cfg *config.Config

	// 基础设施
	db    *gorm.DB
	rdb   *redis.Client
	idGen *id.Generator

	// HTTP
	httpServer *http.Server

	// Kafka
	producer       *kafka.Producer
	orderPublisher *publisher.OrderPublisher

	// 缓存层 (Redis 作为实时资金真相)
	ledger *cache.TokenLedger

	// 仓储层
	orderRepo   repository.OrderRepository
	escrowRepo  repository.EscrowRepository
	receiptRepo repository.ReceiptRepository
	feeRepo     repository.FeeRepository

	// 服务层
	orderSvc      service.OrderService
	matchingSvc   service.MatchingService
	claimSvc      service.ClaimService
	redemptionSvc service.RedemptionService
	querySvc      service.QueryService
	feeSvc        service.FeeService

	// 生命周期
	ctx    context.Context
	cancel context.CancelFunc
}

// New 创建应用实例
func New(cfg *config.Config) *App {
	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Run 启动应用
func (a *App) Run() error {
	logger.Info("starting service", zap.String("service", a.cfg.Service.Name))

	// 1. 初始化基础设施
	if err := a.initInfra(); err != nil {
		return fmt.Errorf("init infra: %w", err)
	}

	// 2. 初始化 Kafka
	if err := a.initKafka(); err != nil {
		return fmt.Errorf("init kafka: %w", err)
	}

	// 3. 初始化仓储层和服务层
	a.initRepositories()
	a.initServices()

	// 4. 初始化费率表
	if err := a.seedFeeRates(); err != nil {
		return fmt.Errorf("seed fee rates: %w", err)
	}

	// 5. 启动 HTTP 服务器
	a.startHTTPServer()

	// 6. 等待关闭信号
	a.waitForShutdown()

	return nil
}

// initInfra 初始化基础设施
func (a *App) initInfra() error {
	var err error

	// 初始化数据库
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		a.cfg.Database.Host, a.cfg.Database.Port, a.cfg.Database.User,
		a.cfg.Database.Password, a.cfg.Database.Database)

	a.db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := a.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	sqlDB.SetMaxIdleConns(a.cfg.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(a.cfg.Database.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(a.cfg.Database.ConnMaxLifetimeMinutes) * time.Minute)

	// 自动迁移
	if err := AutoMigrate(a.db); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	logger.Info("database migrated")

	// 初始化 Redis
	a.rdb = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", a.cfg.Redis.Host, a.cfg.Redis.Port),
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
		PoolSize: a.cfg.Redis.PoolSize,
	})
	if err := a.rdb.Ping(a.ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}

	// 初始化 ID 生成器
	a.idGen, err = id.NewGenerator(a.cfg.Node.ID)
	if err != nil {
		return fmt.Errorf("init id generator: %w", err)
	}

	return nil
}

// initKafka 初始化 Kafka
func (a *App) initKafka() error {
	if !a.cfg.Kafka.Enabled {
		logger.Warn("kafka is disabled")
		return nil
	}

	producerCfg := kafka.DefaultProducerConfig(a.cfg.Kafka.Brokers)
	producerCfg.RequiredAcks = sarama.RequiredAcks(a.cfg.Kafka.Producer.RequiredAcks)
	if a.cfg.Kafka.Producer.MaxRetry > 0 {
		producerCfg.MaxRetry = a.cfg.Kafka.Producer.MaxRetry
	}
	if a.cfg.Kafka.Producer.FlushMessages > 0 {
		producerCfg.FlushMessages = a.cfg.Kafka.Producer.FlushMessages
	}
	if a.cfg.Kafka.Producer.FlushBytes > 0 {
		producerCfg.FlushBytes = a.cfg.Kafka.Producer.FlushBytes
	}
	if a.cfg.Kafka.Producer.FlushFreqMs > 0 {
		producerCfg.FlushFreq = time.Duration(a.cfg.Kafka.Producer.FlushFreqMs) * time.Millisecond
	}

	var err error
	a.producer, err = kafka.NewProducer(producerCfg)
	if err != nil {
		return fmt.Errorf("create producer: %w", err)
	}

	a.orderPublisher = publisher.NewOrderPublisher(a.producer)
	return nil
}

// initRepositories 初始化仓储层和缓存层
func (a *App) initRepositories() {
	a.orderRepo = repository.NewOrderRepository(a.db)
	a.escrowRepo = repository.NewEscrowRepository(a.db)
	a.receiptRepo = repository.NewReceiptRepository(a.db)
	a.feeRepo = repository.NewFeeRepository(a.db)

	a.ledger = cache.NewTokenLedger(a.rdb, "ledger", 18)
	logger.Info("token ledger initialized (Redis as source of truth)")
}

// initServices 初始化服务层
func (a *App) initServices() {
	clk := clock.System()

	// publisher 为 nil 时事件发布为空操作
	var pub service.OrderPublisher
	if a.orderPublisher != nil {
		pub = a.orderPublisher
	}

	a.orderSvc = service.NewOrderService(a.orderRepo, a.escrowRepo, a.ledger, a.idGen, clk, pub)
	a.matchingSvc = service.NewMatchingService(a.orderRepo, a.escrowRepo, a.receiptRepo, a.feeRepo, a.ledger, a.idGen, clk, pub)
	a.claimSvc = service.NewClaimService(a.orderRepo, a.escrowRepo, a.ledger, a.idGen, clk, pub)
	a.redemptionSvc = service.NewRedemptionService(a.orderRepo, a.escrowRepo, a.receiptRepo, a.ledger, a.idGen, clk, pub)
	a.querySvc = service.NewQueryService(a.orderRepo)
	a.feeSvc = service.NewFeeService(a.feeRepo, a.cfg.Admin.Wallets)
}

// seedFeeRates 按配置初始化费率表
// 只写入尚未设置的类别, 不覆盖运行期的调整
func (a *App) seedFeeRates() error {
	for _, fee := range a.cfg.Fees {
		category := model.OrderCategory(fee.Category)
		if !category.IsValid() {
			continue
		}
		bps, err := a.feeRepo.GetBps(a.ctx, category)
		if err != nil {
			return err
		}
		if bps != 0 || fee.Bps == 0 {
			continue
		}
		if err := a.feeRepo.Upsert(a.ctx, category, fee.Bps, "config"); err != nil {
			return err
		}
	}
	return nil
}

// startHTTPServer 启动 HTTP 服务器
func (a *App) startHTTPServer() {
	router := handler.NewRouter(&handler.RouterConfig{
		Orders: handler.NewOrderHandler(a.orderSvc, a.matchingSvc, a.claimSvc, a.redemptionSvc, a.querySvc),
		Fees:   handler.NewFeeHandler(a.feeSvc),
	})

	a.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", a.cfg.Service.HTTPPort),
		Handler: router,
	}

	go func() {
		logger.Info("http server listening", zap.Int("port", a.cfg.Service.HTTPPort))
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http serve error", zap.Error(err))
		}
	}()
}

// waitForShutdown 等待关闭信号
func (a *App) waitForShutdown() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")
	a.shutdown()
}

// shutdown 优雅关闭
func (a *App) shutdown() {
	// 取消 context，通知所有 goroutine 退出
	a.cancel()

	// 停止 HTTP 服务器
	if a.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", zap.Error(err))
		}
	}

	// 停止 Kafka 生产者
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			logger.Error("close kafka producer failed", zap.Error(err))
		}
	}

	// 关闭 Redis
	if a.rdb != nil {
		a.rdb.Close()
	}

	// 关闭数据库
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			sqlDB.Close()
		}
	}

	logger.Info("service stopped")
}
