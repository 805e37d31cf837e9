package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/markfender/transorder/internal/model"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrOptimisticLock = errors.New("optimistic lock conflict")
)

// OrderRepository 订单仓储接口
type OrderRepository interface {
	// Create 创建订单
	Create(ctx context.Context, order *model.Order) error

	// GetByID 根据 ID 查询订单
	GetByID(ctx context.Context, id int64) (*model.Order, error)

	// GetByIDForUpdate 根据 ID 查询订单并加行锁
	GetByIDForUpdate(ctx context.Context, id int64) (*model.Order, error)

	// List 分页查询订单列表, 按 ID 升序
	List(ctx context.Context, filter *OrderFilter, page *Pagination) ([]*model.Order, error)

	// Count 统计满足过滤条件的订单数
	Count(ctx context.Context, filter *OrderFilter) (int64, error)

	// ListAcceptable 查询当前可接单的订单, 按 ID 升序
	// windowNow: 当前时间 (秒), 用于过滤执行窗口
	ListAcceptable(ctx context.Context, windowNow int64, page *Pagination) ([]*model.Order, error)

	// UpdateStatus 按旧状态条件更新订单状态 (乐观并发控制)
	UpdateStatus(ctx context.Context, orderID int64, oldStatus, newStatus model.OrderStatus) error

	// BindExecutor 绑定执行人并流转状态 (乐观并发控制)
	// 只有状态仍为 oldStatus 时才会生效, 接单竞争时至多一人成功
	BindExecutor(ctx context.Context, orderID int64, executor string, oldStatus, newStatus model.OrderStatus) error
}

// OrderFilter 订单查询过滤条件
// Owner 为空串、Status 为 None 时表示通配
type OrderFilter struct {
	Owner  string            // 创建人地址
	Status model.OrderStatus // 订单状态
}

// orderRepository 订单仓储实现
type orderRepository struct {
	*Repository
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{
		Repository: NewRepository(db),
	}
}

// Create 创建订单
func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	result := r.DB(ctx).Create(order)
	if result.Error != nil {
		return fmt.Errorf("create order failed: %w", result.Error)
	}
	return nil
}

// GetByID 根据 ID 查询订单
func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order
	result := r.DB(ctx).Where("id = ?", id).First(&order)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order by id failed: %w", result.Error)
	}
	return &order, nil
}

// GetByIDForUpdate 根据 ID 查询订单并加行锁
func (r *orderRepository) GetByIDForUpdate(ctx context.Context, id int64) (*model.Order, error) {
	opts := &QueryOptions{ForUpdate: true}

	var order model.Order
	result := opts.ApplyLock(r.DB(ctx)).Where("id = ?", id).First(&order)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order for update failed: %w", result.Error)
	}
	return &order, nil
}

// List 分页查询订单列表, 按 ID 升序
func (r *orderRepository) List(ctx context.Context, filter *OrderFilter, page *Pagination) ([]*model.Order, error) {
	db := r.applyFilter(r.DB(ctx).Model(&model.Order{}), filter)

	// 统计总数
	if page != nil {
		var total int64
		if err := db.Count(&total).Error; err != nil {
			return nil, fmt.Errorf("count orders failed: %w", err)
		}
		page.Total = total
	}

	// 查询列表
	var orders []*model.Order
	db = db.Order("id ASC")
	if page != nil {
		db = db.Offset(page.EffectiveOffset()).Limit(page.EffectiveLimit())
	}

	if err := db.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list orders failed: %w", err)
	}
	return orders, nil
}

// Count 统计满足过滤条件的订单数
func (r *orderRepository) Count(ctx context.Context, filter *OrderFilter) (int64, error) {
	db := r.applyFilter(r.DB(ctx).Model(&model.Order{}), filter)

	var count int64
	if err := db.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count orders failed: %w", err)
	}
	return count, nil
}

// ListAcceptable 查询当前可接单的订单, 按 ID 升序
func (r *orderRepository) ListAcceptable(ctx context.Context, windowNow int64, page *Pagination) ([]*model.Order, error) {
	db := r.DB(ctx).Model(&model.Order{}).
		Where("status = ?", model.OrderStatusCreated).
		Where("auto_accept = ?", true).
		Where("execution_start <= ? AND execution_deadline >= ?", windowNow, windowNow)

	if page != nil {
		var total int64
		if err := db.Count(&total).Error; err != nil {
			return nil, fmt.Errorf("count acceptable orders failed: %w", err)
		}
		page.Total = total
	}

	var orders []*model.Order
	db = db.Order("id ASC")
	if page != nil {
		db = db.Offset(page.EffectiveOffset()).Limit(page.EffectiveLimit())
	}

	if err := db.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list acceptable orders failed: %w", err)
	}
	return orders, nil
}

// UpdateStatus 按旧状态条件更新订单状态 (乐观并发控制)
func (r *orderRepository) UpdateStatus(ctx context.Context, orderID int64, oldStatus, newStatus model.OrderStatus) error {
	result := r.DB(ctx).Model(&model.Order{}).
		Where("id = ? AND status = ?", orderID, oldStatus).
		Update("status", newStatus)

	if result.Error != nil {
		return fmt.Errorf("update order status failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrOptimisticLock
	}
	return nil
}

// BindExecutor 绑定执行人并流转状态 (乐观并发控制)
func (r *orderRepository) BindExecutor(ctx context.Context, orderID int64, executor string, oldStatus, newStatus model.OrderStatus) error {
	result := r.DB(ctx).Model(&model.Order{}).
		Where("id = ? AND status = ?", orderID, oldStatus).
		Updates(map[string]interface{}{
			"executor":   executor,
			"status":     newStatus,
			"updated_at": nowMilli(),
		})

	if result.Error != nil {
		return fmt.Errorf("bind executor failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrOptimisticLock
	}
	return nil
}

// applyFilter 应用过滤条件
// Owner 为空串、Status 为 None 时不参与过滤
func (r *orderRepository) applyFilter(db *gorm.DB, filter *OrderFilter) *gorm.DB {
	if filter == nil {
		return db
	}

	if filter.Owner != "" {
		db = db.Where("creator = ?", filter.Owner)
	}
	if filter.Status != model.OrderStatusNone {
		db = db.Where("status = ?", filter.Status)
	}

	return db
}
