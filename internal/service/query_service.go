package service

import (
	"context"

	"github.com/markfender/transorder/internal/model"
	"github.com/markfender/transorder/internal/repository"
)

// QueryService 订单查询服务接口
// 创建人与状态均支持通配: 空串 / None 表示不过滤
type QueryService interface {
	// CountOrders 统计满足条件的订单数
	CountOrders(ctx context.Context, owner string, status model.OrderStatus) (int64, error)

	// ListOrders 分页查询订单, 按订单号升序
	// limit 超过上限时按上限截断, offset 超出末尾时返回空列表
	ListOrders(ctx context.Context, owner string, status model.OrderStatus, page *repository.Pagination) ([]*model.Order, error)
}

// queryService 订单查询服务实现
type queryService struct {
	orderRepo repository.OrderRepository
}

// NewQueryService 创建订单查询服务
func NewQueryService(orderRepo repository.OrderRepository) QueryService {
	return &queryService{orderRepo: orderRepo}
}

// CountOrders 统计满足条件的订单数
func (s *queryService) CountOrders(ctx context.Context, owner string, status model.OrderStatus) (int64, error) {
	return s.orderRepo.Count(ctx, &repository.OrderFilter{Owner: owner, Status: status})
}

// ListOrders 分页查询订单, 按订单号升序
func (s *queryService) ListOrders(ctx context.Context, owner string, status model.OrderStatus, page *repository.Pagination) ([]*model.Order, error) {
	return s.orderRepo.List(ctx, &repository.OrderFilter{Owner: owner, Status: status}, page)
}
