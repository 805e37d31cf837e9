package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/markfender/transorder/internal/dto"
	"github.com/markfender/transorder/internal/model"
	"github.com/markfender/transorder/internal/repository"
	"github.com/markfender/transorder/internal/service"
)

// OrderHandler 订单处理器
type OrderHandler struct {
	orders     service.OrderService
	matching   service.MatchingService
	claims     service.ClaimService
	redemption service.RedemptionService
	query      service.QueryService
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(
	orders service.OrderService,
	matching service.MatchingService,
	claims service.ClaimService,
	redemption service.RedemptionService,
	query service.QueryService,
) *OrderHandler {
	return &OrderHandler{
		orders:     orders,
		matching:   matching,
		claims:     claims,
		redemption: redemption,
		query:      query,
	}
}

// CreateOrder 创建订单
// POST /api/v1/orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, dto.ErrInvalidParams.WithMessage(err.Error()))
		return
	}

	rewardAmount, err := decimal.NewFromString(req.RewardAmount)
	if err != nil {
		Error(c, dto.ErrInvalidAmount.WithMessage("invalid reward_amount"))
		return
	}
	costPerUnit, err := decimal.NewFromString(req.CostPerUnit)
	if err != nil {
		Error(c, dto.ErrInvalidAmount.WithMessage("invalid cost_per_unit"))
		return
	}
	guaranteePerUnit, err := decimal.NewFromString(req.GuaranteePerUnit)
	if err != nil {
		Error(c, dto.ErrInvalidAmount.WithMessage("invalid guarantee_per_unit"))
		return
	}
	maxUnitPrice := decimal.Zero
	if req.MaxUnitPrice != "" {
		maxUnitPrice, err = decimal.NewFromString(req.MaxUnitPrice)
		if err != nil {
			Error(c, dto.ErrInvalidAmount.WithMessage("invalid max_unit_price"))
			return
		}
	}

	order, err := h.orders.CreateOrder(c, &service.CreateOrderRequest{
		Creator:           GetWallet(c),
		GasUnits:          req.GasUnits,
		ExecutionStart:    req.ExecutionStart,
		ExecutionDeadline: req.ExecutionDeadline,
		MaxUnitPrice:      maxUnitPrice,
		RewardToken:       req.RewardToken,
		RewardAmount:      rewardAmount,
		CostToken:         req.CostToken,
		CostPerUnit:       costPerUnit,
		GuaranteeToken:    req.GuaranteeToken,
		GuaranteePerUnit:  guaranteePerUnit,
		Category:          model.OrderCategory(req.Category),
		AutoAccept:        req.AutoAccept,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	Success(c, toOrderResponse(order))
}

// RevokeOrder 撤销订单
// DELETE /api/v1/orders/:id
func (h *OrderHandler) RevokeOrder(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	if err := h.orders.RevokeOrder(c, GetWallet(c), orderID); err != nil {
		handleServiceError(c, err)
		return
	}

	Success(c, gin.H{"order_id": orderID, "status": model.OrderStatusRevoked.String()})
}

// AcceptOrder 接单
// POST /api/v1/orders/:id/accept
func (h *OrderHandler) AcceptOrder(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	var req dto.AcceptOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, dto.ErrInvalidParams.WithMessage(err.Error()))
		return
	}

	guaranteeAmount, err := decimal.NewFromString(req.GuaranteeAmount)
	if err != nil {
		Error(c, dto.ErrInvalidAmount.WithMessage("invalid guarantee_amount"))
		return
	}

	order, err := h.matching.AcceptOrder(c, &service.AcceptOrderRequest{
		OrderID:         orderID,
		Executor:        GetWallet(c),
		GuaranteeToken:  req.GuaranteeToken,
		GuaranteeAmount: guaranteeAmount,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	Success(c, toOrderResponse(order))
}

// Claim 领取报酬
// POST /api/v1/claims
func (h *OrderHandler) Claim(c *gin.Context) {
	var req dto.ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, dto.ErrInvalidParams.WithMessage(err.Error()))
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		Error(c, dto.ErrInvalidAmount.WithMessage("invalid amount"))
		return
	}

	result, err := h.claims.Claim(c, GetWallet(c), req.Token, amount)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	Success(c, result)
}

// GetClaimable 查询可领取总额
// GET /api/v1/claims/:token
func (h *OrderHandler) GetClaimable(c *gin.Context) {
	token := c.Param("token")

	amount, err := h.claims.ClaimableAmount(c, GetWallet(c), token)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	Success(c, &dto.ClaimableResponse{Token: token, Amount: amount.String()})
}

// RetrieveGasCost 赎回 Gas 预算
// POST /api/v1/orders/:id/retrieve
func (h *OrderHandler) RetrieveGasCost(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	var req dto.RetrieveGasCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, dto.ErrInvalidParams.WithMessage(err.Error()))
		return
	}

	event, err := h.redemption.RetrieveGasCost(c, GetWallet(c), orderID, req.Units)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	Success(c, &dto.RedemptionResponse{
		OrderID: event.OrderID,
		Units:   event.Units,
		Token:   event.Token,
		Amount:  event.Amount.String(),
	})
}

// TransferReceipts 转移凭证
// POST /api/v1/receipts/transfer
func (h *OrderHandler) TransferReceipts(c *gin.Context) {
	var req dto.TransferReceiptsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, dto.ErrInvalidParams.WithMessage(err.Error()))
		return
	}

	if err := h.redemption.TransferReceipts(c, req.OrderID, GetWallet(c), req.To, req.Units); err != nil {
		handleServiceError(c, err)
		return
	}

	Success(c, gin.H{"order_id": req.OrderID, "to": req.To, "units": req.Units})
}

// GetReceiptBalance 查询凭证余额
// GET /api/v1/receipts/:id/:holder
func (h *OrderHandler) GetReceiptBalance(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}
	holder := c.Param("holder")

	units, err := h.redemption.ReceiptBalance(c, orderID, holder)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	Success(c, &dto.ReceiptBalanceResponse{OrderID: orderID, Holder: holder, Units: units})
}

// GetOrder 获取订单详情
// GET /api/v1/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(c, orderID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	Success(c, toOrderResponse(order))
}

// GetEscrow 获取订单托管账户
// GET /api/v1/orders/:id/escrow
func (h *OrderHandler) GetEscrow(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	account, err := h.orders.GetEscrow(c, orderID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	Success(c, &dto.EscrowResponse{
		OrderID:         account.OrderID,
		RewardToken:     account.RewardToken,
		RewardAmount:    account.RewardAmount.String(),
		RewardPayable:   account.RewardPayable.String(),
		RewardClaimed:   account.RewardClaimed.String(),
		CostToken:       account.CostToken,
		CostAmount:      account.CostAmount.String(),
		CostReleased:    account.CostReleased.String(),
		GuaranteeToken:  account.GuaranteeToken,
		GuaranteeAmount: account.GuaranteeAmount.String(),
		Executor:        account.Executor,
		FeeBpsSnapshot:  account.FeeBpsSnapshot,
	})
}

// ListOrders 查询订单列表
// GET /api/v1/orders?owner=&status=&limit=&offset=
func (h *OrderHandler) ListOrders(c *gin.Context) {
	status, ok := parseStatusQuery(c)
	if !ok {
		return
	}

	page := parsePagination(c)
	orders, err := h.query.ListOrders(c, c.Query("owner"), status, page)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	items := make([]*dto.OrderResponse, 0, len(orders))
	for _, order := range orders {
		items = append(items, toOrderResponse(order))
	}
	SuccessWithPagination(c, items, page.Total, page.EffectiveLimit(), page.EffectiveOffset())
}

// CountOrders 统计订单数
// GET /api/v1/orders/count?owner=&status=
func (h *OrderHandler) CountOrders(c *gin.Context) {
	status, ok := parseStatusQuery(c)
	if !ok {
		return
	}

	count, err := h.query.CountOrders(c, c.Query("owner"), status)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	Success(c, &dto.CountResponse{Count: count})
}

// ListAcceptableOrders 查询公开接单列表
// GET /api/v1/orders/acceptable?limit=&offset=
func (h *OrderHandler) ListAcceptableOrders(c *gin.Context) {
	page := parsePagination(c)
	orders, err := h.matching.ListAcceptableOrders(c, page)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	items := make([]*dto.OrderResponse, 0, len(orders))
	for _, order := range orders {
		items = append(items, toOrderResponse(order))
	}
	SuccessWithPagination(c, items, page.Total, page.EffectiveLimit(), page.EffectiveOffset())
}

// parseOrderID 解析路径中的订单号
func parseOrderID(c *gin.Context) (int64, bool) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || orderID <= 0 {
		Error(c, dto.ErrInvalidParams.WithMessage("invalid order id"))
		return 0, false
	}
	return orderID, true
}

// parseStatusQuery 解析状态查询参数, 缺省为通配
func parseStatusQuery(c *gin.Context) (model.OrderStatus, bool) {
	raw := c.Query("status")
	if raw == "" {
		return model.OrderStatusNone, true
	}
	status, ok := model.ParseOrderStatus(raw)
	if !ok {
		Error(c, dto.ErrInvalidParams.WithMessage("invalid status"))
		return model.OrderStatusNone, false
	}
	return status, true
}

// parsePagination 解析分页参数
func parsePagination(c *gin.Context) *repository.Pagination {
	page := &repository.Pagination{}
	if limit := c.Query("limit"); limit != "" {
		if v, err := strconv.Atoi(limit); err == nil && v > 0 {
			page.Limit = v
		}
	}
	if offset := c.Query("offset"); offset != "" {
		if v, err := strconv.Atoi(offset); err == nil && v >= 0 {
			page.Offset = v
		}
	}
	return page
}

// toOrderResponse 转换订单响应
func toOrderResponse(order *model.Order) *dto.OrderResponse {
	return &dto.OrderResponse{
		ID:                order.ID,
		Creator:           order.Creator,
		Executor:          order.Executor,
		GasUnits:          order.GasUnits,
		ExecutionStart:    order.ExecutionStart,
		ExecutionDeadline: order.ExecutionDeadline,
		MaxUnitPrice:      order.MaxUnitPrice.String(),
		RewardToken:       order.RewardToken,
		RewardAmount:      order.RewardAmount.String(),
		CostToken:         order.CostToken,
		CostPerUnit:       order.CostPerUnit.String(),
		CostTotal:         order.CostTotal.String(),
		GuaranteeToken:    order.GuaranteeToken,
		GuaranteePerUnit:  order.GuaranteePerUnit.String(),
		Category:          order.Category.String(),
		Status:            order.Status.String(),
		AutoAccept:        order.AutoAccept,
		CreatedAt:         order.CreatedAt,
		UpdatedAt:         order.UpdatedAt,
	}
}
