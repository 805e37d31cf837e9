package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/markfender/transorder/internal/dto"
	"github.com/markfender/transorder/internal/model"
	"github.com/markfender/transorder/internal/service"
)

// FeeHandler 费率处理器
type FeeHandler struct {
	fees service.FeeService
}

// NewFeeHandler 创建费率处理器
func NewFeeHandler(fees service.FeeService) *FeeHandler {
	return &FeeHandler{fees: fees}
}

// SetFeeRate 设置类别费率
// PUT /api/v1/fees/:category
func (h *FeeHandler) SetFeeRate(c *gin.Context) {
	category, ok := parseCategory(c)
	if !ok {
		return
	}

	var req dto.SetFeeRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, dto.ErrInvalidParams.WithMessage(err.Error()))
		return
	}

	if err := h.fees.SetFeeRate(c, GetWallet(c), category, *req.Bps); err != nil {
		handleServiceError(c, err)
		return
	}

	Success(c, &dto.FeeRateResponse{Category: category.String(), Bps: *req.Bps})
}

// GetFeeRate 查询类别费率
// GET /api/v1/fees/:category
func (h *FeeHandler) GetFeeRate(c *gin.Context) {
	category, ok := parseCategory(c)
	if !ok {
		return
	}

	bps, err := h.fees.GetFeeRate(c, category)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	Success(c, &dto.FeeRateResponse{Category: category.String(), Bps: bps})
}

// ListFeeRates 查询所有已设置的费率
// GET /api/v1/fees
func (h *FeeHandler) ListFeeRates(c *gin.Context) {
	rates, err := h.fees.ListFeeRates(c)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	resp := make([]*dto.FeeRateResponse, 0, len(rates))
	for _, rate := range rates {
		resp = append(resp, &dto.FeeRateResponse{Category: rate.Category.String(), Bps: rate.Bps})
	}
	Success(c, resp)
}

// parseCategory 解析路径中的费率类别
func parseCategory(c *gin.Context) (model.OrderCategory, bool) {
	raw, err := strconv.Atoi(c.Param("category"))
	if err != nil {
		Error(c, dto.ErrInvalidParams.WithMessage("invalid category"))
		return 0, false
	}
	category := model.OrderCategory(raw)
	if !category.IsValid() {
		Error(c, dto.ErrInvalidCategory)
		return 0, false
	}
	return category, true
}
