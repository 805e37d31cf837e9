package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig 路由依赖
type RouterConfig struct {
	Orders *OrderHandler
	Fees   *FeeHandler
}

// NewRouter 创建路由
func NewRouter(cfg *RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLog())

	// 运维端点
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")

	// 公开查询
	v1.GET("/orders", cfg.Orders.ListOrders)
	v1.GET("/orders/count", cfg.Orders.CountOrders)
	v1.GET("/orders/acceptable", cfg.Orders.ListAcceptableOrders)
	v1.GET("/orders/:id", cfg.Orders.GetOrder)
	v1.GET("/orders/:id/escrow", cfg.Orders.GetEscrow)
	v1.GET("/receipts/:id/:holder", cfg.Orders.GetReceiptBalance)
	v1.GET("/fees", cfg.Fees.ListFeeRates)
	v1.GET("/fees/:category", cfg.Fees.GetFeeRate)

	// 需要钱包身份的操作
	auth := v1.Group("", WalletAuth())
	auth.POST("/orders", Latency("create"), cfg.Orders.CreateOrder)
	auth.DELETE("/orders/:id", Latency("revoke"), cfg.Orders.RevokeOrder)
	auth.POST("/orders/:id/accept", Latency("accept"), cfg.Orders.AcceptOrder)
	auth.POST("/orders/:id/retrieve", Latency("retrieve"), cfg.Orders.RetrieveGasCost)
	auth.POST("/claims", Latency("claim"), cfg.Orders.Claim)
	auth.GET("/claims/:token", cfg.Orders.GetClaimable)
	auth.POST("/receipts/transfer", cfg.Orders.TransferReceipts)
	auth.PUT("/fees/:category", cfg.Fees.SetFeeRate)

	return r
}
