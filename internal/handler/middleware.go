package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/markfender/transorder/internal/dto"
	"github.com/markfender/transorder/internal/metrics"
	"github.com/markfender/transorder/pkg/logger"
)

// WalletAuth 钱包身份中间件
// 从 X-Wallet 请求头提取调用方地址并注入 context
// 网关层已完成签名校验, 这里只做提取
func WalletAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		wallet := c.GetHeader("X-Wallet")
		if wallet == "" {
			Error(c, dto.ErrMissingWallet)
			c.Abort()
			return
		}
		c.Set("wallet", wallet)
		c.Next()
	}
}

// RequestLog 请求日志中间件
func RequestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", elapsed),
		)
	}
}

// Latency 操作延迟指标中间件
// operation 取值: create/revoke/accept/claim/retrieve 等
func Latency(operation string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		metrics.OperationLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}
