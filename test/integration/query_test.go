package integration

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markfender/transorder/internal/model"
	"github.com/markfender/transorder/internal/repository"
)

// seedOrders 构造查询测试夹具: 三个创建者共 6 笔订单
// ownerA 3 笔 (其中 1 笔撤销), ownerB 2 笔, ownerC 1 笔 (自动撮合)
func seedOrders(t *testing.T, suite *TestSuite) (ownerA, ownerB, ownerC string, ids []int64) {
	t.Helper()

	ownerA = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	ownerB = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	ownerC = "0xcccccccccccccccccccccccccccccccccccccccc"

	for owner, n := range map[string]int{ownerA: 3, ownerB: 2, ownerC: 1} {
		suite.Fund(owner, "USDT", decimal.NewFromInt(int64(n)*500))
		suite.Fund(owner, "ETH", decimal.NewFromInt(int64(n)*200))
		for i := 0; i < n; i++ {
			order, err := suite.CreateOrder(owner, owner == ownerC)
			require.NoError(t, err)
			ids = append(ids, order.ID)
		}
	}

	return ownerA, ownerB, ownerC, ids
}

// TestQuery_CountOrders 统计测试: 通配与按创建者/状态过滤
func TestQuery_CountOrders(t *testing.T) {
	suite := NewTestSuite(t)
	defer suite.Cleanup()

	ownerA, _, _, _ := seedOrders(t, suite)

	// 通配: 全部 6 笔
	count, err := suite.querySvc.CountOrders(suite.ctx, "", model.OrderStatusNone)
	require.NoError(t, err)
	assert.Equal(t, int64(6), count)

	// 按创建者过滤
	count, err = suite.querySvc.CountOrders(suite.ctx, ownerA, model.OrderStatusNone)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	// ownerA 撤销一笔后按状态过滤
	orders, err := suite.querySvc.ListOrders(suite.ctx, ownerA, model.OrderStatusNone, nil)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	require.NoError(t, suite.orderSvc.RevokeOrder(suite.ctx, ownerA, orders[0].ID))

	count, err = suite.querySvc.CountOrders(suite.ctx, ownerA, model.OrderStatusCreated)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = suite.querySvc.CountOrders(suite.ctx, "", model.OrderStatusRevoked)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// 无订单的地址
	count, err = suite.querySvc.CountOrders(suite.ctx, "0xdddddddddddddddddddddddddddddddddddddddd", model.OrderStatusNone)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

// TestQuery_ListOrders 分页列表测试: 升序、截断、越界
func TestQuery_ListOrders(t *testing.T) {
	suite := NewTestSuite(t)
	defer suite.Cleanup()

	_, _, _, _ = seedOrders(t, suite)

	// 按订单号升序返回
	page := &repository.Pagination{Limit: 10, Offset: 0}
	orders, err := suite.querySvc.ListOrders(suite.ctx, "", model.OrderStatusNone, page)
	require.NoError(t, err)
	require.Len(t, orders, 6)
	assert.Equal(t, int64(6), page.Total)
	for i := 1; i < len(orders); i++ {
		assert.Greater(t, orders[i].ID, orders[i-1].ID)
	}

	// limit 截断
	page = &repository.Pagination{Limit: 2, Offset: 0}
	orders, err = suite.querySvc.ListOrders(suite.ctx, "", model.OrderStatusNone, page)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, int64(6), page.Total)

	// offset 翻页
	page = &repository.Pagination{Limit: 2, Offset: 4}
	orders, err = suite.querySvc.ListOrders(suite.ctx, "", model.OrderStatusNone, page)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	// offset 超出末尾返回空列表
	page = &repository.Pagination{Limit: 10, Offset: 100}
	orders, err = suite.querySvc.ListOrders(suite.ctx, "", model.OrderStatusNone, page)
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Equal(t, int64(6), page.Total)

	// 超大 limit 按上限截断 (不报错)
	page = &repository.Pagination{Limit: 1000, Offset: 0}
	orders, err = suite.querySvc.ListOrders(suite.ctx, "", model.OrderStatusNone, page)
	require.NoError(t, err)
	assert.Len(t, orders, 6)
}

// TestQuery_ListAcceptableOrders 公开接单列表只含窗口内的自动撮合订单
func TestQuery_ListAcceptableOrders(t *testing.T) {
	suite := NewTestSuite(t)
	defer suite.Cleanup()

	_, _, ownerC, _ := seedOrders(t, suite)

	// 窗口尚未开启时列表为空
	orders, err := suite.matchingSvc.ListAcceptableOrders(suite.ctx, &repository.Pagination{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, orders)

	// 窗口开启后只有 ownerC 的订单标记了自动撮合
	suite.EnterWindow()
	orders, err = suite.matchingSvc.ListAcceptableOrders(suite.ctx, &repository.Pagination{Limit: 10})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, ownerC, orders[0].Creator)

	// 接单后从列表中消失
	executor := "0x2222222222222222222222222222222222222222"
	suite.Fund(executor, "USDT", decimal.NewFromInt(300))
	_, err = suite.AcceptOrder(executor, orders[0])
	require.NoError(t, err)

	orders, err = suite.matchingSvc.ListAcceptableOrders(suite.ctx, &repository.Pagination{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, orders)
}
