package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_Transitions(t *testing.T) {
	tests := []struct {
		from OrderStatus
		to   OrderStatus
		ok   bool
	}{
		{OrderStatusCreated, OrderStatusAccepted, true},
		{OrderStatusCreated, OrderStatusRevoked, true},
		{OrderStatusCreated, OrderStatusClaimed, false},
		{OrderStatusAccepted, OrderStatusClaimed, true},
		{OrderStatusAccepted, OrderStatusRevoked, false},
		{OrderStatusAccepted, OrderStatusCreated, false},
		{OrderStatusClaimed, OrderStatusAccepted, false},
		{OrderStatusRevoked, OrderStatusCreated, false},
	}

	for _, tt := range tests {
		order := &Order{Status: tt.from}
		assert.Equal(t, tt.ok, order.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestOrderStatus_IsTerminal(t *testing.T) {
	assert.False(t, OrderStatusCreated.IsTerminal())
	assert.False(t, OrderStatusAccepted.IsTerminal())
	assert.True(t, OrderStatusClaimed.IsTerminal())
	assert.True(t, OrderStatusRevoked.IsTerminal())
}

func TestParseOrderStatus(t *testing.T) {
	status, ok := ParseOrderStatus("accepted")
	assert.True(t, ok)
	assert.Equal(t, OrderStatusAccepted, status)

	status, ok = ParseOrderStatus("ACCEPTED")
	assert.True(t, ok)
	assert.Equal(t, OrderStatusAccepted, status)

	// 空串是通配
	status, ok = ParseOrderStatus("")
	assert.True(t, ok)
	assert.Equal(t, OrderStatusNone, status)

	_, ok = ParseOrderStatus("garbage")
	assert.False(t, ok)
}

func TestOrder_EscrowTotal(t *testing.T) {
	order := &Order{
		RewardAmount: decimal.NewFromInt(500),
		CostTotal:    decimal.NewFromInt(200),
	}
	assert.True(t, order.EscrowTotal().Equal(decimal.NewFromInt(700)))
}

func TestOrder_GuaranteeRequired(t *testing.T) {
	order := &Order{
		GasUnits:         100,
		GuaranteePerUnit: decimal.RequireFromString("3.5"),
	}
	assert.True(t, order.GuaranteeRequired().Equal(decimal.NewFromInt(350)))
}

func TestOrder_CostForUnits(t *testing.T) {
	order := &Order{CostPerUnit: decimal.RequireFromString("0.25")}
	assert.True(t, order.CostForUnits(40).Equal(decimal.NewFromInt(10)))
}

func TestOrder_InWindow(t *testing.T) {
	order := &Order{ExecutionStart: 100, ExecutionDeadline: 200}

	assert.False(t, order.InWindow(99))
	assert.True(t, order.InWindow(100))  // 起点含
	assert.True(t, order.InWindow(150))
	assert.True(t, order.InWindow(200))  // 终点含
	assert.False(t, order.InWindow(201))
}

func TestEscrowAccount_Outstanding(t *testing.T) {
	account := &EscrowAccount{
		RewardPayable: decimal.NewFromInt(450),
		RewardClaimed: decimal.NewFromInt(100),
		CostAmount:    decimal.NewFromInt(200),
		CostReleased:  decimal.NewFromInt(80),
	}
	assert.True(t, account.RewardOutstanding().Equal(decimal.NewFromInt(350)))
	assert.True(t, account.CostRemaining().Equal(decimal.NewFromInt(120)))
}

func TestOrderCategory_IsValid(t *testing.T) {
	assert.True(t, CategoryStandard.IsValid())
	assert.True(t, CategoryPriority.IsValid())
	assert.True(t, CategoryBulk.IsValid())
	assert.False(t, OrderCategory(3).IsValid())
	assert.False(t, OrderCategory(-1).IsValid())
}
