// Package model 定义订单托管服务的数据模型
package model

import (
	"github.com/shopspring/decimal"
)

// OrderStatus 订单状态
type OrderStatus int8

const (
	OrderStatusNone     OrderStatus = 0 // 未指定 (查询时作为通配符)
	OrderStatusCreated  OrderStatus = 1 // 已创建 (资金已托管，等待执行方接单)
	OrderStatusAccepted OrderStatus = 2 // 已接单 (执行方已锁定保证金，Gas 凭证已铸造)
	OrderStatusClaimed  OrderStatus = 3 // 已领取 (执行方已提取全部应得报酬)
	OrderStatusRevoked  OrderStatus = 4 // 已撤销 (创建者在接单前撤销，资金全额退回)
)

// String 返回状态的字符串表示
func (s OrderStatus) String() string {
	switch s {
	case OrderStatusNone:
		return "NONE"
	case OrderStatusCreated:
		return "CREATED"
	case OrderStatusAccepted:
		return "ACCEPTED"
	case OrderStatusClaimed:
		return "CLAIMED"
	case OrderStatusRevoked:
		return "REVOKED"
	default:
		return "UNKNOWN"
	}
}

// IsTerminal 判断是否为终态
// 终态订单保留在订单表中供审计和查询，永不删除
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusClaimed || s == OrderStatusRevoked
}

// ParseOrderStatus 解析状态字符串 (查询参数用)
func ParseOrderStatus(str string) (OrderStatus, bool) {
	switch str {
	case "", "none", "NONE":
		return OrderStatusNone, true
	case "created", "CREATED":
		return OrderStatusCreated, true
	case "accepted", "ACCEPTED":
		return OrderStatusAccepted, true
	case "claimed", "CLAIMED":
		return OrderStatusClaimed, true
	case "revoked", "REVOKED":
		return OrderStatusRevoked, true
	default:
		return OrderStatusNone, false
	}
}

// OrderCategory 订单类别 (费率表查找键)
type OrderCategory int8

const (
	CategoryStandard OrderCategory = 0 // 标准单
	CategoryPriority OrderCategory = 1 // 优先单
	CategoryBulk     OrderCategory = 2 // 批量单
)

// String 返回类别的字符串表示
func (c OrderCategory) String() string {
	switch c {
	case CategoryStandard:
		return "STANDARD"
	case CategoryPriority:
		return "PRIORITY"
	case CategoryBulk:
		return "BULK"
	default:
		return "UNKNOWN"
	}
}

// IsValid 检查类别是否在枚举范围内
func (c OrderCategory) IsValid() bool {
	return c == CategoryStandard || c == CategoryPriority || c == CategoryBulk
}

// Order 订单模型
// 对应数据库表 gas_orders，主键 ID 即订单号 (单调递增，永不复用)
type Order struct {
	ID                int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Creator           string          `gorm:"type:varchar(42);index;not null" json:"creator"`                // 创建者地址
	GasUnits          int64           `gorm:"type:bigint;not null" json:"gas_units"`                         // 请求的 Gas 单位数
	ExecutionStart    int64           `gorm:"type:bigint;not null" json:"execution_start"`                   // 窗口起点 (unix 秒)
	ExecutionDeadline int64           `gorm:"type:bigint;not null" json:"execution_deadline"`                // 窗口截止 (unix 秒)
	MaxUnitPrice      decimal.Decimal `gorm:"type:decimal(36,18);not null" json:"max_unit_price"`            // 单位 Gas 价格上限
	AutoAccept        bool            `gorm:"not null;default:false" json:"auto_accept"`                     // 自动撮合标记
	RewardToken       string          `gorm:"type:varchar(20);not null" json:"reward_token"`                 // 报酬代币
	RewardAmount      decimal.Decimal `gorm:"type:decimal(36,18);not null" json:"reward_amount"`             // 执行方报酬 (创建时托管)
	CostToken         string          `gorm:"type:varchar(20);not null" json:"cost_token"`                   // Gas 预算代币
	CostPerUnit       decimal.Decimal `gorm:"type:decimal(36,18);not null" json:"cost_per_unit"`             // 单位 Gas 成本
	CostTotal         decimal.Decimal `gorm:"type:decimal(36,18);not null" json:"cost_total"`                // Gas 预算总额 = GasUnits × CostPerUnit
	GuaranteeToken    string          `gorm:"type:varchar(20);not null" json:"guarantee_token"`              // 保证金代币
	GuaranteePerUnit  decimal.Decimal `gorm:"type:decimal(36,18);not null" json:"guarantee_per_unit"`        // 单位 Gas 保证金率
	Category          OrderCategory   `gorm:"type:smallint;not null;default:0" json:"category"`              // 费率类别
	Status            OrderStatus     `gorm:"type:smallint;index;not null;default:1" json:"status"`          // 订单状态
	Executor          string          `gorm:"type:varchar(42);index" json:"executor"`                        // 执行方地址 (接单时绑定)
	CreatedAt         int64           `gorm:"type:bigint;not null;autoCreateTime:milli" json:"created_at"`   // 创建时间 (毫秒)
	UpdatedAt         int64           `gorm:"type:bigint;not null;autoUpdateTime:milli" json:"updated_at"`   // 更新时间 (毫秒)
}

// TableName 返回表名
func (Order) TableName() string {
	return "gas_orders"
}

// CanTransitionTo 检查状态转换是否合法
// 转换单调: Created → {Accepted, Revoked}, Accepted → Claimed，永不逆转
func (o *Order) CanTransitionTo(newStatus OrderStatus) bool {
	transitions := map[OrderStatus][]OrderStatus{
		OrderStatusCreated:  {OrderStatusAccepted, OrderStatusRevoked},
		OrderStatusAccepted: {OrderStatusClaimed},
	}

	allowed, exists := transitions[o.Status]
	if !exists {
		return false // 终态不能转换
	}

	for _, s := range allowed {
		if s == newStatus {
			return true
		}
	}
	return false
}

// EscrowTotal 创建时托管的总金额 (报酬 + Gas 预算)
// 创建与撤销路径均以此为准，保证全额退回
func (o *Order) EscrowTotal() decimal.Decimal {
	return o.RewardAmount.Add(o.CostTotal)
}

// GuaranteeRequired 接单所需的保证金总额
// 必须精确等于 GasUnits × GuaranteePerUnit，不接受多付或少付
func (o *Order) GuaranteeRequired() decimal.Decimal {
	return o.GuaranteePerUnit.Mul(decimal.NewFromInt(o.GasUnits))
}

// CostForUnits 指定 Gas 单位数对应的预算金额
func (o *Order) CostForUnits(units int64) decimal.Decimal {
	return o.CostPerUnit.Mul(decimal.NewFromInt(units))
}

// InWindow 判断时间戳是否落在执行窗口内
func (o *Order) InWindow(now int64) bool {
	return now >= o.ExecutionStart && now <= o.ExecutionDeadline
}
