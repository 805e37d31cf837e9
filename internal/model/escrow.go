package model

import (
	"github.com/shopspring/decimal"
)

// EscrowAccount 订单托管账户
// 每个订单一行，记录托管中的报酬/Gas 预算/保证金余量
// 不变式: Created/Accepted 订单的托管余量恒等于资金账本中为该订单持有的金额
type EscrowAccount struct {
	ID               int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID          int64           `gorm:"uniqueIndex;not null" json:"order_id"`
	RewardToken      string          `gorm:"type:varchar(20);not null" json:"reward_token"`
	RewardAmount     decimal.Decimal `gorm:"type:decimal(36,18);not null;default:0" json:"reward_amount"`    // 托管的报酬总额
	RewardPayable    decimal.Decimal `gorm:"type:decimal(36,18);not null;default:0" json:"reward_payable"`   // 扣费后执行方应得 (接单时快照)
	RewardClaimed    decimal.Decimal `gorm:"type:decimal(36,18);not null;default:0" json:"reward_claimed"`   // 已领取的报酬
	CostToken        string          `gorm:"type:varchar(20);not null" json:"cost_token"`
	CostAmount       decimal.Decimal `gorm:"type:decimal(36,18);not null;default:0" json:"cost_amount"`      // 托管的 Gas 预算总额
	CostReleased     decimal.Decimal `gorm:"type:decimal(36,18);not null;default:0" json:"cost_released"`    // 已赎回释放的预算
	GuaranteeToken   string          `gorm:"type:varchar(20)" json:"guarantee_token"`
	GuaranteeAmount  decimal.Decimal `gorm:"type:decimal(36,18);not null;default:0" json:"guarantee_amount"` // 锁定的保证金
	Executor         string          `gorm:"type:varchar(42);index" json:"executor"`                         // 保证金归属的执行方
	FeeBpsSnapshot   int32           `gorm:"type:int;not null;default:0" json:"fee_bps_snapshot"`            // 接单时的费率快照 (基点)
	Version          int64           `gorm:"type:bigint;not null;default:1" json:"version"`                  // 乐观锁版本号
	CreatedAt        int64           `gorm:"type:bigint;not null;autoCreateTime:milli" json:"created_at"`
	UpdatedAt        int64           `gorm:"type:bigint;not null;autoUpdateTime:milli" json:"updated_at"`
}

// TableName 返回表名
func (EscrowAccount) TableName() string {
	return "escrow_accounts"
}

// RewardOutstanding 执行方尚可领取的报酬
func (a *EscrowAccount) RewardOutstanding() decimal.Decimal {
	return a.RewardPayable.Sub(a.RewardClaimed)
}

// CostRemaining 尚未释放的 Gas 预算
func (a *EscrowAccount) CostRemaining() decimal.Decimal {
	return a.CostAmount.Sub(a.CostReleased)
}

// EscrowLogType 托管流水类型
type EscrowLogType int8

const (
	EscrowLogTypeDeposit   EscrowLogType = 1 // 创建托管 (报酬 + 预算入账)
	EscrowLogTypeRefund    EscrowLogType = 2 // 撤销退款
	EscrowLogTypeGuarantee EscrowLogType = 3 // 保证金锁定
	EscrowLogTypeClaim     EscrowLogType = 4 // 报酬领取
	EscrowLogTypeRedeem    EscrowLogType = 5 // 预算赎回
)

func (t EscrowLogType) String() string {
	switch t {
	case EscrowLogTypeDeposit:
		return "DEPOSIT"
	case EscrowLogTypeRefund:
		return "REFUND"
	case EscrowLogTypeGuarantee:
		return "GUARANTEE"
	case EscrowLogTypeClaim:
		return "CLAIM"
	case EscrowLogTypeRedeem:
		return "REDEEM"
	default:
		return "UNKNOWN"
	}
}

// EscrowLog 托管流水
// 对应数据库表 escrow_logs，审计用追加记录
type EscrowLog struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	LogID     string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"log_id"` // 流水号 (Snowflake)
	OrderID   int64           `gorm:"index;not null" json:"order_id"`
	Account   string          `gorm:"type:varchar(42);index;not null" json:"account"` // 资金对手方地址
	Token     string          `gorm:"type:varchar(20);not null" json:"token"`
	Type      EscrowLogType   `gorm:"type:smallint;index;not null" json:"type"`
	Amount    decimal.Decimal `gorm:"type:decimal(36,18);not null" json:"amount"` // 正数入托管，负数出托管
	Remark    string          `gorm:"type:varchar(255)" json:"remark"`
	CreatedAt int64           `gorm:"type:bigint;not null;autoCreateTime:milli;index" json:"created_at"`
}

// TableName 返回表名
func (EscrowLog) TableName() string {
	return "escrow_logs"
}
