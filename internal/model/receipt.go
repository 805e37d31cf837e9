package model

// ReceiptBalance Gas 凭证余额
// 按 (订单, 持有人) 记账: 接单时按 GasUnits 1:1 铸造给创建者，
// 可自由转让，赎回时销毁。凭证本身即可转让的赎回权。
// 对应数据库表 receipt_balances
type ReceiptBalance struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64  `gorm:"uniqueIndex:uk_order_holder;not null" json:"order_id"`
	Holder    string `gorm:"type:varchar(42);uniqueIndex:uk_order_holder;index;not null" json:"holder"`
	Units     int64  `gorm:"type:bigint;not null;default:0" json:"units"`
	CreatedAt int64  `gorm:"type:bigint;not null;autoCreateTime:milli" json:"created_at"`
	UpdatedAt int64  `gorm:"type:bigint;not null;autoUpdateTime:milli" json:"updated_at"`
}

// TableName 返回表名
func (ReceiptBalance) TableName() string {
	return "receipt_balances"
}
