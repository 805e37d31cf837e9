package model

// MaxFeeBps 费率上限，10000 基点 = 100%
const MaxFeeBps = 10000

// FeeRate 类别费率
// 对应数据库表 fee_rates，未设置的类别默认 0 基点
type FeeRate struct {
	ID        int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	Category  OrderCategory `gorm:"type:smallint;uniqueIndex;not null" json:"category"`
	Bps       int32         `gorm:"type:int;not null;default:0" json:"bps"` // 费率 (基点, 0-10000)
	UpdatedAt int64         `gorm:"type:bigint;not null;autoUpdateTime:milli" json:"updated_at"`
	UpdatedBy string        `gorm:"type:varchar(42)" json:"updated_by"`
}

// TableName 返回表名
func (FeeRate) TableName() string {
	return "fee_rates"
}
