package dto

// CreateOrderRequest 创建订单请求
type CreateOrderRequest struct {
	GasUnits          int64  `json:"gas_units" binding:"required"`
	ExecutionStart    int64  `json:"execution_start"`
	ExecutionDeadline int64  `json:"execution_deadline" binding:"required"`
	MaxUnitPrice      string `json:"max_unit_price"`
	RewardToken       string `json:"reward_token" binding:"required"`
	RewardAmount      string `json:"reward_amount" binding:"required"`
	CostToken         string `json:"cost_token" binding:"required"`
	CostPerUnit       string `json:"cost_per_unit" binding:"required"`
	GuaranteeToken    string `json:"guarantee_token" binding:"required"`
	GuaranteePerUnit  string `json:"guarantee_per_unit" binding:"required"`
	Category          int8   `json:"category"`
	AutoAccept        bool   `json:"auto_accept"`
}

// AcceptOrderRequest 接单请求
type AcceptOrderRequest struct {
	GuaranteeToken  string `json:"guarantee_token" binding:"required"`
	GuaranteeAmount string `json:"guarantee_amount" binding:"required"`
}

// ClaimRequest 领取报酬请求
type ClaimRequest struct {
	Token  string `json:"token" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

// RetrieveGasCostRequest 赎回 Gas 预算请求
type RetrieveGasCostRequest struct {
	Units int64 `json:"units" binding:"required"`
}

// TransferReceiptsRequest 转移凭证请求
type TransferReceiptsRequest struct {
	OrderID int64  `json:"order_id" binding:"required"`
	To      string `json:"to" binding:"required"`
	Units   int64  `json:"units" binding:"required"`
}

// SetFeeRateRequest 设置费率请求
type SetFeeRateRequest struct {
	Bps *int32 `json:"bps" binding:"required"`
}

// OrderResponse 订单响应
type OrderResponse struct {
	ID                int64  `json:"id"`
	Creator           string `json:"creator"`
	Executor          string `json:"executor,omitempty"`
	GasUnits          int64  `json:"gas_units"`
	ExecutionStart    int64  `json:"execution_start"`
	ExecutionDeadline int64  `json:"execution_deadline"`
	MaxUnitPrice      string `json:"max_unit_price"`
	RewardToken       string `json:"reward_token"`
	RewardAmount      string `json:"reward_amount"`
	CostToken         string `json:"cost_token"`
	CostPerUnit       string `json:"cost_per_unit"`
	CostTotal         string `json:"cost_total"`
	GuaranteeToken    string `json:"guarantee_token"`
	GuaranteePerUnit  string `json:"guarantee_per_unit"`
	Category          string `json:"category"`
	Status            string `json:"status"`
	AutoAccept        bool   `json:"auto_accept"`
	CreatedAt         int64  `json:"created_at"`
	UpdatedAt         int64  `json:"updated_at"`
}

// EscrowResponse 托管账户响应
type EscrowResponse struct {
	OrderID         int64  `json:"order_id"`
	RewardToken     string `json:"reward_token"`
	RewardAmount    string `json:"reward_amount"`
	RewardPayable   string `json:"reward_payable"`
	RewardClaimed   string `json:"reward_claimed"`
	CostToken       string `json:"cost_token"`
	CostAmount      string `json:"cost_amount"`
	CostReleased    string `json:"cost_released"`
	GuaranteeToken  string `json:"guarantee_token"`
	GuaranteeAmount string `json:"guarantee_amount"`
	Executor        string `json:"executor,omitempty"`
	FeeBpsSnapshot  int32  `json:"fee_bps_snapshot"`
}

// ReceiptBalanceResponse 凭证余额响应
type ReceiptBalanceResponse struct {
	OrderID int64  `json:"order_id"`
	Holder  string `json:"holder"`
	Units   int64  `json:"units"`
}

// ClaimableResponse 可领取总额响应
type ClaimableResponse struct {
	Token  string `json:"token"`
	Amount string `json:"amount"`
}

// FeeRateResponse 费率响应
type FeeRateResponse struct {
	Category string `json:"category"`
	Bps      int32  `json:"bps"`
}

// CountResponse 订单统计响应
type CountResponse struct {
	Count int64 `json:"count"`
}

// RedemptionResponse 赎回结果响应
type RedemptionResponse struct {
	OrderID int64  `json:"order_id"`
	Units   int64  `json:"units"`
	Token   string `json:"token"`
	Amount  string `json:"amount"`
}
