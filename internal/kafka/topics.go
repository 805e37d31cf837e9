package kafka

// Kafka topic 名称
const (
	// TopicOrderUpdates 订单状态更新 (engine → 下游消费方)
	TopicOrderUpdates = "gas-order-updates"

	// TopicRedemptions 凭证赎回事件 (engine → 下游消费方)
	TopicRedemptions = "gas-order-redemptions"

	// TopicDeadLetter 处理失败的消息
	TopicDeadLetter = "dead-letter"
)

// Message Kafka 消息结构
type Message struct {
	Topic     string
	Key       []byte
	Value     []byte
	Partition int32
	Offset    int64
	Timestamp int64
}
