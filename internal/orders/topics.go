package orders

import "strconv"

const (
	TopicOrderPlaced = "order.placed"
)

// PartitionKey keeps all events for one order on the same partition.
func PartitionKey(orderID int64) []byte {
	return []byte(strconv.FormatInt(orderID, 10))
}
