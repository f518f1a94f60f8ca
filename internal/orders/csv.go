package orders

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// CSVHeader is the fixed export header. Consumers of the report depend on
// this exact column order.
const CSVHeader = "OrderID,Product,Quantity,Price,Name,Email,TransactionId,UserId,Id,IsDelivered"

// ExportCSV flattens orders into the legacy report format: one row per order
// (not per line item), the buyer name doubling as the Product column and the
// order amount filling both Quantity and Price.
func ExportCSV(orders []Order) string {
	rows := lo.Map(orders, func(o Order, _ int) string {
		return fmt.Sprintf("%d,%s,%d,%d,%s,%s,%s,%d,%d,%t",
			o.ID, o.Name, o.OrderAmount, o.OrderAmount,
			o.Name, o.Email, o.TransactionID, o.UserID, o.ID, o.IsDelivered)
	})
	if len(rows) == 0 {
		return CSVHeader + "\n"
	}
	return CSVHeader + "\n" + strings.Join(rows, "\n") + "\n"
}
