package orders

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportCSV_Header(t *testing.T) {
	out := ExportCSV(nil)
	assert.Equal(t, "OrderID,Product,Quantity,Price,Name,Email,TransactionId,UserId,Id,IsDelivered\n", out)
}

func TestExportCSV_OneRowPerOrder(t *testing.T) {
	os := []Order{
		{
			ID: 1, UserID: 7, Name: "Sita", Email: "sita@example.com",
			OrderAmount: 250, TransactionID: "pidx-1", IsDelivered: false,
			Items: []LineItem{
				{Name: "Paracetamol", Quantity: 2, Price: 50},
				{Name: "Bandage", Quantity: 1, Price: 150},
			},
		},
		{
			ID: 2, UserID: 8, Name: "Ram", Email: "ram@example.com",
			OrderAmount: 99, TransactionID: "pidx-2", IsDelivered: true,
		},
	}

	out := ExportCSV(os)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t, CSVHeader, lines[0])
	// both Quantity and Price columns carry the order amount
	assert.Equal(t, "1,Sita,250,250,Sita,sita@example.com,pidx-1,7,1,false", lines[1])
	assert.Equal(t, "2,Ram,99,99,Ram,ram@example.com,pidx-2,8,2,true", lines[2])
}
