package reports

import (
	"fmt"

	"storefront/internal/models"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CustomerDoc identifies who placed the order
type CustomerDoc struct {
	ID    int64  `bson:"id"`
	Name  string `bson:"name"`
	Email string `bson:"email"`
}

// LineDoc is one order line priced at projection time
type LineDoc struct {
	ProductID    int64                `bson:"product_id"`
	Name         string               `bson:"name"`
	Price        primitive.Decimal128 `bson:"price"`
	Quantity     int                  `bson:"quantity"`
	Subtotal     primitive.Decimal128 `bson:"subtotal"`
	SupplierID   *int64               `bson:"supplier_id"`
	SupplierName *string              `bson:"supplier_name"`
}

// OrderDoc is the reporting document for a placed order. The date is
// kept as a YYYY-MM-DD string so it can be grouped on directly.
type OrderDoc struct {
	ID       int64                `bson:"_id"`
	OrderID  int64                `bson:"order_id"`
	Date     string               `bson:"date"`
	Status   string               `bson:"status"`
	Customer CustomerDoc          `bson:"customer"`
	Lines    []LineDoc            `bson:"lines"`
	Total    primitive.Decimal128 `bson:"total"`
}

// BuildOrderDoc denormalises an order and its lines
func BuildOrderDoc(order *models.Order, lines []models.OrderLine) (*OrderDoc, error) {
	doc := &OrderDoc{
		ID:      order.ID,
		OrderID: order.ID,
		Date:    order.OrderDate.Format(models.DateLayout),
		Status:  order.Status,
		Customer: CustomerDoc{
			ID:    order.UserID,
			Name:  order.UserName,
			Email: order.UserEmail,
		},
		Lines: make([]LineDoc, 0, len(lines)),
	}

	for _, l := range lines {
		price, err := toDecimal128(l.Price)
		if err != nil {
			return nil, err
		}
		subtotal, err := toDecimal128(l.Subtotal())
		if err != nil {
			return nil, err
		}
		doc.Lines = append(doc.Lines, LineDoc{
			ProductID:    l.ProductID,
			Name:         l.ProductName,
			Price:        price,
			Quantity:     l.Quantity,
			Subtotal:     subtotal,
			SupplierID:   l.SupplierID,
			SupplierName: l.SupplierName,
		})
	}

	total, err := toDecimal128(models.OrderTotal(lines))
	if err != nil {
		return nil, err
	}
	doc.Total = total
	return doc, nil
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("failed to encode %s: %w", d, err)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) decimal.Decimal {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}
