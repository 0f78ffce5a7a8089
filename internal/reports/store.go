package reports

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/util"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const ordersCollection = "orders"

// Store holds order report documents in MongoDB
type Store struct {
	client *mongo.Client
	orders *mongo.Collection
}

// NewStore connects to MongoDB and verifies the connection
func NewStore(ctx context.Context, uri, database string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	util.GetLogger().Info("Connected to MongoDB", zap.String("database", database))
	return &Store{
		client: client,
		orders: client.Database(database).Collection(ordersCollection),
	}, nil
}

// Close disconnects the client
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ping checks the connection for readiness probes
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// EnsureIndexes creates the indexes used by report queries
func (s *Store) EnsureIndexes(ctx context.Context) error {
	keys := []string{"date", "status", "customer.id", "lines.product_id", "lines.supplier_id"}
	indexes := make([]mongo.IndexModel, 0, len(keys))
	for _, k := range keys {
		indexes = append(indexes, mongo.IndexModel{Keys: bson.D{{Key: k, Value: 1}}})
	}
	if _, err := s.orders.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create report indexes: %w", err)
	}
	return nil
}

// UpsertOrder writes or replaces the document for an order
func (s *Store) UpsertOrder(ctx context.Context, doc *OrderDoc) error {
	_, err := s.orders.UpdateOne(ctx,
		bson.M{"_id": doc.ID},
		bson.M{"$set": doc},
		options.Update().SetUpsert(true))
	return err
}

// DeleteOrder removes an order's document. Missing documents are not an error.
func (s *Store) DeleteOrder(ctx context.Context, orderID int64) error {
	_, err := s.orders.DeleteOne(ctx, bson.M{"_id": orderID})
	return err
}

// SupplierSales aggregates report lines per supplier
type SupplierSales struct {
	SupplierID   *int64          `json:"supplier_id"`
	SupplierName *string         `json:"supplier_name"`
	Quantity     int             `json:"quantity"`
	Revenue      decimal.Decimal `json:"revenue"`
}

type supplierSalesRow struct {
	SupplierID   *int64               `bson:"_id"`
	SupplierName *string              `bson:"supplier_name"`
	Quantity     int                  `bson:"quantity"`
	Revenue      primitive.Decimal128 `bson:"revenue"`
}

// TopSuppliers ranks suppliers by revenue over orders with the given
// status. An empty status covers every reported order.
func (s *Store) TopSuppliers(ctx context.Context, status string, limit int) ([]SupplierSales, error) {
	pipeline := mongo.Pipeline{}
	if status != "" {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{"status": status}}})
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$unwind", Value: "$lines"}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":           "$lines.supplier_id",
			"supplier_name": bson.M{"$first": "$lines.supplier_name"},
			"quantity":      bson.M{"$sum": "$lines.quantity"},
			"revenue":       bson.M{"$sum": "$lines.subtotal"},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "revenue", Value: -1}, {Key: "_id", Value: 1}}}},
	)
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}

	cursor, err := s.orders.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate supplier sales: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []supplierSalesRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode supplier sales: %w", err)
	}

	out := make([]SupplierSales, 0, len(rows))
	for _, r := range rows {
		out = append(out, SupplierSales{
			SupplierID:   r.SupplierID,
			SupplierName: r.SupplierName,
			Quantity:     r.Quantity,
			Revenue:      fromDecimal128(r.Revenue),
		})
	}
	return out, nil
}
