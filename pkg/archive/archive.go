// Package archive stores daily report snapshots in MongoDB.
package archive

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"p9e.in/gemstock/pkg/reporting"
)

const collection = "report_snapshots"

// Snapshot is the stored form of a period report.
type Snapshot struct {
	Day             string             `bson:"day" json:"day"`
	TakenAt         time.Time          `bson:"taken_at" json:"takenAt"`
	TotalSales      float64            `bson:"total_sales" json:"totalSales"`
	TotalPurchases  float64            `bson:"total_purchases" json:"totalPurchases"`
	TotalExpenses   float64            `bson:"total_expenses" json:"totalExpenses"`
	GrossProfit     float64            `bson:"gross_profit" json:"grossProfit"`
	NetProfit       float64            `bson:"net_profit" json:"netProfit"`
	ProfitMargin    float64            `bson:"profit_margin" json:"profitMargin"`
	SalesCount      int                `bson:"sales_count" json:"salesCount"`
	PurchaseCount   int                `bson:"purchase_count" json:"purchaseCount"`
	ExpenseCount    int                `bson:"expense_count" json:"expenseCount"`
	SalesByCategory map[string]float64 `bson:"sales_by_category" json:"salesByCategory"`
}

// FromSummary flattens a report for storage.
func FromSummary(day string, s reporting.Summary, at time.Time) Snapshot {
	byCat := make(map[string]float64, len(s.SalesByCategory))
	for _, b := range s.SalesByCategory {
		byCat[b.Key] = b.Total.InexactFloat64()
	}
	return Snapshot{
		Day:             day,
		TakenAt:         at,
		TotalSales:      s.TotalSales.InexactFloat64(),
		TotalPurchases:  s.TotalPurchases.InexactFloat64(),
		TotalExpenses:   s.TotalExpenses.InexactFloat64(),
		GrossProfit:     s.GrossProfit.InexactFloat64(),
		NetProfit:       s.NetProfit.InexactFloat64(),
		ProfitMargin:    s.ProfitMargin.InexactFloat64(),
		SalesCount:      s.SalesCount,
		PurchaseCount:   s.PurchaseCount,
		ExpenseCount:    s.ExpenseCount,
		SalesByCategory: byCat,
	}
}

// Repository persists snapshots.
type Repository interface {
	SaveSnapshot(ctx context.Context, snap Snapshot) error
	RecentSnapshots(ctx context.Context, limit int64) ([]Snapshot, error)
}

// MongoRepository implements Repository on a MongoDB collection. A
// snapshot for a day replaces the earlier one.
type MongoRepository struct {
	client *mongo.Client
	dbName string
}

func NewMongoRepository(ctx context.Context, uri, dbName string) (*MongoRepository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return &MongoRepository{client: client, dbName: dbName}, nil
}

func (r *MongoRepository) coll() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(collection)
}

func (r *MongoRepository) SaveSnapshot(ctx context.Context, snap Snapshot) error {
	_, err := r.coll().ReplaceOne(ctx,
		bson.M{"day": snap.Day},
		snap,
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", snap.Day, err)
	}
	return nil
}

func (r *MongoRepository) RecentSnapshots(ctx context.Context, limit int64) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 30
	}
	cur, err := r.coll().Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "day", Value: -1}}).SetLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	out := []Snapshot{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode snapshots: %w", err)
	}
	return out, nil
}

func (r *MongoRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
