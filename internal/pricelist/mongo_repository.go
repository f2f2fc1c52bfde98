package pricelist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the MongoDB collection holding price lists.
const CollectionName = "supplier_price_lists"

// priceListDocument is the BSON shape of a PriceList. Prices are stored as
// strings so no precision is lost to floating point.
type priceListDocument struct {
	ID         string         `bson:"_id"`
	SupplierID string         `bson:"supplier_id"`
	Name       string         `bson:"name,omitempty"`
	Currency   string         `bson:"currency,omitempty"`
	Items      []itemDocument `bson:"items"`
	CreatedAt  time.Time      `bson:"created_at"`
	UpdatedAt  time.Time      `bson:"updated_at"`
}

type itemDocument struct {
	Key              string `bson:"key"`
	ProductVariantID string `bson:"product_variant_id,omitempty"`
	ProductID        string `bson:"product_id,omitempty"`
	SupplierSKU      string `bson:"supplier_sku,omitempty"`
	VariantSKU       string `bson:"variant_sku,omitempty"`
	CostPrice        string `bson:"cost_price"`
	Quantity         *int   `bson:"quantity,omitempty"`
	LeadTimeDays     *int   `bson:"lead_time_days,omitempty"`
	Notes            string `bson:"notes,omitempty"`
	Description      string `bson:"description,omitempty"`
}

func toDocument(list *PriceList) priceListDocument {
	doc := priceListDocument{
		ID:         list.ID.String(),
		SupplierID: list.SupplierID,
		Name:       list.Name,
		Currency:   list.Currency,
		Items:      make([]itemDocument, 0, len(list.Items)),
		CreatedAt:  list.CreatedAt.UTC(),
		UpdatedAt:  list.UpdatedAt.UTC(),
	}
	for _, it := range list.Items {
		doc.Items = append(doc.Items, itemDocument{
			Key:              it.Key,
			ProductVariantID: it.ProductVariantID,
			ProductID:        it.ProductID,
			SupplierSKU:      it.SupplierSKU,
			VariantSKU:       it.VariantSKU,
			CostPrice:        it.CostPrice.String(),
			Quantity:         it.Quantity,
			LeadTimeDays:     it.LeadTimeDays,
			Notes:            it.Notes,
			Description:      it.Description,
		})
	}
	return doc
}

func fromDocument(doc priceListDocument) (*PriceList, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid price list id %q: %w", doc.ID, err)
	}
	list := &PriceList{
		ID:         id,
		SupplierID: doc.SupplierID,
		Name:       doc.Name,
		Currency:   doc.Currency,
		Items:      make([]PriceListItem, 0, len(doc.Items)),
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	}
	for _, it := range doc.Items {
		price, err := decimal.NewFromString(it.CostPrice)
		if err != nil {
			return nil, fmt.Errorf("item %s: invalid cost_price %q: %w", it.Key, it.CostPrice, err)
		}
		list.Items = append(list.Items, PriceListItem{
			Key:              it.Key,
			ProductVariantID: it.ProductVariantID,
			ProductID:        it.ProductID,
			SupplierSKU:      it.SupplierSKU,
			VariantSKU:       it.VariantSKU,
			CostPrice:        price,
			Quantity:         it.Quantity,
			LeadTimeDays:     it.LeadTimeDays,
			Notes:            it.Notes,
			Description:      it.Description,
		})
	}
	return list, nil
}

// MongoRepository stores one document per supplier.
type MongoRepository struct {
	collection *mongo.Collection
}

// NewMongoRepository creates a repository on db.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		collection: db.Collection(CollectionName),
	}
}

// EnsureIndexes creates the unique supplier index.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "supplier_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create supplier index: %w", err)
	}
	return nil
}

// FindBySupplier implements Repository.
func (r *MongoRepository) FindBySupplier(ctx context.Context, supplierID string) (*PriceList, error) {
	var doc priceListDocument
	err := r.collection.FindOne(ctx, bson.M{"supplier_id": supplierID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load price list: %w", err)
	}
	return fromDocument(doc)
}

// Save implements Repository by upserting on supplier_id.
func (r *MongoRepository) Save(ctx context.Context, list *PriceList) error {
	doc := toDocument(list)
	_, err := r.collection.ReplaceOne(ctx,
		bson.M{"supplier_id": list.SupplierID},
		doc,
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save price list: %w", err)
	}
	return nil
}

// List implements Repository.
func (r *MongoRepository) List(ctx context.Context) ([]PriceList, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "supplier_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list price lists: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []priceListDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode price lists: %w", err)
	}
	lists := make([]PriceList, 0, len(docs))
	for _, doc := range docs {
		list, err := fromDocument(doc)
		if err != nil {
			return nil, err
		}
		lists = append(lists, *list)
	}
	return lists, nil
}

// MongoConnection owns a connected client.
type MongoConnection struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// ConnectMongo connects and pings within timeout.
func ConnectMongo(ctx context.Context, uri, dbName string, timeout time.Duration) (*MongoConnection, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(timeoutCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(timeoutCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return &MongoConnection{
		Client:   client,
		Database: client.Database(dbName),
	}, nil
}

// Close disconnects from MongoDB.
func (c *MongoConnection) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}
	return nil
}
