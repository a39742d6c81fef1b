package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shopfront/store-api/internal/core/domain"
	"github.com/shopfront/store-api/internal/core/ports"
)

const (
	cartsCollection = "carts"
	maxCASAttempts  = 5
)

// CartRepository keeps one document per user. Writes are guarded by the
// document version so concurrent mutations never overwrite each other.
type CartRepository struct {
	coll *mongo.Collection
}

func NewCartRepository(db *mongo.Database) *CartRepository {
	return &CartRepository{coll: db.Collection(cartsCollection)}
}

type cartDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"user_id"`
	Items     []lineItemDocument `bson:"items"`
	Version   int64              `bson:"version"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

type lineItemDocument struct {
	ProductID string               `bson:"product_id"`
	Quantity  int                  `bson:"quantity"`
	UnitPrice primitive.Decimal128 `bson:"unit_price"`
}

func (r *CartRepository) FindByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.find(ctx, userID)
}

func (r *CartRepository) Mutate(ctx context.Context, userID string, upsert bool, fn ports.CartMutation) (*domain.Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		current, err := r.find(ctx, userID)
		if errors.Is(err, domain.ErrCartNotFound) {
			if !upsert {
				return nil, err
			}
			cart, inserted, err := r.insert(ctx, userID, fn)
			if err != nil {
				return nil, err
			}
			if inserted {
				return cart, nil
			}
			// lost the race to create the document; retry as an update
			continue
		}
		if err != nil {
			return nil, err
		}

		next := current.Clone()
		if err := fn(next); err != nil {
			return nil, err
		}
		next.Version = current.Version + 1
		next.UpdatedAt = time.Now().UTC()

		items, err := toItemDocuments(next.Items)
		if err != nil {
			return nil, err
		}

		res, err := r.coll.UpdateOne(ctx,
			bson.M{"user_id": userID, "version": current.Version},
			bson.M{"$set": bson.M{
				"items":      items,
				"version":    next.Version,
				"updated_at": next.UpdatedAt,
			}},
		)
		if err != nil {
			return nil, storeError("update cart", err)
		}
		if res.MatchedCount == 1 {
			return next, nil
		}
	}
	return nil, domain.ErrCartContention
}

func (r *CartRepository) insert(ctx context.Context, userID string, fn ports.CartMutation) (*domain.Cart, bool, error) {
	cart := domain.NewCart(userID)
	if err := fn(cart); err != nil {
		return nil, false, err
	}
	now := time.Now().UTC()
	cart.Version = 1
	cart.CreatedAt = now
	cart.UpdatedAt = now

	items, err := toItemDocuments(cart.Items)
	if err != nil {
		return nil, false, err
	}
	_, err = r.coll.InsertOne(ctx, cartDocument{
		UserID:    userID,
		Items:     items,
		Version:   cart.Version,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if mongo.IsDuplicateKeyError(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, storeError("insert cart", err)
	}
	return cart, true, nil
}

func (r *CartRepository) Delete(ctx context.Context, userID string) (*domain.Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc cartDocument
	err := r.coll.FindOneAndDelete(ctx, bson.M{"user_id": userID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCartNotFound
		}
		return nil, storeError("delete cart", err)
	}
	return doc.toDomain()
}

// EnsureIndexes makes user_id unique, which also serialises concurrent
// upserts of a new cart.
func (r *CartRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *CartRepository) find(ctx context.Context, userID string) (*domain.Cart, error) {
	var doc cartDocument
	if err := r.coll.FindOne(ctx, bson.M{"user_id": userID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCartNotFound
		}
		return nil, storeError("find cart", err)
	}
	return doc.toDomain()
}

func (d cartDocument) toDomain() (*domain.Cart, error) {
	items := make([]domain.LineItem, 0, len(d.Items))
	for _, it := range d.Items {
		price, err := decimal.NewFromString(it.UnitPrice.String())
		if err != nil {
			return nil, fmt.Errorf("decode price of %s: %w", it.ProductID, err)
		}
		items = append(items, domain.LineItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: price,
		})
	}
	return &domain.Cart{
		UserID:    d.UserID,
		Items:     items,
		Version:   d.Version,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}, nil
}

func toItemDocuments(items []domain.LineItem) ([]lineItemDocument, error) {
	docs := make([]lineItemDocument, 0, len(items))
	for _, it := range items {
		price, err := primitive.ParseDecimal128(it.UnitPrice.String())
		if err != nil {
			return nil, fmt.Errorf("encode price of %s: %w: %w", it.ProductID, domain.ErrInvalidPrice, err)
		}
		docs = append(docs, lineItemDocument{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: price,
		})
	}
	return docs, nil
}
