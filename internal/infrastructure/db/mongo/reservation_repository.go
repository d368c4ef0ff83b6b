package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/travelbooking/booking-api/internal/core/domain"
)

const (
	collectionReservations = "reservations"

	indexReservationCode        = "code_1"
	indexReservationIdempotency = "user_id_1_idempotency_key_1"
)

// ReservationRepository implements ports.ReservationRepository using MongoDB.
type ReservationRepository struct {
	col *mongo.Collection
}

func NewReservationRepository(db *mongo.Database) *ReservationRepository {
	return &ReservationRepository{col: db.Collection(collectionReservations)}
}

// Create inserts a reservation. A duplicate on the (user_id, idempotency_key)
// index becomes domain.ErrReservationExists and a duplicate on the code index
// becomes domain.ErrReservationCodeTaken.
func (r *ReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if res.ID == "" {
		res.ID = primitive.NewObjectID().Hex()
	}
	if _, err := r.col.InsertOne(ctx, res); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			switch {
			case strings.Contains(err.Error(), indexReservationIdempotency):
				return domain.ErrReservationExists
			case strings.Contains(err.Error(), indexReservationCode):
				return domain.ErrReservationCodeTaken
			}
		}
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

func (r *ReservationRepository) FindByID(ctx context.Context, id string) (*domain.Reservation, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *ReservationRepository) FindByIdempotencyKey(ctx context.Context, userID, key string) (*domain.Reservation, error) {
	return r.findOne(ctx, bson.M{"user_id": userID, "idempotency_key": key})
}

// ListByUser returns the user's reservations, newest first.
func (r *ReservationRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find reservations: %w", err)
	}
	defer cur.Close(ctx)

	out := []*domain.Reservation{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode reservations: %w", err)
	}
	return out, nil
}

// MarkCancelled atomically moves a reservation to cancelled.
func (r *ReservationRepository) MarkCancelled(ctx context.Context, id string) (*domain.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": id, "status": bson.M{"$ne": string(domain.ReservationCancelled)}}
	update := bson.M{"$set": bson.M{
		"status":     string(domain.ReservationCancelled),
		"updated_at": time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var res domain.Reservation
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&res)
	if err == nil {
		return &res, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("cancel reservation: %w", err)
	}

	if _, findErr := r.findOne(ctx, bson.M{"_id": id}); findErr != nil {
		return nil, findErr
	}
	return nil, domain.ErrReservationCancelled
}

func (r *ReservationRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.col.CountDocuments(ctx, bson.M{})
}

// EnsureIndexes creates necessary indexes on the reservations collection.
func (r *ReservationRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetName(indexReservationCode).SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "idempotency_key", Value: 1}},
			Options: options.Index().
				SetName(indexReservationIdempotency).
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"idempotency_key": bson.M{"$exists": true}}),
		},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *ReservationRepository) findOne(ctx context.Context, filter bson.M) (*domain.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var res domain.Reservation
	err := r.col.FindOne(ctx, filter).Decode(&res)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, err
	}
	return &res, nil
}
