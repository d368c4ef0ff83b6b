package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/travelbooking/booking-api/internal/core/domain"
	"github.com/travelbooking/booking-api/internal/core/ports"
)

const (
	collectionTrips   = "trips"
	maxUpdateAttempts = 3
)

var errConcurrentUpdate = errors.New("trip modified concurrently")

// seatCounts is the projection read before a trip update.
type seatCounts struct {
	Capacity       int `bson:"capacity"`
	SeatsAvailable int `bson:"seats_available"`
}

// TripRepository implements ports.TripRepository using MongoDB.
type TripRepository struct {
	col *mongo.Collection
}

func NewTripRepository(db *mongo.Database) *TripRepository {
	return &TripRepository{col: db.Collection(collectionTrips)}
}

// Create inserts a new trip document and assigns its id.
func (r *TripRepository) Create(ctx context.Context, t *domain.Trip) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if t.ID == "" {
		t.ID = primitive.NewObjectID().Hex()
	}
	if _, err := r.col.InsertOne(ctx, t); err != nil {
		return fmt.Errorf("insert trip: %w", err)
	}
	return nil
}

func (r *TripRepository) FindByID(ctx context.Context, id string) (*domain.Trip, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var t domain.Trip
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTripNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Update writes the editable fields of t and moves the capacity to
// t.Capacity. Seat counts are shifted with $inc so bookings that land while
// the update is in flight are kept. The write is guarded on the capacity that
// was read; a concurrent capacity change causes a re-read.
func (r *TripRepository) Update(ctx context.Context, t *domain.Trip) (*domain.Trip, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		var cur seatCounts
		err := r.col.FindOne(ctx, bson.M{"_id": t.ID},
			options.FindOne().SetProjection(bson.M{"capacity": 1, "seats_available": 1})).Decode(&cur)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, domain.ErrTripNotFound
			}
			return nil, fmt.Errorf("load trip capacity: %w", err)
		}

		delta := t.Capacity - cur.Capacity
		if cur.SeatsAvailable+delta < 0 {
			return nil, domain.ErrInvalidInput
		}

		filter, update := tripUpdate(t, cur.Capacity, delta)
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

		var updated domain.Trip
		err = r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
		if err == nil {
			return &updated, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("update trip: %w", err)
		}
	}
	return nil, fmt.Errorf("update trip %s: %w", t.ID, errConcurrentUpdate)
}

func (r *TripRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete trip: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTripNotFound
	}
	return nil
}

// List returns a filtered, paginated page of trips ordered by start date.
func (r *TripRepository) List(ctx context.Context, f ports.ListTripsFilter) ([]*domain.Trip, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := buildTripFilter(f)

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count trips: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "start_date", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(int64((f.Page - 1) * f.Limit)).
		SetLimit(int64(f.Limit))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find trips: %w", err)
	}
	defer cur.Close(ctx)

	trips := make([]*domain.Trip, 0, f.Limit)
	if err := cur.All(ctx, &trips); err != nil {
		return nil, 0, fmt.Errorf("decode trips: %w", err)
	}
	return trips, total, nil
}

// ReserveSeats decrements seats_available only when enough seats remain, so
// concurrent bookings can never oversell a trip.
func (r *TripRepository) ReserveSeats(ctx context.Context, id string, n int) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": id, "seats_available": bson.M{"$gte": n}}
	update := bson.M{
		"$inc": bson.M{"seats_available": -n},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("reserve seats: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	exists, err := r.col.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("reserve seats: %w", err)
	}
	if exists == 0 {
		return domain.ErrTripNotFound
	}
	return domain.ErrNoSeatsAvailable
}

func (r *TripRepository) ReleaseSeats(ctx context.Context, id string, n int) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{
		"$inc": bson.M{"seats_available": n},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("release seats: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrTripNotFound
	}
	return nil
}

func (r *TripRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.col.CountDocuments(ctx, bson.M{})
}

// EnsureIndexes creates necessary indexes on the trips collection.
func (r *TripRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "destination.city", Value: 1}}},
		{Keys: bson.D{{Key: "destination.country", Value: 1}}},
		{Keys: bson.D{{Key: "start_date", Value: 1}}},
		{Keys: bson.D{{Key: "price_cents", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

// tripUpdate builds the guarded filter and update document for Update.
// seats_available is never written directly: it only moves by delta.
func tripUpdate(t *domain.Trip, readCapacity, delta int) (bson.M, bson.M) {
	filter := bson.M{"_id": t.ID, "capacity": readCapacity}
	if delta < 0 {
		filter["seats_available"] = bson.M{"$gte": -delta}
	}

	images := t.Images
	if images == nil {
		images = []string{}
	}

	update := bson.M{
		"$set": bson.M{
			"title":       t.Title,
			"description": t.Description,
			"destination": t.Destination,
			"hotel":       t.Hotel,
			"price_cents": t.PriceCents,
			"currency":    t.Currency,
			"start_date":  t.StartDate,
			"end_date":    t.EndDate,
			"images":      images,
			"updated_at":  t.UpdatedAt,
		},
		"$inc": bson.M{"capacity": delta, "seats_available": delta},
	}
	return filter, update
}

func buildTripFilter(f ports.ListTripsFilter) bson.M {
	filter := bson.M{}
	if f.City != "" {
		filter["destination.city"] = exactInsensitive(f.City)
	}
	if f.Country != "" {
		filter["destination.country"] = exactInsensitive(f.Country)
	}
	if f.MaxPriceCents > 0 {
		filter["price_cents"] = bson.M{"$lte": f.MaxPriceCents}
	}
	if f.Search != "" {
		filter["title"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
	}
	return filter
}

func exactInsensitive(s string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(s) + "$", Options: "i"}
}
