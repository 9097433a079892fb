package services

import (
	"context"
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sahanr03/devcamper/internal/db"
	"github.com/sahanr03/devcamper/internal/events"
	"github.com/sahanr03/devcamper/internal/httperr"
	"github.com/sahanr03/devcamper/internal/models"
	"github.com/sahanr03/devcamper/internal/query"
)

type ReviewService struct {
	reviews   *mongo.Collection
	bootcamps *mongo.Collection
	bus       *events.Bus
}

func NewReviewService(database *mongo.Database, bus *events.Bus) *ReviewService {
	return &ReviewService{
		reviews:   database.Collection(db.ReviewsCollection),
		bootcamps: database.Collection(db.BootcampsCollection),
		bus:       bus,
	}
}

func (s *ReviewService) List(ctx context.Context, opts query.Options) ([]models.Review, int64, error) {
	total, err := s.reviews.CountDocuments(ctx, opts.Filter)
	if err != nil {
		return nil, 0, err
	}

	cursor, err := s.reviews.Find(ctx, opts.Filter, opts.FindOptions())
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	reviews := []models.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func (s *ReviewService) ListByBootcamp(ctx context.Context, bootcampID string) ([]models.Review, error) {
	oid, err := parseID("bootcamp", bootcampID)
	if err != nil {
		return nil, err
	}

	cursor, err := s.reviews.Find(ctx, bson.M{"bootcamp": oid})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reviews := []models.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (s *ReviewService) Get(ctx context.Context, id string) (models.Review, error) {
	oid, err := parseID("review", id)
	if err != nil {
		return models.Review{}, err
	}
	var review models.Review
	if err := s.reviews.FindOne(ctx, bson.M{"_id": oid}).Decode(&review); err != nil {
		return models.Review{}, httperr.FromMongo(err, "review", id)
	}
	return review, nil
}

// Create adds a review under a bootcamp. The unique (bootcamp, user)
// index rejects a second review from the same account as a duplicate.
func (s *ReviewService) Create(ctx context.Context, user models.User, bootcampID string, review models.Review) (models.Review, error) {
	oid, err := parseID("bootcamp", bootcampID)
	if err != nil {
		return models.Review{}, err
	}
	if err := s.bootcamps.FindOne(ctx, bson.M{"_id": oid}).Err(); err != nil {
		return models.Review{}, httperr.FromMongo(err, "bootcamp", bootcampID)
	}

	review.ID = primitive.NewObjectID()
	review.Bootcamp = oid
	review.User = user.ID
	review.CreatedAt = time.Now()

	if err := httperr.FromValidation(review.Validate()); err != nil {
		return models.Review{}, err
	}

	if _, err := s.reviews.InsertOne(ctx, review); err != nil {
		return models.Review{}, httperr.FromMongo(err, "review", review.ID.Hex())
	}

	s.bus.Publish(events.Event{Kind: events.ReviewChanged, Bootcamp: oid})
	return review, nil
}

func (s *ReviewService) Update(ctx context.Context, user models.User, id string, patch []byte) (models.Review, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return models.Review{}, err
	}
	if !user.CanModify(existing.User) {
		return models.Review{}, httperr.Forbidden("user %s is not authorized to update review %s", user.ID.Hex(), id)
	}

	updated := existing
	if err := json.Unmarshal(patch, &updated); err != nil {
		return models.Review{}, httperr.BadRequest("invalid request body")
	}
	updated.ID = existing.ID
	updated.Bootcamp = existing.Bootcamp
	updated.User = existing.User
	updated.CreatedAt = existing.CreatedAt

	if err := httperr.FromValidation(updated.Validate()); err != nil {
		return models.Review{}, err
	}

	if _, err := s.reviews.ReplaceOne(ctx, bson.M{"_id": existing.ID}, updated); err != nil {
		return models.Review{}, err
	}

	s.bus.Publish(events.Event{Kind: events.ReviewChanged, Bootcamp: existing.Bootcamp})
	return updated, nil
}

func (s *ReviewService) Delete(ctx context.Context, user models.User, id string) error {
	review, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !user.CanModify(review.User) {
		return httperr.Forbidden("user %s is not authorized to delete review %s", user.ID.Hex(), id)
	}

	if _, err := s.reviews.DeleteOne(ctx, bson.M{"_id": review.ID}); err != nil {
		return err
	}

	s.bus.Publish(events.Event{Kind: events.ReviewChanged, Bootcamp: review.Bootcamp})
	return nil
}
