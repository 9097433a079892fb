package services

import (
	"context"
	"math"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sahanr03/devcamper/internal/db"
	"github.com/sahanr03/devcamper/internal/events"
)

// Aggregates recomputes the derived averageCost and averageRating
// fields on bootcamps. It runs off the event bus after committed
// course/review mutations; failures are logged and swallowed because
// the write that triggered them already succeeded.
type Aggregates struct {
	bootcamps *mongo.Collection
	courses   *mongo.Collection
	reviews   *mongo.Collection
	log       *logrus.Logger
}

func NewAggregates(database *mongo.Database, log *logrus.Logger) *Aggregates {
	return &Aggregates{
		bootcamps: database.Collection(db.BootcampsCollection),
		courses:   database.Collection(db.CoursesCollection),
		reviews:   database.Collection(db.ReviewsCollection),
		log:       log,
	}
}

// HandleEvent is the bus consumer.
func (a *Aggregates) HandleEvent(ctx context.Context, e events.Event) {
	var err error
	switch e.Kind {
	case events.CourseChanged:
		err = a.RecomputeAverageCost(ctx, e.Bootcamp)
	case events.ReviewChanged:
		err = a.RecomputeAverageRating(ctx, e.Bootcamp)
	}
	if err != nil {
		a.log.WithError(err).WithField("bootcamp", e.Bootcamp.Hex()).Warn("aggregate recompute failed")
	}
}

// RecomputeAverageCost averages the tuition of every course under the
// bootcamp and rounds up to the nearest ten. With no courses left the
// field is unset rather than written with an undefined value.
func (a *Aggregates) RecomputeAverageCost(ctx context.Context, bootcampID primitive.ObjectID) error {
	avg, ok, err := a.average(ctx, a.courses, bootcampID, "$tuition")
	if err != nil {
		return err
	}
	_, err = a.bootcamps.UpdateOne(ctx, bson.M{"_id": bootcampID}, averageCostUpdate(avg, ok))
	return err
}

// RecomputeAverageRating averages review ratings for the bootcamp.
func (a *Aggregates) RecomputeAverageRating(ctx context.Context, bootcampID primitive.ObjectID) error {
	avg, ok, err := a.average(ctx, a.reviews, bootcampID, "$rating")
	if err != nil {
		return err
	}
	_, err = a.bootcamps.UpdateOne(ctx, bson.M{"_id": bootcampID}, averageRatingUpdate(avg, ok))
	return err
}

// averageCostUpdate builds the bootcamp update for a recomputed course
// average. With no courses matched the field is unset instead of being
// written with an undefined value.
func averageCostUpdate(avg float64, matched bool) bson.M {
	if !matched {
		return bson.M{"$unset": bson.M{"averageCost": ""}}
	}
	return bson.M{"$set": bson.M{"averageCost": RoundUpToTen(avg)}}
}

func averageRatingUpdate(avg float64, matched bool) bson.M {
	if !matched {
		return bson.M{"$unset": bson.M{"averageRating": ""}}
	}
	return bson.M{"$set": bson.M{"averageRating": avg}}
}

// average runs the $match/$group pipeline and reports whether any
// document matched at all.
func (a *Aggregates) average(ctx context.Context, coll *mongo.Collection, bootcampID primitive.ObjectID, field string) (float64, bool, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"bootcamp": bootcampID}}},
		{{Key: "$group", Value: bson.M{
			"_id": "$bootcamp",
			"avg": bson.M{"$avg": field},
		}}},
	}

	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, false, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Avg float64 `bson:"avg"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, false, err
	}
	if len(results) == 0 {
		return 0, false, nil
	}
	return results[0].Avg, true, nil
}

// RoundUpToTen rounds a cost average up to the next multiple of ten.
func RoundUpToTen(v float64) int {
	return int(math.Ceil(v/10)) * 10
}
