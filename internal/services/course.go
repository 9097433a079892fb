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

type CourseService struct {
	courses   *mongo.Collection
	bootcamps *mongo.Collection
	bus       *events.Bus
}

func NewCourseService(database *mongo.Database, bus *events.Bus) *CourseService {
	return &CourseService{
		courses:   database.Collection(db.CoursesCollection),
		bootcamps: database.Collection(db.BootcampsCollection),
		bus:       bus,
	}
}

func (s *CourseService) List(ctx context.Context, opts query.Options) ([]models.Course, int64, error) {
	total, err := s.courses.CountDocuments(ctx, opts.Filter)
	if err != nil {
		return nil, 0, err
	}

	cursor, err := s.courses.Find(ctx, opts.Filter, opts.FindOptions())
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	courses := []models.Course{}
	if err := cursor.All(ctx, &courses); err != nil {
		return nil, 0, err
	}
	return courses, total, nil
}

// ListByBootcamp returns every course under one bootcamp, unpaginated.
func (s *CourseService) ListByBootcamp(ctx context.Context, bootcampID string) ([]models.Course, error) {
	oid, err := parseID("bootcamp", bootcampID)
	if err != nil {
		return nil, err
	}

	cursor, err := s.courses.Find(ctx, bson.M{"bootcamp": oid})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	courses := []models.Course{}
	if err := cursor.All(ctx, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (s *CourseService) Get(ctx context.Context, id string) (models.Course, error) {
	oid, err := parseID("course", id)
	if err != nil {
		return models.Course{}, err
	}
	var course models.Course
	if err := s.courses.FindOne(ctx, bson.M{"_id": oid}).Decode(&course); err != nil {
		return models.Course{}, httperr.FromMongo(err, "course", id)
	}
	return course, nil
}

// Create adds a course under a bootcamp the requester owns.
func (s *CourseService) Create(ctx context.Context, user models.User, bootcampID string, course models.Course) (models.Course, error) {
	oid, err := parseID("bootcamp", bootcampID)
	if err != nil {
		return models.Course{}, err
	}

	var bootcamp models.Bootcamp
	if err := s.bootcamps.FindOne(ctx, bson.M{"_id": oid}).Decode(&bootcamp); err != nil {
		return models.Course{}, httperr.FromMongo(err, "bootcamp", bootcampID)
	}
	if !user.CanModify(bootcamp.User) {
		return models.Course{}, httperr.Forbidden("user %s is not authorized to add a course to bootcamp %s", user.ID.Hex(), bootcampID)
	}

	course.ID = primitive.NewObjectID()
	course.Bootcamp = oid
	course.User = user.ID
	course.CreatedAt = time.Now()

	if err := httperr.FromValidation(course.Validate()); err != nil {
		return models.Course{}, err
	}

	if _, err := s.courses.InsertOne(ctx, course); err != nil {
		return models.Course{}, httperr.FromMongo(err, "course", course.ID.Hex())
	}

	s.bus.Publish(events.Event{Kind: events.CourseChanged, Bootcamp: oid})
	return course, nil
}

func (s *CourseService) Update(ctx context.Context, user models.User, id string, patch []byte) (models.Course, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return models.Course{}, err
	}
	if !user.CanModify(existing.User) {
		return models.Course{}, httperr.Forbidden("user %s is not authorized to update course %s", user.ID.Hex(), id)
	}

	updated := existing
	if err := json.Unmarshal(patch, &updated); err != nil {
		return models.Course{}, httperr.BadRequest("invalid request body")
	}
	updated.ID = existing.ID
	updated.Bootcamp = existing.Bootcamp
	updated.User = existing.User
	updated.CreatedAt = existing.CreatedAt

	if err := httperr.FromValidation(updated.Validate()); err != nil {
		return models.Course{}, err
	}

	if _, err := s.courses.ReplaceOne(ctx, bson.M{"_id": existing.ID}, updated); err != nil {
		return models.Course{}, err
	}

	s.bus.Publish(events.Event{Kind: events.CourseChanged, Bootcamp: existing.Bootcamp})
	return updated, nil
}

func (s *CourseService) Delete(ctx context.Context, user models.User, id string) error {
	course, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !user.CanModify(course.User) {
		return httperr.Forbidden("user %s is not authorized to delete course %s", user.ID.Hex(), id)
	}

	if _, err := s.courses.DeleteOne(ctx, bson.M{"_id": course.ID}); err != nil {
		return err
	}

	s.bus.Publish(events.Event{Kind: events.CourseChanged, Bootcamp: course.Bootcamp})
	return nil
}
