package services

import (
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sahanr03/devcamper/internal/db"
	"github.com/sahanr03/devcamper/internal/geocoder"
	"github.com/sahanr03/devcamper/internal/httperr"
	"github.com/sahanr03/devcamper/internal/models"
	"github.com/sahanr03/devcamper/internal/query"
	"github.com/sahanr03/devcamper/internal/storage"
)

// earthRadiusMiles converts a distance in miles to the angular radius
// $centerSphere expects.
const earthRadiusMiles = 3963.0

const defaultPhoto = "no-photo.jpg"

type BootcampService struct {
	bootcamps *mongo.Collection
	courses   *mongo.Collection
	reviews   *mongo.Collection
	geo       *geocoder.Geocoder
	photos    *storage.PhotoStore
	maxUpload int64
	log       *logrus.Logger
}

func NewBootcampService(database *mongo.Database, geo *geocoder.Geocoder, photos *storage.PhotoStore, maxUpload int64, log *logrus.Logger) *BootcampService {
	return &BootcampService{
		bootcamps: database.Collection(db.BootcampsCollection),
		courses:   database.Collection(db.CoursesCollection),
		reviews:   database.Collection(db.ReviewsCollection),
		geo:       geo,
		photos:    photos,
		maxUpload: maxUpload,
		log:       log,
	}
}

func (s *BootcampService) List(ctx context.Context, opts query.Options) ([]models.Bootcamp, int64, error) {
	total, err := s.bootcamps.CountDocuments(ctx, opts.Filter)
	if err != nil {
		return nil, 0, err
	}

	cursor, err := s.bootcamps.Find(ctx, opts.Filter, opts.FindOptions())
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	bootcamps := []models.Bootcamp{}
	if err := cursor.All(ctx, &bootcamps); err != nil {
		return nil, 0, err
	}
	return bootcamps, total, nil
}

func (s *BootcampService) Get(ctx context.Context, id string) (models.Bootcamp, error) {
	oid, err := parseID("bootcamp", id)
	if err != nil {
		return models.Bootcamp{}, err
	}
	var bootcamp models.Bootcamp
	if err := s.bootcamps.FindOne(ctx, bson.M{"_id": oid}).Decode(&bootcamp); err != nil {
		return models.Bootcamp{}, httperr.FromMongo(err, "bootcamp", id)
	}
	return bootcamp, nil
}

// Create inserts a bootcamp owned by the requesting user. Non-admin
// publishers can only own one.
func (s *BootcampService) Create(ctx context.Context, user models.User, bootcamp models.Bootcamp) (models.Bootcamp, error) {
	if !user.IsAdmin() {
		err := s.bootcamps.FindOne(ctx, bson.M{"user": user.ID}).Err()
		if err == nil {
			return models.Bootcamp{}, httperr.BadRequest("the user with ID %s has already published a bootcamp", user.ID.Hex())
		}
		if err != mongo.ErrNoDocuments {
			return models.Bootcamp{}, err
		}
	}

	bootcamp.ID = primitive.NewObjectID()
	bootcamp.User = user.ID
	bootcamp.Slug = models.Slugify(bootcamp.Name)
	bootcamp.Photo = defaultPhoto
	bootcamp.CreatedAt = time.Now()
	bootcamp.AverageCost = 0
	bootcamp.AverageRating = 0

	if err := httperr.FromValidation(bootcamp.Validate()); err != nil {
		return models.Bootcamp{}, err
	}

	if err := s.resolveLocation(ctx, &bootcamp); err != nil {
		return models.Bootcamp{}, err
	}

	if _, err := s.bootcamps.InsertOne(ctx, bootcamp); err != nil {
		return models.Bootcamp{}, httperr.FromMongo(err, "bootcamp", bootcamp.ID.Hex())
	}
	return bootcamp, nil
}

// Update merges a partial JSON body over the stored document,
// re-validates and replaces it. Only the owner or an admin may update.
func (s *BootcampService) Update(ctx context.Context, user models.User, id string, patch []byte) (models.Bootcamp, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return models.Bootcamp{}, err
	}
	if !user.CanModify(existing.User) {
		return models.Bootcamp{}, httperr.Forbidden("user %s is not authorized to update this bootcamp", user.ID.Hex())
	}

	updated := existing
	if err := json.Unmarshal(patch, &updated); err != nil {
		return models.Bootcamp{}, httperr.BadRequest("invalid request body")
	}

	// derived and ownership fields never come from the body
	updated.ID = existing.ID
	updated.User = existing.User
	updated.CreatedAt = existing.CreatedAt
	updated.Photo = existing.Photo
	updated.AverageCost = existing.AverageCost
	updated.AverageRating = existing.AverageRating
	updated.Slug = models.Slugify(updated.Name)

	if err := httperr.FromValidation(updated.Validate()); err != nil {
		return models.Bootcamp{}, err
	}

	if updated.Address != existing.Address {
		if err := s.resolveLocation(ctx, &updated); err != nil {
			return models.Bootcamp{}, err
		}
	}

	if _, err := s.bootcamps.ReplaceOne(ctx, bson.M{"_id": existing.ID}, updated); err != nil {
		return models.Bootcamp{}, err
	}
	return updated, nil
}

// Delete removes a bootcamp and cascades its courses, reviews and
// stored photo.
func (s *BootcampService) Delete(ctx context.Context, user models.User, id string) error {
	bootcamp, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !user.CanModify(bootcamp.User) {
		return httperr.Forbidden("user %s is not authorized to delete this bootcamp", user.ID.Hex())
	}

	if _, err := s.bootcamps.DeleteOne(ctx, bson.M{"_id": bootcamp.ID}); err != nil {
		return err
	}

	courses, err := s.courses.DeleteMany(ctx, bson.M{"bootcamp": bootcamp.ID})
	if err != nil {
		return fmt.Errorf("cascade delete courses: %w", err)
	}
	reviews, err := s.reviews.DeleteMany(ctx, bson.M{"bootcamp": bootcamp.ID})
	if err != nil {
		return fmt.Errorf("cascade delete reviews: %w", err)
	}
	if bootcamp.Photo != "" && bootcamp.Photo != defaultPhoto {
		if err := s.photos.Remove(ctx, bootcamp.Photo); err != nil {
			s.log.WithError(err).Warn("photo cleanup failed")
		}
	}

	s.log.WithFields(logrus.Fields{
		"bootcamp": bootcamp.ID.Hex(),
		"courses":  courses.DeletedCount,
		"reviews":  reviews.DeletedCount,
	}).Info("bootcamp deleted")
	return nil
}

// InRadius returns bootcamps whose location lies within distanceMiles
// of the given zipcode.
func (s *BootcampService) InRadius(ctx context.Context, zipcode string, distanceMiles float64) ([]models.Bootcamp, error) {
	loc, err := s.geo.Geocode(ctx, zipcode)
	if err != nil {
		if err == geocoder.ErrNoResult {
			return nil, httperr.BadRequest("could not geocode zipcode %s", zipcode)
		}
		return nil, err
	}

	radius := distanceMiles / earthRadiusMiles
	filter := bson.M{
		"location": bson.M{
			"$geoWithin": bson.M{
				"$centerSphere": bson.A{loc.Coordinates(), radius},
			},
		},
	}

	cursor, err := s.bootcamps.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	bootcamps := []models.Bootcamp{}
	if err := cursor.All(ctx, &bootcamps); err != nil {
		return nil, err
	}
	return bootcamps, nil
}

// UploadPhoto validates and stores a bootcamp photo, then records the
// filename on the document.
func (s *BootcampService) UploadPhoto(ctx context.Context, user models.User, id string, file *multipart.FileHeader) (string, error) {
	bootcamp, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if !user.CanModify(bootcamp.User) {
		return "", httperr.Forbidden("user %s is not authorized to update this bootcamp", user.ID.Hex())
	}

	name, err := photoObjectName(bootcamp.ID, file, s.maxUpload)
	if err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("problem with file upload: %w", err)
	}
	defer src.Close()

	if err := s.photos.Save(ctx, name, src, file.Size, file.Header.Get("Content-Type")); err != nil {
		return "", fmt.Errorf("problem with file upload: %w", err)
	}

	if _, err := s.bootcamps.UpdateOne(ctx, bson.M{"_id": bootcamp.ID}, bson.M{"$set": bson.M{"photo": name}}); err != nil {
		return "", err
	}
	return name, nil
}

// photoObjectName checks an uploaded photo against the image type and
// size limits and returns its storage name. It runs before any write,
// so a rejected upload leaves the stored photo untouched.
func photoObjectName(bootcampID primitive.ObjectID, file *multipart.FileHeader, maxSize int64) (string, error) {
	if file == nil {
		return "", httperr.BadRequest("please upload a file")
	}
	if !strings.HasPrefix(file.Header.Get("Content-Type"), "image/") {
		return "", httperr.BadRequest("please upload an image file")
	}
	if file.Size > maxSize {
		return "", httperr.BadRequest("please upload an image less than %d bytes", maxSize)
	}
	return fmt.Sprintf("photo_%s%s", bootcampID.Hex(), filepath.Ext(file.Filename)), nil
}

// resolveLocation geocodes the address into the GeoJSON point. The
// free-form address itself is not persisted beyond what the geocoder
// resolved.
func (s *BootcampService) resolveLocation(ctx context.Context, bootcamp *models.Bootcamp) error {
	loc, err := s.geo.Geocode(ctx, bootcamp.Address)
	if err != nil {
		if err == geocoder.ErrNoResult {
			return httperr.BadRequest("could not geocode address")
		}
		return err
	}
	bootcamp.Location = models.Location{
		Type:             "Point",
		Coordinates:      loc.Coordinates(),
		FormattedAddress: loc.FormattedAddress,
		Street:           loc.Street,
		City:             loc.City,
		State:            loc.State,
		Zipcode:          loc.Zipcode,
		Country:          loc.Country,
	}
	return nil
}
