package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sahanr03/devcamper/internal/db"
	"github.com/sahanr03/devcamper/internal/httperr"
	"github.com/sahanr03/devcamper/internal/models"
	"github.com/sahanr03/devcamper/internal/query"
)

// UserService is the admin-facing user CRUD plus the lookup the auth
// middleware uses to resolve token subjects.
type UserService struct {
	users *mongo.Collection
}

func NewUserService(database *mongo.Database) *UserService {
	return &UserService{users: database.Collection(db.UsersCollection)}
}

// UserByID resolves a token subject. Implements middleware.UserLoader.
func (s *UserService) UserByID(ctx context.Context, id string) (models.User, error) {
	oid, err := parseID("user", id)
	if err != nil {
		return models.User{}, err
	}
	var user models.User
	if err := s.users.FindOne(ctx, bson.M{"_id": oid}).Decode(&user); err != nil {
		return models.User{}, httperr.FromMongo(err, "user", id)
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, opts query.Options) ([]models.User, int64, error) {
	total, err := s.users.CountDocuments(ctx, opts.Filter)
	if err != nil {
		return nil, 0, err
	}

	cursor, err := s.users.Find(ctx, opts.Filter, opts.FindOptions())
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (s *UserService) Get(ctx context.Context, id string) (models.User, error) {
	return s.UserByID(ctx, id)
}

func (s *UserService) Create(ctx context.Context, user models.User) (models.User, error) {
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if err := httperr.FromValidation(user.Validate()); err != nil {
		return models.User{}, err
	}

	hashed, err := HashPassword(user.Password)
	if err != nil {
		return models.User{}, err
	}
	user.Password = hashed

	if _, err := s.users.InsertOne(ctx, user); err != nil {
		return models.User{}, httperr.FromMongo(err, "user", user.ID.Hex())
	}
	return user, nil
}

// Update applies admin edits to name, email and role. Passwords go
// through the password endpoints, never here.
func (s *UserService) Update(ctx context.Context, id string, changes models.User) (models.User, error) {
	oid, err := parseID("user", id)
	if err != nil {
		return models.User{}, err
	}

	update := bson.M{}
	if changes.Name != "" {
		update["name"] = changes.Name
	}
	if changes.Email != "" {
		if !models.ValidEmail(changes.Email) {
			return models.User{}, httperr.BadRequest("please add a valid email")
		}
		update["email"] = changes.Email
	}
	if changes.Role != "" {
		if changes.Role != models.RoleUser && changes.Role != models.RolePublisher && changes.Role != models.RoleAdmin {
			return models.User{}, httperr.BadRequest("role must be one of: user publisher admin")
		}
		update["role"] = changes.Role
	}
	if len(update) == 0 {
		return models.User{}, httperr.BadRequest("nothing to update")
	}

	var user models.User
	err = s.users.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": update}, findOneAndUpdateAfter()).Decode(&user)
	if err != nil {
		return models.User{}, httperr.FromMongo(err, "user", id)
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	oid, err := parseID("user", id)
	if err != nil {
		return err
	}
	res, err := s.users.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return httperr.NotFound("user", id)
	}
	return nil
}
