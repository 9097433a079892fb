package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/sahanr03/devcamper/internal/db"
	"github.com/sahanr03/devcamper/internal/httperr"
	"github.com/sahanr03/devcamper/internal/models"
)

// Mailer is satisfied by mail.Mailer; tests substitute their own.
type Mailer interface {
	Send(to, subject, body string) error
}

type AuthService struct {
	users  *mongo.Collection
	mailer Mailer
	secret []byte
	expire time.Duration
	log    *logrus.Logger
}

func NewAuthService(database *mongo.Database, mailer Mailer, secret string, expire time.Duration, log *logrus.Logger) *AuthService {
	return &AuthService{
		users:  database.Collection(db.UsersCollection),
		mailer: mailer,
		secret: []byte(secret),
		expire: expire,
		log:    log,
	}
}

// HashPassword hashes a password using bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

// VerifyPassword compares a plain password with a hashed password.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// SignToken issues an HS256 token carrying the user id and role.
func (s *AuthService) SignToken(user models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID.Hex(),
		"role":    user.Role,
		"exp":     time.Now().Add(s.expire).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Register creates an account. Only the user and publisher roles can be
// self-assigned; admins are created out of band.
func (s *AuthService) Register(ctx context.Context, name, email, password, role string) (models.User, string, error) {
	if role == "" {
		role = models.RoleUser
	}
	if role != models.RoleUser && role != models.RolePublisher {
		return models.User{}, "", httperr.BadRequest("role %s can not be registered", role)
	}

	user := models.User{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Email:     email,
		Role:      role,
		Password:  password,
		CreatedAt: time.Now(),
	}
	if err := httperr.FromValidation(user.Validate()); err != nil {
		return models.User{}, "", err
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return models.User{}, "", err
	}
	user.Password = hashed

	if _, err := s.users.InsertOne(ctx, user); err != nil {
		return models.User{}, "", httperr.FromMongo(err, "user", user.ID.Hex())
	}

	token, err := s.SignToken(user)
	if err != nil {
		return models.User{}, "", err
	}
	return user, token, nil
}

// Login authenticates by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (models.User, string, error) {
	if email == "" || password == "" {
		return models.User{}, "", httperr.BadRequest("please provide an email and password")
	}

	var user models.User
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil || !VerifyPassword(password, user.Password) {
		return models.User{}, "", httperr.Unauthorized("invalid credentials")
	}

	token, err := s.SignToken(user)
	if err != nil {
		return models.User{}, "", err
	}
	return user, token, nil
}

// UpdateDetails changes the logged in user's name and email.
func (s *AuthService) UpdateDetails(ctx context.Context, userID primitive.ObjectID, name, email string) (models.User, error) {
	update := bson.M{}
	if name != "" {
		update["name"] = name
	}
	if email != "" {
		if !models.ValidEmail(email) {
			return models.User{}, httperr.BadRequest("please add a valid email")
		}
		update["email"] = email
	}
	if len(update) == 0 {
		return models.User{}, httperr.BadRequest("nothing to update")
	}

	var user models.User
	err := s.users.FindOneAndUpdate(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": update},
		findOneAndUpdateAfter(),
	).Decode(&user)
	if err != nil {
		return models.User{}, httperr.FromMongo(err, "user", userID.Hex())
	}
	return user, nil
}

// UpdatePassword verifies the current password before setting the new
// one and issues a fresh token.
func (s *AuthService) UpdatePassword(ctx context.Context, userID primitive.ObjectID, current, newPassword string) (models.User, string, error) {
	var user models.User
	if err := s.users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		return models.User{}, "", httperr.FromMongo(err, "user", userID.Hex())
	}

	if !VerifyPassword(current, user.Password) {
		return models.User{}, "", httperr.Unauthorized("password is incorrect")
	}
	if len(newPassword) < 6 {
		return models.User{}, "", httperr.BadRequest("password must be at least 6 characters")
	}

	hashed, err := HashPassword(newPassword)
	if err != nil {
		return models.User{}, "", err
	}
	if _, err := s.users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": bson.M{"password": hashed}}); err != nil {
		return models.User{}, "", err
	}
	user.Password = hashed

	token, err := s.SignToken(user)
	if err != nil {
		return models.User{}, "", err
	}
	return user, token, nil
}

// ForgotPassword stores a hashed reset token on the account and mails
// the plain token to the user. The token is valid for ten minutes.
func (s *AuthService) ForgotPassword(ctx context.Context, email, resetBaseURL string) error {
	var user models.User
	if err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return httperr.NotFound("user", email)
	}

	plain, digest, err := newResetToken()
	if err != nil {
		return err
	}

	expire := time.Now().Add(10 * time.Minute)
	_, err = s.users.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": bson.M{
		"resetPasswordToken":  digest,
		"resetPasswordExpire": expire,
	}})
	if err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/%s", resetBaseURL, plain)
	body := fmt.Sprintf("You are receiving this email because you (or someone else) has requested the reset of a password. Please make a PUT request to:\n\n%s", resetURL)
	if err := s.mailer.Send(user.Email, "Password reset token", body); err != nil {
		// roll the token back so a half-sent reset can't linger
		_, _ = s.users.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$unset": bson.M{
			"resetPasswordToken":  "",
			"resetPasswordExpire": "",
		}})
		s.log.WithError(err).Error("reset email failed")
		return err
	}
	return nil
}

// ResetPassword consumes a reset token and sets the new password.
func (s *AuthService) ResetPassword(ctx context.Context, resetToken, newPassword string) (models.User, string, error) {
	digest := hashToken(resetToken)

	var user models.User
	err := s.users.FindOne(ctx, bson.M{
		"resetPasswordToken":  digest,
		"resetPasswordExpire": bson.M{"$gt": time.Now()},
	}).Decode(&user)
	if err != nil {
		return models.User{}, "", httperr.BadRequest("invalid token")
	}

	if len(newPassword) < 6 {
		return models.User{}, "", httperr.BadRequest("password must be at least 6 characters")
	}
	hashed, err := HashPassword(newPassword)
	if err != nil {
		return models.User{}, "", err
	}

	_, err = s.users.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{
		"$set":   bson.M{"password": hashed},
		"$unset": bson.M{"resetPasswordToken": "", "resetPasswordExpire": ""},
	})
	if err != nil {
		return models.User{}, "", err
	}
	user.Password = hashed

	token, err := s.SignToken(user)
	if err != nil {
		return models.User{}, "", err
	}
	return user, token, nil
}

func newResetToken() (plain, digest string, err error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	plain = hex.EncodeToString(buf)
	return plain, hashToken(plain), nil
}

// hashToken stores only a sha256 digest of reset tokens.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
