package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser      = "user"
	RolePublisher = "publisher"
	RoleAdmin     = "admin"
)

type User struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name                string             `bson:"name" json:"name" validate:"required"`
	Email               string             `bson:"email" json:"email" validate:"required,email"`
	Role                string             `bson:"role" json:"role" validate:"required,oneof=user publisher admin"`
	Password            string             `bson:"password,omitempty" json:"-" validate:"required,min=6"`
	ResetPasswordToken  string             `bson:"resetPasswordToken,omitempty" json:"-"`
	ResetPasswordExpire time.Time          `bson:"resetPasswordExpire,omitempty" json:"-"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
}

func (u *User) Validate() error {
	return validate.Struct(u)
}

// IsAdmin reports whether ownership checks should be bypassed.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanModify is the single ownership predicate shared by every mutating
// handler: the requester must own the resource or be an admin.
func (u *User) CanModify(owner primitive.ObjectID) bool {
	return u.IsAdmin() || u.ID == owner
}
