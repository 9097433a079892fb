package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review of a bootcamp. A unique compound index on (bootcamp, user)
// enforces one review per user per bootcamp.
type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title     string             `bson:"title" json:"title" validate:"required,max=100"`
	Text      string             `bson:"text" json:"text" validate:"required"`
	Rating    float64            `bson:"rating" json:"rating" validate:"required,gte=1,lte=10"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	Bootcamp  primitive.ObjectID `bson:"bootcamp" json:"bootcamp"`
	User      primitive.ObjectID `bson:"user" json:"user"`
}

func (r *Review) Validate() error {
	return validate.Struct(r)
}
