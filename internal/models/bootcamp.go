package models

import (
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Location is a GeoJSON point plus the address parts the geocoder
// resolved. Coordinates are [longitude, latitude].
type Location struct {
	Type             string    `bson:"type" json:"type"`
	Coordinates      []float64 `bson:"coordinates" json:"coordinates"`
	FormattedAddress string    `bson:"formattedAddress,omitempty" json:"formattedAddress,omitempty"`
	Street           string    `bson:"street,omitempty" json:"street,omitempty"`
	City             string    `bson:"city,omitempty" json:"city,omitempty"`
	State            string    `bson:"state,omitempty" json:"state,omitempty"`
	Zipcode          string    `bson:"zipcode,omitempty" json:"zipcode,omitempty"`
	Country          string    `bson:"country,omitempty" json:"country,omitempty"`
}

type Bootcamp struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name          string             `bson:"name" json:"name" validate:"required,max=50"`
	Slug          string             `bson:"slug" json:"slug"`
	Description   string             `bson:"description" json:"description" validate:"required,max=500"`
	Website       string             `bson:"website,omitempty" json:"website,omitempty" validate:"httpurl"`
	Phone         string             `bson:"phone,omitempty" json:"phone,omitempty" validate:"max=20"`
	Email         string             `bson:"email,omitempty" json:"email,omitempty" validate:"omitempty,email"`
	Address       string             `bson:"address,omitempty" json:"address,omitempty" validate:"required"`
	Location      Location           `bson:"location,omitempty" json:"location,omitempty"`
	Careers       []string           `bson:"careers" json:"careers" validate:"required,dive,career"`
	AverageRating float64            `bson:"averageRating,omitempty" json:"averageRating,omitempty"`
	AverageCost   int                `bson:"averageCost,omitempty" json:"averageCost,omitempty"`
	Photo         string             `bson:"photo" json:"photo"`
	Housing       bool               `bson:"housing" json:"housing"`
	JobAssistance bool               `bson:"jobAssistance" json:"jobAssistance"`
	JobGuarantee  bool               `bson:"jobGuarantee" json:"jobGuarantee"`
	AcceptGi      bool               `bson:"acceptGi" json:"acceptGi"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	User          primitive.ObjectID `bson:"user" json:"user"`
}

func (b *Bootcamp) Validate() error {
	return validate.Struct(b)
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases a name into a URL-safe slug.
func Slugify(name string) string {
	s := strings.ToLower(name)
	s = slugStrip.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
