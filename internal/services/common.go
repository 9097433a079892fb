package services

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sahanr03/devcamper/internal/httperr"
)

// parseID converts a path id to an ObjectID. A malformed id gets the
// same 404 a missing document would, the resource simply isn't there.
func parseID(resource, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, httperr.NotFound(resource, id)
	}
	return oid, nil
}

func findOneAndUpdateAfter() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}
