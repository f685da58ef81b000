package mongo

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	"rentavail/internal/domain/shared/apperr"
)

var ErrConcurrentUpdate = apperr.Conflict(apperr.CodeConcurrentUpdate, "record was changed concurrently")

// storeErr maps a driver error to notFound when no document matched and to
// an upstream failure otherwise.
func storeErr(err, notFound error) error {
	if err == nil {
		return nil
	}
	if notFound != nil && errors.Is(err, mongo.ErrNoDocuments) {
		return notFound
	}
	return apperr.Upstream(err)
}

// versionedSave reports ErrConcurrentUpdate when an optimistic write lost.
func versionedSave(res *mongo.UpdateResult, err error) error {
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return apperr.Upstream(err)
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	return nil
}
