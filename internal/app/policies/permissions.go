package policies

import (
	"context"

	"rentavail/internal/domain/shared/apperr"
)

// GuardedMessage is implemented by commands that need the caller to hold the
// manage-blocks permission. The permission is checked upstream and arrives as
// a boolean.
type GuardedMessage interface {
	PermissionGranted() bool
}

// PrecheckedPermissions authorizes guarded messages from the flag they carry.
type PrecheckedPermissions struct{}

func (PrecheckedPermissions) Authorize(_ context.Context, message any) error {
	guarded, ok := message.(GuardedMessage)
	if !ok {
		return nil
	}
	if !guarded.PermissionGranted() {
		return apperr.Forbidden("caller may not manage calendar blocks")
	}
	return nil
}
