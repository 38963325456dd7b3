package cli

import (
	"errors"

	"github.com/dmitrijs2005/chatkeeper/internal/common"
)

var (
	errWrongPassword      = errors.New("incorrect current password")
	errBackupNotAvailable = errors.New("backup is not configured")
)

// describe turns a command error into the line shown to the user.
func describe(err error) string {
	switch {
	case errors.Is(err, common.ErrorUnauthorized):
		return "Not logged in or session expired."
	case errors.Is(err, common.ErrForbidden):
		return "This command requires the admin role."
	case errors.Is(err, common.ErrAlreadyExists):
		return "Sorry, username taken."
	case errors.Is(err, common.ErrorNotFound):
		return "User does not exist."
	case errors.Is(err, common.ErrLastAdmin):
		return "Cannot remove the last admin. Operation aborted."
	case errors.Is(err, common.ErrStorageUnavailable):
		return "Storage is unavailable, try again later."
	case errors.Is(err, common.ErrCrypto):
		return "Encrypted data could not be read: " + err.Error()
	}
	return err.Error()
}
