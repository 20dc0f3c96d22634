package services

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authkeeper/internal/common"
)

var (
	errEmailTaken          = common.WithMessage(common.ErrorConflict, "Email already taken")
	errUserNotFound        = common.WithMessage(common.ErrorNotFound, "User not found")
	errRefreshNotFound     = common.WithMessage(common.ErrorNotFound, "Refresh token not found")
	errInvalidRefreshToken = common.WithMessage(common.ErrorUnauthorized, "Invalid or expired refresh token")
	errRefreshRequired     = common.WithMessage(common.ErrorValidation, "Refresh token is required")
)

// internalError hides err behind common.ErrorInternal, keeping its text for
// the log line written at the transport boundary.
func internalError(op string, err error) error {
	if errors.Is(err, common.ErrorInternal) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", common.ErrorInternal, op, err)
}
