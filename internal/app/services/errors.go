package services

import (
	"errors"
	"fmt"

	"github.com/yigit/coursebooking/internal/pkg/apperrors"
	"github.com/yigit/coursebooking/internal/pkg/dberrors"
)

// mapStoreError passes admission and lookup sentinels through and folds
// everything else into ErrStoreUnavailable. Timeouts keep their cause in the
// chain so callers can tell a slow store from a broken one.
func mapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, apperrors.ErrCourseNotFound),
		errors.Is(err, apperrors.ErrCourseFull),
		errors.Is(err, apperrors.ErrStoreUnavailable):
		return err
	case dberrors.IsTimeout(err):
		return fmt.Errorf("%w: timed out: %w", apperrors.ErrStoreUnavailable, err)
	default:
		return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
}
