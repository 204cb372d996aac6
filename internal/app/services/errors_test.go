package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yigit/coursebooking/internal/pkg/apperrors"
	"github.com/yigit/coursebooking/internal/pkg/dberrors"
)

func TestMapStoreError(t *testing.T) {
	assert.NoError(t, mapStoreError(nil))
	assert.Same(t, apperrors.ErrCourseFull, mapStoreError(apperrors.ErrCourseFull))

	broken := mapStoreError(errors.New("connection reset"))
	assert.ErrorIs(t, broken, apperrors.ErrStoreUnavailable)
	assert.False(t, dberrors.IsTimeout(broken))

	slow := mapStoreError(fmt.Errorf("lock course 1: %w", context.DeadlineExceeded))
	assert.ErrorIs(t, slow, apperrors.ErrStoreUnavailable)
	assert.True(t, dberrors.IsTimeout(slow))
}
