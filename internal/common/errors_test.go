package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKindWrapping(t *testing.T) {
	err := NotFoundf("wallet %d", 42)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "wallet 42")

	err = InvalidArgumentf("split sum mismatch")
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	assert.False(t, errors.Is(err, ErrNotFound))

	err = PermissionDeniedf("only the owner can delete group %d", 7)
	assert.True(t, errors.Is(err, ErrPermissionDenied))

	err = Conflictf("category in use")
	assert.True(t, errors.Is(err, ErrConflict))
}

func TestErrorKindSurvivesWrapping(t *testing.T) {
	inner := NotFoundf("transaction 9")
	outer := fmt.Errorf("deleting: %w", inner)
	assert.True(t, errors.Is(outer, ErrNotFound))
}

func TestUserError(t *testing.T) {
	base := errors.New("row missing")
	err := NewUserError("could not load wallet", base)

	var userErr *UserError
	require.True(t, errors.As(err, &userErr))
	assert.Equal(t, "could not load wallet", userErr.UserMessage)
	assert.True(t, errors.Is(err, base))
}
