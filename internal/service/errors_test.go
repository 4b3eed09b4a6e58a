package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMatchesByCode(t *testing.T) {
	custom := ErrItemNotFound.withMsg("hotel %d does not exist", 5)
	wrapped := fmt.Errorf("compose: %w", custom)

	assert.ErrorIs(t, wrapped, ErrItemNotFound)
	assert.False(t, errors.Is(wrapped, ErrNotFound))
	assert.Equal(t, KindValidation, KindOf(wrapped))
	assert.Equal(t, "ITEM_NOT_FOUND", CodeOf(wrapped))
	assert.Equal(t, "ITEM_NOT_FOUND: hotel 5 does not exist", custom.Error())
}

func TestUntypedErrorsAreInternal(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, "INTERNAL", CodeOf(err))

	wrapped := internal("insert booking", err)
	assert.ErrorIs(t, wrapped, err)
	assert.Equal(t, KindInternal, KindOf(wrapped))
}
