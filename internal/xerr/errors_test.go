package xerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesKind(t *testing.T) {
	err := Database("boom", errors.New("disk full"))
	assert.True(t, Is(err, KindDatabase))
	assert.False(t, Is(err, KindIO))
}

func TestErrorMessageIncludesCause(t *testing.T) {
	err := AudioLoad("cannot decode", errors.New("bad header"))
	assert.Contains(t, err.Error(), "bad header")
	assert.Contains(t, err.Error(), "cannot decode")
}

func TestIsWithNilErrorIsFalse(t *testing.T) {
	assert.False(t, Is(nil, KindIO))
}
