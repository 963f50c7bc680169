package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	assert.NoError(t, c.Validate())
}

func TestValidateRejectsNonPowerOfTwoTileSize(t *testing.T) {
	c := Default()
	c.TileSize = 200
	err := c.Validate()
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfigInvalid))
}

func TestValidateRejectsNonPositiveEscapeRadius(t *testing.T) {
	c := Default()
	c.EscapeRadius = 0
	assert.Error(t, c.Validate())
}

func TestResolvedWorkerCountOverride(t *testing.T) {
	c := Default()
	c.WorkerCount = 7
	assert.Equal(t, 7, c.ResolvedWorkerCount())

	c.WorkerCount = 0
	assert.GreaterOrEqual(t, c.ResolvedWorkerCount(), 2)
}

func TestEngineErrorWrapsCause(t *testing.T) {
	cause := errors.New("boom")
	e := NewEngineError(ErrKindTileRenderError, "tile 0/0/0", cause)
	assert.ErrorIs(t, e, cause)
	assert.Contains(t, e.Error(), "TileRenderError")
}
