package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildRequiresConfig(t *testing.T) {
	app, err := NewAppBuilder().Build(context.Background())
	assert.Error(t, err)
	assert.Nil(t, app)
}
