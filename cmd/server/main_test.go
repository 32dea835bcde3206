package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorsConfig(t *testing.T) {
	all := corsConfig(nil)
	assert.True(t, all.AllowAllOrigins)
	assert.Contains(t, all.AllowHeaders, "Authorization")

	some := corsConfig([]string{"https://shop.example.com"})
	assert.False(t, some.AllowAllOrigins)
	assert.Equal(t, []string{"https://shop.example.com"}, some.AllowOrigins)
	assert.NoError(t, some.Validate())
}

func TestSeedRequiresFile(t *testing.T) {
	cmd := seedCmd()
	assert.Error(t, cmd.Args(cmd, nil))
	assert.NoError(t, cmd.Args(cmd, []string{"products.json"}))
}
