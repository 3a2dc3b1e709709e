package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ReturnsSetupErrors(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:1/chat?sslmode=disable")
	t.Setenv("GATEWAY_PROVIDER", "bogus")

	err := run()
	require.Error(t, err)
	assert.ErrorContains(t, err, "create application")
	assert.ErrorContains(t, err, "GATEWAY_PROVIDER")
}
