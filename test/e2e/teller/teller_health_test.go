package teller_test

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHealthEndpoints(t *testing.T) {
	client, cleanup := setupTellerContainer(t)
	defer cleanup()

	t.Run("liveness", func(t *testing.T) {
		health, err := client.GetLiveness(t.Context())
		require.NoError(t, err)
		require.Equal(t, "ok", health.Status)
		require.NotEmpty(t, health.Uptime)
		require.NotEmpty(t, health.Version)
	})

	t.Run("readiness", func(t *testing.T) {
		health, err := client.GetReadiness(t.Context())
		require.NoError(t, err)
		require.Equal(t, "ok", health.Status)
	})
}
