package teller_test

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAuditTrail(t *testing.T) {
	client, cleanup := setupTellerContainer(t)
	defer cleanup()

	pair := adminLogin(t, client)
	ctx := t.Context()

	out, err := client.ListAuditEvents(ctx, pair.AccessToken, 50)
	require.NoError(t, err)
	require.NotEmpty(t, out.Events)

	// The admin login that opened this test is itself on the trail
	types := make([]string, 0, len(out.Events))
	for _, e := range out.Events {
		types = append(types, e.Type)
	}
	require.Contains(t, types, "auth.login")

	t.Run("requires a token", func(t *testing.T) {
		_, err := client.ListAuditEvents(ctx, "", 10)
		require.Error(t, err)
	})
}
