package teller_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/aussiebroadwan/tellerdesk/pkg/tellersdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Common constants and helper functions for teller service end-to-end tests.
 * This includes container setup, service operations, and assertions.
 */

const (
	testImageName = "tellerdesk-test:latest"

	jwtSecret     = "e2e-signing-secret-0123456789abcdef"
	adminTenant   = "bank-e2e"
	adminUsername = "admin"
	adminPassword = "Admin123!"
)

// TestMain manages the test lifecycle, builds the Docker image once before
// all tests and cleans it up after all tests complete.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building Teller Service Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up Teller Service Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

// buildDockerImage builds the test Docker image if it doesn't exist.
func buildDockerImage() error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/teller/Dockerfile",
		"../../../")
	cmd.Dir = "."
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

// cleanupDockerImage removes the test Docker image.
func cleanupDockerImage() {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // Ignore errors - image might not exist
}

// setupTellerContainer starts the teller service in a container and returns
// an SDK client pointed at it.
func setupTellerContainer(t *testing.T) (*tellersdk.Client, func()) {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env: map[string]string{
			"TELLER_JWT_SECRET":         jwtSecret,
			"TELLER_ISSUER":             "tellerdesk-e2e",
			"TELLER_DATABASE_FILE":      "/teller.db",
			"TELLER_PEPPER_FILE":        "/pepper",
			"TELLER_BOOTSTRAP_TENANT":   adminTenant,
			"TELLER_BOOTSTRAP_USERNAME": adminUsername,
			"TELLER_BOOTSTRAP_PASSWORD": adminPassword,
			"ENV":                       "test",
			"LOG_LEVEL":                 "info",
			"LOG_FORMAT":                "json",
			// Increase rate limits for E2E tests to prevent test failures.
			// Tests make many rapid requests which would otherwise hit the
			// strict production limits
			"RATELIMIT_STRICT_REQUESTS":    "1000",
			"RATELIMIT_STRICT_WINDOW_SEC":  "60",
			"RATELIMIT_STRICT_BURST":       "1000",
			"RATELIMIT_MODERATE_REQUESTS":  "1000",
			"RATELIMIT_MODERATE_BURST":     "1000",
			"TELLER_RATE_LIMIT_REQUESTS":   "1000",
			"TELLER_RATE_LIMIT_WINDOW":     "60s",
		},
		WaitingFor: wait.ForHTTP("/livez").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	client := tellersdk.NewClient(fmt.Sprintf("http://%s:%s", host, mappedPort.Port()))

	cleanup := func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return client, cleanup
}

// adminLogin logs in as the bootstrap admin.
func adminLogin(t *testing.T, client *tellersdk.Client) *tellersdk.TokenResponse {
	t.Helper()

	pair, err := client.Login(t.Context(), tellersdk.LoginRequest{
		TenantID: adminTenant,
		Username: adminUsername,
		Password: adminPassword,
	})
	require.NoError(t, err)
	assertTokenResponse(t, pair)
	return pair
}

// assertTokenResponse verifies a token response has all required fields.
func assertTokenResponse(t *testing.T, resp *tellersdk.TokenResponse) {
	t.Helper()
	require.NotNil(t, resp)
	require.NotEmpty(t, resp.AccessToken, "Access token should not be empty")
	require.NotEmpty(t, resp.RefreshToken, "Refresh token should not be empty")
	require.Equal(t, "Bearer", resp.TokenType, "Token type should be Bearer")
}

// assertAPIError verifies an error is an APIError with the given code.
func assertAPIError(t *testing.T, err error, code string, context string) {
	t.Helper()
	require.Error(t, err, context)

	var apiErr *tellersdk.APIError
	require.ErrorAs(t, err, &apiErr, context)
	require.Equal(t, code, apiErr.Code, context)
}
