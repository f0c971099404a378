package gateway_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/mappmcp/pkg/gatewaysdk"
	"github.com/docker/go-connections/nat"
	"github.com/golang-jwt/jwt/v5"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Common constants and helper functions for gateway end-to-end tests.
 * The gateway runs from its Docker image; credentials land in a real Redis.
 */

const (
	testImageName = "mappmcp-test:latest"
	redisImage    = "redis:7-alpine"

	encryptionKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
	actionSecret  = "e2e-action-secret"
	publicBaseURL = "https://mcp.e2e.example"
)

// TestMain builds the Docker image once before all tests and removes it afterwards.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building gateway Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up gateway Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	cmd := exec.CommandContext(context.Background(), "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/mappmcp/Dockerfile",
		"../../../")
	cmd.Stdout = os.Stdout
	return cmd.Run()
}

func cleanupDockerImage() {
	cmd := exec.CommandContext(context.Background(), "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // image might not exist
}

// stack is a running gateway backed by Redis.
type stack struct {
	BaseURL string
	Client  *gatewaysdk.SDKClient
	Redis   *goredis.Client
}

type stackOption func(env map[string]string)

// withDefaultRateLimits keeps production limits, for rate limit tests.
func withDefaultRateLimits() stackOption {
	return func(env map[string]string) {
		for k := range env {
			if strings.HasPrefix(k, "RATELIMIT_") {
				delete(env, k)
			}
		}
	}
}

func withoutActionSecret() stackOption {
	return func(env map[string]string) { delete(env, "AUTH0_ACTION_SECRET") }
}

// setupStack starts Redis and the gateway on a private network.
func setupStack(t *testing.T, opts ...stackOption) *stack {
	t.Helper()
	ctx := context.Background()

	nw, err := network.New(ctx)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := nw.Remove(ctx); err != nil {
			t.Logf("failed to remove network: %v", err)
		}
	})

	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:          redisImage,
			ExposedPorts:   []string{"6379/tcp"},
			Networks:       []string{nw.Name},
			NetworkAliases: map[string][]string{nw.Name: {"redis"}},
			WaitingFor:     wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	terminate(t, redisC)

	env := map[string]string{
		"ENV":                       "test",
		"LOG_LEVEL":                 "debug",
		"LOG_FORMAT":                "json",
		"PUBLIC_BASE_URL":           publicBaseURL,
		"CREDENTIAL_ENCRYPTION_KEY": encryptionKey,
		"AUTH0_ACTION_SECRET":       actionSecret,
		"KV_DRIVER":                 "redis",
		"REDIS_URL":                 "redis://redis:6379/0",
		// Tests make many rapid requests which would otherwise hit the strict limits
		"RATELIMIT_STRICT_REQUESTS":   "1000",
		"RATELIMIT_STRICT_BURST":      "1000",
		"RATELIMIT_MODERATE_REQUESTS": "1000",
		"RATELIMIT_MODERATE_BURST":    "1000",
	}
	for _, opt := range opts {
		opt(env)
	}

	gw, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        testImageName,
			ExposedPorts: []string{"8080/tcp"},
			Networks:     []string{nw.Name},
			Env:          env,
			WaitingFor: wait.ForHTTP("/livez").
				WithPort("8080/tcp").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	terminate(t, gw)

	return &stack{
		BaseURL: endpoint(t, gw, "8080", "http"),
		Client:  gatewaysdk.NewSDKClient(endpoint(t, gw, "8080", "http")),
		Redis:   goredis.NewClient(&goredis.Options{Addr: endpoint(t, redisC, "6379", "")}),
	}
}

func terminate(t *testing.T, c testcontainers.Container) {
	t.Cleanup(func() {
		if err := c.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})
}

func endpoint(t *testing.T, c testcontainers.Container, port, scheme string) string {
	t.Helper()
	ctx := context.Background()

	mapped, err := c.MappedPort(ctx, nat.Port(port))
	require.NoError(t, err)
	host, err := c.Host(ctx)
	require.NoError(t, err)

	if scheme == "" {
		return fmt.Sprintf("%s:%s", host, mapped.Port())
	}
	return fmt.Sprintf("%s://%s:%s", scheme, host, mapped.Port())
}

// sessionToken mints the token a post-login action would hand to /api/setup.
func sessionToken(t *testing.T, secret, sub string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   sub,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(5 * time.Minute)),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

// requireAPIError asserts err is an *APIError with the given status.
func requireAPIError(t *testing.T, err error, status int) *gatewaysdk.APIError {
	t.Helper()
	var apiErr *gatewaysdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, status, apiErr.StatusCode, apiErr.Error())
	return apiErr
}
