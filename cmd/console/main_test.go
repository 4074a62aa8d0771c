package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	httpapi "github.com/spec-kit/nexus-console/internal/api/http"
	"github.com/spec-kit/nexus-console/internal/auth"
	"github.com/spec-kit/nexus-console/internal/config"
	"github.com/spec-kit/nexus-console/internal/repository"
)

func startDevserver(t *testing.T) string {
	t.Helper()
	repos := repository.NewMemoryRepositories()
	hash, err := auth.HashPassword("nexus123", bcrypt.MinCost)
	require.NoError(t, err)
	_, err = repository.Seed(context.Background(), repos, hash)
	require.NoError(t, err)

	srv := httpapi.NewServer(&config.Config{
		App:  config.AppConfig{Name: "nexus-devserver", Version: "test"},
		Auth: config.AuthConfig{JWTSecret: "cli-secret", AccessTokenTTLMinutes: 5, CookieName: "nexus_session"},
	}, httpapi.ServerDependencies{
		Repos:       repos,
		Revocations: auth.NewMemoryRevocations(),
		Logger:      zap.NewNop(),
	})
	ts := httptest.NewServer(adaptor.FiberApp(srv.App))
	t.Cleanup(ts.Close)
	return ts.URL + httpapi.APIPrefix
}

// invoke runs one CLI process worth of work and returns stdout.
func invoke(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), err
}

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("API_BASE_URL", startDevserver(t))
	t.Setenv("STORAGE_DRIVER", "file")
	t.Setenv("STORAGE_FILE", filepath.Join(t.TempDir(), "session.json"))
	t.Setenv("CONSOLE_PERSIST_COOKIES", "true")
	t.Setenv("CONSOLE_USE_FIXTURES", "false")
}

func TestSessionSurvivesAcrossInvocations(t *testing.T) {
	setupEnv(t)

	out, err := invoke(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in")

	_, err = invoke(t, "login", "john@nexus.com", "wrong")
	assert.EqualError(t, err, "Invalid credentials or server unavailable.")

	out, err = invoke(t, "login", "john@nexus.com", "nexus123")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as John Dev (DEVELOPER)")

	out, err = invoke(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "role:   DEVELOPER")

	out, err = invoke(t, "tasks")
	require.NoError(t, err)
	assert.Contains(t, out, "== Todo (1)")
	assert.Contains(t, out, "t1")

	out, err = invoke(t, "move", "t1", "done")
	require.NoError(t, err)
	assert.Contains(t, out, "Task t1 moved to DONE")

	_, err = invoke(t, "move", "t2", "BLOCKED")
	assert.Error(t, err)

	out, err = invoke(t, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out")

	_, err = invoke(t, "tasks")
	assert.ErrorIs(t, err, errNotSignedIn)
}

func TestRoleGatedCommands(t *testing.T) {
	setupEnv(t)

	_, err := invoke(t, "login", "admin@nexus.com", "nexus123")
	require.NoError(t, err)

	out, err := invoke(t, "menu")
	require.NoError(t, err)
	assert.Contains(t, out, "/staff")

	out, err = invoke(t, "tickets", "--status", "resolved")
	require.NoError(t, err)
	assert.Contains(t, out, "RESOLVED")
	assert.NotContains(t, out, "ASSIGNED ")

	out, err = invoke(t, "role", "5", "agent")
	require.NoError(t, err)
	assert.Contains(t, out, "Staff 5 is now AGENT")

	out, err = invoke(t, "lang", "hi-IN")
	require.NoError(t, err)
	assert.Contains(t, out, "hi")
	out, err = invoke(t, "menu")
	require.NoError(t, err)
	assert.Contains(t, out, "कर्मचारी")
}

func TestChatCommands(t *testing.T) {
	setupEnv(t)

	_, err := invoke(t, "login", "smith@nexus.com", "nexus123")
	require.NoError(t, err)

	out, err := invoke(t, "chats")
	require.NoError(t, err)
	assert.Contains(t, out, "Alex")

	_, err = invoke(t, "open", "1")
	require.NoError(t, err)

	out, err = invoke(t, "send", "1", "Checking", "now")
	require.NoError(t, err)
	assert.Contains(t, out, "Sent")

	out, err = invoke(t, "open", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "you: Checking now")

	_, err = invoke(t, "close", "1")
	require.NoError(t, err)
	out, err = invoke(t, "chats")
	require.NoError(t, err)
	assert.NotContains(t, out, "Checking now")
}

func TestUsageErrors(t *testing.T) {
	setupEnv(t)

	_, err := invoke(t, "frobnicate")
	assert.ErrorContains(t, err, "unknown command")

	_, err = invoke(t, "login", "only-email")
	assert.ErrorContains(t, err, "usage: console login")

	_, err = invoke(t, "--api", "not a url", "whoami")
	assert.Error(t, err)

	out, err := invoke(t)
	require.NoError(t, err)
	assert.Empty(t, out)
}
