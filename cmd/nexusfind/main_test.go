package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("NEXUSFIND_CONFIG", "")
	t.Setenv("ITEM_STORE", "memory")
	t.Setenv("STATE_BACKEND", "file")
	t.Setenv("STATE_FILE", filepath.Join(t.TempDir(), "state.json"))
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("STORAGE_BUCKET", "")
	t.Setenv("SAFESEARCH_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "info")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLI_VerifyAndWhoami(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Verified:    no")

	out, err = run(t, "verify", "--institution", "iiith", "--email", "me@iiith.ac.in", "--location", "Gachibowli")
	require.NoError(t, err)
	assert.Contains(t, out, "Verified:    yes (IIIT Hyderabad)")

	out, err = run(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "IIIT Hyderabad")

	_, err = run(t, "unverify")
	require.NoError(t, err)
	out, err = run(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Verified:    no")
}

func TestCLI_VerifyRejectsBadInput(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "verify", "--institution", "MIT", "--email", "x", "--location", "y")
	assert.Error(t, err)
}

func TestCLI_Items(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "items", "--institution", "IIITA", "--status", "lost", "--category", "", "--all=false")
	require.NoError(t, err)
	assert.Contains(t, out, "Blue Water Bottle")
	assert.Contains(t, out, "Mathematics Textbook")
	assert.NotContains(t, out, "Black Headphones")
}

func TestCLI_PostRequiresVerification(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "post", "--name", "Red Umbrella", "--description", "Left in room 3", "--status", "found", "--category", "Accessories")
	assert.Error(t, err)

	_, err = run(t, "verify", "--institution", "IIITB", "--email", "me@iiitb.ac.in", "--location", "Bangalore")
	require.NoError(t, err)

	out, err := run(t, "post", "--name", "Red Umbrella", "--description", "Left in room 3", "--status", "found", "--category", "Accessories")
	require.NoError(t, err)
	assert.Contains(t, out, "Listed ")
}

func TestCLI_OptimizeWithoutKey(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "optimize", "A", "long", "enough", "description")
	assert.Error(t, err)
}

func TestCLI_Seed(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 8 items")
}
