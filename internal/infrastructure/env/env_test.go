package env

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestNewEnvServiceFrom_Overrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".env"), "LA_TEST_MODEL=base\nLA_TEST_BATCH=3\n")
	writeFile(t, filepath.Join(dir, ".env.test"), "LA_TEST_MODEL=override\n")

	t.Setenv("APP_ENV", "test")
	t.Setenv("LA_TEST_MODEL", "")
	t.Setenv("LA_TEST_BATCH", "")
	os.Unsetenv("LA_TEST_MODEL")
	os.Unsetenv("LA_TEST_BATCH")

	s := NewEnvServiceFrom(dir)

	assert.Equal(t, "test", s.AppEnv())
	assert.Len(t, s.Loaded(), 2)
	assert.Equal(t, "override", s.Get("LA_TEST_MODEL"))
	assert.Equal(t, 3, s.GetInt("LA_TEST_BATCH", 1))
}

func TestEnvService_TypedGetters(t *testing.T) {
	s := &EnvService{}

	t.Setenv("LA_TEST_BOOL", "true")
	t.Setenv("LA_TEST_BAD_INT", "many")
	t.Setenv("LA_TEST_DURATION", "90s")
	t.Setenv("LA_TEST_SECONDS", "45")
	t.Setenv("LA_TEST_BLANK", "   ")

	assert.True(t, s.GetBool("LA_TEST_BOOL", false))
	assert.True(t, s.GetBool("LA_TEST_UNSET", true))
	assert.Equal(t, 7, s.GetInt("LA_TEST_BAD_INT", 7))
	assert.Equal(t, 90*time.Second, s.GetDuration("LA_TEST_DURATION", time.Second))
	assert.Equal(t, 45*time.Second, s.GetDuration("LA_TEST_SECONDS", time.Second))
	assert.Equal(t, time.Minute, s.GetDuration("LA_TEST_UNSET", time.Minute))
	assert.Equal(t, "fallback", s.GetWithDefault("LA_TEST_BLANK", "fallback"))
}
