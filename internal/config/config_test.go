package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  host: \"\"\n"))
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.GetHost())
	assert.Equal(t, "us-east-1", cfg.Storage.S3Region)
	assert.Equal(t, 5*time.Second, cfg.Slack.Timeout())
	assert.Equal(t, 10*time.Second, cfg.Processing.ProgressInterval())
	assert.Equal(t, int64(100*1024*1024), cfg.Processing.MaxFileSize())
}

func TestLoadParsesYAML(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  host: 0.0.0.0
  port: 8080
storage:
  type: s3
  s3_bucket: clinic-events
  s3_region: eu-west-1
slack:
  webhook_url: https://hooks.slack.com/services/T/B/X
processing:
  progress_interval_ms: 2500
`))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "s3", cfg.Storage.Type)
	assert.Equal(t, "clinic-events", cfg.Storage.S3Bucket)
	assert.Equal(t, "eu-west-1", cfg.Storage.S3Region)
	assert.Equal(t, "https://hooks.slack.com/services/T/B/X", cfg.Slack.WebhookURL)
	assert.Equal(t, 2500*time.Millisecond, cfg.Processing.ProgressInterval())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("S3_BUCKET", "env-bucket")
	t.Setenv("SLACK_WEBHOOK_URL", "https://hooks.slack.com/services/T/B/Y")
	t.Setenv("REDIS_URL", "")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("PROGRESS_INTERVAL_MS", "500")
	t.Setenv("SKIP_S3", "")

	cfg, err := LoadFromEnv(writeConfig(t, "server:\n  port: 3000\n"))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "s3", cfg.Storage.Type)
	assert.Equal(t, "env-bucket", cfg.Storage.S3Bucket)
	assert.Equal(t, "https://hooks.slack.com/services/T/B/Y", cfg.Slack.WebhookURL)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 500*time.Millisecond, cfg.Processing.ProgressInterval())
}

func TestSkipS3ForcesLocal(t *testing.T) {
	t.Setenv("S3_BUCKET", "env-bucket")
	t.Setenv("SKIP_S3", "true")

	cfg, err := LoadFromEnv(writeConfig(t, "{}\n"))
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.Storage.Type)
}

func TestNoBucketMeansLocal(t *testing.T) {
	t.Setenv("S3_BUCKET", "")
	t.Setenv("SKIP_S3", "")

	cfg, err := LoadFromEnv(writeConfig(t, "{}\n"))
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.Storage.Type)
}
