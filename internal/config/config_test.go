package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"CORPUS_SOURCE", "TRIAGE_TOP_K", "TRIAGE_MIN_SIMILARITY", "SMTP_HOST", "ANTHROPIC_API_KEY"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, CorpusSourceCSV, cfg.Corpus.Source)
	assert.Equal(t, 3, cfg.Triage.TopK)
	assert.Equal(t, 0.1, cfg.Triage.MinSimilarity)
	assert.False(t, cfg.Notification.SMTPEnabled())
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout())
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
}

func TestLoad_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CORPUS_SOURCE", "Postgres")
	t.Setenv("TRIAGE_MIN_SIMILARITY", "0.25")
	t.Setenv("TRIAGE_BIGRAMS", "true")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "15")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, CorpusSourcePostgres, cfg.Corpus.Source)
	assert.Equal(t, 0.25, cfg.Triage.MinSimilarity)
	assert.True(t, cfg.Triage.Bigrams)
	assert.True(t, cfg.Notification.SMTPEnabled())
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL())
}

func TestLoad_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("CORPUS_SOURCE", "s3")
	_, err := Load()
	require.ErrorContains(t, err, "CORPUS_SOURCE")

	t.Setenv("CORPUS_SOURCE", "csv")
	t.Setenv("TRIAGE_TOP_K", "0")
	_, err = Load()
	require.ErrorContains(t, err, "TRIAGE_TOP_K")
}

func TestGetEnvAsFloat_BadValueFallsBack(t *testing.T) {
	t.Setenv("SOME_FLOAT", "abc")
	assert.Equal(t, 1.5, getEnvAsFloat("SOME_FLOAT", 1.5))
}
