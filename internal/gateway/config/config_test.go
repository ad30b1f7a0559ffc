package config

import (
	"testing"

	"github.com/ahmadnish/lets-vibe/internal/tester"
)

func TestFirstNonEmpty(t *testing.T) {
	tester.Eq(t, firstNonEmpty("", "  ", "x", "y"), "x")
	tester.Eq(t, firstNonEmpty("", "  "), "")
}

func TestResolveArchiveEndpoint_LocalPrefersMinio(t *testing.T) {
	t.Setenv("ARTIFACT_MINIO_ENDPOINT", "localhost:9000")
	t.Setenv("ARTIFACT_S3_ENDPOINT", "s3.amazonaws.com")
	tester.Eq(t, resolveArchiveEndpoint("local"), "localhost:9000")
	tester.Eq(t, resolveArchiveEndpoint("production"), "s3.amazonaws.com")
}

func TestResolveArchiveUseSSL(t *testing.T) {
	tester.False(t, resolveArchiveUseSSL("local"), "local minio runs without TLS")

	t.Setenv("ARTIFACT_S3_USE_SSL", "")
	tester.True(t, resolveArchiveUseSSL("production"), "defaults to TLS")

	t.Setenv("ARTIFACT_S3_USE_SSL", "false")
	tester.False(t, resolveArchiveUseSSL("production"))

	t.Setenv("ARTIFACT_S3_USE_SSL", "not-a-bool")
	tester.True(t, resolveArchiveUseSSL("production"), "unparsable value keeps TLS on")
}

func TestLoadLLMConfig(t *testing.T) {
	t.Setenv("LLM_PROVIDER", " Gemini ")
	t.Setenv("LLM_MODEL", "gemini-2.0-flash")
	t.Setenv("LLM_RETRIES", "3")
	cfg := loadLLMConfig()
	tester.Eq(t, cfg.Provider, "gemini")
	tester.Eq(t, cfg.Model, "gemini-2.0-flash")
	tester.Eq(t, cfg.Retries, 3)

	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("LLM_RETRIES", "")
	cfg = loadLLMConfig()
	tester.Eq(t, cfg.Provider, "openai")
	tester.Eq(t, cfg.Retries, 0)
}
