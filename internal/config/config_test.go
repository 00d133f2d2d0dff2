package config

import (
	"testing"
)

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Embedding.Model != "text-embedding-3-small" {
		t.Errorf("expected default model, got %q", cfg.Embedding.Model)
	}
	if cfg.Embedding.Dimensions != 1536 {
		t.Errorf("expected Dimensions=1536, got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Embedding.BatchSize != 64 {
		t.Errorf("expected BatchSize=64, got %d", cfg.Embedding.BatchSize)
	}
	if cfg.Chunking.MaxSize != 400 {
		t.Errorf("expected MaxSize=400, got %d", cfg.Chunking.MaxSize)
	}
	if cfg.Chunking.Overlap != 40 {
		t.Errorf("expected Overlap=40, got %d", cfg.Chunking.Overlap)
	}
	if cfg.Index.Collection != "studyvault_documents" {
		t.Errorf("expected default collection, got %q", cfg.Index.Collection)
	}
	if cfg.Index.KeyPrefix != "studyvault:" {
		t.Errorf("expected KeyPrefix='studyvault:', got %q", cfg.Index.KeyPrefix)
	}
	if len(cfg.Transcript.Languages) == 0 || cfg.Transcript.Languages[0] != "en" {
		t.Errorf("expected language fallback starting with en, got %v", cfg.Transcript.Languages)
	}
	if cfg.Retry.MaxAttempts != 3 || cfg.Retry.BaseDelayMS != 1000 {
		t.Errorf("expected retry defaults 3/1000, got %d/%d", cfg.Retry.MaxAttempts, cfg.Retry.BaseDelayMS)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		Embedding: EmbeddingConfig{Model: "custom-model", Dimensions: 768, BatchSize: 16},
		Chunking:  ChunkingConfig{MaxSize: 800, Overlap: 100},
		Index:     IndexConfig{Collection: "custom", KeyPrefix: "custom:"},
	}
	cfg.ApplyDefaults()

	if cfg.Embedding.Model != "custom-model" {
		t.Errorf("expected Model='custom-model', got %q", cfg.Embedding.Model)
	}
	if cfg.Embedding.Dimensions != 768 {
		t.Errorf("expected Dimensions=768, got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Chunking.MaxSize != 800 || cfg.Chunking.Overlap != 100 {
		t.Errorf("expected chunking 800/100, got %d/%d", cfg.Chunking.MaxSize, cfg.Chunking.Overlap)
	}
	if cfg.Index.Collection != "custom" {
		t.Errorf("expected Collection='custom', got %q", cfg.Index.Collection)
	}
}

func TestValidate_MissingAddrs(t *testing.T) {
	cfg := Config{
		Embedding: EmbeddingConfig{APIKey: "test-key"},
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_MissingAPIKey(t *testing.T) {
	cfg := Config{
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestValidate_OverlapNotBelowMaxSize(t *testing.T) {
	cfg := Config{
		Database:  DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Embedding: EmbeddingConfig{APIKey: "test-key"},
		Chunking:  ChunkingConfig{MaxSize: 100, Overlap: 100},
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for overlap >= max_size")
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := Config{
		Database:  DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Embedding: EmbeddingConfig{APIKey: "test-key"},
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("STUDYVAULT_TEST_KEY", "secret")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "key: ${STUDYVAULT_TEST_KEY}", "key: secret"},
		{"unset", "key: ${STUDYVAULT_TEST_UNSET}", "key: "},
		{"default_used", "key: ${STUDYVAULT_TEST_UNSET:-fallback}", "key: fallback"},
		{"default_ignored", "key: ${STUDYVAULT_TEST_KEY:-fallback}", "key: secret"},
		{"no_vars", "key: literal", "key: literal"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := string(expandEnvVars([]byte(tc.input))); got != tc.want {
				t.Errorf("expandEnvVars(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
