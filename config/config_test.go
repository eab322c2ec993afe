package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DOCVEC_BACKEND", "VECTORSTORE_DIR", "PDF_DIR", "DOCVEC_SQLITE_PATH", "DOCVEC_EMBEDDER",
		"DOCVEC_LOG_LEVEL", "DOCVEC_LOG_FORMAT", "EMBEDDING_MODEL", "OPENAI_BASE_URL",
		"TOP_K_RESULTS", "CHUNK_SIZE", "CHUNK_OVERLAP", "DOCVEC_PARALLELISM",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Search.TopK != 5 || cfg.Chunker.Size != 600 || cfg.Chunker.Overlap != 100 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Storage.Backend != BackendFS || cfg.Embedder.Type != EmbedderHash {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "docvec.yaml")
	data := []byte(`
storage:
  backend: sqlite
  sqlite_path: /tmp/x.sqlite
embedder:
  type: openai
  openai:
    model: text-embedding-3-large
chunker:
  size: 300
  overlap: 50
search:
  top_k: 8
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("TOP_K_RESULTS", "3")
	t.Setenv("EMBEDDING_MODEL", "custom-model")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Storage.Backend != BackendSQLite || cfg.Storage.SQLitePath != "/tmp/x.sqlite" {
		t.Fatalf("unexpected storage: %+v", cfg.Storage)
	}
	if cfg.Chunker.Size != 300 || cfg.Chunker.Overlap != 50 {
		t.Fatalf("unexpected chunker: %+v", cfg.Chunker)
	}
	if cfg.Search.TopK != 3 {
		t.Fatalf("env override not applied: top_k=%d", cfg.Search.TopK)
	}
	if cfg.Embedder.OpenAI == nil || cfg.Embedder.OpenAI.Model != "custom-model" || cfg.Embedder.OpenAI.APIKeyEnv != "OPENAI_API_KEY" {
		t.Fatalf("unexpected openai config: %+v", cfg.Embedder.OpenAI)
	}
}

func TestLoad_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
	}{
		{name: "bad int", env: map[string]string{"CHUNK_SIZE": "big"}},
		{name: "overlap too large", env: map[string]string{"CHUNK_SIZE": "10", "CHUNK_OVERLAP": "10"}},
		{name: "bad backend", env: map[string]string{"DOCVEC_BACKEND": "s3"}},
		{name: "bad embedder", env: map[string]string{"DOCVEC_EMBEDDER": "magic"}},
		{name: "bad level", env: map[string]string{"DOCVEC_LOG_LEVEL": "loud"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(""); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "docvec.yaml")
	cfg := Default()
	cfg.Search.TopK = 9
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Search.TopK != 9 || loaded.Chunker != cfg.Chunker || loaded.Storage != cfg.Storage {
		t.Fatalf("round trip mismatch: %+v vs %+v", loaded, cfg)
	}
}
