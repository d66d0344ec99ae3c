package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sample = `env: "dev"
storage_path: "postgres://hkn@localhost/hkn"
lock_ttl: 3s
tutoring:
  start: 9
  end: 15
  semester: "20121"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

// unsetenv clears key for the test and restores it afterwards.
func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
}

func TestLoad_File(t *testing.T) {
	unsetenv(t, "ENV", "STORAGE_PATH", "REDIS_ADDR", "LOCK_TTL", "TUTORING_START", "TUTORING_END", "TUTORING_SEMESTER")

	cfg, err := Load(writeConfig(t, sample))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Env != "dev" || cfg.StoragePath != "postgres://hkn@localhost/hkn" || cfg.LockTTL != 3*time.Second {
		t.Errorf("Load() = %+v", cfg)
	}
	if cfg.Tutoring != (Tutoring{Start: 9, End: 15, Semester: "20121"}) {
		t.Errorf("Tutoring = %+v", cfg.Tutoring)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	unsetenv(t, "ENV", "REDIS_ADDR", "LOCK_TTL", "TUTORING_START", "TUTORING_END")
	t.Setenv("STORAGE_PATH", "postgres://other/hkn")
	t.Setenv("TUTORING_SEMESTER", "20131")

	cfg, err := Load(writeConfig(t, sample))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.StoragePath != "postgres://other/hkn" || cfg.Tutoring.Semester != "20131" {
		t.Errorf("Load() = %+v", cfg)
	}
}

func TestLoad_ConfigPathEnv(t *testing.T) {
	unsetenv(t, "ENV", "STORAGE_PATH", "REDIS_ADDR", "LOCK_TTL", "TUTORING_START", "TUTORING_END", "TUTORING_SEMESTER")
	t.Setenv("CONFIG_PATH", writeConfig(t, sample))

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Env != "dev" {
		t.Errorf("Env = %q, want dev", cfg.Env)
	}
}

func TestLoad_EnvOnly(t *testing.T) {
	unsetenv(t, "ENV", "REDIS_ADDR", "LOCK_TTL", "TUTORING_START", "TUTORING_END", "TUTORING_SEMESTER")
	t.Setenv("STORAGE_PATH", "postgres://env/hkn")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Env != "local" || cfg.LockTTL != 10*time.Second {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
	if cfg.Tutoring != (Tutoring{Start: 11, End: 17, Semester: "20113"}) {
		t.Errorf("Tutoring = %+v, want defaults", cfg.Tutoring)
	}
}

func TestLoad_Errors(t *testing.T) {
	unsetenv(t, "ENV", "STORAGE_PATH", "REDIS_ADDR", "LOCK_TTL", "TUTORING_START", "TUTORING_END", "TUTORING_SEMESTER")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() without storage_path: expected error")
	}

	inverted := "storage_path: \"postgres://x\"\ntutoring:\n  start: 15\n  end: 9\n"
	if _, err := Load(writeConfig(t, inverted)); err == nil {
		t.Error("Load() with start after end: expected error")
	}
}
