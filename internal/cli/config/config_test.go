package config

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/listatree/hypothesis/internal/backend"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	t.Cleanup(func() { os.Chdir(oldWd) })
	return tmpDir
}

func TestLoad(t *testing.T) {
	// Test loading with no config file (should use defaults)
	chdirTemp(t)
	t.Setenv(DatabaseFileEnv, "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error loading defaults, got %v", err)
	}

	if cfg.Backend.Type != backend.TypeMemory {
		t.Errorf("expected memory backend by default, got %s", cfg.Backend.Type)
	}

	if cfg.Backend.Table != backend.DefaultTable {
		t.Errorf("expected default table %s, got %s", backend.DefaultTable, cfg.Backend.Table)
	}

	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("expected default redis addr, got %s", cfg.Redis.Addr)
	}

	if cfg.Server.Addr != "localhost:8420" {
		t.Errorf("expected default server addr, got %s", cfg.Server.Addr)
	}

	if cfg.LogLevel() != zapcore.InfoLevel {
		t.Errorf("expected info level, got %s", cfg.LogLevel())
	}
}

func TestLoadWithConfigFile(t *testing.T) {
	chdirTemp(t)

	configContent := `
backend:
  type: sqlite
  driver: sqlite
  path: examples.db
  table: failing_examples
log:
  level: debug
server:
  addr: 0.0.0.0:9000
`
	os.WriteFile("exampledb.yaml", []byte(configContent), 0644)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	bc := cfg.BackendConfig()
	if bc.Type != backend.TypeSQLite || bc.Driver != "sqlite" || bc.Path != "examples.db" {
		t.Errorf("unexpected backend config: %+v", bc)
	}

	if bc.Table != "failing_examples" {
		t.Errorf("expected table 'failing_examples', got %s", bc.Table)
	}

	if cfg.LogLevel() != zapcore.DebugLevel {
		t.Errorf("expected debug level, got %s", cfg.LogLevel())
	}

	if cfg.Server.Addr != "0.0.0.0:9000" {
		t.Errorf("expected addr '0.0.0.0:9000', got %s", cfg.Server.Addr)
	}
}

func TestLoadFileExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	os.WriteFile(path, []byte("redis:\n  prefix: \"test:\"\nbackend:\n  type: redis\n"), 0644)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Backend.Type != backend.TypeRedis {
		t.Errorf("expected redis backend, got %s", cfg.Backend.Type)
	}
	if cfg.BackendConfig().Redis.Prefix != "test:" {
		t.Errorf("expected prefix 'test:', got %s", cfg.Redis.Prefix)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	chdirTemp(t)
	t.Setenv("EXAMPLEDB_BACKEND_TYPE", "postgres")
	t.Setenv("EXAMPLEDB_BACKEND_URL", "postgres://localhost/examples")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Backend.Type != backend.TypePostgres {
		t.Errorf("expected postgres backend, got %s", cfg.Backend.Type)
	}
	if cfg.Backend.URL != "postgres://localhost/examples" {
		t.Errorf("expected url from environment, got %s", cfg.Backend.URL)
	}
}

func TestDatabaseFileSelectsSQLite(t *testing.T) {
	chdirTemp(t)
	t.Setenv(DatabaseFileEnv, "/tmp/examples.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Backend.Type != backend.TypeSQLite {
		t.Errorf("expected sqlite backend, got %s", cfg.Backend.Type)
	}
	if cfg.Backend.Path != "/tmp/examples.db" {
		t.Errorf("expected path from %s, got %s", DatabaseFileEnv, cfg.Backend.Path)
	}
}

func TestDatabaseFileIgnoredWhenTypeSet(t *testing.T) {
	chdirTemp(t)
	t.Setenv(DatabaseFileEnv, "/tmp/examples.db")
	t.Setenv("EXAMPLEDB_BACKEND_TYPE", "memory")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Backend.Type != backend.TypeMemory {
		t.Errorf("expected memory backend, got %s", cfg.Backend.Type)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Backend: BackendConfig{Type: "memory"}, Log: LogConfig{Level: "info"}}, false},
		{"sqlite without path", Config{Backend: BackendConfig{Type: "sqlite"}, Log: LogConfig{Level: "info"}}, true},
		{"postgres without url", Config{Backend: BackendConfig{Type: "postgres"}, Log: LogConfig{Level: "info"}}, true},
		{"unknown type", Config{Backend: BackendConfig{Type: "etcd"}, Log: LogConfig{Level: "info"}}, true},
		{"bad level", Config{Backend: BackendConfig{Type: "memory"}, Log: LogConfig{Level: "loud"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateConfig(&tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	cfg := &Config{Log: LogConfig{Level: "warn"}}
	logger, err := cfg.NewLogger()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("expected info to be disabled at warn level")
	}
	if !logger.Core().Enabled(zapcore.WarnLevel) {
		t.Error("expected warn to be enabled")
	}
}
