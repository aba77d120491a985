package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != "0.0.0.0:8000" || cfg.Database.Path != "data/blog.db" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Auth.AccessTTLMinutes != 60 || cfg.Auth.RefreshTTLHours != 24 || cfg.Backup.Keep != 7 {
		t.Fatalf("unexpected auth/backup defaults %+v", cfg)
	}
}

func TestLoadFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("BLOG_AUTH_JWTSECRET", "s3cret")
	t.Setenv("BLOG_SERVER_ADDR", ":9000")
	t.Setenv("BLOG_BACKUP_KEEP", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Auth.JWTSecret != "s3cret" || cfg.Server.Addr != ":9000" || cfg.Backup.Keep != 3 {
		t.Fatalf("env not applied: %+v", cfg)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\nexport BLOG_TEST_DOTENV_A=\"one\"\nBLOG_TEST_DOTENV_B=two\nBLOG_TEST_DOTENV_KEEP=from-file\nnot a pair\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("BLOG_TEST_DOTENV_KEEP", "from-env")
	// registered so values set by loadDotEnv are restored afterwards
	t.Setenv("BLOG_TEST_DOTENV_A", "")
	t.Setenv("BLOG_TEST_DOTENV_B", "")
	os.Unsetenv("BLOG_TEST_DOTENV_A")
	os.Unsetenv("BLOG_TEST_DOTENV_B")

	loadDotEnv(path)

	if got := os.Getenv("BLOG_TEST_DOTENV_A"); got != "one" {
		t.Fatalf("A = %q", got)
	}
	if got := os.Getenv("BLOG_TEST_DOTENV_B"); got != "two" {
		t.Fatalf("B = %q", got)
	}
	if got := os.Getenv("BLOG_TEST_DOTENV_KEEP"); got != "from-env" {
		t.Fatalf("existing env overwritten: %q", got)
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore dir: %v", err)
		}
	})
}
