package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	// empty values read as unset, keeping the test hermetic
	for _, key := range []string{"NODE_ENV", "PORT", "MAX_FILE_UPLOAD", "JWT_EXPIRE"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Env != "development" {
		t.Errorf("env = %q, want development", cfg.Env)
	}
	if cfg.Port != "5000" {
		t.Errorf("port = %q, want 5000", cfg.Port)
	}
	if cfg.MaxFileUpload != 1000000 {
		t.Errorf("maxFileUpload = %d", cfg.MaxFileUpload)
	}
	if cfg.JWTExpire != 30*24*time.Hour {
		t.Errorf("jwtExpire = %v", cfg.JWTExpire)
	}
	if cfg.IsProduction() {
		t.Error("development config reports production")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("NODE_ENV", "production")
	t.Setenv("PORT", "8080")
	t.Setenv("MAX_FILE_UPLOAD", "5000000")
	t.Setenv("JWT_EXPIRE", "4h")
	t.Setenv("MINIO_USE_SSL", "true")

	cfg := Load()
	if !cfg.IsProduction() {
		t.Error("production env not detected")
	}
	if cfg.Port != "8080" {
		t.Errorf("port = %q", cfg.Port)
	}
	if cfg.MaxFileUpload != 5000000 {
		t.Errorf("maxFileUpload = %d", cfg.MaxFileUpload)
	}
	if cfg.JWTExpire != 4*time.Hour {
		t.Errorf("jwtExpire = %v", cfg.JWTExpire)
	}
	if !cfg.MinioUseSSL {
		t.Error("ssl override ignored")
	}
}

func TestLoadBadValuesFallBack(t *testing.T) {
	t.Setenv("MAX_FILE_UPLOAD", "lots")
	t.Setenv("JWT_EXPIRE", "soon")
	t.Setenv("MINIO_USE_SSL", "maybe")

	cfg := Load()
	if cfg.MaxFileUpload != 1000000 {
		t.Errorf("maxFileUpload = %d, want default", cfg.MaxFileUpload)
	}
	if cfg.JWTExpire != 30*24*time.Hour {
		t.Errorf("jwtExpire = %v, want default", cfg.JWTExpire)
	}
	if cfg.MinioUseSSL {
		t.Error("bad bool should fall back to false")
	}
}
