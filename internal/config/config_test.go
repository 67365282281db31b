package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORE_PATH", "DATA_DIR", "CSV_SEPARATOR", "CSV_DECIMAL", "CSV_ENCODING", "CSV_HEADER"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("port = %s, want 8080", cfg.Server.Port)
	}
	if cfg.Store.Path != "sales.db" {
		t.Errorf("store path = %s, want sales.db", cfg.Store.Path)
	}
	if cfg.Data.Separator != ";" || cfg.Data.Decimal != "," {
		t.Errorf("separator/decimal = %q/%q, want \";\"/\",\"", cfg.Data.Separator, cfg.Data.Decimal)
	}
	if !cfg.Data.HasHeader {
		t.Error("header flag should default to true")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATA_DIR", "/tmp/sales")
	t.Setenv("CSV_SEPARATOR", ",")
	t.Setenv("CSV_DECIMAL", ".")
	t.Setenv("CSV_HEADER", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Data.Dir != "/tmp/sales" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Data.Separator != "," || cfg.Data.Decimal != "." {
		t.Errorf("separator/decimal = %q/%q", cfg.Data.Separator, cfg.Data.Decimal)
	}
	if cfg.Data.HasHeader {
		t.Error("CSV_HEADER=false should disable the header flag")
	}
}

func TestLoadRejectsInvalidSeparator(t *testing.T) {
	t.Setenv("CSV_SEPARATOR", "##")
	if _, err := Load(); err == nil {
		t.Fatal("expected validation to reject the separator")
	}
}

func TestLoadRejectsInvalidDecimal(t *testing.T) {
	t.Setenv("CSV_DECIMAL", ";")
	if _, err := Load(); err == nil {
		t.Fatal("expected validation to reject the decimal mark")
	}
}
