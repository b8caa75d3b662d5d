package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseDefaultConfig(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("failed to parse default config: %v", err)
	}

	if cfg.Log.DefaultYear != 2025 {
		t.Errorf("expected default year 2025, got %d", cfg.Log.DefaultYear)
	}
	if cfg.Output.Dir != "output" {
		t.Errorf("expected output dir 'output', got %q", cfg.Output.Dir)
	}
	if cfg.Questions["6. What time did you wake up?"] != "wake_up_time" {
		t.Error("expected default question mapping to be populated")
	}
	if cfg.ExpectedTimes["bed_time"] != "04:00" {
		t.Errorf("expected bed_time target 04:00, got %q", cfg.ExpectedTimes["bed_time"])
	}
}

func TestParseMergesUserMappings(t *testing.T) {
	data := []byte(`
log:
  default_year: 2024
questions:
  "When did you turn the lights off?": bed_time
expected_times:
  bed_time: "11:00pm"
`)
	cfg, err := parse(data)
	if err != nil {
		t.Fatalf("failed to parse config: %v", err)
	}

	if cfg.Log.DefaultYear != 2024 {
		t.Errorf("expected year 2024, got %d", cfg.Log.DefaultYear)
	}
	// User phrasings extend the defaults rather than replacing them.
	if cfg.Questions["When did you turn the lights off?"] != "bed_time" {
		t.Error("expected custom question mapping")
	}
	if cfg.Questions["6. What time did you wake up?"] != "wake_up_time" {
		t.Error("expected default question mappings to survive the merge")
	}
	if cfg.ExpectedTimes["bed_time"] != "11:00pm" {
		t.Errorf("expected overridden bed_time target, got %q", cfg.ExpectedTimes["bed_time"])
	}
	// Defaults still apply for unset scalars.
	if cfg.Log.EveningStart != "17:00" {
		t.Errorf("expected default evening_start, got %q", cfg.Log.EveningStart)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, DefaultConfigYAML, 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Log.DefaultYear != 2025 {
		t.Errorf("expected year 2025, got %d", cfg.Log.DefaultYear)
	}
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("failed to load defaults: %v", err)
	}
	if len(cfg.Questions) == 0 {
		t.Error("expected default questions to be populated")
	}
}

func TestSchema(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("failed to parse default config: %v", err)
	}
	schema, err := cfg.Schema()
	if err != nil {
		t.Fatalf("failed to build schema: %v", err)
	}

	col, ok := schema.ColumnByQuestion("1.2b. What time did you get into bed & commit to sleep?")
	if !ok || col.Key != "bed_time" {
		t.Errorf("bed time lookup = %+v (ok=%v)", col, ok)
	}
	if col.Expected == nil || col.Expected.Hour != 4 || col.Expected.Minute != 0 {
		t.Errorf("bed time expected = %+v, want 04:00", col.Expected)
	}
}

func TestSchemaRejectsBadExpectedTime(t *testing.T) {
	cfg, _ := parse([]byte(`
expected_times:
  bed_time: "not a time"
`))
	if _, err := cfg.Schema(); err == nil {
		t.Error("expected an error for an unparseable expected time")
	}
}

func TestEveningStart(t *testing.T) {
	cfg, _ := parse(DefaultConfigYAML)
	es, err := cfg.EveningStart()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if es.Hour != 17 || es.Minute != 0 {
		t.Errorf("evening start = %v, want 17:00", es)
	}
}
