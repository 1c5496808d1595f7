package config_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/tailored-agentic-units/flow/orchestrate/config"
)

func TestFlowConfig_DefaultFlowConfig(t *testing.T) {
	cfg := config.DefaultFlowConfig("test-flow")

	if cfg.Name != "test-flow" {
		t.Errorf("DefaultFlowConfig().Name = %v, want %v", cfg.Name, "test-flow")
	}
	if cfg.Observer != "slog" {
		t.Errorf("DefaultFlowConfig().Observer = %v, want %v", cfg.Observer, "slog")
	}
	if cfg.MaxConcurrency != 0 {
		t.Errorf("DefaultFlowConfig().MaxConcurrency = %v, want 0", cfg.MaxConcurrency)
	}
	if cfg.MaxCycles != 0 {
		t.Errorf("DefaultFlowConfig().MaxCycles = %v, want 0", cfg.MaxCycles)
	}
	if cfg.Ordering != config.OrderCompletion {
		t.Errorf("DefaultFlowConfig().Ordering = %v, want %v", cfg.Ordering, config.OrderCompletion)
	}
	if cfg.FailFast {
		t.Error("DefaultFlowConfig().FailFast = true, want false")
	}
}

func TestFlowConfig_JSONUnmarshalFromString(t *testing.T) {
	tests := []struct {
		name         string
		jsonStr      string
		wantName     string
		wantObs      string
		wantConc     int
		wantCycles   int
		wantOrdering config.Ordering
	}{
		{
			name:         "complete config",
			jsonStr:      `{"name":"agent-loop","observer":"noop","max_concurrency":4,"max_cycles":20,"ordering":"production"}`,
			wantName:     "agent-loop",
			wantObs:      "noop",
			wantConc:     4,
			wantCycles:   20,
			wantOrdering: config.OrderProduction,
		},
		{
			name:     "partial config",
			jsonStr:  `{"name":"batch"}`,
			wantName: "batch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg config.FlowConfig
			if err := json.Unmarshal([]byte(tt.jsonStr), &cfg); err != nil {
				t.Fatalf("json.Unmarshal() error = %v", err)
			}

			if cfg.Name != tt.wantName {
				t.Errorf("Name = %v, want %v", cfg.Name, tt.wantName)
			}
			if cfg.Observer != tt.wantObs {
				t.Errorf("Observer = %v, want %v", cfg.Observer, tt.wantObs)
			}
			if cfg.MaxConcurrency != tt.wantConc {
				t.Errorf("MaxConcurrency = %v, want %v", cfg.MaxConcurrency, tt.wantConc)
			}
			if cfg.MaxCycles != tt.wantCycles {
				t.Errorf("MaxCycles = %v, want %v", cfg.MaxCycles, tt.wantCycles)
			}
			if cfg.Ordering != tt.wantOrdering {
				t.Errorf("Ordering = %v, want %v", cfg.Ordering, tt.wantOrdering)
			}
		})
	}
}

func TestFlowConfig_Merge(t *testing.T) {
	cfg := config.DefaultFlowConfig("base")
	cfg.Merge(&config.FlowConfig{MaxConcurrency: 3, Ordering: config.OrderProduction, FailFast: true})

	if cfg.Name != "base" {
		t.Errorf("Name = %v, want base (empty source must not override)", cfg.Name)
	}
	if cfg.Observer != "slog" {
		t.Errorf("Observer = %v, want slog", cfg.Observer)
	}
	if cfg.MaxConcurrency != 3 {
		t.Errorf("MaxConcurrency = %v, want 3", cfg.MaxConcurrency)
	}
	if cfg.Ordering != config.OrderProduction {
		t.Errorf("Ordering = %v, want %v", cfg.Ordering, config.OrderProduction)
	}
	if !cfg.FailFast {
		t.Error("FailFast = false, want true")
	}
}

func TestFlowConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.FlowConfig
		wantErr bool
	}{
		{name: "defaults", cfg: config.DefaultFlowConfig("ok"), wantErr: false},
		{name: "empty ordering", cfg: config.FlowConfig{}, wantErr: false},
		{name: "negative concurrency", cfg: config.FlowConfig{MaxConcurrency: -1}, wantErr: true},
		{name: "negative cycles", cfg: config.FlowConfig{MaxCycles: -2}, wantErr: true},
		{name: "unknown ordering", cfg: config.FlowConfig{Ordering: "random"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFlowConfig(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "valid.json")
	if err := os.WriteFile(valid, []byte(`{"name":"loaded","max_cycles":10}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.LoadFlowConfig(valid)
	if err != nil {
		t.Fatalf("LoadFlowConfig() error = %v", err)
	}
	if cfg.Name != "loaded" || cfg.MaxCycles != 10 || cfg.Observer != "slog" {
		t.Errorf("LoadFlowConfig() = %+v, want name=loaded max_cycles=10 observer=slog", cfg)
	}

	invalid := filepath.Join(dir, "invalid.json")
	if err := os.WriteFile(invalid, []byte(`{"ordering":"sideways"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := config.LoadFlowConfig(invalid); err == nil {
		t.Error("expected error for unknown ordering, got nil")
	}

	negative := filepath.Join(dir, "negative.json")
	if err := os.WriteFile(negative, []byte(`{"max_cycles":-1}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := config.LoadFlowConfig(negative); err == nil {
		t.Error("expected error for negative max_cycles, got nil")
	}

	if _, err := config.LoadFlowConfig(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file, got nil")
	}
}
