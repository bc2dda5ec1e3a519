package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sampleHCL = `
model {
  provider    = "googleai"
  name        = "gemini-1.5-pro"
  temperature = 0.5
  timeout     = "15s"
}

agent {
  system_prompt = "Be brief."
  max_steps     = 7
}

log {
  level = "debug"
}
`

func TestDefault(t *testing.T) {
	config := Default()
	if err := config.Validate(); err != nil {
		t.Fatalf("defaults should be valid: %v", err)
	}
	if config.Model.Provider != ProviderGemini || config.Agent.MaxSteps != 25 {
		t.Errorf("unexpected defaults: %+v", config)
	}
}

func TestParse(t *testing.T) {
	config, err := Parse([]byte(sampleHCL), "stategraph.hcl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if config.Model.Provider != ProviderGoogleAI || config.Model.Name != "gemini-1.5-pro" {
		t.Errorf("unexpected model: %+v", config.Model)
	}
	if config.Model.Temperature == nil || *config.Model.Temperature != 0.5 {
		t.Errorf("unexpected temperature: %v", config.Model.Temperature)
	}
	if config.Model.Timeout != 15*time.Second {
		t.Errorf("unexpected timeout: %v", config.Model.Timeout)
	}
	if config.Agent.SystemPrompt != "Be brief." || config.Agent.MaxSteps != 7 {
		t.Errorf("unexpected agent: %+v", config.Agent)
	}
	if config.Log.Level != "debug" || config.Log.Format != "" {
		t.Errorf("unexpected log: %+v", config.Log)
	}
}

func TestParse_PartialKeepsDefaults(t *testing.T) {
	config, err := Parse([]byte(`log { format = "json" }`), "partial.hcl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Model.Name != Default().Model.Name || config.Log.Format != "json" {
		t.Errorf("unexpected config: %+v", config)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		substr string
	}{
		{name: "syntax", src: `model {`, substr: "failed to parse"},
		{name: "unknown attribute", src: `model { colour = "red" }`, substr: "failed to decode"},
		{name: "bad provider", src: `model { provider = "openai" }`, substr: "unknown model provider"},
		{name: "bad steps", src: `agent { max_steps = 0 }`, substr: "max_steps"},
		{name: "bad temperature", src: `model { temperature = 3 }`, substr: "temperature"},
		{name: "bad timeout", src: `model { timeout = "soon" }`, substr: "model timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "bad.hcl")
			if err == nil || !strings.Contains(err.Error(), tt.substr) {
				t.Errorf("expected error containing %q, got %v", tt.substr, err)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvGoogleAPIKey: "google",
		EnvModel:        "gemini-exp",
		EnvTemperature:  "0.1",
		EnvMaxSteps:     "3",
		EnvLogLevel:     "warn",
		EnvModelTimeout: "2m",
	}
	config := Default()
	if err := config.applyEnv(func(key string) string { return env[key] }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if config.APIKey != "google" || config.Model.Name != "gemini-exp" || config.Agent.MaxSteps != 3 || config.Log.Level != "warn" {
		t.Errorf("unexpected config: %+v", config)
	}
	if config.Model.Temperature == nil || *config.Model.Temperature != 0.1 {
		t.Errorf("unexpected temperature: %v", config.Model.Temperature)
	}
	if config.Model.Timeout != 2*time.Minute {
		t.Errorf("unexpected timeout: %v", config.Model.Timeout)
	}

	env[EnvGeminiAPIKey] = "gemini"
	env[EnvMaxSteps] = "many"
	if err := config.applyEnv(func(key string) string { return env[key] }); err == nil {
		t.Error("expected an error for a non-numeric max steps")
	}
	if config.APIKey != "gemini" {
		t.Errorf("GEMINI_API_KEY should win, got %q", config.APIKey)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "stategraph.hcl")
	dotenvPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(configPath, []byte(sampleHCL), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dotenvPath, []byte("STATEGRAPH_MODEL=from-dotenv\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvModel, "")
	t.Setenv(EnvModelProvider, "")
	t.Setenv(EnvTemperature, "")
	t.Setenv(EnvMaxSteps, "")
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogFormat, "")
	t.Setenv(EnvGeminiAPIKey, "")
	t.Setenv(EnvGoogleAPIKey, "")
	os.Unsetenv(EnvModel)

	config, err := Load(configPath, dotenvPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if config.Model.Name != "from-dotenv" {
		t.Errorf("dotenv should override the file, got %q", config.Model.Name)
	}
	if config.Log.Level != "error" {
		t.Errorf("environment should override the file, got %q", config.Log.Level)
	}
	if config.Agent.MaxSteps != 7 {
		t.Errorf("file value lost: %d", config.Agent.MaxSteps)
	}

	if _, err := Load(filepath.Join(dir, "missing.hcl"), dotenvPath); err == nil {
		t.Error("expected an error for a missing config file")
	}
}

func TestLoad_MissingDotenvIsIgnored(t *testing.T) {
	if _, err := Load("", filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
