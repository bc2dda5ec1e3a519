// Package config resolves CLI settings from defaults, an optional HCL file
// and the environment, in that order of increasing precedence. A .env file is
// loaded into the environment first; variables already set are kept.
//
// Example file:
//
//	model {
//	  provider    = "gemini"
//	  name        = "gemini-2.0-flash"
//	  temperature = 0
//	  timeout     = "60s"
//	}
//
//	agent {
//	  system_prompt = "You are a helpful math assistant."
//	  max_steps     = 25
//	}
//
//	log {
//	  level  = "debug"
//	  format = "json"
//	}
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/joho/godotenv"
)

// Model providers.
const (
	ProviderGemini   = "gemini"
	ProviderGoogleAI = "googleai"
)

// Environment variables.
const (
	EnvGoogleAPIKey  = "GOOGLE_API_KEY"
	EnvGeminiAPIKey  = "GEMINI_API_KEY"
	EnvModelProvider = "STATEGRAPH_MODEL_PROVIDER"
	EnvModel         = "STATEGRAPH_MODEL"
	EnvTemperature   = "STATEGRAPH_TEMPERATURE"
	EnvModelTimeout  = "STATEGRAPH_MODEL_TIMEOUT"
	EnvMaxSteps      = "STATEGRAPH_MAX_STEPS"
	EnvLogLevel      = "STATEGRAPH_LOG_LEVEL"
	EnvLogFormat     = "STATEGRAPH_LOG_FORMAT"
)

const (
	defaultModel        = "gemini-2.0-flash"
	defaultMaxSteps     = 25
	defaultTimeout      = 60 * time.Second
	defaultSystemPrompt = "You are a helpful assistant. Use the available tools when they help you answer accurately."
)

// Config holds the resolved settings.
type Config struct {
	APIKey string
	Model  Model
	Agent  Agent
	Log    Log
}

// Model selects the chat model. A zero Timeout disables the per-call
// deadline.
type Model struct {
	Provider    string
	Name        string
	Temperature *float64
	Timeout     time.Duration
}

type Agent struct {
	SystemPrompt string
	MaxSteps     int
}

type Log struct {
	Level  string
	Format string
}

type hclFile struct {
	Model *hclModel `hcl:"model,block"`
	Agent *hclAgent `hcl:"agent,block"`
	Log   *hclLog   `hcl:"log,block"`
}

type hclModel struct {
	Provider    *string  `hcl:"provider,optional"`
	Name        *string  `hcl:"name,optional"`
	Temperature *float64 `hcl:"temperature,optional"`
	Timeout     *string  `hcl:"timeout,optional"`
}

type hclAgent struct {
	SystemPrompt *string `hcl:"system_prompt,optional"`
	MaxSteps     *int    `hcl:"max_steps,optional"`
}

type hclLog struct {
	Level  *string `hcl:"level,optional"`
	Format *string `hcl:"format,optional"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Model: Model{Provider: ProviderGemini, Name: defaultModel, Timeout: defaultTimeout},
		Agent: Agent{SystemPrompt: defaultSystemPrompt, MaxSteps: defaultMaxSteps},
	}
}

// Load loads dotenvPath (ignored when missing, ".env" when empty), then
// applies configPath (skipped when empty) and the environment to the
// defaults.
func Load(configPath, dotenvPath string) (*Config, error) {
	if dotenvPath == "" {
		dotenvPath = ".env"
	}
	if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", dotenvPath, err)
	}

	config := Default()
	if configPath != "" {
		src, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := config.applyHCL(src, configPath); err != nil {
			return nil, err
		}
	}

	if err := config.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return config, config.Validate()
}

// Parse applies an HCL document to the defaults without consulting the
// environment.
func Parse(src []byte, filename string) (*Config, error) {
	config := Default()
	if err := config.applyHCL(src, filename); err != nil {
		return nil, err
	}
	return config, config.Validate()
}

func (config *Config) applyHCL(src []byte, filename string) error {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	var parsed hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	if parsed.Model != nil {
		setString(&config.Model.Provider, parsed.Model.Provider)
		setString(&config.Model.Name, parsed.Model.Name)
		if parsed.Model.Temperature != nil {
			config.Model.Temperature = parsed.Model.Temperature
		}
		if parsed.Model.Timeout != nil {
			timeout, err := time.ParseDuration(*parsed.Model.Timeout)
			if err != nil {
				return fmt.Errorf("%s: model timeout: %w", filename, err)
			}
			config.Model.Timeout = timeout
		}
	}
	if parsed.Agent != nil {
		setString(&config.Agent.SystemPrompt, parsed.Agent.SystemPrompt)
		if parsed.Agent.MaxSteps != nil {
			config.Agent.MaxSteps = *parsed.Agent.MaxSteps
		}
	}
	if parsed.Log != nil {
		setString(&config.Log.Level, parsed.Log.Level)
		setString(&config.Log.Format, parsed.Log.Format)
	}
	return nil
}

func (config *Config) applyEnv(getenv func(string) string) error {
	if key := getenv(EnvGeminiAPIKey); key != "" {
		config.APIKey = key
	} else if key := getenv(EnvGoogleAPIKey); key != "" {
		config.APIKey = key
	}

	if value := getenv(EnvModelProvider); value != "" {
		config.Model.Provider = value
	}
	if value := getenv(EnvModel); value != "" {
		config.Model.Name = value
	}
	if value := getenv(EnvTemperature); value != "" {
		temperature, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTemperature, err)
		}
		config.Model.Temperature = &temperature
	}
	if value := getenv(EnvModelTimeout); value != "" {
		timeout, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvModelTimeout, err)
		}
		config.Model.Timeout = timeout
	}
	if value := getenv(EnvMaxSteps); value != "" {
		steps, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxSteps, err)
		}
		config.Agent.MaxSteps = steps
	}
	if value := getenv(EnvLogLevel); value != "" {
		config.Log.Level = value
	}
	if value := getenv(EnvLogFormat); value != "" {
		config.Log.Format = value
	}
	return nil
}

// Validate checks the resolved values. A missing API key is not an error
// here; commands that need a model check it themselves.
func (config *Config) Validate() error {
	var problems []error
	switch config.Model.Provider {
	case ProviderGemini, ProviderGoogleAI:
	default:
		problems = append(problems, fmt.Errorf("unknown model provider %q (want %s or %s)", config.Model.Provider, ProviderGemini, ProviderGoogleAI))
	}
	if config.Model.Name == "" {
		problems = append(problems, errors.New("model name must not be empty"))
	}
	if config.Model.Timeout < 0 {
		problems = append(problems, fmt.Errorf("model timeout must not be negative, got %s", config.Model.Timeout))
	}
	if config.Agent.MaxSteps < 1 {
		problems = append(problems, fmt.Errorf("agent max_steps must be positive, got %d", config.Agent.MaxSteps))
	}
	if temperature := config.Model.Temperature; temperature != nil && (*temperature < 0 || *temperature > 2) {
		problems = append(problems, fmt.Errorf("model temperature %v is outside [0, 2]", *temperature))
	}
	return errors.Join(problems...)
}

func setString(target *string, value *string) {
	if value != nil {
		*target = *value
	}
}
