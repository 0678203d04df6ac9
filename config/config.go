// Package config loads runtime settings from a YAML file with sane defaults.
// Secrets (API keys, SMTP and Mailgun credentials) come from the environment,
// never from the file.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type LLM struct {
	APIURL      string        `yaml:"api_url"`
	Model       string        `yaml:"model"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

type OCR struct {
	Binary    string `yaml:"binary"`
	Languages string `yaml:"languages"`
}

type Store struct {
	LogPath      string `yaml:"log_path"`
	OutputDir    string `yaml:"output_dir"`
	SummariesDir string `yaml:"summaries_dir"`
	EventsDir    string `yaml:"events_dir"`
	SaveMode     string `yaml:"save_mode"`
}

type Email struct {
	Provider      string `yaml:"provider"`
	SMTPHost      string `yaml:"smtp_host"`
	SMTPPort      int    `yaml:"smtp_port"`
	From          string `yaml:"from"`
	To            string `yaml:"to"`
	SenderName    string `yaml:"sender_name"`
	MailgunDomain string `yaml:"mailgun_domain"`
}

type Web struct {
	Addr string `yaml:"addr"`
}

type Config struct {
	LLM   LLM   `yaml:"llm"`
	OCR   OCR   `yaml:"ocr"`
	Store Store `yaml:"store"`
	Email Email `yaml:"email"`
	Web   Web   `yaml:"web"`
}

// Secrets are read from the environment so they never end up in a config
// file checked into version control.
type Secrets struct {
	LLMAPIKey     string
	SMTPUser      string
	SMTPPassword  string
	MailgunAPIKey string
}

func Default() Config {
	return Config{
		LLM: LLM{
			APIURL:      "https://api.openai.com/v1/chat/completions",
			Model:       "gpt-4o-mini",
			MaxTokens:   1000,
			Temperature: 0.1,
			Timeout:     30 * time.Second,
		},
		OCR: OCR{
			Binary:    "tesseract",
			Languages: "eng",
		},
		Store: Store{
			LogPath:      "trade_log.jsonl",
			OutputDir:    "output",
			SummariesDir: "summaries",
			EventsDir:    "wal/processing",
			SaveMode:     "both",
		},
		Email: Email{
			Provider: "mock",
			SMTPPort: 587,
		},
		Web: Web{
			Addr: ":8080",
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path returns
// the defaults untouched.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "failed to read config %s", path)
	}
	if err := yaml.Unmarshal(f, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "failed to parse config %s", path)
	}
	return cfg, nil
}

// LoadSecrets pulls credentials from the environment. godotenv has already
// populated it from .env when one exists.
func LoadSecrets() Secrets {
	return Secrets{
		LLMAPIKey:     os.Getenv("LLM_API_KEY"),
		SMTPUser:      os.Getenv("SMTP_USER"),
		SMTPPassword:  os.Getenv("SMTP_PASSWORD"),
		MailgunAPIKey: os.Getenv("MAILGUN_API_KEY"),
	}
}
