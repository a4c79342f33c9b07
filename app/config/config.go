package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

const defaultPath = "config.yaml"

type Config struct {
	Log     Log     `yaml:"log"`
	HTTP    HTTP    `yaml:"http"`
	LLM     LLM     `yaml:"llm"`
	Chat    Chat    `yaml:"chat"`
	Email   Email   `yaml:"email"`
	Alert   Alert   `yaml:"alert"`
	Session Session `yaml:"session"`
	MCP     MCP     `yaml:"mcp"`
}

type HTTP struct {
	// Listen address of the chat API
	Addr string `yaml:"addr" example:":8080" validate:"required"`
	// Allowed CORS origins, comma separated
	AllowOrigins string `yaml:"allow_origins" example:"https://agency.example"`
}

type LLM struct {
	// Generator backend: openai (go-openai) or langchain (langchaingo)
	Provider string `yaml:"provider" example:"openai" validate:"required,oneof=openai langchain"`
	// OpenAI compatible base url
	BaseURL string `yaml:"base_url" example:"https://openrouter.ai/api/v1" validate:"required,url"`
	// OpenAI token
	Token string `yaml:"token" example:"sk-proj-abc123456789DEF789ghi012JKL345mno678PQR901stu234VWX" validate:"required"`
	// Model name
	Model string `yaml:"model" example:"deepseek/deepseek-chat-v3-0324:free" validate:"required"`
	// Sampling temperature
	Temperature float32 `yaml:"temperature" example:"0.7" validate:"gte=0,lte=2"`
	// Completion token limit
	MaxTokens int `yaml:"max_tokens" example:"400" validate:"gte=0"`
	// Read the completion as a stream (openai provider only)
	Stream bool `yaml:"stream" example:"false"`
	// HTTP timeout of a single generation request
	Timeout time.Duration `yaml:"timeout" example:"30s"`
}

type Chat struct {
	// Display name of the assistant in prompts and transcripts
	AssistantName string `yaml:"assistant_name" example:"Nova" validate:"required"`
	// Agency name used in the persona preamble
	AgencyName string `yaml:"agency_name" example:"Pixel Forge" validate:"required"`
	// Source tag attached to urgent notifications
	Source string `yaml:"source" example:"website-chat" validate:"required"`
	// Caller-level deadline for a single reply
	ReplyTimeout time.Duration `yaml:"reply_timeout" example:"45s"`
	// Contact identifiers embedded into canned replies
	Contacts Contacts `yaml:"contacts"`
}

type Contacts struct {
	General   string `yaml:"general" example:"hello@agency.example" validate:"required,email"`
	Urgent    string `yaml:"urgent" example:"urgent@agency.example" validate:"required,email"`
	Phone     string `yaml:"phone" example:"+1 555 0100"`
	Portfolio string `yaml:"portfolio" example:"https://agency.example/work"`
}

type Email struct {
	// Send urgent notifications by email
	Enabled bool `yaml:"enabled" example:"true"`
	// Email API endpoint accepting {from,to,subject,text}
	Endpoint string `yaml:"endpoint" example:"https://api.resend.com/emails" validate:"required_if=Enabled true,omitempty,url"`
	// Email API key
	APIKey string `yaml:"api_key" validate:"required_if=Enabled true"`
	// Sender address
	From string `yaml:"from" example:"chat@agency.example" validate:"required_if=Enabled true,omitempty,email"`
	// Recipients of urgent notifications
	To []string `yaml:"to" validate:"required_if=Enabled true,dive,email"`
}

type Alert struct {
	// Pending notification capacity
	QueueSize int `yaml:"queue_size" example:"64" validate:"gt=0"`
	// Deadline of a single delivery attempt
	SendTimeout time.Duration `yaml:"send_timeout" example:"15s"`
}

type Session struct {
	// Maximum number of live chat sessions
	MaxSessions int `yaml:"max_sessions" example:"10000" validate:"gt=0"`
	// Idle time after which a session is forgotten
	IdleTTL time.Duration `yaml:"idle_ttl" example:"30m"`
}

type MCP struct {
	// Serve the chat tool over stdio
	Stdio bool `yaml:"stdio" example:"false"`
}

type Log struct {
	// Minimum level: debug, info, warn, error
	Level string `yaml:"level" example:"info" validate:"omitempty,oneof=debug info warn error"`
	// Telegram logging config
	Telegram TelegramLog `yaml:"telegram"`
}

type TelegramLog struct {
	// Chat bot token, obtain it via BotFather
	Token string `yaml:"token" example:"1234567890:ABCdefGHIjklMNopQRstUVwxyZ-123456789"`
	// Chat ID to send messages to
	ChatID string `yaml:"chat_id" example:"1001234567890"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	path := os.Getenv("AGENCYCHAT_CONFIG")
	if path == "" {
		path = defaultPath
	}

	return LoadFile(path)
}

func LoadFile(path string) (*Config, error) {
	var result Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.Errorf("failed to read config file: %w", err)
	}

	if err = yaml.Unmarshal(data, &result); err != nil {
		return nil, oops.Errorf("failed to parse YAML config: %w", err)
	}

	result.applyDefaults()
	result.applyEnvOverrides()

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(result); err != nil {
		return nil, oops.Errorf("failed to validate config: %w", err)
	}

	return &result, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = "https://api.openai.com/v1"
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.7
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 400
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = 30 * time.Second
	}
	if c.Chat.AssistantName == "" {
		c.Chat.AssistantName = "Assistant"
	}
	if c.Chat.Source == "" {
		c.Chat.Source = "website-chat"
	}
	if c.Chat.ReplyTimeout == 0 {
		c.Chat.ReplyTimeout = 45 * time.Second
	}
	if c.Alert.QueueSize == 0 {
		c.Alert.QueueSize = 64
	}
	if c.Alert.SendTimeout == 0 {
		c.Alert.SendTimeout = 15 * time.Second
	}
	if c.Session.MaxSessions == 0 {
		c.Session.MaxSessions = 10000
	}
	if c.Session.IdleTTL == 0 {
		c.Session.IdleTTL = 30 * time.Minute
	}
}

// applyEnvOverrides lets secrets live outside config.yaml.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("AGENCYCHAT_LLM_TOKEN"); v != "" {
		c.LLM.Token = v
	}
	if v := os.Getenv("AGENCYCHAT_EMAIL_API_KEY"); v != "" {
		c.Email.APIKey = v
	}
	if v := os.Getenv("AGENCYCHAT_TELEGRAM_TOKEN"); v != "" {
		c.Log.Telegram.Token = v
	}
}
