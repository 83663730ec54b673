package config

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Listen struct {
	BindIp string `yaml:"bind_ip" env:"BIND_IP" env-default:"0.0.0.0"`
	Port   string `yaml:"port" env:"PORT" env-default:"8080"`
}

type MongoConfig struct {
	Enabled  bool   `yaml:"enabled" env:"MONGO_ENABLED" env-default:"true"`
	Host     string `yaml:"host" env:"MONGO_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"MONGO_PORT" env-default:"27017"`
	User     string `yaml:"user" env:"MONGO_USER" env-default:""`
	Password string `yaml:"password" env:"MONGO_PASSWORD" env-default:""`
	Database string `yaml:"database" env:"MONGO_DATABASE" env-default:"classroom"`
}

type TwilioConfig struct {
	AccountSid string `yaml:"account_sid" env:"TWILIO_SID" env-default:""`
	AuthToken  string `yaml:"auth_token" env:"TWILIO_TOKEN" env-default:""`
	FromNumber string `yaml:"from_number" env:"TWILIO_PHONE" env-default:""`
}

type MailerSendConfig struct {
	APIKey    string `yaml:"api_key" env:"MAILERSEND_API_KEY" env-default:""`
	FromName  string `yaml:"from_name" env:"MAIL_FROM_NAME" env-default:"Classroom"`
	FromEmail string `yaml:"from_email" env:"MAIL_FROM_EMAIL" env-default:""`
}

type NatsConfig struct {
	Enabled bool   `yaml:"enabled" env:"NATS_ENABLED" env-default:"false"`
	Url     string `yaml:"url" env:"NATS_URL" env-default:"nats://localhost:4222"`
}

type AuthConfig struct {
	JwtSecret    string        `yaml:"jwt_secret" env:"JWT_SECRET" env-default:""`
	SessionTTL   time.Duration `yaml:"session_ttl" env:"SESSION_TTL" env-default:"24h"`
	CodeTTL      time.Duration `yaml:"code_ttl" env:"CODE_TTL" env-default:"5m"`
	InviteWindow time.Duration `yaml:"invite_window" env:"INVITE_WINDOW" env-default:"1h"`
	BaseUrl      string        `yaml:"base_url" env:"BASE_URL" env-default:"http://localhost:5173"`
}

type Config struct {
	Env        string           `yaml:"env" env:"ENV" env-default:"local"`
	Listen     Listen           `yaml:"listen"`
	Mongo      MongoConfig      `yaml:"mongo"`
	Twilio     TwilioConfig     `yaml:"twilio"`
	MailerSend MailerSendConfig `yaml:"mailersend"`
	Nats       NatsConfig       `yaml:"nats"`
	Auth       AuthConfig       `yaml:"auth"`
}

var instance *Config
var once sync.Once

func MustLoad(path string) *Config {
	var err error
	once.Do(func() {
		instance = &Config{}
		if err = cleanenv.ReadConfig(path, instance); err != nil {
			desc, _ := cleanenv.GetDescription(instance, nil)
			err = fmt.Errorf("config: %s; %s", err, desc)
			instance = nil
			log.Fatal(err)
		}
	})
	return instance
}

// Load reads config without the singleton, for tests.
func Load(path string) (*Config, error) {
	conf := &Config{}
	if err := cleanenv.ReadConfig(path, conf); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return conf, nil
}
