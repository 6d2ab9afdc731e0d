package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}

type App struct {
	Name        string
	Env         string
	FrontendURL string // 重置密码链接的落地页
	HTTP        HTTP
}

type Log struct {
	Level string
	JSON  bool
	File  string // 非空则走 lumberjack 文件切割
}

type JWT struct {
	Secret          string
	Issuer          string
	SessionTTLHour  int // 会话令牌，默认 24
	ResetTTLMin     int // 重置令牌，默认 60
	TempPasswordLen int // 新用户初始密码长度，默认 8
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DB struct {
	Driver             string
	DSN                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type S3 struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	PublicURL string // 对外访问前缀，空则用 Endpoint/Bucket
}

type Mail struct {
	APIKey      string // Brevo api-key
	SenderName  string
	SenderEmail string
}

type Config struct {
	App   App
	Log   Log
	JWT   JWT
	DB    DB
	Redis Redis `mapstructure:"redis"`
	S3    S3
	Mail  Mail
}

func Load(path string) *Config {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("jwt.sessionttlhour", 24)
	v.SetDefault("jwt.resetttlmin", 60)
	v.SetDefault("jwt.temppasswordlen", 8)
	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.automigrate", true)

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("read config: %v", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		log.Fatalf("unmarshal config: %v", err)
	}
	if c.JWT.Secret == "" {
		log.Fatal("jwt.secret is required")
	}
	return &c
}
