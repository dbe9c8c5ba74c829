package config

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Configuration struct {
	Logs     LogsSettings     `mapstructure:"logs"`
	App      Application      `mapstructure:"app"`
	Database Database         `mapstructure:"database"`
	Queue    QueueConfig      `mapstructure:"queue"`
	Redis    Redis            `mapstructure:"redis"`
	Security SecuritySettings `mapstructure:"security"`
	Session  SessionSettings  `mapstructure:"session"`
	Server   ServerSettings   `mapstructure:"server"`
	Storage  StorageSettings  `mapstructure:"storage"`
	Cache    CacheConfig      `mapstructure:"cache"`
	Page     PageSettings     `mapstructure:"pagination"`
}

type LogsSettings struct {
	Level            string `mapstructure:"level"`
	EnableJSONOutput bool   `mapstructure:"enable-json-output"`
}

type Application struct {
	Name     string `mapstructure:"name"`
	Timeout  int    `mapstructure:"timeout"`
	Version  string `mapstructure:"version"`
	HostLink string `mapstructure:"host-link"`
}

type Database struct {
	Url         string      `mapstructure:"url"`
	DbName      string      `mapstructure:"dbname"`
	Collections Collections `mapstructure:"collections"`
	Timeout     int         `mapstructure:"timeout"`
}

type Collections struct {
	Users     string `mapstructure:"users"`
	Posts     string `mapstructure:"posts"`
	PostMedia string `mapstructure:"post-media"`
	Comments  string `mapstructure:"comments"`
	Ratings   string `mapstructure:"ratings"`
	Tags      string `mapstructure:"tags"`
	Followers string `mapstructure:"followers"`
}

type QueueConfig struct {
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
}

type RabbitMQConfig struct {
	Url          string `mapstructure:"url"`
	Exchange     string `mapstructure:"exchange"`
	ExchangeType string `mapstructure:"exchange-type"`
	RoutingKey   string `mapstructure:"routing-key"`
	Durable      bool   `mapstructure:"durable"`
	AutoDelete   bool   `mapstructure:"auto-delete"`
	Internal     bool   `mapstructure:"internal"`
	NoWait       bool   `mapstructure:"no-wait"`
}

type Redis struct {
	Url      string `mapstructure:"url"`
	Password string `mapstructure:"password"`
	Db       int    `mapstructure:"db"`
}

type SecuritySettings struct {
	Argon2            Argon2Settings `mapstructure:"argon2"`
	MinPasswordLength int            `mapstructure:"min-password-length"`
}

// Argon2Settings bounds login latency: the reference deployment uses a low
// interactive cost, production should raise memory and time.
type Argon2Settings struct {
	Time        uint32 `mapstructure:"time"`
	MemoryKB    uint32 `mapstructure:"memory-kb"`
	Parallelism uint8  `mapstructure:"parallelism"`
	SaltLength  uint32 `mapstructure:"salt-length"`
	KeyLength   uint32 `mapstructure:"key-length"`
}

type SessionSettings struct {
	// Backend selects the session store: "memory" (single session per user,
	// no expiry) or "redis" (multiple sessions per user, optional TTL).
	Backend         string `mapstructure:"backend"`
	RedisTTLMinutes int    `mapstructure:"redis-ttl-minutes"`
	UserIDHeader    string `mapstructure:"user-id-header"`
	SessionIDHeader string `mapstructure:"session-id-header"`
}

type ServerSettings struct {
	Port         string `mapstructure:"port"`
	Mode         string `mapstructure:"mode"`
	ReadTimeout  int    `mapstructure:"read-timeout"`
	WriteTimeout int    `mapstructure:"write-timeout"`
	IdleTimeout  int    `mapstructure:"idle-timeout"`
}

type StorageSettings struct {
	Url         string `mapstructure:"url"`
	ApiKey      string `mapstructure:"api-key"`
	Bucket      string `mapstructure:"bucket"`
	MaxUploadMB int    `mapstructure:"max-upload-mb"`
	Timeout     int    `mapstructure:"timeout"`
}

type CacheConfig struct {
	RatingExpirationMinutes int    `mapstructure:"rating-expiration-minutes"`
	RatingKeyPrefix         string `mapstructure:"rating-key-prefix"`
}

type PageSettings struct {
	DefaultTake int `mapstructure:"default-take"`
	MaxTake     int `mapstructure:"max-take"`
}

func Load() *Configuration {
	cfg := read()
	logrus.Info("Configuration loaded")

	// Override with environment variables
	mongoUri := os.Getenv("MONGODB_URL")
	if mongoUri != "" {
		cfg.Database.Url = mongoUri
	}

	dbName := os.Getenv("DB_NAME")
	if dbName != "" {
		cfg.Database.DbName = dbName
	}

	redisUrl := os.Getenv("REDIS_URL")
	if redisUrl != "" {
		cfg.Redis.Url = redisUrl
	}

	rabbitmqUrl := os.Getenv("RABBITMQ_URL")
	if rabbitmqUrl != "" {
		cfg.Queue.RabbitMQ.Url = rabbitmqUrl
	}

	storageUrl := os.Getenv("STORAGE_URL")
	if storageUrl != "" {
		cfg.Storage.Url = storageUrl
	}

	storageKey := os.Getenv("STORAGE_API_KEY")
	if storageKey != "" {
		cfg.Storage.ApiKey = storageKey
	}

	return cfg
}

func read() *Configuration {
	viper.SetConfigFile("src/internal/config/cfg.yml")
	viper.AutomaticEnv()
	viper.SetConfigType("yml")

	var config Configuration

	err := viper.ReadInConfig()
	if err != nil {
		logrus.Panicf("Error reading config file, %s", err)
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		logrus.Panicf("Error unmarshalling config file, %s", err)
	}

	return &config
}
