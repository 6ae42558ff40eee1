package config

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	ObjectStore ObjectStoreConfig
	Search      SearchConfig
	Archiver    ArchiverConfig
	Kafka       KafkaConfig
	Probe       ProbeConfig
	Logging     LoggingConfig
}

type ServerConfig struct {
	Port           string
	AllowOrigins   []string
	RequestTimeout time.Duration
}

type ObjectStoreConfig struct {
	Driver         string // s3 (MinIO compatible), fs or memory
	Endpoint       string
	AccessKey      string `json:"-"`
	SecretKey      string `json:"-"`
	Region         string
	UseSSL         bool
	Bucket         string
	RootDir        string // root directory for the fs driver
	ConnectTimeout time.Duration
}

type SearchConfig struct {
	DefaultLimit int
	MaxLimit     int
	Prefetch     int    // objects fetched ahead of the filter; 1 means strictly sequential
	Ordering     string // name or modified
	SampleLines  int
}

type KafkaConfig struct {
	Brokers       []string
	LogTopic      string
	ConsumerGroup string
}

type ArchiverConfig struct {
	Enabled      bool
	BatchSize    int
	MaxBatchWait time.Duration
	Compression  string // object suffix, e.g. .log.gz
	Tag          string
}

type ProbeConfig struct {
	Schedule string
}

type LoggingConfig struct {
	Level      string
	Format     string // console or json
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

func NewConfig() (*Config, error) {
	// Configure Viper to read .env file
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	config := fromViper()
	log.Info().Interface("config", config).Msg("Config loaded")
	return config, nil
}

func setDefaults() {
	viper.SetDefault("SERVER_PORT", "5005")
	viper.SetDefault("SERVER_ALLOW_ORIGINS", "*")
	viper.SetDefault("SERVER_REQUEST_TIMEOUT", "60s")

	viper.SetDefault("OBJECTSTORE_DRIVER", "s3")
	viper.SetDefault("OBJECTSTORE_ENDPOINT", "minio:9000")
	viper.SetDefault("OBJECTSTORE_ACCESS_KEY", "minioadmin")
	viper.SetDefault("OBJECTSTORE_SECRET_KEY", "minioadmin")
	viper.SetDefault("OBJECTSTORE_REGION", "us-east-1")
	viper.SetDefault("OBJECTSTORE_USE_SSL", false)
	viper.SetDefault("OBJECTSTORE_BUCKET", "logs")
	viper.SetDefault("OBJECTSTORE_ROOT_DIR", "./data")
	viper.SetDefault("OBJECTSTORE_CONNECT_TIMEOUT", "30s")

	viper.SetDefault("SEARCH_DEFAULT_LIMIT", 100)
	viper.SetDefault("SEARCH_MAX_LIMIT", 10000)
	viper.SetDefault("SEARCH_PREFETCH", 4)
	viper.SetDefault("SEARCH_ORDERING", "name")
	viper.SetDefault("SEARCH_SAMPLE_LINES", 5)

	viper.SetDefault("KAFKA_BROKERS", "localhost:9092")
	viper.SetDefault("KAFKA_LOG_TOPIC", "log_events")
	viper.SetDefault("KAFKA_CONSUMER_GROUP", "log_archiver_group")

	viper.SetDefault("ARCHIVER_ENABLED", false)
	viper.SetDefault("ARCHIVER_BATCH_SIZE", 500)
	viper.SetDefault("ARCHIVER_MAX_BATCH_WAIT", "30s")
	viper.SetDefault("ARCHIVER_COMPRESSION", ".log.gz")
	viper.SetDefault("ARCHIVER_TAG", "app")

	viper.SetDefault("PROBE_SCHEDULE", "*/30 * * * * *") // Every 30 seconds

	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "console")
	viper.SetDefault("LOG_FILE", "")
	viper.SetDefault("LOG_MAX_SIZE_MB", 100)
	viper.SetDefault("LOG_MAX_BACKUPS", 5)
	viper.SetDefault("LOG_MAX_AGE_DAYS", 28)
	viper.SetDefault("LOG_COMPRESS", true)
}

func fromViper() *Config {
	var config Config

	// --- Server ---
	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Server.AllowOrigins = splitList(viper.GetString("SERVER_ALLOW_ORIGINS"))
	config.Server.RequestTimeout = viper.GetDuration("SERVER_REQUEST_TIMEOUT")

	// --- Object Store ---
	config.ObjectStore.Driver = viper.GetString("OBJECTSTORE_DRIVER")
	config.ObjectStore.Endpoint = viper.GetString("OBJECTSTORE_ENDPOINT")
	config.ObjectStore.AccessKey = viper.GetString("OBJECTSTORE_ACCESS_KEY")
	config.ObjectStore.SecretKey = viper.GetString("OBJECTSTORE_SECRET_KEY")
	config.ObjectStore.Region = viper.GetString("OBJECTSTORE_REGION")
	config.ObjectStore.UseSSL = viper.GetBool("OBJECTSTORE_USE_SSL")
	config.ObjectStore.Bucket = viper.GetString("OBJECTSTORE_BUCKET")
	config.ObjectStore.RootDir = viper.GetString("OBJECTSTORE_ROOT_DIR")
	config.ObjectStore.ConnectTimeout = viper.GetDuration("OBJECTSTORE_CONNECT_TIMEOUT")

	// --- Search ---
	config.Search.DefaultLimit = viper.GetInt("SEARCH_DEFAULT_LIMIT")
	config.Search.MaxLimit = viper.GetInt("SEARCH_MAX_LIMIT")
	config.Search.Prefetch = viper.GetInt("SEARCH_PREFETCH")
	config.Search.Ordering = viper.GetString("SEARCH_ORDERING")
	config.Search.SampleLines = viper.GetInt("SEARCH_SAMPLE_LINES")

	// --- Kafka ---
	config.Kafka.Brokers = splitList(viper.GetString("KAFKA_BROKERS"))
	config.Kafka.LogTopic = viper.GetString("KAFKA_LOG_TOPIC")
	config.Kafka.ConsumerGroup = viper.GetString("KAFKA_CONSUMER_GROUP")

	// --- Archiver ---
	config.Archiver.Enabled = viper.GetBool("ARCHIVER_ENABLED")
	config.Archiver.BatchSize = viper.GetInt("ARCHIVER_BATCH_SIZE")
	config.Archiver.MaxBatchWait = viper.GetDuration("ARCHIVER_MAX_BATCH_WAIT")
	config.Archiver.Compression = viper.GetString("ARCHIVER_COMPRESSION")
	config.Archiver.Tag = viper.GetString("ARCHIVER_TAG")

	// --- Probe ---
	config.Probe.Schedule = viper.GetString("PROBE_SCHEDULE")

	// --- Logging ---
	config.Logging.Level = viper.GetString("LOG_LEVEL")
	config.Logging.Format = viper.GetString("LOG_FORMAT")
	config.Logging.File = viper.GetString("LOG_FILE")
	config.Logging.MaxSizeMB = viper.GetInt("LOG_MAX_SIZE_MB")
	config.Logging.MaxBackups = viper.GetInt("LOG_MAX_BACKUPS")
	config.Logging.MaxAgeDays = viper.GetInt("LOG_MAX_AGE_DAYS")
	config.Logging.Compress = viper.GetBool("LOG_COMPRESS")

	return &config
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
