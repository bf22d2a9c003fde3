package main

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigFile = "./config.yml"
	DefaultEnvFile    = "./config.env"
	EnvPrefix         = "BKUI"
)

// Config defines the structure of the configuration file.
type Config struct {
	GitCommit    string        `yaml:"git_commit" envconfig:"BKUI_GIT_COMMIT"`
	GitTag       string        `yaml:"git_tag" envconfig:"BKUI_GIT_TAG"`
	BuildTime    string        `yaml:"build_time" envconfig:"BKUI_BUILD_TIME"`
	IsProduction bool          `yaml:"is_production" envconfig:"BKUI_IS_PRODUCTION"`
	LogLevel     zapcore.Level `yaml:"log_level" envconfig:"BKUI_LOG_LEVEL"`
	LogFile      string        `yaml:"log_file" envconfig:"BKUI_LOG_FILE"`
	API          APIConfig     `yaml:"api"`
	UI           UIConfig      `yaml:"ui"`
	Stub         StubConfig    `yaml:"stub"`
	Redis        RedisConfig   `yaml:"redis"`
	BoltDB       BoltDBConfig  `yaml:"boltdb"`
}

// APIConfig locates the remote books collection.
type APIConfig struct {
	BaseURL string        `yaml:"base_url" envconfig:"BKUI_API_BASE_URL"`
	Timeout time.Duration `yaml:"timeout" envconfig:"BKUI_API_TIMEOUT"`
}

type UIConfig struct {
	ConfirmDelete bool `yaml:"confirm_delete" envconfig:"BKUI_UI_CONFIRM_DELETE"`
	Accessible    bool `yaml:"accessible" envconfig:"BKUI_UI_ACCESSIBLE"` // Line prompts instead of the full screen forms
}

// StubConfig drives the local books api used for development.
type StubConfig struct {
	Host            string        `yaml:"host" envconfig:"BKUI_STUB_HOST"`
	Port            string        `yaml:"port" envconfig:"BKUI_STUB_PORT"`
	Storage         string        `yaml:"storage" envconfig:"BKUI_STUB_STORAGE"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"BKUI_STUB_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"BKUI_STUB_WRITE_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"BKUI_STUB_REQUEST_TIMEOUT"` // Time to wait for a request to finish
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"BKUI_STUB_SHUTDOWN_TIMEOUT"`
	ProfilerEnable  bool          `yaml:"profiler_enable" envconfig:"BKUI_STUB_PROFILER_ENABLE"`
}

type RedisConfig struct {
	Host          string        `yaml:"host" envconfig:"BKUI_REDIS_HOST"`
	Port          string        `yaml:"port" envconfig:"BKUI_REDIS_PORT"`
	DialTimeout   time.Duration `yaml:"dial_timeout" envconfig:"BKUI_REDIS_DIAL_TIMEOUT"`
	ReadTimeout   time.Duration `yaml:"read_timeout" envconfig:"BKUI_REDIS_READ_TIMEOUT"`
	WriteTimeout  time.Duration `yaml:"write_timeout" envconfig:"BKUI_REDIS_WRITE_TIMEOUT"`
	PoolSize      int           `yaml:"pool_size" envconfig:"BKUI_REDIS_POOL_SIZE"`
	PoolTimeout   time.Duration `yaml:"pool_timeout" envconfig:"BKUI_REDIS_POOL_TIMEOUT"`
	Username      string        `yaml:"username" envconfig:"BKUI_REDIS_USERNAME"`
	Password      string        `yaml:"password" envconfig:"BKUI_REDIS_PASSWORD"`
	DatabaseIndex int           `yaml:"db_index" envconfig:"BKUI_REDIS_DATABASE_INDEX"`
	KeyPrefix     string        `yaml:"key_prefix" envconfig:"BKUI_REDIS_KEY_PREFIX"`
}

type BoltDBConfig struct {
	FilePath   string        `yaml:"filepath" envconfig:"BKUI_BOLTDB_FILE_PATH"`
	Timeout    time.Duration `yaml:"timeout" envconfig:"BKUI_BOLTDB_TIMEOUT"`
	BucketName string        `yaml:"bucket_name" envconfig:"BKUI_BOLTDB_BUCKET_NAME"`
}

// LoadConfigFile provides an instance of config structure for the all application.
func LoadConfigFile(configFile string) (*Config, error) {
	file, err := os.Open(configFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	cfg := &Config{}
	yd := yaml.NewDecoder(file)
	err = yd.Decode(cfg)

	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigEnvs reads the environments variables and provides an instance of the App config.
func LoadConfigEnvs(prefix string, config *Config) error {
	return envconfig.Process(prefix, config)
}

// InitConfig setup defaults values for non provided parameters
// and configures build tags values to be used if provided.
func InitConfig(config *Config, gitCommit, gitTag, buildTime string) error {
	if len(gitCommit) != 0 {
		config.GitCommit = gitCommit
	}

	if len(gitTag) != 0 {
		config.GitTag = gitTag
	}

	if len(buildTime) != 0 {
		config.BuildTime = buildTime
	}

	if len(config.LogFile) == 0 {
		config.LogFile = "./logs/booklist.log"
	}

	if len(config.API.BaseURL) == 0 {
		config.API.BaseURL = "http://127.0.0.1:8000"
	}

	if u, err := url.Parse(config.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("make sure to set a valid api base url in configuration file: %q", config.API.BaseURL)
	}

	if config.API.Timeout == 0 {
		config.API.Timeout = 10 * time.Second
	}

	if len(config.Stub.Host) == 0 {
		config.Stub.Host = "127.0.0.1"
	}

	if len(config.Stub.Port) == 0 {
		config.Stub.Port = "8000"
	}

	if len(config.Stub.Storage) == 0 {
		config.Stub.Storage = StorageBolt
	}

	if config.Stub.Storage != StorageBolt && config.Stub.Storage != StorageRedis {
		return invalidStorageKind(config.Stub.Storage)
	}

	if config.Stub.RequestTimeout == 0 {
		config.Stub.RequestTimeout = 10 * time.Second
	}

	if config.Stub.ShutdownTimeout == 0 {
		config.Stub.ShutdownTimeout = 5 * time.Second
	}

	if config.Stub.Storage == StorageRedis && (len(config.Redis.Host) == 0 || len(config.Redis.Port) == 0) {
		return errors.New("make sure to set valid redis address and port in configuration file")
	}

	if len(config.Redis.KeyPrefix) == 0 {
		config.Redis.KeyPrefix = "books"
	}

	if len(config.BoltDB.FilePath) == 0 {
		config.BoltDB.FilePath = "./data/books.db"
	}

	if len(config.BoltDB.BucketName) == 0 {
		config.BoltDB.BucketName = "books"
	}

	if config.BoltDB.Timeout == 0 {
		config.BoltDB.Timeout = time.Second
	}

	return nil
}

// LoadAndInitConfigs loads in order the configs from various predefined sources
// then build the App configuration data. The environment file is optional.
func LoadAndInitConfigs(configFile, envFile, gitCommit, gitTag, buildTime string) (*Config, error) {
	// Setup the yaml configuration from file.
	config, err := LoadConfigFile(configFile)
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from file: %s", err)
	}

	// Set the environment configuration.
	err = godotenv.Load(envFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config, fmt.Errorf("failed to set environment configurations: %s", err)
	}

	// Use environment variables with prefix `BKUI`.
	err = LoadConfigEnvs(EnvPrefix, config)
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from environment: %s", err)
	}

	err = InitConfig(config, gitCommit, gitTag, buildTime)
	if err != nil {
		return config, fmt.Errorf("failed to initialize configurations: %s", err)
	}
	return config, nil
}
