// internal/config/config.go
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Names of the settings every invocation requires.
const (
	ArtifactsBucketKey = "S3_ARTIFACTS_NAME"
	WebsiteBucketKey   = "S3_WEBSITE_NAME"
	TopicKey           = "SNS_TOPIC_ARN"
)

type Config struct {
	Deploy       DeployConfig
	Log          LogConfig
	AWS          AWSConfig
	Storage      StorageConfig
	Notify       NotifyConfig
	Orchestrator OrchestratorConfig
	Server       ServerConfig
}

type DeployConfig struct {
	ArtifactsBucket          string
	WebsiteBucket            string
	TopicID                  string
	DetectUnknownContentType bool
}

type LogConfig struct {
	Level  string
	Format string
}

type AWSConfig struct {
	Region string
}

// StorageConfig selects the object storage backend. Endpoint and keys only
// apply to the S3-compatible backends (minio, sevalla) and to s3 when an
// endpoint override is set.
type StorageConfig struct {
	Backend         string
	Endpoint        string
	AccessKey       string
	SecretKey       string
	Region          string
	UseSSL          bool
	CredentialsJSON string
}

type NotifyConfig struct {
	Backend       string
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

type OrchestratorConfig struct {
	Backend string
}

type ServerConfig struct {
	Port           string
	Mode           string
	AllowedOrigins []string
}

// MissingSettingError reports a required setting that is absent or blank.
type MissingSettingError struct {
	Name string
}

func (e *MissingSettingError) Error() string {
	return fmt.Sprintf("environment variable '%s' is required", e.Name)
}

// Load reads the configuration from the process environment, after seeding
// it from a .env file when one exists.
func Load() (*Config, error) {
	return FromViper(envViper())
}

// LoadLogging reads only the logging settings. It never fails, so a process
// can set up logging before the required settings are checked.
func LoadLogging(defaultFormat string) LogConfig {
	v := envViper()
	if defaultFormat != "" {
		v.SetDefault("LOG_FORMAT", defaultFormat)
	}
	return LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}
}

// LoadServer reads only the HTTP server settings. The deploy settings are
// checked per request, not at startup.
func LoadServer() ServerConfig {
	v := envViper()
	return ServerConfig{
		Port:           v.GetString("SERVER_PORT"),
		Mode:           v.GetString("SERVER_MODE"),
		AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
	}
}

func envViper() *viper.Viper {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("AWS_REGION", "")
	v.SetDefault("STORAGE_BACKEND", "s3")
	v.SetDefault("STORAGE_ENDPOINT", "")
	v.SetDefault("STORAGE_ACCESS_KEY", "")
	v.SetDefault("STORAGE_SECRET_KEY", "")
	v.SetDefault("STORAGE_REGION", "")
	v.SetDefault("STORAGE_USE_SSL", true)
	v.SetDefault("GCS_CREDENTIALS_JSON", "")
	v.SetDefault("NOTIFY_BACKEND", "sns")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("ORCHESTRATOR_BACKEND", "codepipeline")
	v.SetDefault("DETECT_UNKNOWN_CONTENT_TYPE", false)
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "release")
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
}

// FromViper builds a Config from an already populated viper instance. The
// required settings are checked in a fixed order so the first missing one is
// the one reported.
func FromViper(v *viper.Viper) (*Config, error) {
	required := make(map[string]string, 3)
	for _, key := range []string{ArtifactsBucketKey, WebsiteBucketKey, TopicKey} {
		value := strings.TrimSpace(v.GetString(key))
		if value == "" {
			return nil, &MissingSettingError{Name: key}
		}
		required[key] = value
	}

	return &Config{
		Deploy: DeployConfig{
			ArtifactsBucket:          required[ArtifactsBucketKey],
			WebsiteBucket:            required[WebsiteBucketKey],
			TopicID:                  required[TopicKey],
			DetectUnknownContentType: v.GetBool("DETECT_UNKNOWN_CONTENT_TYPE"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		AWS: AWSConfig{
			Region: v.GetString("AWS_REGION"),
		},
		Storage: StorageConfig{
			Backend:         strings.ToLower(v.GetString("STORAGE_BACKEND")),
			Endpoint:        v.GetString("STORAGE_ENDPOINT"),
			AccessKey:       v.GetString("STORAGE_ACCESS_KEY"),
			SecretKey:       v.GetString("STORAGE_SECRET_KEY"),
			Region:          v.GetString("STORAGE_REGION"),
			UseSSL:          v.GetBool("STORAGE_USE_SSL"),
			CredentialsJSON: v.GetString("GCS_CREDENTIALS_JSON"),
		},
		Notify: NotifyConfig{
			Backend:       strings.ToLower(v.GetString("NOTIFY_BACKEND")),
			RedisURL:      v.GetString("REDIS_URL"),
			RedisHost:     v.GetString("REDIS_HOST"),
			RedisPort:     v.GetString("REDIS_PORT"),
			RedisPassword: v.GetString("REDIS_PASSWORD"),
			RedisDB:       v.GetInt("REDIS_DB"),
		},
		Orchestrator: OrchestratorConfig{
			Backend: strings.ToLower(v.GetString("ORCHESTRATOR_BACKEND")),
		},
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
	}, nil
}

// Echo returns the required settings in load order, for logging.
func (c *Config) Echo() [][2]string {
	return [][2]string{
		{"s3_artifacts_name", c.Deploy.ArtifactsBucket},
		{"s3_website_name", c.Deploy.WebsiteBucket},
		{"sns_topic_arn", c.Deploy.TopicID},
	}
}
