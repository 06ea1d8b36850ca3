package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App       AppConfig       `yaml:"app"`
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Storage   StorageConfig   `yaml:"storage"`
	Recording RecordingConfig `yaml:"recording"`
	Link      LinkConfig      `yaml:"link"`
	Workers   WorkersConfig   `yaml:"workers"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type AppConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Env     string `yaml:"env"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	Charset            string        `yaml:"charset"`
	ParseTime          bool          `yaml:"parse_time"`
	Loc                string        `yaml:"loc"`
	MaxConnections     int           `yaml:"max_connections"`
	MaxIdleConnections int           `yaml:"max_idle_connections"`
	ConnectionLifetime time.Duration `yaml:"connection_lifetime"`
}

type RedisConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Password    string `yaml:"password"`
	DB          int    `yaml:"db"`
	PoolSize    int    `yaml:"pool_size"`
	FilingQueue string `yaml:"filing_queue"`
	DLQSuffix   string `yaml:"dlq_suffix"`
}

// StorageConfig selects the remote backend recordings are filed into.
// Backend is one of "drive", "s3" or "memory".
type StorageConfig struct {
	Backend      string      `yaml:"backend"`
	RootFolderID string      `yaml:"root_folder_id"`
	StagingDir   string      `yaml:"staging_dir"`
	Drive        DriveConfig `yaml:"drive"`
	S3           S3Config    `yaml:"s3"`
}

// DriveConfig covers both ways the tool has authenticated against Drive:
// a service account key, or a delegated user grant (client id/secret plus a
// refresh token obtained out of band).
type DriveConfig struct {
	AuthMode        string        `yaml:"auth_mode"`
	CredentialsFile string        `yaml:"credentials_file"`
	CredentialsJSON string        `yaml:"credentials_json"`
	ClientID        string        `yaml:"client_id"`
	ClientSecret    string        `yaml:"client_secret"`
	RefreshToken    string        `yaml:"refresh_token"`
	SharedDrives    bool          `yaml:"shared_drives"`
	Timeout         time.Duration `yaml:"timeout"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type RecordingConfig struct {
	DefaultPeriod  string `yaml:"default_period"`
	DefaultSection string `yaml:"default_section"`
	DefaultLesson  string `yaml:"default_lesson"`
	GroupCount     int    `yaml:"group_count"`
	GroupFormat    string `yaml:"group_format"`
	Naming         string `yaml:"naming"`
}

type LinkConfig struct {
	BaseURL string `yaml:"base_url"`
	QRSize  int    `yaml:"qr_size"`
}

type WorkersConfig struct {
	Filing FilingWorkerConfig `yaml:"filing"`
}

// Count above 1 lets two submissions for a brand-new lesson race on folder
// creation; see DESIGN.md.
type FilingWorkerConfig struct {
	Count int `yaml:"count"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load() (*Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML config, expanding ${VAR} references from the environment
// so credentials can stay out of the file.
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDefaults()
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Server.MaxUploadBytes == 0 {
		c.Server.MaxUploadBytes = 50 * 1024 * 1024
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "drive"
	}
	if c.Storage.Drive.AuthMode == "" {
		c.Storage.Drive.AuthMode = "service_account"
	}
	if c.Recording.GroupCount == 0 {
		c.Recording.GroupCount = 12
	}
	if c.Recording.GroupFormat == "" {
		c.Recording.GroupFormat = "%d班"
	}
	if c.Recording.Naming == "" {
		c.Recording.Naming = "normalized"
	}
	if c.Link.QRSize == 0 {
		c.Link.QRSize = 256
	}
	if c.Redis.FilingQueue == "" {
		c.Redis.FilingQueue = "recordings:filing"
	}
	if c.Redis.DLQSuffix == "" {
		c.Redis.DLQSuffix = ":dlq"
	}
	if c.Workers.Filing.Count == 0 {
		c.Workers.Filing.Count = 1
	}
}

func (c *Config) validate() error {
	if c.Recording.GroupCount < 0 {
		return fmt.Errorf("invalid recording.group_count %d: must not be negative", c.Recording.GroupCount)
	}
	first := fmt.Sprintf(c.Recording.GroupFormat, 1)
	if strings.Contains(first, "%!") || first == fmt.Sprintf(c.Recording.GroupFormat, 2) {
		return fmt.Errorf("invalid recording.group_format %q: must contain one integer verb such as %%d", c.Recording.GroupFormat)
	}
	return nil
}

// Groups returns the fixed range of group labels students choose from.
func (c *Config) Groups() []string {
	groups := make([]string, 0, max(c.Recording.GroupCount, 0))
	for i := 1; i <= c.Recording.GroupCount; i++ {
		groups = append(groups, fmt.Sprintf(c.Recording.GroupFormat, i))
	}
	return groups
}

// MySQL DSN format: [username[:password]@][protocol[(address)]]/dbname[?param1=value1&...&paramN=valueN]
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=%s",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port,
		c.Database.Name, c.Database.Charset, c.Database.ParseTime, c.Database.Loc)
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
