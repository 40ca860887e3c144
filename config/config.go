package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"pledgebook/database"

	"github.com/hashicorp/go-multierror"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// Storage backends
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

const (
	defaultHTTPAddr        = ":8080"
	defaultDataDir         = "data"
	defaultPriceFeedURL    = "https://api.coingecko.com/api/v3/simple/price?ids=pi-network&vs_currencies=php,usd"
	defaultPriceAssetID    = "pi-network"
	defaultPriceTTL        = 60 * time.Second
	defaultPriceTimeout    = 6 * time.Second
	defaultCodeLength      = 7
	defaultDonationAddress = "MALYJFJ5SVD45FBWN2GT4IW67SEZ3IBOFSBSPUFCWV427NBNLG3PWAAAAAAAAIR37PBGG"
)

// Config holds all application configuration
type Config struct {
	Environment string // "development", "production" or "test"
	LogLevel    string

	// HTTP
	HTTPAddr   string
	AdminToken string // shared secret for admin routes

	// Storage
	StorageBackend string // BackendFile or BackendPostgres
	DataDir        string
	DatabaseURL    string
	DatabaseName   string

	// Price feed
	PriceFeedURL string
	PriceAssetID string
	PriceTTL     time.Duration
	PriceTimeout time.Duration

	// Pledges
	CodeLength      int
	DonationAddress string

	// Discord notifications, enabled when both are set
	DiscordToken     string
	DiscordChannelID string

	// NATS event forwarding, enabled when set (comma-separated)
	NATSServers string
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// GetDatabaseURL combines the base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// IsProduction reports whether the process runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// DiscordEnabled reports whether pledge notifications go to Discord
func (c *Config) DiscordEnabled() bool {
	return c.DiscordToken != "" && c.DiscordChannelID != ""
}

// NATSEnabled reports whether events are forwarded to NATS
func (c *Config) NATSEnabled() bool {
	return c.NATSServers != ""
}

// load builds the configuration from defaults, then the optional file named
// by CONFIG_FILE, then environment variables. Later sources win.
func load() (*Config, error) {
	config := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := config.applyFile(path); err != nil {
			return nil, err
		}
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func defaults() *Config {
	return &Config{
		Environment:     "development",
		LogLevel:        "info",
		HTTPAddr:        defaultHTTPAddr,
		StorageBackend:  BackendFile,
		DataDir:         defaultDataDir,
		PriceFeedURL:    defaultPriceFeedURL,
		PriceAssetID:    defaultPriceAssetID,
		PriceTTL:        defaultPriceTTL,
		PriceTimeout:    defaultPriceTimeout,
		CodeLength:      defaultCodeLength,
		DonationAddress: defaultDonationAddress,
	}
}

// fileConfig is the TOML layout of CONFIG_FILE
type fileConfig struct {
	Environment string `toml:"environment"`
	LogLevel    string `toml:"log_level"`

	Server struct {
		Addr       string `toml:"addr"`
		AdminToken string `toml:"admin_token"`
	} `toml:"server"`

	Storage struct {
		Backend      string `toml:"backend"`
		DataDir      string `toml:"data_dir"`
		DatabaseURL  string `toml:"database_url"`
		DatabaseName string `toml:"database_name"`
	} `toml:"storage"`

	Price struct {
		FeedURL string   `toml:"feed_url"`
		AssetID string   `toml:"asset_id"`
		TTL     Duration `toml:"ttl"`
		Timeout Duration `toml:"timeout"`
	} `toml:"price"`

	Pledges struct {
		CodeLength      int    `toml:"code_length"`
		DonationAddress string `toml:"donation_address"`
	} `toml:"pledges"`

	Discord struct {
		Token     string `toml:"token"`
		ChannelID string `toml:"channel_id"`
	} `toml:"discord"`

	NATS struct {
		Servers StringSlice `toml:"servers"`
	} `toml:"nats"`
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read config file: %s", path)
	}

	var file fileConfig
	if err := toml.Unmarshal(data, &file); err != nil {
		return errors.Wrap(err, "failed to unmarshal toml")
	}

	setString(&c.Environment, file.Environment)
	setString(&c.LogLevel, file.LogLevel)
	setString(&c.HTTPAddr, file.Server.Addr)
	setString(&c.AdminToken, file.Server.AdminToken)
	setString(&c.StorageBackend, file.Storage.Backend)
	setString(&c.DataDir, file.Storage.DataDir)
	setString(&c.DatabaseURL, file.Storage.DatabaseURL)
	setString(&c.DatabaseName, file.Storage.DatabaseName)
	setString(&c.PriceFeedURL, file.Price.FeedURL)
	setString(&c.PriceAssetID, file.Price.AssetID)
	setString(&c.DonationAddress, file.Pledges.DonationAddress)
	setString(&c.DiscordToken, file.Discord.Token)
	setString(&c.DiscordChannelID, file.Discord.ChannelID)
	setString(&c.NATSServers, strings.Join(file.NATS.Servers, ","))

	if file.Price.TTL != 0 {
		c.PriceTTL = time.Duration(file.Price.TTL)
	}
	if file.Price.Timeout != 0 {
		c.PriceTimeout = time.Duration(file.Price.Timeout)
	}
	if file.Pledges.CodeLength != 0 {
		c.CodeLength = file.Pledges.CodeLength
	}

	return nil
}

func (c *Config) applyEnv() error {
	c.Environment = getEnvWithDefault("ENVIRONMENT", c.Environment)
	c.LogLevel = getEnvWithDefault("LOG_LEVEL", c.LogLevel)
	c.HTTPAddr = getEnvWithDefault("HTTP_ADDR", c.HTTPAddr)
	c.AdminToken = getEnvWithDefault("ADMIN_TOKEN", c.AdminToken)
	c.StorageBackend = getEnvWithDefault("STORAGE_BACKEND", c.StorageBackend)
	c.DataDir = getEnvWithDefault("DATA_DIR", c.DataDir)
	c.DatabaseURL = getEnvWithDefault("DATABASE_URL", c.DatabaseURL)
	c.DatabaseName = getEnvWithDefault("DATABASE_NAME", c.DatabaseName)
	c.PriceFeedURL = getEnvWithDefault("PRICE_FEED_URL", c.PriceFeedURL)
	c.PriceAssetID = getEnvWithDefault("PRICE_ASSET_ID", c.PriceAssetID)
	c.DonationAddress = getEnvWithDefault("DONATION_ADDRESS", c.DonationAddress)
	c.DiscordToken = getEnvWithDefault("DISCORD_TOKEN", c.DiscordToken)
	c.DiscordChannelID = getEnvWithDefault("DISCORD_CHANNEL_ID", c.DiscordChannelID)
	c.NATSServers = getEnvWithDefault("NATS_SERVERS", c.NATSServers)

	var result *multierror.Error
	if v := os.Getenv("PRICE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			result = multierror.Append(result, errors.Wrap(err, "invalid PRICE_TTL"))
		}
		c.PriceTTL = d
	}
	if v := os.Getenv("PRICE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			result = multierror.Append(result, errors.Wrap(err, "invalid PRICE_TIMEOUT"))
		}
		c.PriceTimeout = d
	}
	if v := os.Getenv("CODE_LENGTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			result = multierror.Append(result, errors.Wrap(err, "invalid CODE_LENGTH"))
		}
		c.CodeLength = n
	}

	return result.ErrorOrNil()
}

func (c *Config) validate() error {
	var result *multierror.Error

	switch c.StorageBackend {
	case BackendFile:
		if c.DataDir == "" {
			result = multierror.Append(result, errors.New("DATA_DIR is required for the file backend"))
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			result = multierror.Append(result, errors.New("DATABASE_URL is required for the postgres backend"))
		}
	default:
		result = multierror.Append(result, errors.Errorf("STORAGE_BACKEND must be %q or %q, got %q", BackendFile, BackendPostgres, c.StorageBackend))
	}

	if c.PriceTTL <= 0 {
		result = multierror.Append(result, errors.New("PRICE_TTL must be positive"))
	}
	if c.PriceTimeout <= 0 {
		result = multierror.Append(result, errors.New("PRICE_TIMEOUT must be positive"))
	}
	if c.CodeLength < 4 || c.CodeLength > 16 {
		result = multierror.Append(result, errors.Errorf("CODE_LENGTH must be between 4 and 16, got %d", c.CodeLength))
	}
	if c.DiscordToken != "" && c.DiscordChannelID == "" {
		result = multierror.Append(result, errors.New("DISCORD_CHANNEL_ID is required when DISCORD_TOKEN is set"))
	}

	if c.Environment != "test" && c.AdminToken == "" {
		result = multierror.Append(result, errors.New("ADMIN_TOKEN is required"))
	}

	return result.ErrorOrNil()
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Duration is a toml extension accepting either a Go duration string such as
// "90s" or a whole number of seconds.
type Duration time.Duration

func (d *Duration) UnmarshalTOML(v interface{}) error {
	switch value := v.(type) {
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return errors.Wrapf(err, "invalid duration %q", value)
		}
		*d = Duration(parsed)
		return nil
	case int64:
		*d = Duration(time.Duration(value) * time.Second)
		return nil
	}

	return errors.New("failed to decode duration field")
}

// StringSlice is a toml extension that lets you specify either a string
// value (a slice with just one element) or a string slice.
type StringSlice []string

func (s *StringSlice) UnmarshalTOML(v interface{}) error {
	switch value := v.(type) {
	case string:
		*s = []string{value}
		return nil
	case []interface{}:
		out := make([]string, 0, len(value))
		for _, item := range value {
			str, ok := item.(string)
			if !ok {
				return errors.New("failed to decode string slice field")
			}
			out = append(out, str)
		}
		*s = out
		return nil
	}

	return errors.New("failed to decode string slice field")
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	config := defaults()
	config.Environment = "test"
	config.AdminToken = "test-admin-token"
	return config
}
