package app

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strings"

	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/rs/zerolog"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/paw-chain/pawswap/app/telemetry"
	ammtypes "github.com/paw-chain/pawswap/x/amm/types"
)

// Configuration keys
const (
	KeyChainID              = "chain-id"
	KeyDBBackend            = "db.backend"
	KeyDBDir                = "db.dir"
	KeyLogLevel             = "log.level"
	KeyLogFormat            = "log.format"
	KeyLogFile              = "log.file"
	KeyLogMaxSizeMB         = "log.max-size-mb"
	KeyMetricsEnabled       = "metrics.enabled"
	KeyMetricsListenAddr    = "metrics.listen-addr"
	KeyAPIListenAddr        = "api.listen-addr"
	KeyAPICORSOrigins       = "api.cors-origins"
	KeyAPIRateLimitRPS      = "api.rate-limit-rps"
	KeyTelemetryEnabled     = "telemetry.enabled"
	KeyTelemetryEndpoint    = "telemetry.endpoint"
	KeyTelemetrySampleRate  = "telemetry.sample-rate"
	KeyTelemetryMetrics     = "telemetry.metrics-enabled"
	KeyFeeBasisPoints       = "amm.fee-basis-points"
	KeyRestrictPoolCreation = "amm.restrict-pool-creation"
	KeyOwner                = "amm.owner"

	// EnvPrefix prefixes environment overrides, e.g. PAWSWAP_LOG_LEVEL.
	EnvPrefix = "PAWSWAP"

	LogFormatPlain = "plain"
	LogFormatJSON  = "json"
)

// DefaultNodeHome is the default home directory for pawswapd.
var DefaultNodeHome = defaultHome()

func defaultHome() string {
	userHomeDir, err := os.UserHomeDir()
	if err != nil {
		return ".pawswap"
	}
	return filepath.Join(userHomeDir, ".pawswap")
}

// Config holds the pawswapd configuration.
type Config struct {
	ChainID   string
	DB        DBConfig
	Log       LogConfig
	Metrics   MetricsConfig
	API       APIConfig
	Telemetry TelemetryConfig
	AMM       AMMConfig
}

// DBConfig selects the state database.
type DBConfig struct {
	Backend string
	// Dir is resolved against the home directory when relative.
	Dir string
}

// LogConfig configures the root logger.
type LogConfig struct {
	Level     string
	Format    string
	File      string
	MaxSizeMB int
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled    bool
	ListenAddr string
}

// APIConfig configures the REST query server.
type APIConfig struct {
	ListenAddr  string
	CORSOrigins []string
	// RateLimitRPS is the per client request rate; zero disables limiting.
	RateLimitRPS int
}

// TelemetryConfig configures OpenTelemetry export.
type TelemetryConfig struct {
	Enabled        bool
	Endpoint       string
	SampleRate     float64
	MetricsEnabled bool
}

// AMMConfig holds the AMM genesis parameters and registry owner.
type AMMConfig struct {
	FeeBasisPoints       uint32
	RestrictPoolCreation bool
	// Owner is an account argument, see ResolveAccount.
	Owner string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		ChainID: DefaultChainID,
		DB: DBConfig{
			Backend: string(dbm.GoLevelDBBackend),
			Dir:     "data",
		},
		Log: LogConfig{
			Level:     zerolog.InfoLevel.String(),
			Format:    LogFormatPlain,
			MaxSizeMB: 100,
		},
		Metrics: MetricsConfig{
			Enabled:    false,
			ListenAddr: "127.0.0.1:36660",
		},
		API: APIConfig{
			ListenAddr:   "127.0.0.1:1317",
			CORSOrigins:  []string{"http://localhost:3000", "http://localhost:8080"},
			RateLimitRPS: 100,
		},
		Telemetry: TelemetryConfig{
			Enabled:        false,
			Endpoint:       "localhost:4318",
			SampleRate:     1,
			MetricsEnabled: true,
		},
		AMM: AMMConfig{
			FeeBasisPoints:       ammtypes.DefaultFeeBasisPoints,
			RestrictPoolCreation: false,
			Owner:                "owner",
		},
	}
}

// ConfigPath returns the config file location under home.
func ConfigPath(home string) string {
	return filepath.Join(home, "config", "config.toml")
}

func newViper(defaults Config) *viper.Viper {
	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyChainID, defaults.ChainID)
	v.SetDefault(KeyDBBackend, defaults.DB.Backend)
	v.SetDefault(KeyDBDir, defaults.DB.Dir)
	v.SetDefault(KeyLogLevel, defaults.Log.Level)
	v.SetDefault(KeyLogFormat, defaults.Log.Format)
	v.SetDefault(KeyLogFile, defaults.Log.File)
	v.SetDefault(KeyLogMaxSizeMB, defaults.Log.MaxSizeMB)
	v.SetDefault(KeyMetricsEnabled, defaults.Metrics.Enabled)
	v.SetDefault(KeyMetricsListenAddr, defaults.Metrics.ListenAddr)
	v.SetDefault(KeyAPIListenAddr, defaults.API.ListenAddr)
	v.SetDefault(KeyAPICORSOrigins, defaults.API.CORSOrigins)
	v.SetDefault(KeyAPIRateLimitRPS, defaults.API.RateLimitRPS)
	v.SetDefault(KeyTelemetryEnabled, defaults.Telemetry.Enabled)
	v.SetDefault(KeyTelemetryEndpoint, defaults.Telemetry.Endpoint)
	v.SetDefault(KeyTelemetrySampleRate, defaults.Telemetry.SampleRate)
	v.SetDefault(KeyTelemetryMetrics, defaults.Telemetry.MetricsEnabled)
	v.SetDefault(KeyFeeBasisPoints, defaults.AMM.FeeBasisPoints)
	v.SetDefault(KeyRestrictPoolCreation, defaults.AMM.RestrictPoolCreation)
	v.SetDefault(KeyOwner, defaults.AMM.Owner)
	return v
}

// LoadConfig reads home/config/config.toml, applies PAWSWAP_* environment
// overrides and validates the result. A missing file yields the defaults.
func LoadConfig(home string) (Config, error) {
	v := newViper(DefaultConfig())
	v.SetConfigFile(ConfigPath(home))
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := configFromViper(v)
	if err != nil {
		return Config{}, err
	}
	if cfg.DB.Dir != "" && !filepath.IsAbs(cfg.DB.Dir) {
		cfg.DB.Dir = filepath.Join(home, cfg.DB.Dir)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func configFromViper(v *viper.Viper) (Config, error) {
	maxSize, err := cast.ToIntE(v.Get(KeyLogMaxSizeMB))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", KeyLogMaxSizeMB, err)
	}
	fee, err := cast.ToUint32E(v.Get(KeyFeeBasisPoints))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", KeyFeeBasisPoints, err)
	}
	metricsEnabled, err := cast.ToBoolE(v.Get(KeyMetricsEnabled))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", KeyMetricsEnabled, err)
	}
	restrict, err := cast.ToBoolE(v.Get(KeyRestrictPoolCreation))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", KeyRestrictPoolCreation, err)
	}
	origins, err := cast.ToStringSliceE(v.Get(KeyAPICORSOrigins))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", KeyAPICORSOrigins, err)
	}
	rps, err := cast.ToIntE(v.Get(KeyAPIRateLimitRPS))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", KeyAPIRateLimitRPS, err)
	}
	telemetryEnabled, err := cast.ToBoolE(v.Get(KeyTelemetryEnabled))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", KeyTelemetryEnabled, err)
	}
	sampleRate, err := cast.ToFloat64E(v.Get(KeyTelemetrySampleRate))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", KeyTelemetrySampleRate, err)
	}
	telemetryMetrics, err := cast.ToBoolE(v.Get(KeyTelemetryMetrics))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", KeyTelemetryMetrics, err)
	}

	return Config{
		ChainID: cast.ToString(v.Get(KeyChainID)),
		DB: DBConfig{
			Backend: cast.ToString(v.Get(KeyDBBackend)),
			Dir:     cast.ToString(v.Get(KeyDBDir)),
		},
		Log: LogConfig{
			Level:     cast.ToString(v.Get(KeyLogLevel)),
			Format:    cast.ToString(v.Get(KeyLogFormat)),
			File:      cast.ToString(v.Get(KeyLogFile)),
			MaxSizeMB: maxSize,
		},
		Metrics: MetricsConfig{
			Enabled:    metricsEnabled,
			ListenAddr: cast.ToString(v.Get(KeyMetricsListenAddr)),
		},
		API: APIConfig{
			ListenAddr:   cast.ToString(v.Get(KeyAPIListenAddr)),
			CORSOrigins:  origins,
			RateLimitRPS: rps,
		},
		Telemetry: TelemetryConfig{
			Enabled:        telemetryEnabled,
			Endpoint:       cast.ToString(v.Get(KeyTelemetryEndpoint)),
			SampleRate:     sampleRate,
			MetricsEnabled: telemetryMetrics,
		},
		AMM: AMMConfig{
			FeeBasisPoints:       fee,
			RestrictPoolCreation: restrict,
			Owner:                cast.ToString(v.Get(KeyOwner)),
		},
	}, nil
}

// WriteConfig writes cfg to home/config/config.toml. It refuses to replace an
// existing file unless overwrite is set.
func WriteConfig(home string, cfg Config, overwrite bool) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	path := ConfigPath(home)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set(KeyChainID, cfg.ChainID)
	v.Set(KeyDBBackend, cfg.DB.Backend)
	v.Set(KeyDBDir, cfg.DB.Dir)
	v.Set(KeyLogLevel, cfg.Log.Level)
	v.Set(KeyLogFormat, cfg.Log.Format)
	v.Set(KeyLogFile, cfg.Log.File)
	v.Set(KeyLogMaxSizeMB, cfg.Log.MaxSizeMB)
	v.Set(KeyMetricsEnabled, cfg.Metrics.Enabled)
	v.Set(KeyMetricsListenAddr, cfg.Metrics.ListenAddr)
	v.Set(KeyAPIListenAddr, cfg.API.ListenAddr)
	v.Set(KeyAPICORSOrigins, cfg.API.CORSOrigins)
	v.Set(KeyAPIRateLimitRPS, cfg.API.RateLimitRPS)
	v.Set(KeyTelemetryEnabled, cfg.Telemetry.Enabled)
	v.Set(KeyTelemetryEndpoint, cfg.Telemetry.Endpoint)
	v.Set(KeyTelemetrySampleRate, cfg.Telemetry.SampleRate)
	v.Set(KeyTelemetryMetrics, cfg.Telemetry.MetricsEnabled)
	v.Set(KeyFeeBasisPoints, cfg.AMM.FeeBasisPoints)
	v.Set(KeyRestrictPoolCreation, cfg.AMM.RestrictPoolCreation)
	v.Set(KeyOwner, cfg.AMM.Owner)

	if overwrite {
		return v.WriteConfigAs(path)
	}
	return v.SafeWriteConfigAs(path)
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ChainID) == "" {
		return fmt.Errorf("%s cannot be empty", KeyChainID)
	}

	switch dbm.BackendType(c.DB.Backend) {
	case dbm.GoLevelDBBackend:
		if c.DB.Dir == "" {
			return fmt.Errorf("%s is required for %s", KeyDBDir, c.DB.Backend)
		}
	case dbm.MemDBBackend:
	default:
		return fmt.Errorf("%s must be %s or %s, got %q", KeyDBBackend, dbm.GoLevelDBBackend, dbm.MemDBBackend, c.DB.Backend)
	}

	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%s: %w", KeyLogLevel, err)
	}
	if c.Log.Format != LogFormatPlain && c.Log.Format != LogFormatJSON {
		return fmt.Errorf("%s must be %s or %s, got %q", KeyLogFormat, LogFormatPlain, LogFormatJSON, c.Log.Format)
	}
	if c.Log.MaxSizeMB <= 0 {
		return fmt.Errorf("%s must be positive", KeyLogMaxSizeMB)
	}

	if c.Metrics.Enabled {
		if _, _, err := net.SplitHostPort(c.Metrics.ListenAddr); err != nil {
			return fmt.Errorf("%s: %w", KeyMetricsListenAddr, err)
		}
	}

	if _, _, err := net.SplitHostPort(c.API.ListenAddr); err != nil {
		return fmt.Errorf("%s: %w", KeyAPIListenAddr, err)
	}
	if c.API.RateLimitRPS < 0 {
		return fmt.Errorf("%s cannot be negative", KeyAPIRateLimitRPS)
	}

	if c.Telemetry.Enabled {
		if err := telemetry.ValidateConfig(c.TelemetryProviderConfig()); err != nil {
			return fmt.Errorf("telemetry: %w", err)
		}
	}

	if err := ammtypes.NewParams(c.AMM.FeeBasisPoints, c.AMM.RestrictPoolCreation).Validate(); err != nil {
		return fmt.Errorf("amm: %w", err)
	}
	if _, err := ResolveAccount(c.AMM.Owner); err != nil {
		return fmt.Errorf("%s: %w", KeyOwner, err)
	}
	return nil
}

// TelemetryProviderConfig converts the telemetry section for NewProvider.
func (c Config) TelemetryProviderConfig() telemetry.Config {
	return telemetry.Config{
		Enabled:        c.Telemetry.Enabled,
		Endpoint:       c.Telemetry.Endpoint,
		SampleRate:     c.Telemetry.SampleRate,
		ChainID:        c.ChainID,
		MetricsEnabled: c.Telemetry.MetricsEnabled,
	}
}

// OwnerAddress returns the resolved registry owner.
func (c Config) OwnerAddress() (sdk.AccAddress, error) {
	return ResolveAccount(c.AMM.Owner)
}
