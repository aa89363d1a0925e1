package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/janekbaraniewski/co2meter/internal/fuel"
	"github.com/janekbaraniewski/co2meter/internal/intangles"
)

const (
	defaultRefreshSeconds    = 2
	defaultRunTimeoutSeconds = 60
	defaultPageSize          = 300
	defaultTokenEnv          = "INTANGLES_TOKEN"
	defaultUnit              = "kg"
	defaultDensity           = 0.45
	defaultTrendPoints       = 60
)

type UIConfig struct {
	RefreshIntervalSeconds int  `json:"refresh_interval_seconds"`
	RunTimeoutSeconds      int  `json:"run_timeout_seconds"`
	ShowTrend              bool `json:"show_trend"`
	TrendPoints            int  `json:"trend_points"`
}

type APIConfig struct {
	BaseURL          string   `json:"base_url"`
	Origin           string   `json:"origin,omitempty"`
	Timezone         string   `json:"timezone,omitempty"`
	TokenEnv         string   `json:"token_env"`
	Token            string   `json:"-"` // runtime-only: never persisted
	AccountID        string   `json:"acc_id"`
	SpecIDs          []string `json:"spec_ids"`
	PageSize         int      `json:"psize"`
	Lang             string   `json:"lang"`
	Projection       string   `json:"proj"`
	Groups           string   `json:"groups"`
	NoDefaultFields  bool     `json:"no_default_fields"`
	LastLocationOnly bool     `json:"lastloc"`
}

// FuelConfig names the unit of the aggregated field and, for litres, the
// density in kg per litre.
type FuelConfig struct {
	Unit    string  `json:"unit"`
	Density float64 `json:"density_kg_per_l"`
}

type Config struct {
	UI   UIConfig   `json:"ui"`
	API  APIConfig  `json:"api"`
	Fuel FuelConfig `json:"fuel"`
}

func DefaultConfig() Config {
	return Config{
		UI: UIConfig{
			RefreshIntervalSeconds: defaultRefreshSeconds,
			RunTimeoutSeconds:      defaultRunTimeoutSeconds,
			ShowTrend:              true,
			TrendPoints:            defaultTrendPoints,
		},
		API: APIConfig{
			BaseURL:          intangles.DefaultBaseURL,
			TokenEnv:         defaultTokenEnv,
			AccountID:        "962759605811675136",
			SpecIDs:          []string{"966986020958502912", "969208267156750336"},
			PageSize:         defaultPageSize,
			Lang:             "en",
			Projection:       "total_fuel_consumed",
			NoDefaultFields:  true,
			LastLocationOnly: true,
		},
		Fuel: FuelConfig{
			Unit:    defaultUnit,
			Density: defaultDensity,
		},
	}
}

func ConfigDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), "co2meter")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "co2meter")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "settings.json")
}

// UnitSpec returns the fuel unit configured for aggregation.
func (c Config) UnitSpec() fuel.UnitSpec {
	return fuel.UnitSpec{Code: c.Fuel.Unit, Density: c.Fuel.Density}
}

// Validate reports settings that would make every run fail.
func (c Config) Validate() error {
	if err := c.UnitSpec().Validate(); err != nil {
		return err
	}
	if c.API.PageSize <= 0 {
		return fmt.Errorf("%w: %d", fuel.ErrInvalidPageSize, c.API.PageSize)
	}
	return nil
}

// ResolveToken prefers an explicit token, then the configured environment
// variable, then the token stored for this base URL and account.
func (c APIConfig) ResolveToken(creds Credentials) string {
	if c.Token != "" {
		return c.Token
	}
	if c.TokenEnv != "" {
		if tok := strings.TrimSpace(os.Getenv(c.TokenEnv)); tok != "" {
			return tok
		}
	}
	return creds.Token(c)
}

// ClientOptions maps the API settings onto transport options.
func (c APIConfig) ClientOptions(token string, verbose bool) intangles.Options {
	return intangles.Options{
		BaseURL:  c.BaseURL,
		Token:    token,
		Origin:   c.Origin,
		Timezone: c.Timezone,
		Verbose:  verbose,
		Query: intangles.Query{
			AccountID:        c.AccountID,
			SpecIDs:          c.SpecIDs,
			Projection:       c.Projection,
			Groups:           c.Groups,
			Lang:             c.Lang,
			NoDefaultFields:  c.NoDefaultFields,
			LastLocationOnly: c.LastLocationOnly,
		},
	}
}

func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config %s: %w", path, err)
	}

	defaults := DefaultConfig()
	if cfg.UI.RefreshIntervalSeconds <= 0 {
		cfg.UI.RefreshIntervalSeconds = defaultRefreshSeconds
	}
	if cfg.UI.RunTimeoutSeconds <= 0 {
		cfg.UI.RunTimeoutSeconds = defaultRunTimeoutSeconds
	}
	if cfg.UI.TrendPoints <= 0 {
		cfg.UI.TrendPoints = defaultTrendPoints
	}
	if strings.TrimSpace(cfg.API.BaseURL) == "" {
		cfg.API.BaseURL = defaults.API.BaseURL
	}
	if cfg.API.Lang == "" {
		cfg.API.Lang = defaults.API.Lang
	}
	cfg.API.SpecIDs = normalizeSpecIDs(cfg.API.SpecIDs)

	return cfg, nil
}

func normalizeSpecIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

// saveMu guards read-modify-write cycles on the config file.
var saveMu sync.Mutex

func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

func SaveTo(path string, cfg Config) error {
	saveMu.Lock()
	defer saveMu.Unlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
