package config

import (
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"wallet-account-picker/internal/units"
)

// Config holds all picker configuration
type Config struct {
	Network NetworkConfig `mapstructure:"network"`
	UI      UIConfig      `mapstructure:"ui"`
	Picker  PickerConfig  `mapstructure:"picker"`
	Storage StorageConfig `mapstructure:"storage"`
	Feed    FeedConfig    `mapstructure:"feed"`
	Log     LogConfig     `mapstructure:"log"`
}

type NetworkConfig struct {
	Ticker  string `mapstructure:"ticker"`   // empty = native symbol of chain_id
	ChainID int64  `mapstructure:"chain_id"` // picks the symbol when ticker is empty
}

type UIConfig struct {
	Locale        string `mapstructure:"locale"`
	Theme         int    `mapstructure:"theme"`
	IdenticonSize int    `mapstructure:"identicon_size"`
	RefreshRateMs int    `mapstructure:"refresh_rate_ms"`
}

type PickerConfig struct {
	Origin            string   `mapstructure:"origin"` // session the connect/revoke actions apply to
	DisabledAddresses []string `mapstructure:"disabled_addresses"`
}

type StorageConfig struct {
	SQLitePath string `mapstructure:"sqlite_path"`
}

type FeedConfig struct {
	ListenHost       string `mapstructure:"listen_host"`
	ListenPort       int    `mapstructure:"listen_port"`
	WSURL            string `mapstructure:"ws_url"` // empty disables the subscriber
	WSAuthToken      string `mapstructure:"ws_auth_token"`
	ReconnectDelayMs int    `mapstructure:"reconnect_delay_ms"`
	RateLimit        int    `mapstructure:"rate_limit"` // requests per second
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// Manager handles config loading and hot-reload
type Manager struct {
	mu       sync.RWMutex
	config   *Config
	viper    *viper.Viper
	onChange func(*Config)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("network.ticker", "")
	v.SetDefault("network.chain_id", 1)
	v.SetDefault("ui.locale", "en")
	v.SetDefault("ui.theme", 0)
	v.SetDefault("ui.identicon_size", 4)
	v.SetDefault("ui.refresh_rate_ms", 500)
	v.SetDefault("picker.origin", "local")
	v.SetDefault("picker.disabled_addresses", []string{})
	v.SetDefault("storage.sqlite_path", "./data/accounts.db")
	v.SetDefault("feed.listen_host", "127.0.0.1")
	v.SetDefault("feed.listen_port", 8645)
	v.SetDefault("feed.ws_url", "")
	v.SetDefault("feed.ws_auth_token", "")
	v.SetDefault("feed.reconnect_delay_ms", 2000)
	v.SetDefault("feed.rate_limit", 20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "data/picker.log")
}

// NewManager creates a new config manager
func NewManager(configPath string) (*Manager, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	m := &Manager{
		config: &cfg,
		viper:  v,
	}

	// Watch for config changes
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Info().Str("file", e.Name).Msg("config file changed, reloading")
		m.reload()
	})

	return m, nil
}

// Default returns a manager holding only defaults, for runs without a config file
func Default() *Manager {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Error().Err(err).Msg("failed to unmarshal default config")
	}
	return &Manager{config: &cfg, viper: v}
}

// Get returns the current config (thread-safe)
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// GetUI returns UI config (read on every render)
func (m *Manager) GetUI() UIConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.UI
}

// Ticker returns the network symbol, derived from chain_id when none is set
func (m *Manager) Ticker() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return units.TickerFor(m.config.Network.Ticker, m.config.Network.ChainID)
}

// IsDisabled reports whether rows for address should render disabled
func (m *Manager) IsDisabled(address string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.config.Picker.DisabledAddresses {
		if strings.EqualFold(a, address) {
			return true
		}
	}
	return false
}

// SetOnChange registers a callback for config changes
func (m *Manager) SetOnChange(fn func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

// Update modifies config values and saves to file
func (m *Manager) Update(fn func(*Config)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	fn(m.config)

	m.viper.Set("ui.theme", m.config.UI.Theme)
	m.viper.Set("ui.locale", m.config.UI.Locale)
	m.viper.Set("picker.disabled_addresses", m.config.Picker.DisabledAddresses)

	if m.viper.ConfigFileUsed() != "" {
		if err := m.viper.WriteConfig(); err != nil {
			return err
		}
	}

	if m.onChange != nil {
		m.onChange(m.config)
	}

	return nil
}

func (m *Manager) reload() {
	m.mu.Lock()
	defer m.mu.Unlock()

	var cfg Config
	if err := m.viper.Unmarshal(&cfg); err != nil {
		log.Error().Err(err).Msg("failed to unmarshal config on reload")
		return
	}

	m.config = &cfg
	if m.onChange != nil {
		m.onChange(&cfg)
	}
}

// GetRefreshRate returns the header clock refresh interval
func (m *Manager) GetRefreshRate() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return time.Duration(m.config.UI.RefreshRateMs) * time.Millisecond
}

// GetReconnectDelay returns the feed subscriber's reconnect backoff
func (m *Manager) GetReconnectDelay() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return time.Duration(m.config.Feed.ReconnectDelayMs) * time.Millisecond
}
