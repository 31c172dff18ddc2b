package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/harvest/internal/instance"
	"github.com/mesh-intelligence/harvest/internal/logging"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyDataDir   = "data_dir"
	cfgKeyLogLevel  = "log_level"
	cfgKeyLogFormat = "log_format"
	cfgKeyLockPort  = "lock_port"

	envPrefix = "HARVEST"
)

// settings is the resolved configuration for one run.
type settings struct {
	DataDir   string `yaml:"data_dir,omitempty"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	LockPort  int    `yaml:"lock_port"`
}

func defaultSettings() settings {
	return settings{
		LogLevel:  logging.DefaultLevel,
		LogFormat: logging.FormatConsole,
		LockPort:  instance.DefaultPort,
	}
}

// loadSettings reads config.yaml from configDir, creating the directory and
// a default file on first run. HARVEST_LOG_LEVEL, HARVEST_LOG_FORMAT and
// HARVEST_LOCK_PORT override the file. data_dir is not read from the
// environment here; paths.ResolveDataDir applies HARVEST_DATA_DIR after the
// file value.
func loadSettings(configDir string) (settings, error) {
	if err := ensureConfigDir(configDir); err != nil {
		return settings{}, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return settings{}, fmt.Errorf("ensure default config: %w", err)
	}

	def := defaultSettings()
	v := viper.New()
	v.SetDefault(cfgKeyLogLevel, def.LogLevel)
	v.SetDefault(cfgKeyLogFormat, def.LogFormat)
	v.SetDefault(cfgKeyLockPort, def.LockPort)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(envPrefix)
	for _, key := range []string{cfgKeyLogLevel, cfgKeyLogFormat, cfgKeyLockPort} {
		if err := v.BindEnv(key); err != nil {
			return settings{}, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return settings{}, fmt.Errorf("read config: %w", err)
		}
	}

	return settings{
		DataDir:   v.GetString(cfgKeyDataDir),
		LogLevel:  v.GetString(cfgKeyLogLevel),
		LogFormat: v.GetString(cfgKeyLogFormat),
		LockPort:  v.GetInt(cfgKeyLockPort),
	}, nil
}

func ensureConfigDir(configDir string) error {
	return os.MkdirAll(configDir, 0o755)
}

// ensureDefaultConfigFile writes a default config.yaml if none exists.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	body, err := yaml.Marshal(defaultSettings())
	if err != nil {
		return fmt.Errorf("encode default config: %w", err)
	}
	header := "# harvest configuration\n# data_dir: /path/to/farm  (overridden by --data-dir)\n"
	return os.WriteFile(path, append([]byte(header), body...), 0o644)
}
