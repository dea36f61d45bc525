// Package config resolves vaultpass settings from flags, the environment,
// an optional YAML file and built-in defaults, in that order of precedence.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"vaultpass/internal/logging"
	"vaultpass/internal/scratch"
	"vaultpass/internal/store"
)

// EnvPrefix prefixes the environment variable of every key, e.g.
// VAULTPASS_VAULT_BIN.
const EnvPrefix = "VAULTPASS"

// Store backends.
const (
	BackendCLI = "cli"
	BackendAPI = "api"
)

// Keys.
const (
	KeyBackend    = "backend"
	KeyVaultBin   = "vault_bin"
	KeyNamespace  = "namespace"
	KeyField      = "field"
	KeyVaultAddr  = "vault_addr"
	KeyVaultToken = "vault_token"
	KeyGenerator  = "generator"
	KeyEditor     = "editor"
	KeyScratchDir = "scratch_dir"
	KeyLogLevel   = "log_level"
)

const (
	DefaultGenerator = "genpass"
	DefaultEditor    = "vi"
)

// Flag names for the file locations; they are not config keys themselves.
const (
	FlagConfig  = "config"
	FlagEnvFile = "env-file"
)

// ErrInvalid marks a setting with an unusable value.
var ErrInvalid = errors.New("invalid configuration")

// Config is the resolved configuration for one invocation.
type Config struct {
	Backend    string
	VaultBin   string
	Namespace  string
	Field      string
	VaultAddr  string
	VaultToken string
	Generator  string
	Editor     string
	ScratchDir string
	LogLevel   string

	// File is the config file that was read, empty if none.
	File string
}

// Layout is the store path layout the config describes.
func (c *Config) Layout() store.Layout {
	return store.Layout{Namespace: c.Namespace, Field: c.Field}
}

type flagSpec struct {
	name  string
	key   string
	value string
	usage string
}

var flagSpecs = []flagSpec{
	{"backend", KeyBackend, BackendCLI, "store backend: cli (exec the vault binary) or api (Vault HTTP API)"},
	{"vault-bin", KeyVaultBin, store.DefaultBin, "vault binary used by the cli backend"},
	{"namespace", KeyNamespace, store.DefaultNamespace, "path prefix under which secrets live"},
	{"field", KeyField, store.DefaultField, "field holding the secret payload"},
	{"vault-addr", KeyVaultAddr, "", "Vault address for the api backend (default: $VAULT_ADDR)"},
	{"generator", KeyGenerator, DefaultGenerator, "password generator command"},
	{"scratch-dir", KeyScratchDir, scratch.DefaultDir, "volatile directory for scratch files while editing"},
	{"log-level", KeyLogLevel, logging.DefaultLevel, "diagnostic log level: debug, info, warn, error"},
}

// RegisterFlags adds the global flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(FlagConfig, "", "config file (default: ~/.config/vaultpass/config.yaml, or $VAULTPASS_CONFIG)")
	fs.String(FlagEnvFile, "", "dotenv file to load before talking to the store")
	for _, f := range flagSpecs {
		fs.String(f.name, f.value, f.usage)
	}
}

// Options controls where Load looks for settings.
type Options struct {
	// Flags holds the parsed global flags; only changed flags override.
	Flags *pflag.FlagSet
	// ConfigFile is read strictly when set. Otherwise the default location
	// is tried and a missing file is ignored.
	ConfigFile string
	// EnvFile is loaded into the process environment before anything else.
	// Variables that are already set win.
	EnvFile string
}

// OptionsFromFlags reads --config and --env-file from fs.
func OptionsFromFlags(fs *pflag.FlagSet) Options {
	opts := Options{Flags: fs}
	if fs == nil {
		return opts
	}
	opts.ConfigFile, _ = fs.GetString(FlagConfig)
	opts.EnvFile, _ = fs.GetString(FlagEnvFile)
	return opts
}

// DefaultDir is the directory searched for config.yaml.
func DefaultDir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", errors.Wrap(err, "locate home directory")
	}
	return filepath.Join(home, ".config", "vaultpass"), nil
}

// Load resolves the configuration.
func Load(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		path, err := homedir.Expand(opts.EnvFile)
		if err != nil {
			return nil, errors.Wrapf(err, "expand env file %q", opts.EnvFile)
		}
		if err := godotenv.Load(path); err != nil {
			return nil, errors.Wrapf(err, "load env file %q", path)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for _, f := range flagSpecs {
		v.SetDefault(f.key, f.value)
	}
	v.SetDefault(KeyVaultToken, "")
	v.SetDefault(KeyEditor, DefaultEditor)
	if err := v.BindEnv(KeyEditor, EnvPrefix+"_EDITOR", "EDITOR"); err != nil {
		return nil, errors.Wrap(err, "bind editor environment")
	}

	if opts.Flags != nil {
		for _, f := range flagSpecs {
			if fl := opts.Flags.Lookup(f.name); fl != nil {
				if err := v.BindPFlag(f.key, fl); err != nil {
					return nil, errors.Wrapf(err, "bind flag --%s", f.name)
				}
			}
		}
	}

	configFile := opts.ConfigFile
	if configFile == "" {
		configFile = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if err := readConfigFile(v, configFile); err != nil {
		return nil, err
	}

	cfg := &Config{
		Backend:    strings.ToLower(strings.TrimSpace(v.GetString(KeyBackend))),
		VaultBin:   v.GetString(KeyVaultBin),
		Namespace:  v.GetString(KeyNamespace),
		Field:      v.GetString(KeyField),
		VaultAddr:  v.GetString(KeyVaultAddr),
		VaultToken: v.GetString(KeyVaultToken),
		Generator:  v.GetString(KeyGenerator),
		Editor:     v.GetString(KeyEditor),
		ScratchDir: v.GetString(KeyScratchDir),
		LogLevel:   v.GetString(KeyLogLevel),
		File:       v.ConfigFileUsed(),
	}
	if cfg.Editor == "" {
		cfg.Editor = DefaultEditor
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readConfigFile(v *viper.Viper, explicit string) error {
	if explicit != "" {
		path, err := homedir.Expand(explicit)
		if err != nil {
			return errors.Wrapf(err, "expand config path %q", explicit)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "read config %q", path)
		}
		return nil
	}

	dir, err := DefaultDir()
	if err != nil {
		// No home directory means no default config file.
		return nil
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return errors.Wrap(err, "read config")
	}
	return nil
}

// Validate checks the settings that can be checked without running anything.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendCLI, BackendAPI:
	default:
		return errors.Wrapf(ErrInvalid, "backend %q (expected %s or %s)", c.Backend, BackendCLI, BackendAPI)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(ErrInvalid, err.Error())
	}
	if strings.TrimSpace(c.ScratchDir) == "" {
		return errors.Wrap(ErrInvalid, "scratch_dir is empty")
	}
	if c.Backend == BackendCLI && strings.TrimSpace(c.VaultBin) == "" {
		return errors.Wrap(ErrInvalid, "vault_bin is empty")
	}
	return nil
}
