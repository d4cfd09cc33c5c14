package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configDirName  = "dots"

	// Config keys. Each one mirrors a persistent flag.
	cfgKeyFormat      = "format"
	cfgKeyCache       = "cache"
	cfgKeyParallelism = "parallelism"
	cfgKeyNoColor     = "no_color"
	cfgKeyVerbose     = "verbose"
)

// flagKeys maps config keys to the persistent flags that override them.
var flagKeys = map[string]string{
	cfgKeyFormat:      "format",
	cfgKeyCache:       "cache",
	cfgKeyParallelism: "parallelism",
	cfgKeyNoColor:     "no-color",
	cfgKeyVerbose:     "verbose",
}

// bindFlags makes every persistent flag a viper key, so an explicitly set
// flag beats the config file and the config file beats the flag default.
func bindFlags(v *viper.Viper, cmd *cobra.Command) {
	for key, flag := range flagKeys {
		// Lookup cannot fail: the flags are registered just before.
		_ = v.BindPFlag(key, cmd.PersistentFlags().Lookup(flag))
	}
}

// loadConfig reads the YAML config file. An explicit path must exist; the
// default location is optional.
func loadConfig(v *viper.Viper, path string) error {
	v.SetConfigType(configFileType)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		return nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		// No home directory; run on flags alone.
		return nil
	}
	v.SetConfigName(configFileName)
	v.AddConfigPath(filepath.Join(dir, configDirName))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// applyConfig copies the merged flag and config values into opts.
func applyConfig(v *viper.Viper, opts *RootOptions) {
	opts.Format = v.GetString(cfgKeyFormat)
	opts.Cache = v.GetString(cfgKeyCache)
	opts.Parallelism = v.GetInt(cfgKeyParallelism)
	opts.NoColor = v.GetBool(cfgKeyNoColor)
	opts.Verbose = v.GetBool(cfgKeyVerbose)
}
