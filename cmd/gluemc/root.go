package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gluemc/gluemc-go/pkg/mclog/lang"
)

const envPrefix = "GLUEMC"

var (
	cfgFile string

	// logger is built from --verbose and --log-format before any command runs.
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
)

var rootCmd = &cobra.Command{
	Use:   "gluemc",
	Short: "Parse and follow Minecraft server logs",
	Long: `gluemc reads Minecraft server logs (latest.log and the rotated
.log.gz archives) and turns each line into a structured event: chat, join,
leave, advancement, death, generic or unknown.

Settings can come from flags, from a gluemc.yaml config file (current
directory or the user config directory) or from GLUEMC_* environment
variables, e.g. GLUEMC_WEBHOOK_URL.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "",
		"Config file (default: ./gluemc.yaml, then <user config dir>/gluemc/gluemc.yaml)")
	pf.BoolP("verbose", "v", false, "Log debug messages to stderr")
	pf.String("log-format", "text", "Diagnostic log format: text, json")
	pf.String("lang", lang.DefaultURL,
		`Localization file for death messages: path, http(s) URL, or "none"`)
	pf.String("lang-cache", defaultLangCache(),
		"Cache file for downloaded localization sources (empty disables caching)")
}

func defaultLangCache() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "gluemc", "lang.db")
}

// setup reads the config file, binds the running command's flags to viper
// and builds the diagnostic logger.
func setup(cmd *cobra.Command, _ []string) error {
	if err := initConfig(); err != nil {
		return err
	}
	// Only the running command's flags are bound, so commands can share
	// flag names without clobbering each other's keys.
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}

	l, err := newLogger(cmd.ErrOrStderr(), viper.GetString("log-format"), viper.GetBool("verbose"))
	if err != nil {
		return err
	}
	logger = l
	if used := viper.ConfigFileUsed(); used != "" {
		logger.Debug("config loaded", "file", used)
	}
	return nil
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			viper.AddConfigPath(filepath.Join(dir, "gluemc"))
		}
		viper.SetConfigName("gluemc")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

func newLogger(w io.Writer, format string, verbose bool) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}

	switch format {
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid --log-format %q (valid: text, json)", format)
	}
}
