// Package luaprefs implements the luaprefs command: it runs a Lua
// script with the host preference API bound, against a SQLite-backed
// store.
package luaprefs

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"

	"github.com/louisbranch/luaprefs/internal/luavalue"
	"github.com/louisbranch/luaprefs/internal/platform/config"
	"github.com/louisbranch/luaprefs/internal/prefstore/sqlite"
	"github.com/louisbranch/luaprefs/internal/script"
)

// Config holds luaprefs command configuration.
type Config struct {
	DBPath  string `env:"LUAPREFS_DB"      envDefault:"luaprefs.db"`
	Script  string `env:"LUAPREFS_SCRIPT"`
	Verbose bool   `env:"LUAPREFS_VERBOSE"`
}

// ParseConfig parses flags into a Config, layered over env defaults.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to the preference database")
	fs.StringVar(&cfg.Script, "script", cfg.Script, "path to the lua script")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "enable verbose logging")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if cfg.Script == "" && fs.NArg() > 0 {
		cfg.Script = fs.Arg(0)
	}
	return cfg, nil
}

// Run executes the luaprefs command.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if cfg.Script == "" {
		return errors.New("script path is required")
	}

	logger := log.New(errOut, "", 0)

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open preference store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Printf("close preference store: %v", err)
		}
	}()

	runtime := luavalue.NewRuntime()
	script.Bind(ctx, runtime.State(), store)

	if cfg.Verbose {
		logger.Printf("running %s against %s", cfg.Script, cfg.DBPath)
	}

	if err := runtime.DoFile(cfg.Script); err != nil {
		if runtime.HasPendingError() {
			return fmt.Errorf("script error: %s", describeError(runtime.PendingError()))
		}
		return err
	}
	return nil
}

// describeError renders the runtime's error object for the command
// output. Non-string error objects report their kind.
func describeError(v luavalue.Value) string {
	if v.IsString() {
		return v.Text()
	}
	return fmt.Sprintf("(%s error value)", v.Kind())
}
