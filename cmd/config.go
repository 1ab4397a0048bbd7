package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/mstoykov/envconfig"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"gopkg.in/guregu/null.v3"

	"github.com/liuxd6825/remap/cmd/state"
	"github.com/liuxd6825/remap/errext"
	"github.com/liuxd6825/remap/errext/exitcodes"
	"github.com/liuxd6825/remap/lib/fsext"
	"github.com/liuxd6825/remap/lib/remapping"
	"github.com/liuxd6825/remap/loader"
)

const defaultCacheSize = 256

// Config holds the options of the remapping commands. It can be set from a JSON config file,
// environment variables and command line flags, in increasing order of priority.
type Config struct {
	DecodedMappings null.Bool   `json:"decodedMappings" envconfig:"REMAP_DECODED_MAPPINGS"`
	ExcludeContent  null.Bool   `json:"excludeContent" envconfig:"REMAP_EXCLUDE_CONTENT"`
	MaxDepth        null.Int    `json:"maxDepth" envconfig:"REMAP_MAX_DEPTH"`
	Root            null.String `json:"root" envconfig:"REMAP_ROOT"`
	ReadContent     null.Bool   `json:"readContent" envconfig:"REMAP_READ_CONTENT"`
	CacheSize       null.Int    `json:"cacheSize" envconfig:"REMAP_CACHE_SIZE"`
	ValidateMaps    null.Bool   `json:"validate" envconfig:"REMAP_VALIDATE"`
	Ignore          []string    `json:"ignore" envconfig:"REMAP_IGNORE"`
}

// NewConfig returns a Config with the default values, none of them marked as set.
func NewConfig() Config {
	return Config{
		DecodedMappings: null.NewBool(false, false),
		ExcludeContent:  null.NewBool(false, false),
		MaxDepth:        null.NewInt(remapping.DefaultMaxDepth, false),
		Root:            null.NewString("", false),
		ReadContent:     null.NewBool(false, false),
		CacheSize:       null.NewInt(defaultCacheSize, false),
		ValidateMaps:    null.NewBool(false, false),
	}
}

// Apply overwrites the fields of c with the ones set in cfg.
func (c Config) Apply(cfg Config) Config {
	if cfg.DecodedMappings.Valid {
		c.DecodedMappings = cfg.DecodedMappings
	}
	if cfg.ExcludeContent.Valid {
		c.ExcludeContent = cfg.ExcludeContent
	}
	if cfg.MaxDepth.Valid {
		c.MaxDepth = cfg.MaxDepth
	}
	if cfg.Root.Valid {
		c.Root = cfg.Root
	}
	if cfg.ReadContent.Valid {
		c.ReadContent = cfg.ReadContent
	}
	if cfg.CacheSize.Valid {
		c.CacheSize = cfg.CacheSize
	}
	if cfg.ValidateMaps.Valid {
		c.ValidateMaps = cfg.ValidateMaps
	}
	if len(cfg.Ignore) > 0 {
		c.Ignore = cfg.Ignore
	}
	return c
}

// Validate checks the consolidated config, reporting every problem at once.
func (c Config) Validate() error {
	var result *multierror.Error
	if c.MaxDepth.Int64 < 0 {
		result = multierror.Append(result, fmt.Errorf("maxDepth can't be negative, got %d", c.MaxDepth.Int64))
	}
	if c.CacheSize.Int64 < 0 {
		result = multierror.Append(result, fmt.Errorf("cacheSize can't be negative, got %d", c.CacheSize.Int64))
	}
	for _, pattern := range c.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			result = multierror.Append(result, fmt.Errorf("invalid ignore pattern %q", pattern))
		}
	}
	return result.ErrorOrNil()
}

func (c Config) remapOptions() remapping.Options {
	return remapping.Options{
		DecodedMappings: c.DecodedMappings.Bool,
		ExcludeContent:  c.ExcludeContent.Bool,
	}
}

func (c Config) treeOptions() []remapping.TreeOption {
	return []remapping.TreeOption{remapping.WithMaxDepth(int(c.MaxDepth.Int64))}
}

// newLoader returns the loader for the sources of maps relative to root, wrapped for ignore
// patterns and caching as configured.
func (c Config) newLoader(gs *state.GlobalState, root string) (remapping.Loader, error) {
	var l remapping.Loader = loader.NewFile(
		loader.CreateFilesystem(gs.FS), root, gs.Logger,
		loader.WithReadContent(c.ReadContent.Bool),
		loader.WithValidation(c.ValidateMaps.Bool),
	)
	if len(c.Ignore) > 0 {
		ig, err := loader.NewIgnoring(l, c.Ignore)
		if err != nil {
			return nil, err
		}
		l = ig
	}
	if c.CacheSize.Int64 > 0 {
		cached, err := loader.NewCached(l, int(c.CacheSize.Int64))
		if err != nil {
			return nil, err
		}
		l = cached
	}
	return l, nil
}

func configFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.SortFlags = false
	flags.Bool("decoded-mappings", false, "output the mappings as arrays of segments instead of a VLQ string")
	flags.Bool("exclude-content", false, "leave sourcesContent out of the output")
	flags.Int64("max-depth", remapping.DefaultMaxDepth, "maximum nesting of loaded source maps, 0 for no limit")
	flags.String("root", "", "directory the sources of the last map are relative to "+
		"(default: the directory of the last map)")
	flags.Bool("read-content", false, "read the content of original sources the maps don't embed")
	flags.Int64("cache-size", defaultCacheSize, "number of loaded source maps kept in memory, 0 to disable")
	flags.Bool("validate", false, "check loaded maps with an independent parser and skip the invalid ones")
	flags.StringArray("ignore", nil, "add the sources matching this glob to the ignore list, can be repeated")
	return flags
}

func getNullBool(flags *pflag.FlagSet, key string) null.Bool {
	v, err := flags.GetBool(key)
	if err != nil {
		panic(err)
	}
	return null.NewBool(v, flags.Changed(key))
}

func getNullInt64(flags *pflag.FlagSet, key string) null.Int {
	v, err := flags.GetInt64(key)
	if err != nil {
		panic(err)
	}
	return null.NewInt(v, flags.Changed(key))
}

func getNullString(flags *pflag.FlagSet, key string) null.String {
	v, err := flags.GetString(key)
	if err != nil {
		panic(err)
	}
	return null.NewString(v, flags.Changed(key))
}

func getConfig(flags *pflag.FlagSet) (Config, error) {
	ignore, err := flags.GetStringArray("ignore")
	if err != nil {
		return Config{}, err
	}
	return Config{
		DecodedMappings: getNullBool(flags, "decoded-mappings"),
		ExcludeContent:  getNullBool(flags, "exclude-content"),
		MaxDepth:        getNullInt64(flags, "max-depth"),
		Root:            getNullString(flags, "root"),
		ReadContent:     getNullBool(flags, "read-content"),
		CacheSize:       getNullInt64(flags, "cache-size"),
		ValidateMaps:    getNullBool(flags, "validate"),
		Ignore:          ignore,
	}, nil
}

// readDiskConfig reads the JSON config file. A missing file is only an error if it was
// explicitly asked for.
func readDiskConfig(gs *state.GlobalState) (Config, error) {
	path := gs.Flags.ConfigFilePath
	if pwd, err := gs.Getwd(); err == nil {
		path = fsext.Abs(pwd, path)
	}
	data, err := afero.ReadFile(gs.FS, path)
	if errors.Is(err, fs.ErrNotExist) && gs.Flags.ConfigFilePath == gs.DefaultFlags.ConfigFilePath {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("couldn't load the configuration from %q: %w", path, err)
	}

	var conf Config
	if err := json.Unmarshal(data, &conf); err != nil {
		return Config{}, fmt.Errorf("couldn't parse the configuration from %q: %w", path, err)
	}
	return conf, nil
}

func readEnvConfig(env map[string]string) (Config, error) {
	conf := Config{}
	err := envconfig.Process("", &conf, func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
	return conf, err
}

// getConsolidatedConfig assembles the final config from the defaults, the config file, the
// environment and the command line flags, in that order.
func getConsolidatedConfig(gs *state.GlobalState, cliConf Config) (Config, error) {
	fileConf, err := readDiskConfig(gs)
	if err != nil {
		return Config{}, errext.WithExitCodeIfNone(err, exitcodes.InvalidConfig)
	}
	envConf, err := readEnvConfig(gs.Env)
	if err != nil {
		return Config{}, errext.WithExitCodeIfNone(err, exitcodes.InvalidConfig)
	}

	conf := NewConfig().Apply(fileConf).Apply(envConf).Apply(cliConf)
	if err := conf.Validate(); err != nil {
		return conf, errext.WithExitCodeIfNone(err, exitcodes.InvalidConfig)
	}
	return conf, nil
}

func loadConfig(gs *state.GlobalState, flags *pflag.FlagSet) (Config, error) {
	cliConf, err := getConfig(flags)
	if err != nil {
		return Config{}, errext.WithExitCodeIfNone(err, exitcodes.InvalidConfig)
	}
	conf, err := getConsolidatedConfig(gs, cliConf)
	if err != nil {
		return Config{}, err
	}
	gs.Logger.WithField("config", conf).Debug("Consolidated config")
	return conf, nil
}

// rootFor returns the directory the sources of the last input are looked up in.
func (c Config) rootFor(pwd string, inputs []*loader.Input) string {
	if c.Root.String != "" {
		return fsext.Abs(pwd, c.Root.String)
	}
	if last := inputs[len(inputs)-1]; last.Name != "-" {
		return filepath.Dir(last.Name)
	}
	return pwd
}
