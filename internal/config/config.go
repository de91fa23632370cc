package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/lowaak/smart-trainer/fitness-tracker-app/internal/history"
	"github.com/lowaak/smart-trainer/fitness-tracker-app/internal/interval"
	"github.com/lowaak/smart-trainer/fitness-tracker-app/internal/plan"
)

const (
	AppDirName = ".fitness-tracker"
	EnvPrefix  = "FITNESS"
	dateLayout = "2006-01-02"
)

// Config keys
const (
	KeyPlanStartDate  = "plan.start_date"
	KeyPlanFile       = "plan.file"
	KeyHistoryBackend = "history.backend"
	KeyHistoryPath    = "history.path"
	KeyTimerPreset    = "timer.preset"
	KeyTimerExercises = "timer.exercises"
	KeyCustomWork     = "timer.custom.work"
	KeyCustomRest     = "timer.custom.rest"
	KeyCustomRounds   = "timer.custom.rounds"
	KeyUIStateFile    = "ui.state_file"
	KeyLogFile        = "log.file"
	KeyLogMaxSizeMB   = "log.max_size_mb"
	KeyLogMaxBackups  = "log.max_backups"
	KeyLogMaxAgeDays  = "log.max_age_days"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type PlanConfig struct {
	StartDate time.Time
	File      string // Empty uses the embedded plan
}

type HistoryConfig struct {
	Backend history.Backend
	Path    string
}

type TimerConfig struct {
	Preset       interval.PresetID
	Exercises    int // 0 takes the count from the session's exercise list
	CustomWork   int
	CustomRest   int
	CustomRounds int
}

// Presets returns the selectable presets with the configured custom values
func (t TimerConfig) Presets() interval.Presets {
	return interval.AllPresets.WithCustom(t.CustomWork, t.CustomRest, t.CustomRounds)
}

type LogConfig struct {
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type Config struct {
	Plan        PlanConfig
	History     HistoryConfig
	Timer       TimerConfig
	UIStateFile string
	Log         LogConfig
	ConfigFile  string // The file that was read, empty when none was found
}

// Load builds the Config from defaults, the optional config file,
// FITNESS_* environment variables and command line args, in increasing precedence.
func Load(args []string) (Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return load(args, filepath.Join(homeDir, AppDirName))
}

func load(args []string, appDir string) (Config, error) {
	v := viper.New()
	setDefaults(v, appDir)

	flags := newFlagSet()
	if err := flags.Parse(args); err != nil {
		return Config{}, fmt.Errorf("parse flags: %w", err)
	}
	if err := bindFlags(v, flags); err != nil {
		return Config{}, err
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile, _ := flags.GetString("config"); configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(appDir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	return decode(v, appDir)
}

func setDefaults(v *viper.Viper, appDir string) {
	custom, _ := interval.AllPresets.ByID(interval.PresetCustom)

	v.SetDefault(KeyPlanStartDate, plan.DefaultStartDate.Format(dateLayout))
	v.SetDefault(KeyPlanFile, "")
	v.SetDefault(KeyHistoryBackend, string(history.BackendSQLite))
	v.SetDefault(KeyHistoryPath, "")
	v.SetDefault(KeyTimerPreset, string(interval.PresetEMOM))
	v.SetDefault(KeyTimerExercises, 0)
	v.SetDefault(KeyCustomWork, custom.WorkSeconds)
	v.SetDefault(KeyCustomRest, custom.RestSeconds)
	v.SetDefault(KeyCustomRounds, custom.Rounds)
	v.SetDefault(KeyUIStateFile, filepath.Join(appDir, "ui_state.json"))
	v.SetDefault(KeyLogFile, filepath.Join(appDir, "fitness-tracker.log"))
	v.SetDefault(KeyLogMaxSizeMB, 10)
	v.SetDefault(KeyLogMaxBackups, 3)
	v.SetDefault(KeyLogMaxAgeDays, 28)
}

// flagKeys maps command line flags onto config keys
var flagKeys = map[string]string{
	"plan-start":      KeyPlanStartDate,
	"plan-file":       KeyPlanFile,
	"history-backend": KeyHistoryBackend,
	"history-path":    KeyHistoryPath,
	"preset":          KeyTimerPreset,
	"exercises":       KeyTimerExercises,
	"custom-work":     KeyCustomWork,
	"custom-rest":     KeyCustomRest,
	"custom-rounds":   KeyCustomRounds,
	"log-file":        KeyLogFile,
}

func newFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("fitness-tracker", pflag.ContinueOnError)
	flags.String("config", "", "config file (default ~/"+AppDirName+"/config.yaml)")
	flags.String("plan-start", "", "first day of the training plan, YYYY-MM-DD (UTC)")
	flags.String("plan-file", "", "training plan JSON file (default: built-in plan)")
	flags.String("history-backend", "", "workout history store: sqlite or json")
	flags.String("history-path", "", "workout history file")
	flags.StringP("preset", "p", "", "initial timer preset: emom, tabata or custom")
	flags.Int("exercises", 0, "exercises per workout (0: from the session)")
	flags.Int("custom-work", 0, "custom preset work seconds")
	flags.Int("custom-rest", 0, "custom preset rest seconds")
	flags.Int("custom-rounds", 0, "custom preset rounds per exercise")
	flags.String("log-file", "", "log file")
	return flags
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

func decode(v *viper.Viper, appDir string) (Config, error) {
	startDate, err := time.ParseInLocation(dateLayout, v.GetString(KeyPlanStartDate), time.UTC)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, KeyPlanStartDate, err)
	}

	backend := history.Backend(strings.ToLower(v.GetString(KeyHistoryBackend)))
	if backend != history.BackendSQLite && backend != history.BackendJSON {
		return Config{}, fmt.Errorf("%w: %s: %w %q", ErrInvalidConfig, KeyHistoryBackend, history.ErrUnknownBackend, backend)
	}

	cfg := Config{
		Plan: PlanConfig{
			StartDate: startDate,
			File:      v.GetString(KeyPlanFile),
		},
		History: HistoryConfig{
			Backend: backend,
			Path:    v.GetString(KeyHistoryPath),
		},
		Timer: TimerConfig{
			Preset:       interval.PresetID(strings.ToLower(v.GetString(KeyTimerPreset))),
			Exercises:    v.GetInt(KeyTimerExercises),
			CustomWork:   v.GetInt(KeyCustomWork),
			CustomRest:   v.GetInt(KeyCustomRest),
			CustomRounds: v.GetInt(KeyCustomRounds),
		},
		UIStateFile: v.GetString(KeyUIStateFile),
		Log: LogConfig{
			File:       v.GetString(KeyLogFile),
			MaxSizeMB:  v.GetInt(KeyLogMaxSizeMB),
			MaxBackups: v.GetInt(KeyLogMaxBackups),
			MaxAgeDays: v.GetInt(KeyLogMaxAgeDays),
		},
		ConfigFile: v.ConfigFileUsed(),
	}
	if cfg.History.Path == "" {
		cfg.History.Path = defaultHistoryPath(appDir, backend)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func defaultHistoryPath(dir string, backend history.Backend) string {
	if backend == history.BackendJSON {
		return filepath.Join(dir, "history.json")
	}
	return filepath.Join(dir, "history.db")
}

func (c Config) validate() error {
	if _, ok := interval.AllPresets.ByID(c.Timer.Preset); !ok {
		return fmt.Errorf("%w: %s: unknown preset %q", ErrInvalidConfig, KeyTimerPreset, c.Timer.Preset)
	}
	if c.Timer.Exercises < 0 {
		return fmt.Errorf("%w: %s must not be negative, got %d", ErrInvalidConfig, KeyTimerExercises, c.Timer.Exercises)
	}

	custom := interval.Config{
		WorkSeconds:       c.Timer.CustomWork,
		RestSeconds:       c.Timer.CustomRest,
		RoundsPerExercise: c.Timer.CustomRounds,
		ExerciseCount:     1,
	}
	if err := custom.Validate(); err != nil {
		return fmt.Errorf("%w: timer.custom: %w", ErrInvalidConfig, err)
	}

	if c.Log.MaxSizeMB <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidConfig, KeyLogMaxSizeMB, c.Log.MaxSizeMB)
	}
	if c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		return fmt.Errorf("%w: log retention must not be negative", ErrInvalidConfig)
	}
	return nil
}
