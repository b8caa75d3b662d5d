package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"sleeplog/internal/clock"
	"sleeplog/internal/record"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Log           Log               `yaml:"log"`
	ExpectedTimes map[string]string `yaml:"expected_times"`
	Questions     map[string]string `yaml:"questions"`
	Output        Output            `yaml:"output"`
}

type Log struct {
	DefaultYear  int    `yaml:"default_year"`
	EveningStart string `yaml:"evening_start"`
}

type Output struct {
	Dir        string `yaml:"dir"`
	LabelFiles bool   `yaml:"label_files"`
}

// ConfigDir returns the XDG config directory for sleeplog.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "sleeplog")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/sleeplog/config.yaml > ./config.yaml.
// When nothing is found it returns an empty path, which Load treats as
// "use the embedded defaults".
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", nil
}

// Load reads and parses a config YAML file. An empty path loads the
// embedded defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return parse(DefaultConfigYAML)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults. The question
// and expected-time maps merge on top of the defaults, so a user config
// only needs to list additions or overrides.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Log: Log{
			DefaultYear:  2025,
			EveningStart: "17:00",
		},
		ExpectedTimes: defaultExpectedTimes(),
		Questions:     defaultQuestions(),
		Output:        Output{Dir: "output"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Log.DefaultYear <= 0 {
		return nil, fmt.Errorf("log.default_year must be positive, got %d", cfg.Log.DefaultYear)
	}
	return cfg, nil
}

// Schema builds the question/column schema from the configured mappings.
func (c *Config) Schema() (*record.Schema, error) {
	expected := make(map[string]clock.Time, len(c.ExpectedTimes))
	for key, raw := range c.ExpectedTimes {
		t, ok := clock.Parse(raw)
		if !ok {
			return nil, fmt.Errorf("expected_times.%s: cannot parse %q as a time of day", key, raw)
		}
		expected[key] = t
	}
	return record.NewSchema(c.Questions, expected), nil
}

// EveningStart returns the configured sleep-cycle cutoff time of day.
func (c *Config) EveningStart() (clock.Time, error) {
	t, ok := clock.Parse(c.Log.EveningStart)
	if !ok {
		return clock.Time{}, fmt.Errorf("log.evening_start: cannot parse %q as a time of day", c.Log.EveningStart)
	}
	return t, nil
}

func defaultExpectedTimes() map[string]string {
	return map[string]string{
		"wind_down_start_time": "02:50",
		"bed_time":             "04:00",
		"wake_up_time":         "11:30",
		"get_out_of_bed_time":  "11:35",
	}
}

// defaultQuestions carries both the hand-written log phrasings (with their
// questionnaire numbering) and the Google Forms export phrasings, including
// the comma variants the form has used over time.
func defaultQuestions() map[string]string {
	return map[string]string{
		// Indented text log.
		"1b. What time start winding down?":                       "wind_down_start_time",
		"1.2b. What time did you get into bed & commit to sleep?": "bed_time",
		"6. What time did you wake up?":                           "wake_up_time",
		"7. What time did you get out of bed?":                    "get_out_of_bed_time",
		"13. If alcohol, what type?":                              "alcohol_type",
		"14. If alcohol, how many standard drinks?":               "alcohol_drinks",

		// Google Forms export headers.
		"What time start winding down?":                              "wind_down_start_time",
		"What time did you get into bed & commit to sleep?":          "bed_time",
		"How long do you estimate it took to fall asleep (minutes)?": "fall_asleep_minutes",
		"How many times did you wake up during the night?":           "night_wake_ups",
		"In total, how long did these awakenings last (minutes)?":    "awake_minutes",
		"In total how long did these awakenings last (minutes)?":     "awake_minutes",
		"When awake during the night, how long did you spend out of bed (minutes)?": "out_of_bed_minutes",
		"When awake during the night how long did you spend out of bed (minutes)?":  "out_of_bed_minutes",
		"What time did you wake up?":                     "wake_up_time",
		"What time did you get out of bed?":              "get_out_of_bed_time",
		"In TOTAL, how many hours of sleep did you get?": "sleep_hours",
		"In TOTAL how many hours of sleep did you get?":  "sleep_hours",
		"In TOTAL, how many hours did you spend in bed?": "bed_hours",
		"In TOTAL how many hours did you spend in bed?":  "bed_hours",
		"Quality of your sleep (1-10)?":                  "sleep_quality",
		"Did you take naps during the day?":              "naps",
		"Mood during the day (1-10)?":                    "mood",
		"Fatigue level during the day (1-10)?":           "fatigue",
		"If alcohol, how many standard drinks?":          "alcohol_drinks",
		"If alcohol how many standard drinks?":           "alcohol_drinks",
		"Second wind?":                                   "second_wind",
	}
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
