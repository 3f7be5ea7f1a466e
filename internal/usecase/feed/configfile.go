package feed

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// duration parses Go duration syntax ("2500ms", "6h") from YAML scalars.
// Plain integers are taken as nanoseconds, matching time.Duration.
type duration time.Duration

func (d *duration) UnmarshalYAML(value *yaml.Node) error {
	var asInt int64
	if err := value.Decode(&asInt); err == nil {
		*d = duration(asInt)
		return nil
	}
	var asStr string
	if err := value.Decode(&asStr); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(asStr)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", asStr, err)
	}
	*d = duration(parsed)
	return nil
}

// fileConfig is the YAML shape for tuning overrides. Every field is optional;
// zero values keep the default. Durations use Go syntax ("2500ms", "6h").
type fileConfig struct {
	PlanBudget              duration `yaml:"plan_budget"`
	MaxPlannedRows          int      `yaml:"max_planned_rows"`
	RowTargetSize           int      `yaml:"row_target_size"`
	MinRowSize              int      `yaml:"min_row_size"`
	ModelName               string   `yaml:"model_name"`
	RankerName              string   `yaml:"ranker_name"`
	TrendingWindow          duration `yaml:"trending_window"`
	ImpressionExcludeWindow duration `yaml:"impression_exclude_window"`
	ImpressionExcludeLimit  int      `yaml:"impression_exclude_limit"`
	GlobalCandidatesTTL     duration `yaml:"global_candidates_ttl"`
	HeavyCandidatesTTL      duration `yaml:"heavy_candidates_ttl"`
	TrendingTTL             duration `yaml:"trending_ttl"`
	RankerTTL               duration `yaml:"ranker_ttl"`
	ProfileVectorTTL        duration `yaml:"profile_vector_ttl"`
	AffinityTTL             duration `yaml:"affinity_ttl"`
	SummaryTTL              duration `yaml:"summary_ttl"`
}

// LoadConfigFile reads tuning overrides from a YAML file and applies them on
// top of the defaults. Fields absent from the file keep their default values,
// so a file may override a single knob.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("LoadConfigFile: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return cfg, fmt.Errorf("LoadConfigFile: parse %s: %w", path, err)
	}

	if fc.PlanBudget > 0 {
		cfg.PlanBudget = time.Duration(fc.PlanBudget)
	}
	if fc.MaxPlannedRows > 0 {
		cfg.MaxPlannedRows = fc.MaxPlannedRows
	}
	if fc.RowTargetSize > 0 {
		cfg.RowTargetSize = fc.RowTargetSize
	}
	if fc.MinRowSize > 0 {
		cfg.MinRowSize = fc.MinRowSize
	}
	if fc.ModelName != "" {
		cfg.ModelName = fc.ModelName
	}
	if fc.RankerName != "" {
		cfg.RankerName = fc.RankerName
	}
	if fc.TrendingWindow > 0 {
		cfg.TrendingWindow = time.Duration(fc.TrendingWindow)
	}
	if fc.ImpressionExcludeWindow > 0 {
		cfg.ImpressionExcludeWindow = time.Duration(fc.ImpressionExcludeWindow)
	}
	if fc.ImpressionExcludeLimit > 0 {
		cfg.ImpressionExcludeLimit = fc.ImpressionExcludeLimit
	}
	if fc.GlobalCandidatesTTL > 0 {
		cfg.GlobalCandidatesTTL = time.Duration(fc.GlobalCandidatesTTL)
	}
	if fc.HeavyCandidatesTTL > 0 {
		cfg.HeavyCandidatesTTL = time.Duration(fc.HeavyCandidatesTTL)
	}
	if fc.TrendingTTL > 0 {
		cfg.TrendingTTL = time.Duration(fc.TrendingTTL)
	}
	if fc.RankerTTL > 0 {
		cfg.RankerTTL = time.Duration(fc.RankerTTL)
	}
	if fc.ProfileVectorTTL > 0 {
		cfg.ProfileVectorTTL = time.Duration(fc.ProfileVectorTTL)
	}
	if fc.AffinityTTL > 0 {
		cfg.AffinityTTL = time.Duration(fc.AffinityTTL)
	}
	if fc.SummaryTTL > 0 {
		cfg.SummaryTTL = time.Duration(fc.SummaryTTL)
	}

	return cfg, nil
}

// LoadConfig resolves the engine configuration: defaults, optionally overlaid
// with the YAML file named by FEED_CONFIG_FILE. A missing or unreadable file
// is an error only when explicitly requested.
func LoadConfig() (Config, error) {
	path := os.Getenv("FEED_CONFIG_FILE")
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadConfigFile(path)
}
