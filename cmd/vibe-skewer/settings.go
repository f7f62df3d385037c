package main

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/inodb/vibe-skewer/internal/skewer"
)

// Flag names. Flags whose config key differs are listed in flagKeys.
const (
	FlagConfig         = "config"
	FlagLogLevel       = "log-level"
	FlagLogFile        = "log-file"
	FlagDB             = "db"
	FlagWidth          = "width"
	FlagWorkers        = "workers"
	FlagFormat         = "format"
	FlagIndent         = "indent"
	FlagInputFormat    = "input-format"
	FlagView           = "view"
	FlagGTF            = "gtf"
	FlagGenes          = "genes"
	FlagRegion         = "region"
	FlagMode           = "mode"
	FlagValue          = "value"
	FlagDomain         = "domain"
	FlagNumericColumns = "numeric-columns"
	FlagOutput         = "output"
	FlagReplace        = "replace"
	FlagScores         = "scores"
	FlagAlphaMissense  = "alphamissense"
	FlagCancerGenes    = "cancer-genes"
	FlagOverrides      = "canonical-overrides"
)

var flagKeys = map[string]string{
	FlagLogLevel:       "log.level",
	FlagLogFile:        "log.file",
	FlagInputFormat:    "input_format",
	FlagNumericColumns: "numeric_columns",
	FlagCancerGenes:    "cancer_genes",
	FlagOverrides:      "canonical_overrides",
}

// Settings is the decoded configuration of one invocation.
type Settings struct {
	DB             string        `mapstructure:"db"`
	Width          float64       `mapstructure:"width"`
	Workers        int           `mapstructure:"workers"`
	Format         string        `mapstructure:"format"`
	Indent         bool          `mapstructure:"indent"`
	InputFormat    string        `mapstructure:"input_format"`
	View           string        `mapstructure:"view"`
	GTF            string        `mapstructure:"gtf"`
	Genes          []string      `mapstructure:"genes"`
	Region         string        `mapstructure:"region"`
	Mode           string        `mapstructure:"mode"`
	Value          string        `mapstructure:"value"`
	Domain         []float64     `mapstructure:"domain"`
	NumericColumns []string      `mapstructure:"numeric_columns"`
	CancerGenes    string        `mapstructure:"cancer_genes"`
	Overrides      string        `mapstructure:"canonical_overrides"`
	Log            LogSettings   `mapstructure:"log"`
	Skewer         skewer.Config `mapstructure:"skewer"`
}

// LogSettings configures the zap logger and optional rotating log file.
type LogSettings struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// setDefaults registers every default, including the geometry constants.
func setDefaults(v *viper.Viper) error {
	v.SetDefault("width", 800.0)
	v.SetDefault("workers", 0)
	v.SetDefault("format", "tab")
	v.SetDefault("view", "genomic")
	v.SetDefault("mode", "skewer")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)

	geometry := make(map[string]any)
	if err := mapstructure.Decode(skewer.DefaultConfig(), &geometry); err != nil {
		return fmt.Errorf("encode geometry defaults: %w", err)
	}
	for k, val := range geometry {
		v.SetDefault("skewer."+k, val)
	}
	return nil
}

// bindFlags binds every flag of the command set to its config key.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Name == FlagConfig {
			return
		}
		key := f.Name
		if k, ok := flagKeys[f.Name]; ok {
			key = k
		}
		_ = v.BindPFlag(key, f)
	})
}

// loadSettings decodes the merged configuration and validates it.
func loadSettings(v *viper.Viper) (*Settings, error) {
	var s Settings
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&s, hook); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	for i := range s.Genes {
		s.Genes[i] = strings.TrimSpace(s.Genes[i])
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Settings) validate() error {
	if s.Width <= 0 {
		return fmt.Errorf("width must be positive, got %g", s.Width)
	}
	switch s.Format {
	case "tab", "json":
	default:
		return fmt.Errorf("unknown output format %q (want tab or json)", s.Format)
	}
	switch s.View {
	case "genomic", "protein":
	default:
		return fmt.Errorf("unknown view %q (want genomic or protein)", s.View)
	}
	if s.View == "protein" && s.GTF == "" {
		return fmt.Errorf("protein view requires --%s", FlagGTF)
	}
	switch s.Mode {
	case "skewer":
	case "numeric":
		if s.Value == "" {
			return fmt.Errorf("numeric mode requires --%s", FlagValue)
		}
	default:
		return fmt.Errorf("unknown mode %q (want skewer or numeric)", s.Mode)
	}
	if len(s.Domain) != 0 && len(s.Domain) != 2 {
		return fmt.Errorf("domain takes two values min,max, got %d", len(s.Domain))
	}
	return nil
}

// settingsFor loads settings for a command after binding its flags.
func settingsFor(cmd *cobra.Command) (*Settings, error) {
	v := viper.GetViper()
	bindFlags(v, cmd.Flags())
	return loadSettings(v)
}
