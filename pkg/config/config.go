package config

import (
	"fmt"
	"strings"

	"github.com/xplshn/tacc/pkg/cli"
)

type Feature int

const (
	FeatRecursion Feature = iota
	FeatPromotion
	FeatStringConcat
	FeatEntryRename
	FeatStringHeuristics
	FeatCount
)

type Warning int

const (
	WarnUntyped Warning = iota
	WarnShadow
	WarnTopLevel
	WarnExtra
	WarnCount
)

type Info struct {
	Name        string
	Enabled     bool
	Description string
}

type Config struct {
	Features    map[Feature]Info
	Warnings    map[Warning]Info
	FeatureMap  map[string]Feature
	WarningMap  map[string]Warning
	ProfileName string
	EntryName   string // source name of the program entry function
	EntryLabel  string // label the entry function is emitted under
	ParamSize   int    // bytes reserved per parameter and per pushed argument
	MaxDepth    int    // deepest statement/expression nesting analyzed
}

func NewConfig() *Config {
	cfg := &Config{
		Features:    make(map[Feature]Info),
		Warnings:    make(map[Warning]Info),
		FeatureMap:  make(map[string]Feature),
		WarningMap:  make(map[string]Warning),
		ProfileName: "default",
		EntryName:   "__main__",
		EntryLabel:  "main",
		ParamSize:   4,
		MaxDepth:    10000,
	}

	features := map[Feature]Info{
		FeatRecursion:        {"recursion", false, "Allow a function to call itself."},
		FeatPromotion:        {"promotion", true, "Promote mixed int/float arithmetic to float."},
		FeatStringConcat:     {"string-concat", true, "Allow '+' on two strings."},
		FeatEntryRename:      {"entry-rename", true, "Emit the entry function under the 'main' label."},
		FeatStringHeuristics: {"string-heuristics", true, "Treat unquoted tokens with spaces, escapes or punctuation as string literals."},
	}

	warnings := map[Warning]Info{
		WarnUntyped:  {"untyped", false, "Warn when an expression's type cannot be determined."},
		WarnShadow:   {"shadow", false, "Warn when a declaration hides a variable of an enclosing scope."},
		WarnTopLevel: {"top-level", true, "Warn about statements outside any function, which produce no code."},
		WarnExtra:    {"extra", true, "Enable extra miscellaneous warnings."},
	}

	cfg.Features, cfg.Warnings = features, warnings
	for ft, info := range features {
		cfg.FeatureMap[info.Name] = ft
	}
	for wt, info := range warnings {
		cfg.WarningMap[info.Name] = wt
	}

	return cfg
}

func (c *Config) SetFeature(ft Feature, enabled bool) {
	if info, ok := c.Features[ft]; ok {
		info.Enabled = enabled
		c.Features[ft] = info
	}
}

func (c *Config) IsFeatureEnabled(ft Feature) bool { return c.Features[ft].Enabled }

func (c *Config) SetWarning(wt Warning, enabled bool) {
	if info, ok := c.Warnings[wt]; ok {
		info.Enabled = enabled
		c.Warnings[wt] = info
	}
}

func (c *Config) IsWarningEnabled(wt Warning) bool { return c.Warnings[wt].Enabled }

// ApplyProfile switches to a named set of feature and warning defaults.
// Flags given on the command line are applied afterwards and win.
func (c *Config) ApplyProfile(name string) error {
	switch name {
	case "default":
		fresh := NewConfig()
		c.Features, c.Warnings = fresh.Features, fresh.Warnings
	case "strict":
		c.SetFeature(FeatPromotion, false)
		c.SetFeature(FeatStringHeuristics, false)
		for i := Warning(0); i < WarnCount; i++ {
			c.SetWarning(i, true)
		}
	default:
		return fmt.Errorf("unsupported profile '%s'. Supported: 'default', 'strict'", name)
	}
	c.ProfileName = name
	return nil
}

// ApplyFlag handles a single -W/-F style flag such as "-Wshadow",
// "-Fno-promotion" or "-Wall".
func (c *Config) ApplyFlag(flag string) error {
	trimmed := strings.TrimPrefix(flag, "-")
	var isWarning bool
	switch {
	case strings.HasPrefix(trimmed, "W"):
		isWarning = true
	case strings.HasPrefix(trimmed, "F"):
	default:
		return fmt.Errorf("unrecognized flag '%s'", flag)
	}
	name := trimmed[1:]
	enable := !strings.HasPrefix(name, "no-")
	name = strings.TrimPrefix(name, "no-")

	if isWarning && name == "all" {
		for i := Warning(0); i < WarnCount; i++ {
			c.SetWarning(i, enable)
		}
		return nil
	}
	if isWarning {
		if w, ok := c.WarningMap[name]; ok {
			c.SetWarning(w, enable)
			return nil
		}
		return fmt.Errorf("unknown warning '%s'", name)
	}
	if f, ok := c.FeatureMap[name]; ok {
		c.SetFeature(f, enable)
		return nil
	}
	return fmt.Errorf("unknown feature '%s'", name)
}

// GroupEntries holds the flag variables registered by SetupFlagGroups,
// indexed by Warning or Feature.
type GroupEntries []cli.FlagGroupEntry

// SetupFlagGroups registers -W<warning>/-Wno-<warning> and
// -F<feature>/-Fno-<feature> flags on fs.
func (c *Config) SetupFlagGroups(fs *cli.FlagSet) (warnings, features GroupEntries) {
	for i := Warning(0); i < WarnCount; i++ {
		info := c.Warnings[i]
		warnings = append(warnings, cli.FlagGroupEntry{
			Name: info.Name, Prefix: "W", Usage: info.Description,
			Enabled: new(bool), Disabled: new(bool), Default: info.Enabled,
		})
	}
	for i := Feature(0); i < FeatCount; i++ {
		info := c.Features[i]
		features = append(features, cli.FlagGroupEntry{
			Name: info.Name, Prefix: "F", Usage: info.Description,
			Enabled: new(bool), Disabled: new(bool), Default: info.Enabled,
		})
	}
	fs.AddFlagGroup("Warning Flags", "Enable or disable specific warnings", "warning", "Available Warnings:", warnings)
	fs.AddFlagGroup("Feature Flags", "Enable or disable specific features", "feature", "Available Features:", features)
	return warnings, features
}

// ApplyGroups copies the state of parsed group flags into the config.
func (c *Config) ApplyGroups(warnings, features GroupEntries) {
	for i, e := range warnings {
		if *e.Enabled {
			c.SetWarning(Warning(i), true)
		}
		if *e.Disabled {
			c.SetWarning(Warning(i), false)
		}
	}
	for i, e := range features {
		if *e.Enabled {
			c.SetFeature(Feature(i), true)
		}
		if *e.Disabled {
			c.SetFeature(Feature(i), false)
		}
	}
}
