// Package features resolves shelf's feature flags. A flag is resolved from
// the environment, then config.json "features", then its default.
package features

import (
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/marcus/shelf/internal/config"
)

// Feature describes a named feature flag.
type Feature struct {
	Name        string
	Default     bool
	Description string
}

var (
	// UpdateCheck gates the release check in `shelf version` and the browser.
	UpdateCheck = Feature{
		Name:        "update_check",
		Default:     true,
		Description: "Check GitHub for newer shelf releases",
	}

	// AIInsights gates the summary and recommendation surfaces.
	AIInsights = Feature{
		Name:        "ai_insights",
		Default:     true,
		Description: "Show AI summaries and recommendations",
	}
)

var allFeatures = []Feature{
	AIInsights,
	UpdateCheck,
}

var defaultValues = buildDefaultMap()

func buildDefaultMap() map[string]bool {
	values := make(map[string]bool, len(allFeatures))
	for _, feature := range allFeatures {
		values[feature.Name] = feature.Default
	}
	return values
}

// ListAll returns all known features.
func ListAll() []Feature {
	items := make([]Feature, len(allFeatures))
	copy(items, allFeatures)
	sort.Slice(items, func(i, j int) bool {
		return items[i].Name < items[j].Name
	})
	return items
}

// IsKnownFeature returns true when the feature exists in the registry.
func IsKnownFeature(name string) bool {
	_, ok := defaultValues[normalizeName(name)]
	return ok
}

// IsEnabled resolves a feature using env overrides, then config, then defaults.
func IsEnabled(name string) bool {
	enabled, _ := Resolve(name)
	return enabled
}

// Resolve returns the resolved feature state and the source ("env", "config", "default").
func Resolve(name string) (bool, string) {
	canonical := normalizeName(name)

	if enabled, ok := resolveEnvOverride(canonical); ok {
		return enabled, "env"
	}

	cfg, err := config.Load()
	if err == nil && cfg.FeatureFlags != nil {
		if enabled, ok := cfg.FeatureFlags[canonical]; ok {
			return enabled, "config"
		}
	}

	return getDefault(canonical), "default"
}

// Set stores an override in config.json. A nil value restores the default.
func Set(name string, enabled *bool) error {
	return config.SetFeature(normalizeName(name), enabled)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func getDefault(name string) bool {
	if enabled, ok := defaultValues[name]; ok {
		return enabled
	}
	return false
}

func resolveEnvOverride(name string) (bool, bool) {
	featureVar := "SHELF_FEATURE_" + normalizeForEnvKey(name)
	if enabled, ok := parseBoolEnv(featureVar); ok {
		return enabled, true
	}

	if containsFeatureName(os.Getenv("SHELF_DISABLE_FEATURES"), name) {
		return false, true
	}
	if containsFeatureName(os.Getenv("SHELF_ENABLE_FEATURES"), name) {
		return true, true
	}

	return false, false
}

func normalizeForEnvKey(name string) string {
	upper := strings.ToUpper(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range upper {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
	}
	return b.String()
}

func parseBoolEnv(key string) (bool, bool) {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch value {
	case "1", "true", "on", "yes":
		return true, true
	case "0", "false", "off", "no":
		return false, true
	default:
		return false, false
	}
}

func containsFeatureName(raw, target string) bool {
	if raw == "" {
		return false
	}
	target = normalizeName(target)
	for _, item := range strings.Split(raw, ",") {
		if normalizeName(item) == target {
			return true
		}
	}
	return false
}
