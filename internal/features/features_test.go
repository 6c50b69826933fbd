package features

import (
	"testing"
)

func setup(t *testing.T) {
	t.Helper()
	t.Setenv("SHELF_CONFIG_DIR", t.TempDir())
	for _, env := range []string{
		"SHELF_FEATURE_UPDATE_CHECK", "SHELF_FEATURE_AI_INSIGHTS",
		"SHELF_DISABLE_FEATURES", "SHELF_ENABLE_FEATURES",
	} {
		t.Setenv(env, "")
	}
}

func TestDefaults(t *testing.T) {
	setup(t)
	for _, f := range ListAll() {
		enabled, source := Resolve(f.Name)
		if enabled != f.Default || source != "default" {
			t.Errorf("%s = %v from %s, want default %v", f.Name, enabled, source, f.Default)
		}
	}
	if IsEnabled("no_such_feature") {
		t.Error("unknown features are off")
	}
}

func TestListAllSorted(t *testing.T) {
	all := ListAll()
	for i := 1; i < len(all); i++ {
		if all[i-1].Name >= all[i].Name {
			t.Errorf("not sorted: %s before %s", all[i-1].Name, all[i].Name)
		}
	}
	if !IsKnownFeature(" Update_Check ") {
		t.Error("names are case and space insensitive")
	}
}

func TestConfigOverride(t *testing.T) {
	setup(t)
	off := false
	if err := Set("update_check", &off); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if enabled, source := Resolve("update_check"); enabled || source != "config" {
		t.Errorf("Resolve = %v, %s", enabled, source)
	}
	if err := Set("update_check", nil); err != nil {
		t.Fatal(err)
	}
	if enabled, source := Resolve("update_check"); !enabled || source != "default" {
		t.Errorf("after reset = %v, %s", enabled, source)
	}
}

func TestEnvOverrides(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		feature string
		want    bool
	}{
		{"per feature var", map[string]string{"SHELF_FEATURE_AI_INSIGHTS": "on"}, "ai_insights", true},
		{"per feature var off", map[string]string{"SHELF_FEATURE_UPDATE_CHECK": "0"}, "update_check", false},
		{"disable list", map[string]string{"SHELF_DISABLE_FEATURES": "ai_insights, update_check"}, "update_check", false},
		{"enable list", map[string]string{"SHELF_ENABLE_FEATURES": "ai_insights"}, "ai_insights", true},
		{"per feature wins", map[string]string{"SHELF_FEATURE_AI_INSIGHTS": "no", "SHELF_ENABLE_FEATURES": "ai_insights"}, "ai_insights", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setup(t)
			on := !tt.want
			if err := Set(tt.feature, &on); err != nil {
				t.Fatal(err)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			enabled, source := Resolve(tt.feature)
			if enabled != tt.want || source != "env" {
				t.Errorf("Resolve(%s) = %v, %s; want %v from env", tt.feature, enabled, source, tt.want)
			}
		})
	}
}
