package version

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func withConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("SHELF_CONFIG_DIR", dir)
	return dir
}

func fakeReleases(t *testing.T, tag string, hits *int) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"tag_name":"` + tag + `","html_url":"https://example.com/r"}`))
	}))
	t.Cleanup(srv.Close)
	old := ReleaseURL
	ReleaseURL = srv.URL
	t.Cleanup(func() { ReleaseURL = old })
}

func TestIsDevelopmentVersion(t *testing.T) {
	tests := []struct {
		v    string
		want bool
	}{
		{"", true},
		{"dev", true},
		{"devel", true},
		{"unknown", true},
		{"devel+abc123def456", true},
		{"devel+abc123+dirty", true},
		{"v1.0.0", false},
		{"0.4.2", false},
	}
	for _, tt := range tests {
		if got := IsDevelopmentVersion(tt.v); got != tt.want {
			t.Errorf("IsDevelopmentVersion(%q) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestParseSemver(t *testing.T) {
	tests := []struct {
		input string
		want  [3]int
	}{
		{"v1.2.3", [3]int{1, 2, 3}},
		{"1.2.3", [3]int{1, 2, 3}},
		{"v2.0.0-rc.1", [3]int{2, 0, 0}},
		{"v1.0.0+build7", [3]int{1, 0, 0}},
		{"2.0", [3]int{2, 0, 0}},
		{"v5", [3]int{5, 0, 0}},
		{"", [3]int{}},
		{"no.numbers.here", [3]int{}},
	}
	for _, tt := range tests {
		if got := parseSemver(tt.input); got != tt.want {
			t.Errorf("parseSemver(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestIsNewer(t *testing.T) {
	tests := []struct {
		latest, current string
		want            bool
	}{
		{"v1.0.0", "v0.9.9", true},
		{"v0.10.0", "v0.9.0", true},
		{"v0.1.10", "v0.1.9", true},
		{"v1.2.3", "v1.2.3", false},
		{"v1.0.0", "v1.0.1", false},
		{"v1.0.0-beta", "v1.0.0", false},
		{"v2.0.0-rc.1", "v1.9.9", true},
		{"1.0.0", "v0.9.9", true},
	}
	for _, tt := range tests {
		if got := isNewer(tt.latest, tt.current); got != tt.want {
			t.Errorf("isNewer(%q, %q) = %v, want %v", tt.latest, tt.current, got, tt.want)
		}
	}
}

func TestUpdateCommand(t *testing.T) {
	if got, want := UpdateCommand("v1.2.3"), `go install -ldflags "-X main.Version=v1.2.3" github.com/marcus/shelf@v1.2.3`; got != want {
		t.Errorf("UpdateCommand = %q, want %q", got, want)
	}
	if UpdateCommand("v1.0.0-rc.1") == "" {
		t.Error("prerelease tag should be accepted")
	}
	for _, bad := range []string{"", "v1.2", "v1.2.3; rm -rf /", "v1.2.3$(whoami)", "../../.env", "v1.2.3-", "v1.2.3-beta..rc"} {
		if got := UpdateCommand(bad); got != "" {
			t.Errorf("UpdateCommand(%q) = %q, want empty", bad, got)
		}
	}
}

func TestIsCacheValid(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name  string
		entry *CacheEntry
		want  bool
	}{
		{"nil", nil, false},
		{"fresh", &CacheEntry{CurrentVersion: "v1.0.0", CheckedAt: now}, true},
		{"expired", &CacheEntry{CurrentVersion: "v1.0.0", CheckedAt: now.Add(-7 * time.Hour)}, false},
		{"other version", &CacheEntry{CurrentVersion: "v0.9.0", CheckedAt: now}, false},
	}
	for _, tt := range tests {
		if got := IsCacheValid(tt.entry, "v1.0.0"); got != tt.want {
			t.Errorf("%s: IsCacheValid = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSaveAndLoadCache(t *testing.T) {
	dir := withConfigDir(t)
	if _, err := LoadCache(); err == nil {
		t.Error("LoadCache without a file should fail")
	}

	entry := &CacheEntry{LatestVersion: "v1.2.0", CurrentVersion: "v1.0.0", CheckedAt: time.Now().Round(time.Second), HasUpdate: true}
	if err := SaveCache(entry); err != nil {
		t.Fatalf("SaveCache: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, cacheFile)); err != nil {
		t.Fatalf("cache file: %v", err)
	}
	got, err := LoadCache()
	if err != nil {
		t.Fatalf("LoadCache: %v", err)
	}
	if got.LatestVersion != entry.LatestVersion || got.CurrentVersion != entry.CurrentVersion ||
		!got.HasUpdate || !got.CheckedAt.Equal(entry.CheckedAt) {
		t.Errorf("loaded %+v, want %+v", got, entry)
	}

	os.WriteFile(filepath.Join(dir, cacheFile), []byte("{bad"), 0644)
	if _, err := LoadCache(); err == nil {
		t.Error("corrupt cache should fail")
	}
}

func TestCheckFetchesRelease(t *testing.T) {
	withConfigDir(t)
	hits := 0
	fakeReleases(t, "v1.4.0", &hits)

	res := Check(context.Background(), "v1.3.9")
	if res.Error != nil || !res.HasUpdate || res.LatestVersion != "v1.4.0" || res.UpdateURL == "" {
		t.Errorf("Check = %+v", res)
	}
	if res := Check(context.Background(), "dev"); res.HasUpdate || hits != 1 {
		t.Errorf("development builds must not be checked: %+v, hits=%d", res, hits)
	}
}

func TestCachedUsesCache(t *testing.T) {
	withConfigDir(t)
	hits := 0
	fakeReleases(t, "v2.0.0", &hits)

	first := Cached(context.Background(), "v1.0.0")
	second := Cached(context.Background(), "v1.0.0")
	if !first.HasUpdate || !second.HasUpdate || second.LatestVersion != "v2.0.0" {
		t.Errorf("results = %+v / %+v", first, second)
	}
	if hits != 1 {
		t.Errorf("server hits = %d, want 1", hits)
	}

	Cached(context.Background(), "v2.0.0")
	if hits != 2 {
		t.Errorf("a different current version must bypass the cache, hits = %d", hits)
	}
}

func TestCheckAsync(t *testing.T) {
	withConfigDir(t)
	hits := 0
	fakeReleases(t, "v1.1.0", &hits)

	if CheckAsync("dev") != nil {
		t.Error("development builds get no command")
	}
	msg, ok := CheckAsync("v1.0.0")().(UpdateAvailableMsg)
	if !ok {
		t.Fatal("expected UpdateAvailableMsg")
	}
	if msg.LatestVersion != "v1.1.0" || msg.UpdateCommand == "" {
		t.Errorf("msg = %+v", msg)
	}
	if got := CheckAsync("v1.1.0")(); got != nil {
		t.Errorf("up to date should yield nil, got %#v", got)
	}
}
