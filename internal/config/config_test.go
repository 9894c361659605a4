package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIURL != "http://127.0.0.1:9090" || cfg.TestTimeoutMs != 5000 {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestLoadFillsMissingValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	raw := `
api_url = "http://10.0.0.2:9090"
secret = "hunter2"
preset = "strict"
favorites = ["tokyo-01"]

[rules]
whitelist = ["DOMAIN-SUFFIX,internal.example.com,DIRECT"]

[[groups]]
name = "low-latency"
nodes = ["tokyo-01", "osaka-02"]
`
	if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIURL != "http://10.0.0.2:9090" || cfg.Secret != "hunter2" || cfg.Preset != "strict" {
		t.Errorf("explicit values lost: %+v", cfg)
	}
	// Omitted fields fall back to defaults.
	if cfg.TestURL != DefaultTestURL || cfg.ProbeCeiling != 16 || cfg.Theme != "catppuccin" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if len(cfg.Groups) != 1 || cfg.Groups[0].Name != "low-latency" || len(cfg.Groups[0].Nodes) != 2 {
		t.Errorf("groups = %+v", cfg.Groups)
	}
	if len(cfg.Rules.Whitelist) != 1 {
		t.Errorf("rules = %+v", cfg.Rules)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")

	cfg := Default()
	cfg.Secret = "s3cret"
	cfg.Favorites = []string{"osaka-02", "tokyo-01"}
	cfg.ClashConfigPath = "/etc/clash/config.yaml"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Secret != "s3cret" || got.ClashConfigPath != "/etc/clash/config.yaml" {
		t.Errorf("round trip lost fields: %+v", got)
	}
	if len(got.Favorites) != 2 {
		t.Errorf("favorites = %v", got.Favorites)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CLASHTUI_API_URL", "http://override:9090")
	t.Setenv("CLASHTUI_SECRET", "env-secret")

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`api_url = "http://file:9090"`), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.APIURL != "http://override:9090" || cfg.Secret != "env-secret" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestToggleFavorite(t *testing.T) {
	cfg := Default()

	if !cfg.ToggleFavorite("tokyo-01") || !cfg.IsFavorite("tokyo-01") {
		t.Error("first toggle should star the node")
	}
	if cfg.ToggleFavorite("tokyo-01") || cfg.IsFavorite("tokyo-01") {
		t.Error("second toggle should unstar the node")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	cfg := Default()
	cfg.Favorites = []string{"osaka-02", "tokyo-01"}
	cfg.Rules.Whitelist = []string{"DOMAIN-SUFFIX,internal.example.com,DIRECT"}
	cfg.Groups = []NodeGroup{{Name: "asia", Nodes: []string{"tokyo-01"}}}

	snap := cfg.Clone()
	cfg.ToggleFavorite("osaka-02") // in-place removal shuffles the slice
	cfg.Rules.Whitelist[0] = "changed"
	cfg.Groups[0].Nodes[0] = "changed"

	if len(snap.Favorites) != 2 || snap.Favorites[0] != "osaka-02" {
		t.Errorf("clone favorites = %v, want the snapshot unchanged", snap.Favorites)
	}
	if snap.Rules.Whitelist[0] != "DOMAIN-SUFFIX,internal.example.com,DIRECT" {
		t.Error("clone shares the whitelist backing array")
	}
	if snap.Groups[0].Nodes[0] != "tokyo-01" {
		t.Error("clone shares the group node slice")
	}
}

func TestSummarize(t *testing.T) {
	before := "api_url = \"a\"\npreset = \"default\"\n"
	after := "api_url = \"b\"\npreset = \"default\"\ntheme = \"nord\"\n"

	sum := Summarize(before, after)
	if sum.Empty() {
		t.Fatal("edit reported as empty")
	}
	if sum.Added < 2 || sum.Removed < 1 {
		t.Errorf("summary = %+v, want at least +2/-1", sum)
	}
	if Summarize(before, before).String() != "config reloaded (no changes)" {
		t.Error("identical text should report no changes")
	}
}

func TestLoadClashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clash.yaml")
	raw := `
mixed-port: 7890
mode: rule
external-controller: 127.0.0.1:9090
proxy-groups:
  - name: Auto Select
    type: url-test
    proxies: [tokyo-01, osaka-02]
    url: https://www.gstatic.com/generate_204
    interval: 300
  - name: Manual
    type: select
    use: [subscription]
proxy-providers:
  subscription:
    type: http
    url: https://example.com/sub
    path: ./providers/sub.yaml
    interval: 3600
`
	if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
		t.Fatal(err)
	}

	cf, err := LoadClashFile(path)
	if err != nil {
		t.Fatalf("LoadClashFile: %v", err)
	}
	if cf.MixedPort != 7890 || cf.Mode != "rule" {
		t.Errorf("top-level fields = %+v", cf)
	}
	names := cf.GroupNames()
	if len(names) != 2 || names[0] != "Auto Select" || names[1] != "Manual" {
		t.Errorf("GroupNames = %v", names)
	}
	if len(cf.ProxyGroups[0].Proxies) != 2 || cf.ProxyGroups[1].Use[0] != "subscription" {
		t.Errorf("groups = %+v", cf.ProxyGroups)
	}
	p, ok := cf.ProxyProviders["subscription"]
	if !ok || p.Type != "http" || p.Interval != 3600 {
		t.Errorf("providers = %+v", cf.ProxyProviders)
	}
}

func TestWatchDetectsEdit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(`preset = "default"`), 0644); err != nil {
		t.Fatal(err)
	}

	changed := make(chan *Config, 1)
	stop, err := Watch(path, func(cfg *Config, sum ChangeSummary) {
		select {
		case changed <- cfg:
		default:
		}
	})
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer stop()

	if err := os.WriteFile(path, []byte(`preset = "work"`), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-changed:
		if cfg.Preset != "work" {
			t.Errorf("reloaded preset = %q, want work", cfg.Preset)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no reload within the deadline")
	}
}
