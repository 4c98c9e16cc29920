package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCacheDirResolution(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	tests := []struct {
		name       string
		xdg        string
		configured string
		want       string
	}{
		{"home fallback", "", "", filepath.Join(home, ".cache", appName)},
		{"xdg", "/tmp/xdg-cache", "", filepath.Join("/tmp/xdg-cache", appName)},
		{"config wins over xdg", "/tmp/xdg-cache", "/srv/metromap-cache", "/srv/metromap-cache"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_CACHE_HOME", tt.xdg)
			c := New(os.Stderr, LogInfo)
			c.Config.Cache.Dir = tt.configured

			got, err := c.cacheDir()
			if err != nil {
				t.Fatalf("cacheDir: %v", err)
			}
			if got != tt.want {
				t.Errorf("cacheDir = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "careers.yaml", "careers"},
		{"", "maps/careers.layout.json", "maps/careers"},
		{"", stdinBase, stdinBase},
		{"out/map.svg", "careers.yaml", "out/map"},
		{"out/map", "careers.yaml", "out/map"},
		{"-", "careers.toml", "careers"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}
