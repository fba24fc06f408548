package commands

import (
	"bytes"
	"encoding/json"
	"runtime"
	"strings"
	"testing"

	"github.com/petal-labs/mistral/cli/config"
)

func TestVersionDefaults(t *testing.T) {
	// These may be overridden by ldflags in release builds; in tests
	// they carry the development defaults.
	if Version != "dev" {
		t.Logf("Version = %q (overridden by build flags)", Version)
	}
	if Commit != "unknown" {
		t.Logf("Commit = %q (overridden by build flags)", Commit)
	}
	if BuildDate != "unknown" {
		t.Logf("BuildDate = %q (overridden by build flags)", BuildDate)
	}
}

func TestVersionCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	app := NewApp(
		WithIO(strings.NewReader(""), &stdout, &stderr),
		WithConfigLoader(func(string) (*config.Config, error) { return &config.Config{}, nil }),
	)

	if err := runApp(t, app, "version"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	out := stdout.String()
	if !strings.Contains(out, "mistral "+Version) {
		t.Errorf("output missing version line:\n%s", out)
	}
	if !strings.Contains(out, runtime.Version()) {
		t.Errorf("output missing go version:\n%s", out)
	}
}

func TestVersionCommandJSON(t *testing.T) {
	var stdout, stderr bytes.Buffer
	app := NewApp(
		WithIO(strings.NewReader(""), &stdout, &stderr),
		WithConfigLoader(func(string) (*config.Config, error) { return &config.Config{}, nil }),
	)

	if err := runApp(t, app, "version", "--json"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var out struct {
		Version   string `json:"version"`
		Commit    string `json:"commit"`
		GoVersion string `json:"goVersion"`
		Platform  string `json:"platform"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout.String())
	}
	if out.Version != Version {
		t.Errorf("version = %q, want %q", out.Version, Version)
	}
	if out.Platform != runtime.GOOS+"/"+runtime.GOARCH {
		t.Errorf("platform = %q", out.Platform)
	}
}
