package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	inputDir   string
	outputDir  string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(base, "home", ".cache"))

	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "config.toml"),
		inputDir:   filepath.Join(base, "input"),
		outputDir:  filepath.Join(base, "output"),
	}
	if err := os.MkdirAll(env.inputDir, 0o755); err != nil {
		t.Fatal(err)
	}

	content := fmt.Sprintf(`[paths]
output_dir = %q
raw_output_dir = %q
cache_db = %q
log_dir = %q

[cache]
enabled = false
eval_mode = "shallow"

[logging]
format = "console"
level = "error"
`,
		env.outputDir,
		filepath.Join(base, "raw"),
		filepath.Join(base, "cache", "cache.db"),
		filepath.Join(base, "logs"),
	)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return env
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, "--config", env.configPath))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func requireContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("output %q does not contain %q", output, want)
	}
}
