//go:build e2e

package e2e

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// setupIsolation points HOME and XDG_CONFIG_HOME at a temp directory and
// clears STAGECOPY_* overrides, so no developer config leaks into a run.
// Returns a cleanup function that removes the temp root.
func setupIsolation() func() {
	for _, v := range []string{"STAGECOPY_CONFIG", "STAGECOPY_LOG_LEVEL", "STAGECOPY_PARALLEL"} {
		os.Unsetenv(v)
	}

	tempRoot, err := os.MkdirTemp("", "stagecopy-e2e-isolation-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: creating isolation temp dir: %v\n", err)
		os.Exit(1)
	}

	tempHome := filepath.Join(tempRoot, "home")
	tempConfig := filepath.Join(tempRoot, "config")

	for _, d := range []string{tempHome, tempConfig} {
		if mkErr := os.MkdirAll(d, 0o755); mkErr != nil {
			fmt.Fprintf(os.Stderr, "FATAL: creating dir %s: %v\n", d, mkErr)
			os.Exit(1)
		}
	}

	os.Setenv("HOME", tempHome)
	os.Setenv("XDG_CONFIG_HOME", tempConfig)

	verifyIsolation(tempRoot)

	return func() {
		os.RemoveAll(tempRoot)
	}
}

// verifyIsolation hard-crashes the process if a production config could
// leak into test execution. Runs BEFORE m.Run().
func verifyIsolation(tempRoot string) {
	if os.Getenv("STAGECOPY_CONFIG") != "" {
		fmt.Fprintln(os.Stderr, "FATAL: isolation check failed: STAGECOPY_CONFIG is set")
		os.Exit(1)
	}

	for _, v := range []string{"HOME", "XDG_CONFIG_HOME"} {
		if !strings.HasPrefix(os.Getenv(v), tempRoot) {
			fmt.Fprintf(os.Stderr, "FATAL: isolation check failed: %s not overridden to temp dir\n", v)
			os.Exit(1)
		}
	}
}
