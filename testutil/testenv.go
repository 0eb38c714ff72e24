// Package testutil provides shared test environment helpers for E2E tests.
// It depends only on stdlib so that E2E tests (which cannot import
// internal/) can use it.
package testutil

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// AllowedTargetsEnv lists the remote URI prefixes E2E tests may write to,
// comma separated.
const AllowedTargetsEnv = "STAGECOPY_ALLOWED_TEST_TARGETS"

// LoadDotEnv reads KEY=VALUE pairs from a .env file at the given path.
// Missing file is not an error (CI sets env vars directly).
// Existing env vars take precedence over .env values.
func LoadDotEnv(envPath string) {
	f, err := os.Open(envPath)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), "\"'")

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}

// TargetAllowed reports whether uri falls under one of the prefixes in
// STAGECOPY_ALLOWED_TEST_TARGETS. An unset allowlist allows nothing, so a
// stray STAGECOPY_TEST_* variable can never point tests at production.
func TargetAllowed(uri string) bool {
	for _, prefix := range strings.Split(os.Getenv(AllowedTargetsEnv), ",") {
		prefix = strings.TrimSpace(prefix)
		if prefix != "" && strings.HasPrefix(uri, prefix) {
			return true
		}
	}

	return false
}

// FindModuleRoot walks up from the current directory to find go.mod.
// Returns the fallback if the root is not found.
func FindModuleRoot(fallback string) string {
	dir, err := os.Getwd()
	if err != nil {
		return fallback
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return fallback
		}

		dir = parent
	}
}

// WriteTree creates files under root from a map of slash-separated relative
// paths to contents. Crashes on failure because tests cannot proceed
// without their fixtures.
func WriteTree(root string, files map[string]string) {
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))

		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: creating %s: %v\n", filepath.Dir(p), err)
			os.Exit(1)
		}

		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: writing %s: %v\n", p, err)
			os.Exit(1)
		}
	}
}
