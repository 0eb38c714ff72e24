package config

import (
	"errors"
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"
)

// maxLevenshteinDistance is the maximum edit distance for "did you mean?"
// suggestions when unknown config keys are detected.
const maxLevenshteinDistance = 3

// knownKeys lists the valid keys of every section.
var knownKeys = map[string]map[string]bool{
	"logging":   {"log_level": true, "log_format": true},
	"transfers": {"parallel_copies": true, "normalize_names": true},
	"hdfs":      {"namenodes": true, "user": true, "use_datanode_hostname": true},
	"s3": {
		"region": true, "endpoint": true, "path_style": true,
		"part_size": true, "upload_concurrency": true,
	},
}

// checkUnknownKeys inspects TOML metadata for undecoded keys and returns
// an error with suggestions for each unknown key.
func checkUnknownKeys(md *toml.MetaData) error {
	var errs []error

	// An unknown table is reported once, not once per key inside it.
	seen := make(map[string]bool)

	for _, key := range md.Undecoded() {
		err := unknownKeyError(key)
		if seen[err.Error()] {
			continue
		}

		seen[err.Error()] = true
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func unknownKeyError(key toml.Key) error {
	section := key[0]

	keys, ok := knownKeys[section]
	if !ok || len(key) == 1 {
		if home := sectionOf(section); home != "" {
			return fmt.Errorf("config key %q must be set inside [%s]", section, home)
		}

		if suggestion := closestMatch(section, sortedKeys(knownKeys)); suggestion != "" {
			return fmt.Errorf("unknown config section %q, did you mean %q?", section, suggestion)
		}

		return fmt.Errorf("unknown config section %q", section)
	}

	field := key[1]
	if suggestion := closestMatch(field, sortedKeys(keys)); suggestion != "" {
		return fmt.Errorf("unknown key %q in [%s], did you mean %q?", field, section, suggestion)
	}

	return fmt.Errorf("unknown key %q in [%s]", field, section)
}

// sectionOf returns the section that defines key, if any.
func sectionOf(key string) string {
	for _, section := range sortedKeys(knownKeys) {
		if knownKeys[section][key] {
			return section
		}
	}

	return ""
}

// sortedKeys gives deterministic suggestions when two candidates tie.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// closestMatch finds the closest known key by Levenshtein distance.
// Returns empty string if no match is within maxLevenshteinDistance.
func closestMatch(unknown string, known []string) string {
	best := ""
	bestDist := maxLevenshteinDistance + 1

	for _, k := range known {
		if d := levenshtein(unknown, k); d < bestDist {
			bestDist = d
			best = k
		}
	}

	return best
}

// levenshtein computes the edit distance between two strings using two
// rolling rows.
func levenshtein(a, b string) int {
	if a == "" {
		return len(b)
	}

	if b == "" {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := range prev {
		prev[j] = j
	}

	for i := range len(a) {
		curr[0] = i + 1

		for j := range len(b) {
			cost := 1
			if a[i] == b[j] {
				cost = 0
			}

			curr[j+1] = min(curr[j]+1, prev[j+1]+1, prev[j]+cost)
		}

		prev, curr = curr, prev
	}

	return prev[len(b)]
}
