package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/tonimelisma/stagecopy/internal/stagecopy"
)

// statusf prints a status message to stderr unless quiet mode is set.
func statusf(format string, args ...any) {
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// formatSummary renders one finished invocation, e.g.
// "Copied /data/in -> hdfs://nn/out/in (3 files, 2 directories, 1.2 MB)".
func formatSummary(source string, s stagecopy.Summary) string {
	return fmt.Sprintf("Copied %s -> %s (%s, %s, %s)",
		source, s.Target,
		plural(s.Files, "file", "files"),
		plural(s.Dirs, "directory", "directories"),
		humanize.Bytes(uint64(max(s.Bytes, 0))),
	)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}

	return fmt.Sprintf("%s %s", humanize.Comma(int64(n)), many)
}

// errorHint returns a follow-up line for a failed copy, or "" when there is
// nothing useful to add.
func errorHint(err error) string {
	switch stagecopy.KindOf(err) {
	case stagecopy.KindResolution:
		return "Nothing was copied. Check that the source exists and the destination is reachable."
	case stagecopy.KindCopyIO:
		return "The destination may be partially written. Re-running the same command overwrites it."
	case stagecopy.KindWorkerFault:
		return "The copy worker crashed. Re-run with --verbose and report the output."
	default:
		return ""
	}
}

// printHint writes the hint for err to w, if there is one.
func printHint(w io.Writer, err error) {
	if hint := errorHint(err); hint != "" {
		fmt.Fprintln(w, hint)
	}
}
