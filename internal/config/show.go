package config

import (
	"fmt"
	"io"
	"strings"
)

// RenderEffective writes the resolved configuration as annotated TOML to w.
// It powers "config show".
func RenderEffective(r *Resolved, w io.Writer) error {
	ew := &errWriter{w: w}

	source := "defaults (file not found)"
	if r.FromFile {
		source = "file"
	}

	ew.printf("# Effective configuration\n")
	ew.printf("# config path: %s [%s]\n\n", r.Path, source)

	ew.printf("[logging]\n")
	ew.printf("  log_level  = %q\n", r.Logging.LogLevel)
	ew.printf("  log_format = %q\n\n", r.Logging.LogFormat)

	ew.printf("[transfers]\n")
	ew.printf("  parallel_copies = %d\n", r.Transfers.ParallelCopies)
	ew.printf("  normalize_names = %t\n\n", r.Transfers.NormalizeNames)

	ew.printf("[hdfs]\n")
	ew.printf("  namenodes             = [%s]\n", joinQuoted(r.HDFS.Namenodes))
	ew.printf("  user                  = %q\n", r.HDFS.User)
	ew.printf("  use_datanode_hostname = %t\n\n", r.HDFS.UseDatanodeHostname)

	ew.printf("[s3]\n")
	ew.printf("  region             = %q\n", r.S3.Region)
	ew.printf("  endpoint           = %q\n", r.S3.Endpoint)
	ew.printf("  path_style         = %t\n", r.S3.PathStyle)
	ew.printf("  part_size          = %q\n", r.S3.PartSize)
	ew.printf("  upload_concurrency = %d\n", r.S3.UploadConcurrency)

	return ew.err
}

// errWriter captures the first write error so callers can chain printf
// calls without checking each one.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}

	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func joinQuoted(ss []string) string {
	quoted := make([]string, len(ss))
	for i, s := range ss {
		quoted[i] = fmt.Sprintf("%q", s)
	}

	return strings.Join(quoted, ", ")
}
