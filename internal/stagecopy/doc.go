// Package stagecopy stages a local file or directory tree into a remote
// filesystem.
//
// Some storage clients (HDFS in particular) can deadlock when the goroutine
// driving a blocking call is torn down mid-copy. Runner therefore executes
// every remote call on a dedicated worker goroutine whose context is
// detached from the caller's cancellation, and relays the single outcome
// back through a one-shot channel. The caller always waits for that
// outcome, so a copy is never leaked into the background.
//
// Copies are best effort: the walk stops at the first failure and files
// already written remotely are left in place.
package stagecopy
