// Package remotefs provides the storage drivers that stagecopy writes into.
// A Driver answers existence checks and copies single local files to a
// remote Location. Drivers may additionally implement DirChecker and
// DirMaker; callers type-assert for them at runtime.
//
// Registry maps URI schemes (file, hdfs, s3) to opener functions so the
// copy core never depends on a concrete driver.
package remotefs
