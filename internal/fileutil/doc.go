// Package fileutil provides the file and directory primitives fixtree is
// built on.
//
// EnsureDir and RemoveTree create and delete directory trees, ResetDir
// wipes-and-recreates a working directory with best-effort cleanup, CopyFile
// copies a single file with optional explicit permissions, fsync, and atomic
// temp-file-then-rename writes, and CopyTree replicates whole trees with
// union semantics. CollectFiles and HashTree walk and content-hash trees for
// the comparison and staging layers.
package fileutil
