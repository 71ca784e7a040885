// Package report converts hub build results into JSON reports and persists
// them under StoragePath/<name>.json. Writes go through a temp file + rename;
// concurrent saves of the same name are serialised by a per-name lock.
package report
