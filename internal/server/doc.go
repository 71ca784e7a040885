// Package server hosts the Fiber diagnostics service for a running Hub.
// Guard serialises access to the Hub: builds and readers share a read lock,
// rule reloads take the write lock. Watcher re-ingests the rule file when it
// changes on disk. Route handlers live in the routes sub-package and only
// talk to the Guard.
package server
