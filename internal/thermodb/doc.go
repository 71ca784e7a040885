// Package thermodb defines the contract of the external thermodynamic database
// that the hub consumes: a Reference resolves named data values and named
// equations for one component. The hub treats every value returned here as an
// opaque handle and never looks inside it.
//
// FileReference reads YAML/JSON documents and Loader caches them by path.
// Callers with their own database only need to satisfy Reference.
package thermodb
