// Package server exposes comparisons over HTTP.
//
// Routes:
//
//	GET    /healthz                    liveness probe
//	POST   /api/comparisons            start a comparison
//	GET    /api/comparisons/{id}       current snapshot (json, dot or svg)
//	DELETE /api/comparisons/{id}       cancel and forget a comparison
//	DELETE /api/cache                  drop cached registry lookups
//
// Comparisons run in the background and outlive the request that started
// them. They are kept in a [session.Store] until they expire.
//
// [session.Store]: github.com/matzehuels/stackdiff/pkg/session.Store
package server
