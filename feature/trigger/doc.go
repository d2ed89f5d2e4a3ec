// Package trigger exposes partition creation over HTTP, so that schedulers and
// event sources can keep a table current without running the CLI.
//
// POST /partitions/create takes {"database", "table", "profile", "limit_days"}
// and answers with the number of partitions found and created, plus every
// per-item catalog error. Configuration errors map to 404 (unknown database or
// table), 403 (access denied) or 400 (unknown profile, bad limit).
//
// Concurrent requests for the same table and options share a single run.
package trigger
