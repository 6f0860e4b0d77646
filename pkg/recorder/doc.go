// Package recorder posts connection events and tracked identifiers to the
// elucidation server.
//
// Each Recorder operation performs exactly one HTTP POST and maps whatever
// happens to a result.Result: 2xx responses succeed, other status codes become
// error messages that embed the status and body, and transport faults are
// captured as the result's cause. Nothing is retried and no error or panic
// escapes an operation.
//
// The base URI is looked up through a URIResolver on every call, so callers can
// plug in static addresses, environment lookups, watched files, or their own
// discovery functions.
package recorder
