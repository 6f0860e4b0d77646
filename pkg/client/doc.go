// Package client is the application-facing entry point for elucidation reporting.
//
// A Client is either enabled, when it has both a recorder and a converter, or
// disabled. Disabled clients answer every call with a SKIPPED result and never
// touch the network. Enabled clients convert the caller's input into a
// domain.ConnectionEvent and hand it to the recorder.
//
// Every operation returns a result.Result. Errors and panics raised by the
// converter or the recorder are captured in that result, so reporting can never
// break the host application.
package client
