// Package host defines the capability surface a DCC application must expose
// for viewport capture: panel and camera lookup, display toggle queries and
// edits, isolate-select control, selection and frame queries, and a single
// off-screen frame render.
//
// The capture pipeline only ever talks to the Host interface, never to a
// concrete application, so every operation built on it can run against the
// scripted host in tests.
package host
