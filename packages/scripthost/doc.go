// Package scripthost provides a scripted implementation of host.Host driven
// by a JSON fixture (a "hostfile"). It backs the CLI's dry-run mode and
// every test in the capture pipeline.
//
// Fixtures are validated against a JSON schema before load, panels keep
// live display state so save/mutate/restore sequences round-trip, and
// capture calls render real flat-color image files so file verification
// and type sniffing act on true bytes. Fixtures can also inject the host
// failure shapes the pipeline has to survive: capture errors, missing
// files, zero-byte files, and the various return value shapes.
package scripthost
