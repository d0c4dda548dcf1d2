// Package settings handles configuration loading for takesnap.
//
// It provides functionality for:
//   - Loading settings from takesnap.yaml files
//   - Default values matching the standard capture setup
//   - TAKESNAP_* environment variable overrides
package settings
