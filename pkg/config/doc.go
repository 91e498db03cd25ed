// Package config defines the configuration surface for the query
// pipeline and its loading pipeline.
//
// Configuration is YAML-based with environment variable overrides. The
// loading sequence is always:
//
//  1. Parse the YAML file
//  2. Apply defaults to unset fields (ApplyDefaults)
//  3. Apply POLARIS_* environment overrides (optional)
//  4. Validate the final configuration (Validate)
//
// Validation collects every problem rather than stopping at the first,
// so a broken deployment config surfaces all its issues in one pass.
package config
