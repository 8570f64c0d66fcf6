// Package registry holds the compiled Go side of the configuration model:
// build handlers for command types, create/destroy handlers for subsystem
// types, and the manifest definitions that describe both. Validation
// enforces strict parity between manifests and handler structs so a
// mismatch between HCL and Go fails at startup instead of mid-routine.
package registry
