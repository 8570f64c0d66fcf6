// Package model holds the format-agnostic representation of loaded
// configuration: routines (command trees), subsystem instances, and the
// manifest definitions that describe registered command and subsystem
// types.
//
// Argument bodies are kept as raw hcl.Body values rather than decoded Go
// values. Decoding needs the handler's input struct and the manifest's
// defaults, both of which live registry-side, so the model captures intent
// and the assembler resolves it.
package model
