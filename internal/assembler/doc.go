// Package assembler turns a loaded model into live objects: it creates
// subsystem instances through their registered lifecycle handlers and
// translates routine command trees into runnable command compositions.
// Handler invocation is reflective so module authors write plainly typed
// build and create functions.
package assembler
