// Package command defines the poll-driven command model and the composition
// primitives built on top of it.
//
// A Command is a unit of robot behavior with an explicit lifecycle:
// Initialize once when scheduled, Execute every scheduler tick, IsFinished
// polled after each Execute, and End exactly once when the command finishes
// or is interrupted. Commands declare the subsystems they require; the
// scheduler arbitrates conflicting requirements between concurrently
// scheduled commands.
//
// Compositions (sequential, parallel, race, deadline, conditional) are
// themselves Commands, so arbitrarily deep trees can be handed to the
// scheduler as a single unit. The Builder provides a fluent way to assemble
// such trees in Go code; the hclloader/assembler packages do the same for
// declarative routine files.
package command
