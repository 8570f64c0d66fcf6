// Package scheduler provides the cooperative, tick-based engine that runs
// commands.
//
// # How It Works
//
// The scheduler owns no goroutines of its own per command. Each call to Run
// performs one tick:
//
//  1. Every registered subsystem's Periodic hook runs.
//  2. Every scheduled command's Execute runs, in schedule order; commands
//     whose IsFinished reports true are ended and their subsystem
//     requirements released.
//  3. Schedule and Cancel calls made from inside command bodies during the
//     tick are applied.
//  4. Registered subsystems with no requiring command get their default
//     command scheduled.
//
// RunLoop drives Run at a fixed period until the context is cancelled or a
// caller-provided stop condition reports true, which keeps execution
// deterministic with respect to the tick boundary.
//
// # Requirement Arbitration
//
// Scheduling a command whose requirements overlap a running command's
// triggers arbitration: if every conflicting incumbent declares CancelSelf
// the incumbents are interrupted and the new command starts; if any
// incumbent declares CancelIncoming the new command is refused.
//
// # Disabled State
//
// While the scheduler is disabled, commands whose RunsWhenDisabled is false
// are interrupted on the next tick and new ones are refused at Schedule.
package scheduler
