package engine

import "errors"

// ErrAlreadyRunning is returned by NewCore when the advisory lock on the
// state file's lock companion is already held by another process
// (spec.md §5 "fails with AlreadyRunning if present"; §6.1 exit code 3).
var ErrAlreadyRunning = errors.New("engine: state file is locked by another running instance")

// ErrCapacityExhaustedFatal is returned by Step (and so by Run) once both
// the vertex and the edge arena have been completely full for
// capacityExhaustionFatalStreak consecutive ticks (spec.md §6.1 exit code
// 4). A single capacity miss is recoverable and never reaches this; see
// Core.trackCapacityExhaustion.
var ErrCapacityExhaustedFatal = errors.New("engine: arena capacity exhausted beyond recovery")
