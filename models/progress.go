package models

// ProgressFunc receives orchestration progress as a fraction in [0,1] plus a
// human-readable message, at the boundaries fixed by §4.6 of the spec. It
// must return quickly and must not retain state the orchestrator may touch.
type ProgressFunc func(fraction float64, message string)
