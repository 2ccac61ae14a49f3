package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────

var (
	// Curriculum errors
	ErrUnknownProject    = errors.New("project not found")
	ErrUnknownStage      = errors.New("stage not found")
	ErrInvalidCurriculum = errors.New("invalid curriculum")

	// Config errors
	ErrInvalidConfig = errors.New("invalid configuration")

	// Tracker errors
	ErrNotLoaded = errors.New("tracker state not loaded")
)
