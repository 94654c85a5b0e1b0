package model

import "errors"

// Configuration and precondition errors returned by the engine.
var (
	// ErrInvalidGrid indicates a grid with fewer than 3 rows or columns.
	ErrInvalidGrid = errors.New("model: grid must be at least 3x3")

	// ErrInvalidTimeStep indicates a non-positive or non-finite time step.
	ErrInvalidTimeStep = errors.New("model: time step must be positive")

	// ErrDimensionMismatch indicates params that do not match the allocated buffers.
	ErrDimensionMismatch = errors.New("model: params do not match buffer dimensions")

	// ErrNotInitialized indicates stepping an engine that was never allocated.
	ErrNotInitialized = errors.New("model: engine not initialized")
)
