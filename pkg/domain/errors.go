package domain

import "errors"

// ErrNoCanvas is returned when an operation runs before any canvas was opened.
var ErrNoCanvas = errors.New("no canvas loaded")

// ErrCanvasNotFound is returned when a canonical canvas does not exist in the store.
var ErrCanvasNotFound = errors.New("canvas not found")

// ErrDraftNotFound is returned when no local draft exists under a key.
var ErrDraftNotFound = errors.New("draft not found")

// ErrSectionNotFound is returned when a section ID is not part of the canvas.
var ErrSectionNotFound = errors.New("section not found")

// ErrDuplicateSection is returned when two sections share the same ID.
var ErrDuplicateSection = errors.New("duplicate section id")

// ErrIndexOutOfRange is returned when a reorder index falls outside the section list.
var ErrIndexOutOfRange = errors.New("index out of range")

// ErrStaleResponse is returned when an asynchronous result targets a canvas
// that is no longer the active one. The result is discarded.
var ErrStaleResponse = errors.New("stale response for inactive canvas")

// ErrTransientFetch marks a failed call to a remote collaborator
// (canvas store, reference data, layout suggestions).
var ErrTransientFetch = errors.New("transient fetch failure")

// ErrInvalidProposal is returned when a layout proposal has an unexpected shape.
var ErrInvalidProposal = errors.New("invalid layout proposal")

// ErrInvalidSnapshot is returned when an imported snapshot fails validation.
var ErrInvalidSnapshot = errors.New("invalid canvas snapshot")

// ErrInvalidValue is returned when a tagged value is not one of the supported variants.
var ErrInvalidValue = errors.New("invalid value")

// ErrPersistenceQuota is returned by draft stores when a write cannot be stored.
var ErrPersistenceQuota = errors.New("draft persistence quota exceeded")
