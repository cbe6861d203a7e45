// Package workspace implements the scheduling workspace engine: a local,
// editable projection of a remote allocation schedule with speculative
// what-if editing, bounded undo/redo and a replayable overlay of
// uncommitted operations.
//
// The engine reconciles three concerns: the server-authoritative baseline
// (Store), a locally-buffered overlay of pending create/update/delete
// operations (Overlay), and the derived task list the UI renders
// (Project). Mutations snapshot history first and then route through the
// overlay or the backend depending on the edit mode.
package workspace
