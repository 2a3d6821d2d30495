package ui

import "github.com/orwee/liduido/internal/pool"

// Tea message types for UI communication

// PoolsLoadedMsg carries the result of a (possibly cached) table load.
// Exactly one of Records / Err is meaningful: a failed load degrades to an
// empty table at the screen level.
type PoolsLoadedMsg struct {
	Records []pool.Record
	Err     error
}

// ExportDoneMsg carries the result of a comparison export.
type ExportDoneMsg struct {
	Path string
	Err  error
}
