package model

// CompositionEdge records that, as of a date, a child item belongs to a
// parent item. The edge log is append-only; reassignments are expressed by
// appending a newer edge with a different parent.
type CompositionEdge struct {
	ID       int64  `json:"id"`
	ParentID int64  `json:"parent_id"`
	ChildID  int64  `json:"child_id"`
	AtDate   string `json:"at_date"`
}

// Composite is a resolved composite item: its root plus the sub-parts it
// currently owns.
type Composite struct {
	Root     Item   `json:"root"`
	Children []Item `json:"children"`
}
