package models

// WorkItem is a record bound to a type and its workflow.
type WorkItem interface {
	Project | Task
	ItemID() uint64
	ItemStatus() string
}
