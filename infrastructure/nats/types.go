package nats

import (
	"taskmanager-api/domain/ports"
)

const (
	// StreamName holds every task lifecycle event.
	StreamName = "TASK_EVENTS"

	// SubjectTaskEvents is the wildcard covering tasks.created, tasks.updated,
	// tasks.completed and tasks.deleted.
	SubjectTaskEvents = "tasks.>"

	subjectTaskPrefix = "tasks."
)

// SubjectFor returns the subject an event of type t is published on.
func SubjectFor(t ports.TaskEventType) string {
	return subjectTaskPrefix + string(t)
}
