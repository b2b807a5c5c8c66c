// Package policy decides whether an actor may perform an operation on a task.
//
// Reads are open to every authenticated actor; mutations of an existing task
// are reserved to its owner. A non-owner gets ErrForbidden rather than
// ErrNotFound, so the existence of a task is visible to any authenticated
// caller.
package policy

import (
	"taskmanager-api/domain/apperrors"
	"taskmanager-api/domain/models"
)

type Operation string

const (
	OpList          Operation = "list"
	OpRetrieve      Operation = "retrieve"
	OpCreate        Operation = "create"
	OpUpdate        Operation = "update"
	OpPartialUpdate Operation = "partial_update"
	OpDelete        Operation = "delete"
	OpComplete      Operation = "complete"
)

// IsSafe reports whether op never mutates a task.
func (op Operation) IsSafe() bool {
	return op == OpList || op == OpRetrieve
}

// Permit returns nil when actor may perform op on task. task is ignored for
// list and create.
func Permit(actor *models.Actor, task *models.Task, op Operation) error {
	if actor == nil {
		return apperrors.ErrUnauthenticated
	}
	if op.IsSafe() || op == OpCreate {
		return nil
	}
	if !task.IsOwnedBy(actor.UserID) {
		return apperrors.ErrForbidden
	}
	return nil
}
