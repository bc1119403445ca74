package permission

import "fmt"

// ActionAccess grants read and write on every ticket in a queue.
const ActionAccess = "access"

// Enforcer decides per-queue staff access. Subjects are "user:<id>" and
// objects "queue:<slug>".
type Enforcer interface {
	Enforce(subject, object, action string) (bool, error)
	AddPolicy(subject, object, action string) error
	RemovePolicy(subject, object, action string) error
	PoliciesFor(subject string) ([][]string, error)
	// RenameObject moves every rule on from to to.
	RenameObject(from, to string) error
	RemoveObject(object string) error
}

func UserSubject(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

func QueueObject(slug string) string {
	return "queue:" + slug
}
