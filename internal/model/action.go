package model

import "fmt"

// Action is the verb describing what happened to the object a
// notification or activity is about. The set is closed; the storage
// hooks reject anything else.
type Action string

const (
	ActionAdded     Action = "ADDED"
	ActionCommented Action = "COMMENTED"
	ActionCreated   Action = "CREATED"
	ActionDeleted   Action = "DELETED"
	ActionUpdated   Action = "UPDATED"
	ActionUploaded  Action = "UPLOADED"
)

var actionDisplay = map[Action]string{
	ActionAdded:     "Added",
	ActionCommented: "Commented",
	ActionCreated:   "Created",
	ActionDeleted:   "Deleted",
	ActionUpdated:   "Updated",
	ActionUploaded:  "Uploaded",
}

func (a Action) Valid() bool {
	_, ok := actionDisplay[a]
	return ok
}

// Display returns the human-readable form ("COMMENTED" -> "Commented").
// Unknown values fall back to the raw string.
func (a Action) Display() string {
	if d, ok := actionDisplay[a]; ok {
		return d
	}
	return string(a)
}

func ParseAction(s string) (Action, error) {
	a := Action(s)
	if !a.Valid() {
		return "", fmt.Errorf("unknown action %q", s)
	}
	return a, nil
}
