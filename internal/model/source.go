package model

import "fmt"

// Source tells where a notification came from: a user-written comment
// or system activity recorded against an object.
type Source string

const (
	SourceUser   Source = "USER"
	SourceSystem Source = "SYSTEM"
)

func (s Source) Valid() bool {
	return s == SourceUser || s == SourceSystem
}

func ParseSource(v string) (Source, error) {
	s := Source(v)
	if !s.Valid() {
		return "", fmt.Errorf("unknown source %q", v)
	}
	return s, nil
}
