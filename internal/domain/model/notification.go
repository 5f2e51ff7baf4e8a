package model

import (
	"fmt"
	"sort"
	"strings"
)

// Notification accumulates field-level validation failures so that callers can
// report every problem at once instead of failing on the first one.
type Notification struct {
	errors map[string][]string
}

func NewNotification() *Notification {
	return &Notification{errors: map[string][]string{}}
}

// AddError records a failure message for a field.
func (n *Notification) AddError(field, message string) {
	n.errors[field] = append(n.errors[field], message)
}

// Merge copies every error from other into n.
func (n *Notification) Merge(other *Notification) {
	if other == nil {
		return
	}
	for field, messages := range other.errors {
		n.errors[field] = append(n.errors[field], messages...)
	}
}

func (n *Notification) HasErrors() bool {
	return len(n.errors) > 0
}

// Errors returns a copy of the accumulated field errors.
func (n *Notification) Errors() map[string][]string {
	out := make(map[string][]string, len(n.errors))
	for field, messages := range n.errors {
		out[field] = append([]string(nil), messages...)
	}
	return out
}

func (n *Notification) String() string {
	fields := make([]string, 0, len(n.errors))
	for field := range n.errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var b strings.Builder
	for _, field := range fields {
		fmt.Fprintf(&b, "%s: %s; ", field, strings.Join(n.errors[field], ", "))
	}
	return strings.TrimSuffix(b.String(), "; ")
}
