// Package toolexectest provides a Runner that records commands instead of
// running them.
package toolexectest

import (
	"context"
	"strings"
	"sync"
)

// Call is one recorded command line.
type Call struct {
	Name string
	Args []string
}

// String returns the command line joined by spaces.
func (c Call) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Fake records every command. Handle, when set, produces the result of a
// call; otherwise calls succeed with no output.
type Fake struct {
	Handle func(call Call) ([]byte, error)

	mu    sync.Mutex
	calls []Call
}

func (f *Fake) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	call := Call{Name: name, Args: args}

	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()

	if f.Handle == nil {
		return nil, nil
	}
	return f.Handle(call)
}

// Calls returns the recorded command lines in order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	lines := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		lines = append(lines, c.String())
	}
	return lines
}
