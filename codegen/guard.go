package codegen

import (
	"fmt"
	"io"
)

// GuardChain wraps consecutive output in #ifdef blocks named after the feature
// that produced it. Blocks are never nested and a feature that writes nothing
// never opens one.
type GuardChain struct {
	current string
}

// Enter makes feature the current guard, closing the previous block and
// opening a new one when the feature changes.
func (g *GuardChain) Enter(w io.Writer, feature string) error {
	if feature == g.current {
		return nil
	}
	if g.current != "" {
		if _, err := io.WriteString(w, "#endif\n"); err != nil {
			return err
		}
	}
	g.current = feature
	_, err := fmt.Fprintf(w, "#ifdef %s\n", feature)
	return err
}

// Close ends the open block, if any.
func (g *GuardChain) Close(w io.Writer) error {
	if g.current == "" {
		return nil
	}
	g.current = ""
	_, err := io.WriteString(w, "#endif\n")
	return err
}

// Current returns the feature of the open block.
func (g *GuardChain) Current() string {
	return g.current
}
