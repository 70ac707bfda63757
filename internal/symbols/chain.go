package symbols

import "fmt"

// Chain is the stack of currently active scopes. Scopes are entered when the
// owning node is visited and exited when it is done, so sibling scopes are
// never visible to each other.
type Chain struct {
	frames []*Table
}

func NewChain() *Chain {
	return &Chain{frames: []*Table{}}
}

// Enter makes the table's names visible. A nil table is allowed for nodes that
// declare nothing; it still has to be paired with Exit.
func (c *Chain) Enter(t *Table) {
	c.frames = append(c.frames, t)
}

// Exit removes the innermost scope, which must be t.
func (c *Chain) Exit(t *Table) {
	if len(c.frames) == 0 {
		panic("symbols: Exit called on an empty scope chain")
	}
	last := c.frames[len(c.frames)-1]
	if last != t {
		panic(fmt.Sprintf("symbols: unbalanced scope exit (depth %d)", len(c.frames)))
	}
	c.frames = c.frames[:len(c.frames)-1]
}

func (c *Chain) Depth() int {
	return len(c.frames)
}

// Lookup returns the innermost visible entry named name.
func (c *Chain) Lookup(name string) (*Entry, bool) {
	for i := len(c.frames) - 1; i >= 0; i-- {
		if e, ok := c.frames[i].lookup(name); ok {
			return e, true
		}
	}
	return nil, false
}
