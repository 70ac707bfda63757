package symbols

import (
	"fmt"
	"strings"

	"github.com/LeeLin2602/lin-compiler/internal/types"
)

type Kind int

const (
	KindVariable Kind = iota
	KindConstant
	KindParameter
)

func (k Kind) String() string {
	switch k {
	case KindVariable:
		return "variable"
	case KindConstant:
		return "constant"
	case KindParameter:
		return "parameter"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Entry is one declared name. Semantic analysis creates entries; code
// generation only assigns StackLocation.
type Entry struct {
	Name  string
	Kind  Kind
	Type  types.Type
	Level int    // 0 for globals
	Value *int64 // set iff Kind == KindConstant

	// Offset from the frame pointer, assigned when the owning scope is framed.
	StackLocation int
}

func (e *Entry) IsGlobal() bool {
	return e.Level == 0
}

func (e *Entry) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("(%s %s %s level=%d", e.Kind, e.Name, e.Type, e.Level))
	if e.Value != nil {
		sb.WriteString(fmt.Sprintf(" value=%d", *e.Value))
	}
	sb.WriteString(")")
	return sb.String()
}

func NewVariable(name string, typ types.Type, level int) *Entry {
	return &Entry{Name: name, Kind: KindVariable, Type: typ, Level: level}
}

func NewParameter(name string, typ types.Type, level int) *Entry {
	return &Entry{Name: name, Kind: KindParameter, Type: typ, Level: level}
}

func NewConstant(name string, typ types.Type, level int, value int64) *Entry {
	return &Entry{Name: name, Kind: KindConstant, Type: typ, Level: level, Value: &value}
}

// Table holds the entries of one lexical scope in declaration order.
type Table struct {
	entries []*Entry
	byName  map[string]*Entry
}

func NewTable(entries ...*Entry) *Table {
	t := &Table{byName: make(map[string]*Entry)}
	for _, e := range entries {
		t.Add(e)
	}
	return t
}

// Add appends an entry. A repeated name replaces the earlier binding for
// lookups but both keep their place in Entries.
func (t *Table) Add(e *Entry) {
	if t.byName == nil {
		t.byName = make(map[string]*Entry)
	}
	t.entries = append(t.entries, e)
	t.byName[e.Name] = e
}

func (t *Table) Entries() []*Entry {
	if t == nil {
		return nil
	}
	return t.entries
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

func (t *Table) lookup(name string) (*Entry, bool) {
	if t == nil {
		return nil, false
	}
	e, ok := t.byName[name]
	return e, ok
}
