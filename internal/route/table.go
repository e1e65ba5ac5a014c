package route

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Table is an immutable set of route entries keyed by canonical path.
// It is built once at startup and is safe for concurrent reads.
type Table struct {
	byPath  map[string]Entry
	ordered []Entry
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// NewTable validates entries and builds a Table from them.
// Every entry must pass struct validation and carry a canonical path; paths
// must be unique.
func NewTable(entries ...Entry) (*Table, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyTable
	}

	t := &Table{
		byPath:  make(map[string]Entry, len(entries)),
		ordered: make([]Entry, 0, len(entries)),
	}
	for i, e := range entries {
		if err := validateEntry(e); err != nil {
			return nil, fmt.Errorf("entry %d (%s): %w", i, e.Path, err)
		}
		if _, exists := t.byPath[e.Path]; exists {
			return nil, fmt.Errorf("entry %d: %w: %s", i, ErrDuplicatePath, e.Path)
		}
		t.byPath[e.Path] = e
		t.ordered = append(t.ordered, e)
	}

	slices.SortFunc(t.ordered, func(a, b Entry) int {
		return strings.Compare(a.Path, b.Path)
	})
	return t, nil
}

func validateEntry(e Entry) error {
	if err := validate.Struct(e); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			fe := ve[0]
			msg := fe.Tag()
			if fe.Param() != "" {
				msg += "=" + fe.Param()
			}
			return fmt.Errorf("%w: field %s failed %s", ErrInvalidEntry, fe.Field(), msg)
		}
		return fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	if !IsCanonical(e.Path) {
		return fmt.Errorf("%w: %s", ErrNonCanonical, e.Path)
	}
	return nil
}

// Lookup returns the entry registered for the exact canonical path.
func (t *Table) Lookup(path string) (Entry, bool) {
	if t == nil {
		return Entry{}, false
	}
	e, ok := t.byPath[path]
	return e, ok
}

// Entries returns a copy of all entries sorted by path.
func (t *Table) Entries() []Entry {
	if t == nil {
		return nil
	}
	return slices.Clone(t.ordered)
}

// ByLayout returns the entries mounted in layout l, sorted by path.
func (t *Table) ByLayout(l Layout) []Entry {
	if t == nil {
		return nil
	}
	var out []Entry
	for _, e := range t.ordered {
		if e.Layout == l {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of entries in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.ordered)
}
