package columns

// Record is one row of the table. Records come from the row source and are
// never mutated by this package.
type Record map[string]any

// ID returns the string value stored under key, or "" when absent.
func (r Record) ID(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return formatScalar(v)
}

// Accessor computes a raw value from a record.
type Accessor func(Record) any

// FormatFunc turns a raw value into the value rendered in a cell.
// Returning an error (or panicking) renders the cell as [ErrorSentinel].
type FormatFunc func(row Record, value any) (any, error)

// Property locates the raw value of a column: either a dotted path into the
// record or an accessor function. Key identifies the column; it defaults to
// Path and is required when Fn is set.
type Property struct {
	Path string
	Fn   Accessor
	Key  string
}

// Path returns a property reading the dotted path p.
func Path(p string) Property {
	return Property{Path: p}
}

// Func returns a property computed by fn and identified by key.
func Func(key string, fn Accessor) Property {
	return Property{Fn: fn, Key: key}
}

// ID returns the identity key of the property.
func (p Property) ID() string {
	if p.Key != "" {
		return p.Key
	}
	return p.Path
}

// IsZero reports whether the property names nothing.
func (p Property) IsZero() bool {
	return p.Path == "" && p.Fn == nil && p.Key == ""
}

// DisplayMode is the explicit form of a column's display rule.
type DisplayMode int

const (
	// DisplayInherit means no rule was given.
	DisplayInherit DisplayMode = iota
	// DisplayHidden removes the column.
	DisplayHidden
	// DisplayDefault shows the raw value.
	DisplayDefault
	// DisplayCustom shows the result of Display.Format.
	DisplayCustom
)

func (m DisplayMode) String() string {
	switch m {
	case DisplayHidden:
		return "hidden"
	case DisplayDefault:
		return "default"
	case DisplayCustom:
		return "custom"
	default:
		return "inherit"
	}
}

// Display is a display rule. Format is only set for DisplayCustom.
type Display struct {
	Mode   DisplayMode
	Format FormatFunc
}

// Hidden and Shown are the display rules that carry no formatter.
var (
	Hidden = Display{Mode: DisplayHidden}
	Shown  = Display{Mode: DisplayDefault}
)

// Formatted returns a display rule that formats values with fn.
func Formatted(fn FormatFunc) Display {
	return Display{Mode: DisplayCustom, Format: fn}
}

// Field is one resolved column of the table.
type Field struct {
	Property     Property
	Label        string
	Order        int
	Width        string
	Sortable     bool
	SortProperty string
	Display      Display
}

// Key returns the identity key of the column.
func (f Field) Key() string {
	return f.Property.ID()
}

// SortKey returns the key sent when the column header is activated.
func (f Field) SortKey() string {
	if f.SortProperty != "" {
		return f.SortProperty
	}
	return f.Key()
}
