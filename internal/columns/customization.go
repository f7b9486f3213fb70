package columns

// Kind tags what a customization does to the column list.
type Kind int

const (
	// KindPassive customizations do not touch the list.
	KindPassive Kind = iota
	// KindAppend adds the property as a column after the defaults.
	KindAppend
	// KindOverride merges an Override and replaces the matching default.
	KindOverride
	// KindSuppress removes the target key from the list.
	KindSuppress
)

func (k Kind) String() string {
	switch k {
	case KindAppend:
		return "append"
	case KindOverride:
		return "override"
	case KindSuppress:
		return "suppress"
	default:
		return "passive"
	}
}

// SentinelOrder places columns without an explicit order after the defaults.
const SentinelOrder = 1000

// appendWidth is the width given to KindAppend columns.
const appendWidth = "25%"

// Override holds the list settings of a KindOverride customization.
// Zero values mean "not set" and fall back to the customization.
type Override struct {
	Label        string
	Order        *int
	Width        string
	Sortable     bool
	SortProperty string
	Display      Display
}

// Customization is one operator supplied field rule.
type Customization struct {
	Property    Property
	Label       string
	Display     Display
	Kind        Kind
	Override    Override
	OverrideKey string // target key when it differs from Property.ID()
}

// Key returns the key the customization targets.
func (c Customization) Key() string {
	if c.OverrideKey != "" {
		return c.OverrideKey
	}
	return c.Property.ID()
}

// optsIn reports whether the customization contributes a column.
func (c Customization) optsIn() bool {
	return c.Kind == KindAppend || c.Kind == KindOverride
}

// validate checks the customization at position i.
func (c Customization) validate(i int) error {
	switch {
	case c.Property.Fn != nil && c.Key() == "":
		return &ConfigError{Index: i, Reason: "accessor property requires a key"}
	case c.Kind == KindSuppress && c.Key() == "":
		return &ConfigError{Index: i, Reason: "suppression has no target"}
	case c.Kind != KindSuppress && c.Property.Path == "" && c.Property.Fn == nil:
		return &ConfigError{Index: i, Key: c.Key(), Reason: "missing property"}
	case c.Display.Mode == DisplayCustom && c.Display.Format == nil,
		c.Override.Display.Mode == DisplayCustom && c.Override.Display.Format == nil:
		return &ConfigError{Index: i, Key: c.Key(), Reason: "custom display without a formatter"}
	}
	return nil
}

// field builds the column contributed by an opted-in customization.
// Override settings win over the customization's own when set.
func (c Customization) field() Field {
	f := Field{
		Property: c.Property,
		Label:    c.Label,
		Display:  c.Display,
	}
	if f.Property.Key == "" && c.OverrideKey != "" {
		f.Property.Key = c.OverrideKey
	}

	switch c.Kind {
	case KindAppend:
		f.Order = SentinelOrder
		f.Width = appendWidth

	case KindOverride:
		o := c.Override
		f.Order = SentinelOrder
		if o.Order != nil {
			f.Order = *o.Order
		}
		if o.Label != "" {
			f.Label = o.Label
		}
		f.Width = o.Width
		f.Sortable = o.Sortable
		f.SortProperty = o.SortProperty
		if o.Display.Mode != DisplayInherit {
			f.Display = o.Display
		}
	}

	if f.Label == "" {
		f.Label = f.Key()
	}
	return f
}

// hidden reports whether the column the customization contributes is hidden.
func (c Customization) hidden() bool {
	return c.optsIn() && c.field().Display.Mode == DisplayHidden
}
