package columns

import "sort"

// connectionKey is the customization key that enables the connection column.
const connectionKey = "connection"

// Resolve merges customs over defaults and returns the ordered visible
// columns. The result is a new slice; neither input is modified.
//
// Opted-in customizations replace defaults with the same key; when several
// target one key the last wins. The list is stably sorted by Order and
// hidden columns are dropped. Suppressions are applied last so an opt-out
// wins over any customization re-adding the key.
func Resolve(defaults []Field, customs []Customization) ([]Field, error) {
	if err := Validate(customs); err != nil {
		return nil, err
	}

	base := make([]Field, 0, len(defaults)+1)
	base = append(base, defaults...)
	if conn, ok := connectionField(customs); ok {
		base = append(base, conn)
	}

	if len(customs) == 0 {
		return visible(base), nil
	}

	winner := make(map[string]int)
	for i, c := range customs {
		if c.optsIn() {
			winner[c.Key()] = i
		}
	}
	var added []Field
	for i, c := range customs {
		if c.optsIn() && winner[c.Key()] == i {
			added = append(added, c.field())
		}
	}

	fields := base
	if len(added) > 0 {
		fields = make([]Field, 0, len(base)+len(added))
		for _, f := range base {
			if _, ok := winner[f.Key()]; !ok {
				fields = append(fields, f)
			}
		}
		fields = append(fields, added...)
	}

	suppressed := make(map[string]bool)
	for _, c := range customs {
		if c.Kind == KindSuppress || c.hidden() {
			suppressed[c.Key()] = true
		}
	}

	out := visible(fields)
	kept := out[:0]
	for _, f := range out {
		if !suppressed[f.Key()] {
			kept = append(kept, f)
		}
	}
	return kept, nil
}

// Validate returns a *ConfigError for the first malformed customization.
func Validate(customs []Customization) error {
	for i, c := range customs {
		if err := c.validate(i); err != nil {
			return err
		}
	}
	return nil
}

// visible returns a stably ordered copy of fields without hidden columns.
func visible(fields []Field) []Field {
	sorted := make([]Field, len(fields))
	copy(sorted, fields)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})

	out := sorted[:0]
	for _, f := range sorted {
		if f.Display.Mode != DisplayHidden {
			out = append(out, f)
		}
	}
	return out
}

// connectionField builds the derived Connection column when a customization
// keyed "connection" asks for it with a formatter or an explicit show. The
// last such customization decides.
func connectionField(customs []Customization) (Field, bool) {
	for i := len(customs) - 1; i >= 0; i-- {
		c := customs[i]
		if c.Key() != connectionKey {
			continue
		}
		mode := c.Display.Mode
		if mode != DisplayCustom && mode != DisplayDefault {
			return Field{}, false
		}

		format := firstConnection
		if mode == DisplayCustom {
			format = c.Display.Format
		}
		return Field{
			Property: Path("identities"),
			Label:    "Connection",
			Order:    4,
			Width:    "25%",
			Display:  Formatted(format),
		}, true
	}
	return Field{}, false
}

// firstConnection reads the connection of the first identity. An empty or
// missing identity list yields NoValue.
func firstConnection(_ Record, value any) (any, error) {
	v, ok := lookupPath(value, "0.connection")
	if !ok || !present(v) {
		return NoValue, nil
	}
	return v, nil
}
