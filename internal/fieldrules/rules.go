// Package fieldrules loads operator defined field rules and turns them into
// column customizations.
//
// A rules file is YAML (or JSON) in the shape of the dashboard's user field
// settings:
//
//	fields:
//	  - property: app_metadata.vendor
//	    label: Vendor
//	    search:
//	      listOrder: 2
//	      listSize: 15%
//	      sort: true
//	  - property: email
//	    search: false
//	  - property: connection
//	    display: true
//
// `search` opts a field into the table (true or an override mapping) or out
// of it (false). `display` is a boolean or the name of a registered formatter.
// `listOrder`, `listSize` and `sortProperty` may also sit on the field
// itself; an override mapping falls back to them for keys it does not set.
package fieldrules

import (
	"fmt"

	"github.com/JonMunkholm/userdash/internal/columns"
	"gopkg.in/yaml.v3"
)

// File is the top-level document of a rules file.
type File struct {
	Fields []Rule `yaml:"fields"`
}

// Rule is one field rule.
type Rule struct {
	Property    string      `yaml:"property"`
	OverrideKey string      `yaml:"overrideKey,omitempty"`
	Label       string      `yaml:"label,omitempty"`
	Display     DisplayRule `yaml:"display,omitempty"`
	Search      SearchRule  `yaml:"search,omitempty"`

	ListOrder    *int   `yaml:"listOrder,omitempty"`
	ListSize     string `yaml:"listSize,omitempty"`
	SortProperty string `yaml:"sortProperty,omitempty"`
}

// DisplayRule is `display: <bool>` or `display: <formatter name>`.
type DisplayRule struct {
	Set       bool
	Show      bool
	Formatter string
}

func (d *DisplayRule) UnmarshalYAML(n *yaml.Node) error {
	switch n.Tag {
	case "!!null":
		*d = DisplayRule{}
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return err
		}
		*d = DisplayRule{Set: true, Show: b}
	case "!!str":
		*d = DisplayRule{Set: true, Show: true, Formatter: n.Value}
	default:
		return fmt.Errorf("line %d: display must be a boolean or a formatter name", n.Line)
	}
	return nil
}

// SearchRule is `search: <bool>` or `search: <override mapping>`.
type SearchRule struct {
	Set      bool
	Enabled  bool
	Override *SearchOverride
}

// SearchOverride carries the list settings of an override.
type SearchOverride struct {
	Label        string      `yaml:"label"`
	ListOrder    *int        `yaml:"listOrder"`
	ListSize     string      `yaml:"listSize"`
	Sort         bool        `yaml:"sort"`
	SortProperty string      `yaml:"sortProperty"`
	Display      DisplayRule `yaml:"display"`
}

func (s *SearchRule) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			*s = SearchRule{}
			return nil
		}
		var b bool
		if err := n.Decode(&b); err != nil {
			return fmt.Errorf("line %d: search must be a boolean or a mapping", n.Line)
		}
		*s = SearchRule{Set: true, Enabled: b}
	case yaml.MappingNode:
		var o SearchOverride
		if err := n.Decode(&o); err != nil {
			return err
		}
		*s = SearchRule{Set: true, Enabled: true, Override: &o}
	default:
		return fmt.Errorf("line %d: search must be a boolean or a mapping", n.Line)
	}
	return nil
}

// Customizations converts the rules, resolving formatter names against reg.
func (f File) Customizations(reg *Registry) ([]columns.Customization, error) {
	out := make([]columns.Customization, 0, len(f.Fields))
	for i, r := range f.Fields {
		c, err := r.customization(i, reg)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := columns.Validate(out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r Rule) customization(i int, reg *Registry) (columns.Customization, error) {
	c := columns.Customization{
		Label:       r.Label,
		OverrideKey: r.OverrideKey,
	}
	if r.Property != "" {
		c.Property = columns.Path(r.Property)
	}

	display, err := r.Display.resolve(i, r.key(), reg)
	if err != nil {
		return c, err
	}
	c.Display = display

	switch {
	case !r.Search.Set:
		c.Kind = columns.KindPassive
	case r.Search.Override != nil:
		o := r.Search.Override
		od, err := o.Display.resolve(i, r.key(), reg)
		if err != nil {
			return c, err
		}
		c.Kind = columns.KindOverride
		c.Override = columns.Override{
			Label:        o.Label,
			Order:        o.ListOrder,
			Width:        o.ListSize,
			Sortable:     o.Sort,
			SortProperty: o.SortProperty,
			Display:      od,
		}
		if c.Override.Order == nil {
			c.Override.Order = r.ListOrder
		}
		if c.Override.Width == "" {
			c.Override.Width = r.ListSize
		}
		if c.Override.SortProperty == "" {
			c.Override.SortProperty = r.SortProperty
		}
	case r.Search.Enabled:
		c.Kind = columns.KindAppend
	default:
		c.Kind = columns.KindSuppress
	}
	return c, nil
}

func (r Rule) key() string {
	if r.OverrideKey != "" {
		return r.OverrideKey
	}
	return r.Property
}

func (d DisplayRule) resolve(i int, key string, reg *Registry) (columns.Display, error) {
	switch {
	case !d.Set:
		return columns.Display{}, nil
	case d.Formatter != "":
		fn, ok := reg.Get(d.Formatter)
		if !ok {
			return columns.Display{}, &columns.ConfigError{
				Index:  i,
				Key:    key,
				Reason: fmt.Sprintf("unknown formatter %q", d.Formatter),
			}
		}
		return columns.Formatted(fn), nil
	case d.Show:
		return columns.Shown, nil
	}
	return columns.Hidden, nil
}
