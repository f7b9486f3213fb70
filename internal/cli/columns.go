package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/JonMunkholm/userdash/internal/columns"
	"github.com/JonMunkholm/userdash/internal/core"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// columnInfo is the printable form of a resolved column.
type columnInfo struct {
	Key      string `json:"key" yaml:"key"`
	Label    string `json:"label" yaml:"label"`
	Order    int    `json:"order" yaml:"order"`
	Width    string `json:"width,omitempty" yaml:"width,omitempty"`
	Sortable bool   `json:"sortable" yaml:"sortable"`
	SortKey  string `json:"sortKey,omitempty" yaml:"sortKey,omitempty"`
	Display  string `json:"display" yaml:"display"`
}

func newColumnsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "columns",
		Short: "Print the resolved users table columns",
		Long: `Print the columns the dashboard shows for the --rules file: built-in
columns merged with the rules, ordered, with hidden and suppressed columns
removed.`,
		Example: `userctl columns --rules fields.yaml
userctl columns --rules fields.yaml -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			customs, err := loadCustoms(cmd)
			if err != nil {
				return err
			}
			cols, err := columns.Resolve(columns.DefaultUserFields(), customs)
			if err != nil {
				return err
			}
			format, _ := cmd.Flags().GetString(FlagOutput)
			return printColumns(cmd.OutOrStdout(), format, cols)
		},
	}
	cmd.Flags().StringP(FlagOutput, "o", "table", "output format: table, json or yaml")
	return cmd
}

func printColumns(w io.Writer, format string, cols []columns.Field) error {
	infos := make([]columnInfo, len(cols))
	for i, c := range cols {
		infos[i] = columnInfo{
			Key:      c.Key(),
			Label:    c.Label,
			Order:    c.Order,
			Width:    c.Width,
			Sortable: c.Sortable,
			Display:  c.Display.Mode.String(),
		}
		if c.Sortable {
			infos[i].SortKey = c.SortKey()
		}
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	case "yaml":
		return yaml.NewEncoder(w).Encode(infos)
	case "table":
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.AppendHeader(table.Row{"Key", "Label", "Order", "Width", "Sort", "Display"})
		for _, c := range infos {
			t.AppendRow(table.Row{c.Key, c.Label, strconv.Itoa(c.Order), c.Width, c.SortKey, c.Display})
		}
		style := table.StyleLight
		style.Options.DrawBorder = false
		t.SetStyle(style)
		t.Render()
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a field rules file",
		Long: `Check a field rules file against the schema and the column rules.
Without an argument the --rules file is checked.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if err := cmd.Flags().Set(FlagRules, args[0]); err != nil {
					return err
				}
			}
			path, _ := cmd.Flags().GetString(FlagRules)
			if path == "" {
				return fmt.Errorf("no field rules file given")
			}

			customs, err := loadCustoms(cmd)
			if err != nil {
				return fmt.Errorf("%w (code %s)", err, core.MapError(err).Code)
			}
			cols, err := columns.Resolve(columns.DefaultUserFields(), customs)
			if err != nil {
				return fmt.Errorf("%s: %w (code %s)", path, err, core.MapError(err).Code)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok, %d rules, %d columns\n", path, len(customs), len(cols))
			return nil
		},
	}
}
