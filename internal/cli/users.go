package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/JonMunkholm/userdash/internal/admin"
	"github.com/JonMunkholm/userdash/internal/columns"
	"github.com/JonMunkholm/userdash/internal/core"
	"github.com/JonMunkholm/userdash/internal/users"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	FlagFromFile = "from-file"
	FlagSort     = "sort"
	FlagOrder    = "order"
	FlagPage     = "page"
	FlagPerPage  = "per-page"
	FlagSearch   = "search"
	FlagYes      = "yes"
)

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Print a page of the users table",
		Long: `Print a page of users with the dashboard's resolved columns. Users are
read from the database ($DATABASE_URL) or, with --from-file, from a JSON
array of user objects.`,
		Example: `userctl users --from-file users.json --sort name --order 1
userctl users --rules fields.yaml --search ada -o json`,
		Args: cobra.NoArgs,
		RunE: runUsers,
	}
	cmd.Flags().String(FlagFromFile, "", "read users from a JSON file instead of the database")
	cmd.Flags().String(FlagSort, "", "sort key, e.g. name or last_login")
	cmd.Flags().Int(FlagOrder, columns.Descending, "sort order: 1 ascending, -1 descending")
	cmd.Flags().Int(FlagPage, 0, "page number, zero based")
	cmd.Flags().Int(FlagPerPage, users.DefaultPerPage, "users per page")
	cmd.Flags().String(FlagSearch, "", "filter by name, nickname or email")
	cmd.Flags().StringP(FlagOutput, "o", "table", "output format: table, json or yaml")
	return cmd
}

func runUsers(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	src, closeSrc, err := userSource(cmd)
	if err != nil {
		return err
	}
	defer closeSrc()

	customs, err := loadCustoms(cmd)
	if err != nil {
		return err
	}
	svc, err := core.NewService(core.Options{Users: src, Customs: customs})
	if err != nil {
		return err
	}

	q := users.Query{}
	q.Sort.Key, _ = cmd.Flags().GetString(FlagSort)
	q.Sort.Order, _ = cmd.Flags().GetInt(FlagOrder)
	q.Page, _ = cmd.Flags().GetInt(FlagPage)
	q.PerPage, _ = cmd.Flags().GetInt(FlagPerPage)
	q.Search, _ = cmd.Flags().GetString(FlagSearch)

	tbl, err := svc.ListUsers(ctx, q)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString(FlagOutput)
	return printUsers(cmd, format, svc.Cells(), tbl)
}

// userSource returns the --from-file source or a database source.
func userSource(cmd *cobra.Command) (users.Source, func(), error) {
	path, _ := cmd.Flags().GetString(FlagFromFile)
	if path != "" {
		src, err := readUsersFile(path)
		return src, func() {}, err
	}
	pool, err := openDB(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	return users.NewPostgresSource(pool), pool.Close, nil
}

func readUsersFile(path string) (*users.MemorySource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open users file: %w", err)
	}
	defer f.Close()
	return users.ReadJSON(f)
}

func printUsers(cmd *cobra.Command, format string, cells *columns.CellResolver, tbl *core.UserTable) error {
	ctx := core.ContextWithEpoch(cmd.Context(), tbl.Epoch.ID)
	cols := tbl.Epoch.Columns
	w := cmd.OutOrStdout()

	switch format {
	case "json", "yaml":
		rows := make([]map[string]any, len(tbl.Page.Records))
		for i, rec := range tbl.Page.Records {
			row := map[string]any{"id": rec.ID(users.IDKey)}
			for _, col := range cols {
				row[col.Label] = cells.Value(ctx, col, rec, nil)
			}
			rows[i] = row
		}
		if format == "yaml" {
			return yaml.NewEncoder(w).Encode(rows)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "table":
		renderUsersTable(ctx, w, cells, tbl)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// renderUsersTable prints the page the way the dashboard lays it out: the
// first column falls back to "(empty)", other cells to "".
func renderUsersTable(ctx context.Context, w io.Writer, cells *columns.CellResolver, tbl *core.UserTable) {
	cols := tbl.Epoch.Columns

	t := table.NewWriter()
	t.SetOutputMirror(w)

	header := make(table.Row, len(cols))
	for i, col := range cols {
		label := col.Label
		if tbl.Query.Sort.Active(col) {
			if tbl.Query.Sort.Order == columns.Ascending {
				label += " ▲"
			} else {
				label += " ▼"
			}
		}
		header[i] = label
	}
	t.AppendHeader(header)

	for _, rec := range tbl.Page.Records {
		row := make(table.Row, len(cols))
		for i, col := range cols {
			var fallback any
			if i == 0 {
				fallback = "(empty)"
			}
			row[i] = cells.Text(ctx, col, rec, fallback)
		}
		t.AppendRow(row)
	}

	p := tbl.Page
	t.AppendFooter(table.Row{fmt.Sprintf("page %d of %d, %d users", p.Page+1, p.TotalPages(), p.Total)})
	t.SetStyle(table.StyleLight)
	t.Render()
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the users and logs tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := admin.Migrate(cmd.Context(), pool); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Upsert users from a JSON file into the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString(FlagFromFile)
			if path == "" {
				return fmt.Errorf("--%s is required", FlagFromFile)
			}
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open users file: %w", err)
			}
			defer f.Close()

			var records []columns.Record
			if err := json.NewDecoder(f).Decode(&records); err != nil {
				return fmt.Errorf("decode users: %w", err)
			}

			pool, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			n, err := admin.ImportUsers(cmd.Context(), pool, records)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d users\n", n)
			return nil
		},
	}
	cmd.Flags().String(FlagFromFile, "", "JSON array of user objects")
	return cmd
}

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every user and log row",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if yes, _ := cmd.Flags().GetBool(FlagYes); !yes {
				return fmt.Errorf("refusing to delete all data without --%s", FlagYes)
			}

			pool, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := admin.ResetAll(cmd.Context(), pool); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "all users and logs deleted")
			return nil
		},
	}
	cmd.Flags().Bool(FlagYes, false, "confirm deleting all data")
	return cmd
}
