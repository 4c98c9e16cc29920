package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/metromap/pkg/graph"
	"github.com/matzehuels/metromap/pkg/storage"
)

// storeCommand creates the store command for managing saved career maps.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage stored career maps",
		Long: `Manage stored career maps.

Maps are kept in the configured store backend (file by default, under
~/.config/metromap/maps). The server reads and writes the same store.`,
	}

	cmd.AddCommand(c.storePutCommand())
	cmd.AddCommand(c.storeGetCommand())
	cmd.AddCommand(c.storeListCommand())
	cmd.AddCommand(c.storeRemoveCommand())

	return cmd
}

func (c *CLI) storePutCommand() *cobra.Command {
	var id, name string

	cmd := &cobra.Command{
		Use:   "put [careers.yaml]",
		Short: "Store a career map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			m, err := graph.ReadCareerMapFile(args[0])
			if err != nil {
				return fmt.Errorf("load map %s: %w", args[0], err)
			}

			store, err := c.openStore(ctx)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer store.Close(ctx)

			doc, err := store.Save(ctx, storage.Document{ID: id, Name: name, Map: m})
			if err != nil {
				return err
			}
			logger.Debug("stored map", "id", doc.ID, "backend", c.Config.Store.Backend)

			printSuccess("Stored %s", doc.Name)
			printKeyValue("ID", doc.ID)
			printKeyValue("Updated", doc.UpdatedAt.Format(time.RFC3339))
			printNewline()
			printNextStep("Browse", appName+" browse")
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "map ID (default: new UUID; an existing ID is replaced)")
	cmd.Flags().StringVar(&name, "name", "", "display name (default: the map's name)")
	return cmd
}

func (c *CLI) storeGetCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Print a stored career map as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.openStore(ctx)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer store.Close(ctx)

			doc, err := store.Get(ctx, args[0])
			if err != nil {
				return err
			}
			data, err := graph.MarshalCareerMap(doc.Map)
			if err != nil {
				return err
			}
			return writeOutput(output, append(data, '\n'))
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file")
	return cmd
}

func (c *CLI) storeListCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored career maps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.openStore(ctx)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer store.Close(ctx)

			docs, err := store.List(ctx)
			if err != nil {
				return err
			}
			summaries := make([]storage.Summary, len(docs))
			for i, d := range docs {
				summaries[i] = d.Summarize()
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summaries)
			}
			if len(summaries) == 0 {
				printInfo("No stored maps")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), summaryTable(summaries, time.Now()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print summaries as JSON")
	return cmd
}

func (c *CLI) storeRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm [id]",
		Aliases: []string{"delete"},
		Short:   "Delete a stored career map",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.openStore(ctx)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer store.Close(ctx)

			if err := store.Delete(ctx, args[0]); err != nil {
				return err
			}
			printSuccess("Deleted %s", args[0])
			return nil
		},
	}
}

// summaryTable renders stored map summaries as a bordered table.
func summaryTable(summaries []storage.Summary, now time.Time) string {
	rows := make([][]string, len(summaries))
	for i, s := range summaries {
		rows[i] = []string{s.ID, s.Name, strconv.Itoa(s.Paths), strconv.Itoa(s.Roles), formatRelativeTime(s.UpdatedAt, now)}
	}
	return styledTable(colorDim, "ID", "Name", "Lines", "Roles", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return lipgloss.NewStyle()
		}).
		Render()
}
