package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/metromap/pkg/graph"
	"github.com/matzehuels/metromap/pkg/storage"
)

// browseCommand creates the browse command: an interactive view of the lines
// and stations of a career map.
func (c *CLI) browseCommand() *cobra.Command {
	var flags layoutFlags

	cmd := &cobra.Command{
		Use:   "browse [careers.yaml]",
		Short: "Browse lines and stations interactively",
		Long: `Browse lines and stations interactively.

With a file argument the map is read from disk. Without one, the stored maps
are listed and the selected map is opened. Pick a station with enter to get
the command that marks it "you are here" on the rendered map.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var (
				m   graph.CareerMap
				err error
			)
			if len(args) == 1 {
				m, err = graph.ReadCareerMapFile(args[0])
			} else {
				m, err = c.pickStoredMap(ctx)
			}
			if err != nil || m.Paths == nil {
				return err
			}

			opts := c.Config.PipelineOptions()
			flags.apply(cmd, &opts)
			opts.Logger = c.Logger

			runner, err := c.newRunner(ctx, false)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			l, err := runner.ComputeLayout(ctx, m, opts)
			if err != nil {
				return fmt.Errorf("compute layout: %w", err)
			}

			final, err := tea.NewProgram(NewLineListModel(l), tea.WithContext(ctx)).Run()
			if err != nil {
				return err
			}
			if st := final.(LineListModel).Selected; st != nil {
				printSuccess("Picked %s", st.Label())
				printKeyValue("Station", st.ID)
				if len(args) == 1 {
					printNextStep("Mark it on the map", fmt.Sprintf("%s render %s --highlight %s", appName, args[0], st.ID))
				}
			}
			return nil
		},
	}

	flags.register(cmd.Flags())
	return cmd
}

// pickStoredMap lets the user choose a stored map. A zero map means the user
// quit without choosing.
func (c *CLI) pickStoredMap(ctx context.Context) (graph.CareerMap, error) {
	store, err := c.openStore(ctx)
	if err != nil {
		return graph.CareerMap{}, fmt.Errorf("open store: %w", err)
	}
	defer store.Close(context.WithoutCancel(ctx))

	docs, err := store.List(ctx)
	if err != nil {
		return graph.CareerMap{}, err
	}
	if len(docs) == 0 {
		printInfo("No stored maps")
		printNextStep("Store one", appName+" store put careers.yaml")
		return graph.CareerMap{}, nil
	}

	summaries := make([]storage.Summary, len(docs))
	for i, d := range docs {
		summaries[i] = d.Summarize()
	}

	final, err := tea.NewProgram(NewMapListModel(summaries), tea.WithContext(ctx)).Run()
	if err != nil {
		return graph.CareerMap{}, err
	}
	selected := final.(MapListModel).Selected
	if selected == nil {
		return graph.CareerMap{}, nil
	}
	doc, err := store.Get(ctx, selected.ID)
	if err != nil {
		return graph.CareerMap{}, err
	}
	return doc.Map, nil
}
