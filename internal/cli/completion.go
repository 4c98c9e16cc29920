package cli

import (
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/metromap/pkg/graph"
	"github.com/matzehuels/metromap/pkg/pipeline"
)

var completionShells = map[string]func(root *cobra.Command, w io.Writer) error{
	"bash": func(root *cobra.Command, w io.Writer) error { return root.GenBashCompletionV2(w, true) },
	"zsh":  func(root *cobra.Command, w io.Writer) error { return root.GenZshCompletion(w) },
	"fish": func(root *cobra.Command, w io.Writer) error { return root.GenFishCompletion(w, true) },
	"powershell": func(root *cobra.Command, w io.Writer) error {
		return root.GenPowerShellCompletionWithDesc(w)
	},
}

func (c *CLI) completionCommand() *cobra.Command {
	shells := make([]string, 0, len(completionShells))
	for name := range completionShells {
		shells = append(shells, name)
	}
	slices.Sort(shells)

	return &cobra.Command{
		Use:   "completion [" + strings.Join(shells, "|") + "]",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for your shell.

Besides commands and flags, completions cover career map files for
layout, render, browse and store put, layout files for visualize,
--format values, --lines IDs from the layout being drawn, and
stored map IDs for store get and store rm.

  $ source <(metromap completion bash)
  $ metromap completion zsh > "${fpath[1]}/_metromap"
  $ metromap completion fish > ~/.config/fish/completions/metromap.fish
  PS> metromap completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             shells,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return completionShells[args[0]](cmd.Root(), cmd.OutOrStdout())
		},
	}
}

// registerCompletions attaches argument and flag completions to the
// subcommands of root.
func (c *CLI) registerCompletions(root *cobra.Command) {
	for _, path := range [][]string{{"layout"}, {"render"}, {"browse"}, {"store", "put"}} {
		if cmd, _, err := root.Find(path); err == nil {
			cmd.ValidArgsFunction = completeMapFiles
		}
	}
	if cmd, _, err := root.Find([]string{"visualize"}); err == nil {
		cmd.ValidArgsFunction = completeLayoutFiles
		_ = cmd.RegisterFlagCompletionFunc("lines", completeLineIDs)
	}
	for _, path := range [][]string{{"render"}, {"visualize"}} {
		if cmd, _, err := root.Find(path); err == nil {
			_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
		}
	}
	for _, path := range [][]string{{"store", "get"}, {"store", "rm"}} {
		if cmd, _, err := root.Find(path); err == nil {
			cmd.ValidArgsFunction = c.completeStoredIDs
		}
	}
}

func completeMapFiles(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"yaml", "yml", "toml", "json"}, cobra.ShellCompDirectiveFilterFileExt
}

func completeLayoutFiles(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"json"}, cobra.ShellCompDirectiveFilterFileExt
}

// completeLineIDs offers the line IDs of the layout named by the first
// argument, described by line name.
func completeLineIDs(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 || args[0] == "-" {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	l, err := graph.ReadLayoutFile(args[0])
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	ids := make([]string, 0, len(l.Lines))
	for _, line := range l.Lines {
		ids = append(ids, line.ID+"\t"+line.Name)
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}

// completeFormats completes one entry of a comma-separated format list,
// skipping formats already given.
func completeFormats(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	done, prefix := "", toComplete
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		done, prefix = toComplete[:i+1], toComplete[i+1:]
	}
	given := strings.Split(strings.TrimSuffix(done, ","), ",")

	var out []string
	for _, f := range []string{pipeline.FormatSVG, pipeline.FormatJSON, pipeline.FormatDOT, pipeline.FormatPNG} {
		if slices.Contains(given, f) || !strings.HasPrefix(f, prefix) {
			continue
		}
		out = append(out, done+f)
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

// completeStoredIDs offers the IDs in the configured store, described by
// map name.
func (c *CLI) completeStoredIDs(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	ctx := cmd.Context()
	store, err := c.openStore(ctx)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer store.Close(ctx)

	docs, err := store.List(ctx)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID+"\t"+d.Name)
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}
