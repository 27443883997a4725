package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fadegraph/pkg/graph"
	"github.com/matzehuels/fadegraph/pkg/scene"
)

// validateCommand creates the command that checks a graph definition.
func (c *CLI) validateCommand() *cobra.Command {
	var (
		noCache bool
		list    bool
	)

	cmd := &cobra.Command{
		Use:   "validate [graph]",
		Short: "Check that a graph definition builds",
		Long: `Load a graph definition and build it without animating. Reports unknown
child or parent names, duplicate ids or names, and ids outside 0..n-1.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(cmd.Context(), args, noCache, list)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the source cache")
	cmd.Flags().BoolVarP(&list, "list", "l", false, "print a table of every node")

	return cmd
}

func (c *CLI) runValidate(ctx context.Context, args []string, noCache, list bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	src, store, err := c.openSource(ctx, cfg, args, noCache)
	if err != nil {
		return err
	}
	defer store.Close()

	prog := newProgress(c.Logger)
	defs, err := src.Load(ctx)
	if err != nil {
		return err
	}
	s, err := scene.Build(defs, cfg.ViewportSize(), cfg.Controls.NodeSize)
	if err != nil {
		return err
	}
	prog.done("Built " + src.String())

	printSuccess("%s is valid", src.String())
	printStats(s.Len(), graph.CountLinks(defs), 0, c.cached())

	if isolated := isolatedNodes(s); len(isolated) > 0 {
		printWarning("%d nodes have no links: %s", len(isolated), strings.Join(isolated, ", "))
	}
	if list {
		fmt.Println(nodeTable([]string{"ID", "Name", "Category", "Boss", "Children", "Parents"}, nodeRows(s)))
	}
	return nil
}

// nodeRows lists every node with its links resolved to names.
func nodeRows(s *scene.Scene) [][]string {
	rows := make([][]string, 0, s.Len())
	for id := 0; id < s.Len(); id++ {
		n := s.Node(id)
		boss := ""
		if n.IsBoss {
			boss = iconSuccess
		}
		rows = append(rows, []string{
			fmt.Sprint(n.ID), n.Name, n.Category, boss,
			joinNames(s, n.Children), joinNames(s, n.Parents),
		})
	}
	return rows
}

func joinNames(s *scene.Scene, ids []int) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = s.Node(id).Name
	}
	return strings.Join(names, ", ")
}

func isolatedNodes(s *scene.Scene) []string {
	var out []string
	for id := 0; id < s.Len(); id++ {
		if n := s.Node(id); len(n.Children) == 0 && len(n.Parents) == 0 {
			out = append(out, n.Name)
		}
	}
	return out
}
