package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/phanxgames/graphcanvas/graphmodel"
)

func layoutCmd() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Manage saved node layouts",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "layouts.db", "layout database")

	open := func() (*graphmodel.LayoutStore, error) {
		s, err := graphmodel.OpenLayoutStore(dbPath)
		if err != nil {
			return nil, fail("%v", err)
		}
		return s, nil
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "save <graph.yaml> <name>",
			Short: "Store the node locations of a graph file",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				g, err := graphmodel.Load(args[0])
				if err != nil {
					return fail("%v", err)
				}
				s, err := open()
				if err != nil {
					return err
				}
				defer s.Close()
				n, err := s.Save(cmd.Context(), args[1], g)
				if err != nil {
					return fail("%v", err)
				}
				good.Printf("  ✓ saved %d node locations as %s\n", n, brand.Sprint(args[1]))
				return nil
			},
		},
		&cobra.Command{
			Use:   "apply <graph.yaml> <name>",
			Short: "Rewrite a graph file with the locations of a saved layout",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				g, err := graphmodel.Load(args[0])
				if err != nil {
					return fail("%v", err)
				}
				s, err := open()
				if err != nil {
					return err
				}
				defer s.Close()
				n, err := s.Apply(cmd.Context(), args[1], g)
				if err != nil {
					return fail("%v", err)
				}
				if err := g.Save(args[0]); err != nil {
					return fail("%v", err)
				}
				good.Printf("  ✓ moved %d nodes in %s\n", n, args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "List saved layouts",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := open()
				if err != nil {
					return err
				}
				defer s.Close()
				list, err := s.List(cmd.Context())
				if err != nil {
					return fail("%v", err)
				}
				var rows [][]string
				for _, l := range list {
					rows = append(rows, []string{l.Name, strconv.Itoa(l.Nodes), l.SavedAt.Format("2006-01-02 15:04")})
				}
				table([]string{"NAME", "NODES", "SAVED"}, rows)
				return nil
			},
		},
		&cobra.Command{
			Use:   "rm <name>",
			Short: "Delete a saved layout",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := open()
				if err != nil {
					return err
				}
				defer s.Close()
				ok, err := s.Delete(cmd.Context(), args[0])
				if err != nil {
					return fail("%v", err)
				}
				if !ok {
					return fail("no layout named %q", args[0])
				}
				good.Printf("  ✓ deleted %s\n", args[0])
				return nil
			},
		},
	)
	return cmd
}
