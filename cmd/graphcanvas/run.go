package main

import (
	"context"

	"github.com/spf13/cobra"

	gc "github.com/phanxgames/graphcanvas"
	"github.com/phanxgames/graphcanvas/graphmodel"
)

func runCmd() *cobra.Command {
	var (
		width, height int
		showFPS       bool
		dbPath        string
		layoutName    string
		saveOnExit    bool
	)
	cmd := &cobra.Command{
		Use:   "run [graph.yaml]",
		Short: "Open a graph in an editor window",
		Long: "Open a graph file in an editor window. Without a file a small demo\n" +
			"graph is shown. With --db, the named layout is applied on start.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fail("%v", err)
			}

			var g *graphmodel.Graph
			title := "graphcanvas: demo"
			if len(args) == 1 {
				if g, err = graphmodel.Load(args[0]); err != nil {
					return fail("%v", err)
				}
				title = "graphcanvas: " + args[0]
			} else {
				g = graphmodel.Demo()
			}

			var store *graphmodel.LayoutStore
			if dbPath != "" {
				if store, err = graphmodel.OpenLayoutStore(dbPath); err != nil {
					return fail("%v", err)
				}
				defer store.Close()
				if _, err := store.Apply(cmd.Context(), layoutName, g); err != nil {
					return fail("%v", err)
				}
			}

			canvas := gc.NewCanvas(nil)
			if err := cfg.Apply(canvas); err != nil {
				return fail("%v", err)
			}
			canvas.SetGraph(g)

			focused := false
			err = gc.Run(canvas, gc.RunConfig{
				Title:   title,
				Width:   width,
				Height:  height,
				ShowFPS: showFPS || cfg.Debug.Enabled,
				Update: func() error {
					// The window size is known from the first tick on.
					if !focused {
						focused = canvas.FocusSelection()
					}
					return nil
				},
			})
			if err != nil {
				return fail("%v", err)
			}

			if store != nil && saveOnExit {
				n, err := store.Save(context.WithoutCancel(cmd.Context()), layoutName, g)
				if err != nil {
					return fail("%v", err)
				}
				good.Printf("  ✓ saved %d node locations to layout %s\n", n, brand.Sprint(layoutName))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 1280, "window width")
	cmd.Flags().IntVar(&height, "height", 720, "window height")
	cmd.Flags().BoolVar(&showFPS, "fps", false, "show the debug overlay")
	cmd.Flags().StringVar(&dbPath, "db", "", "layout database")
	cmd.Flags().StringVar(&layoutName, "layout", "default", "layout name in --db")
	cmd.Flags().BoolVar(&saveOnExit, "save", false, "save the layout to --db when the window closes")
	return cmd
}
