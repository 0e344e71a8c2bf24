package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	gc "github.com/phanxgames/graphcanvas"
)

func keysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List input bindings and manual triggers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fail("%v", err)
			}
			// Bind without watching; the command exits right away.
			k := gc.DefaultKeymap()
			if cfg.Keymap != nil {
				k = *cfg.Keymap
			}
			if cfg.Input.KeymapFile != "" {
				if k, err = gc.LoadKeymap(cfg.Input.KeymapFile); err != nil {
					return fail("%v", err)
				}
			}
			canvas := gc.NewCanvas(nil)
			if _, err := k.Bind(canvas.Linker(), gc.DefaultActions(canvas)); err != nil {
				return fail("%v", err)
			}

			fmt.Println(brand.Sprint("Bindings"))
			actions := make(map[gc.Trip][]string)
			for _, b := range k.Bindings {
				trip, _ := gc.ParseTrip(b.Trip)
				actions[trip] = append(actions[trip], b.Action)
			}
			for _, b := range k.DragBindings {
				trip, _ := gc.ParseTrip(b.Trip)
				actions[trip] = append(actions[trip], "drag:"+b.Action)
			}
			var rows [][]string
			for _, info := range canvas.Linker().Bindings() {
				rows = append(rows, []string{
					info.Trip.String(),
					fmt.Sprint(info.Callbacks),
					fmt.Sprint(info.DragTriggers),
					strings.Join(actions[info.Trip], ", "),
				})
			}
			table([]string{"TRIP", "CALLBACKS", "DRAGS", "ACTIONS"}, rows)

			fmt.Println()
			fmt.Println(brand.Sprint("Manual triggers"))
			rows = rows[:0]
			for _, mt := range canvas.AvailableManualTriggers(nil) {
				desc := subtle.Sprint("-")
				if mt.HasDescription {
					desc = mt.Description
				}
				rows = append(rows, []string{mt.Name, desc})
			}
			table([]string{"NAME", "DESCRIPTION"}, rows)
			return nil
		},
	}
}
