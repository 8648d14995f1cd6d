package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tdvu/chanwork/internal/types"
	"github.com/tdvu/chanwork/internal/ui"
)

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change an item's status or priority",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := args[0]
		statusStr, _ := cmd.Flags().GetString("status")
		togglePriority, _ := cmd.Flags().GetBool("priority")
		if statusStr == "" && !togglePriority {
			FatalError("nothing to do: pass --status or --priority")
		}

		var item *types.WorkItem
		var err error
		if statusStr != "" {
			status := types.Status(statusStr)
			if !status.IsValid() {
				FatalError("invalid status %q (new|confirmed|done|completed)", statusStr)
			}
			item, err = ctrl.ChangeStatus(rootCtx, id, status, getActor())
			if err != nil {
				FatalError("%v", err)
			}
		}
		if togglePriority {
			item, err = ctrl.TogglePriority(rootCtx, id, getActor())
			if err != nil {
				FatalError("%v", err)
			}
		}

		if jsonOutput {
			outputJSON(item)
			return
		}
		fmt.Printf("%s %s [%s] %s\n",
			ui.StatusIcon(item.Status), ui.RenderAccent(item.ID),
			ui.RenderStatus(item.Status), item.Title)
	},
}

// Shorthand status commands in the spirit of the underlying chat actions.
func statusCommand(use, short string, status types.Status) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			item, err := ctrl.ChangeStatus(rootCtx, args[0], status, getActor())
			if err != nil {
				FatalError("%v", err)
			}
			if jsonOutput {
				outputJSON(item)
				return
			}
			fmt.Printf("%s %s [%s] %s\n",
				ui.StatusIcon(item.Status), ui.RenderAccent(item.ID),
				ui.RenderStatus(item.Status), item.Title)
		},
	}
}

func init() {
	updateCmd.Flags().String("status", "", "New status: new|confirmed|done|completed")
	updateCmd.Flags().BoolP("priority", "p", false, "Toggle the priority flag")
	rootCmd.AddCommand(updateCmd)

	rootCmd.AddCommand(
		statusCommand("confirm", "Confirm an item", types.StatusConfirmed),
		statusCommand("done", "Mark an item done (pending review)", types.StatusDone),
		statusCommand("complete", "Complete a reviewed item", types.StatusCompleted),
		statusCommand("restore", "Restore a done item to confirmed", types.StatusConfirmed),
	)
}
