package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var assignCmd = &cobra.Command{
	Use:   "assign <id>",
	Short: "Set an item's assignees and managers (creator or manager only)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		assignees, _ := cmd.Flags().GetStringArray("assignee")
		managers, _ := cmd.Flags().GetStringArray("manager")

		item, err := ctrl.SetAssignees(rootCtx, args[0], assignees, managers, getActor())
		if err != nil {
			FatalError("%v", err)
		}
		if jsonOutput {
			outputJSON(item)
			return
		}
		fmt.Printf("%s assignees: %v managers: %v\n", item.ID, item.AssigneeIDs, item.ManagerIDs)
	},
}

func init() {
	assignCmd.Flags().StringArray("assignee", nil, "Assignee user ID (repeatable)")
	assignCmd.Flags().StringArray("manager", nil, "Manager user ID (repeatable)")
	rootCmd.AddCommand(assignCmd)
}
