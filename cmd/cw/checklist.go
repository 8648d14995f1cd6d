package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tdvu/chanwork/internal/types"
)

// checklistAction builds one checklist subcommand that moves an entry to the
// given state.
func checklistAction(use, short string, state types.ChecklistState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " <id> <index>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				FatalError("index must be a number: %v", err)
			}
			group, _ := cmd.Flags().GetInt("group")

			item, err := ctrl.UpdateChecklistItem(rootCtx, args[0], group, index, state, getActor())
			if err != nil {
				FatalError("%v", err)
			}
			if jsonOutput {
				outputJSON(item)
				return
			}
			fmt.Printf("%s checklist updated\n", item.ID)
			printChecklist(item)
		},
	}
	cmd.Flags().Int("group", 0, "Checklist group (task only)")
	return cmd
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Work a checklist: close, request or resolve skips",
	Long: `Checklist entries move open -> closed, or through the skip workflow:
any member may request a skip; only the item's creator approves or rejects it.`,
}

func init() {
	checkCmd.AddCommand(
		checklistAction("close", "Close a checklist entry", types.ItemClosed),
		checklistAction("skip", "Request to skip an entry", types.ItemSkipRequested),
		checklistAction("approve", "Approve a skip request (creator only)", types.ItemSkipped),
		checklistAction("reject", "Reject a skip request, reopening the entry (creator only)", types.ItemOpen),
	)
	rootCmd.AddCommand(checkCmd)
}
