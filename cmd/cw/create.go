package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tdvu/chanwork/internal/lifecycle"
	"github.com/tdvu/chanwork/internal/timeparsing"
	"github.com/tdvu/chanwork/internal/types"
	"github.com/tdvu/chanwork/internal/ui"
)

var createCmd = &cobra.Command{
	Use:     "create [title]",
	Aliases: []string{"new"},
	Short:   "Create a new work item",
	Args:    cobra.MinimumNArgs(0),
	Run: func(cmd *cobra.Command, args []string) {
		titleFlag, _ := cmd.Flags().GetString("title")
		var title string
		switch {
		case len(args) > 0 && titleFlag != "" && args[0] != titleFlag:
			FatalError("cannot specify different titles as both positional argument and --title flag")
		case len(args) > 0:
			title = args[0]
		case titleFlag != "":
			title = titleFlag
		default:
			FatalError("title required")
		}

		kindStr, _ := cmd.Flags().GetString("kind")
		kind := types.Kind(kindStr)
		if !kind.IsValid() {
			FatalError("invalid kind %q (trouble|issue|plan|task)", kindStr)
		}

		channel, _ := cmd.Flags().GetString("in")
		if channel == "" {
			channel = channelFlag
		}
		if channel == "" {
			FatalError("channel required (--in, --channel or .chanwork.yaml)")
		}

		req := lifecycle.CreateRequest{
			Kind:      kind,
			ChannelID: channel,
			Title:     title,
			CreatorID: getActor(),
		}
		req.Priority, _ = cmd.Flags().GetBool("priority")
		req.LinkedItemIDs, _ = cmd.Flags().GetStringArray("link")
		req.AssigneeIDs, _ = cmd.Flags().GetStringArray("assignee")
		req.ManagerIDs, _ = cmd.Flags().GetStringArray("manager")

		items, _ := cmd.Flags().GetStringArray("item")
		if len(items) > 0 {
			switch kind {
			case types.KindPlan:
				for _, it := range items {
					req.ChecklistItems = append(req.ChecklistItems, types.ChecklistItem{Title: it, State: types.ItemOpen})
				}
			case types.KindTask:
				group, _ := cmd.Flags().GetString("group")
				cl := types.ChecklistGroup{Title: group}
				for _, it := range items {
					cl.Items = append(cl.Items, types.ChecklistItem{Title: it, State: types.ItemOpen})
				}
				req.Checklists = []types.ChecklistGroup{cl}
			default:
				FatalError("%s items cannot carry a checklist", kind)
			}
		}

		if due, _ := cmd.Flags().GetString("due"); due != "" {
			t, err := timeparsing.ParseDueDate(due, time.Now())
			if err != nil {
				FatalError("invalid due date: %v", err)
			}
			req.DueAt = &t
		}

		item, err := ctrl.Create(rootCtx, req)
		if err != nil {
			FatalError("%v", err)
		}

		if jsonOutput {
			outputJSON(item)
			return
		}
		fmt.Printf("%s %s %s\n", ui.StatusIcon(item.Status), ui.RenderAccent(item.ID), item.Title)
	},
}

func init() {
	createCmd.Flags().String("title", "", "Item title (alternative to positional argument)")
	createCmd.Flags().StringP("kind", "k", "trouble", "Item kind: trouble|issue|plan|task")
	createCmd.Flags().String("in", "", "Channel to create the item in (default: --channel)")
	createCmd.Flags().BoolP("priority", "p", false, "Mark the item as priority")
	createCmd.Flags().StringArray("item", nil, "Checklist item (repeatable; task/plan only)")
	createCmd.Flags().String("group", "", "Checklist group title (task only)")
	createCmd.Flags().StringArray("link", nil, "Linked trouble/issue ID (repeatable; plan only)")
	createCmd.Flags().StringArray("assignee", nil, "Assignee user ID (repeatable; task/plan only)")
	createCmd.Flags().StringArray("manager", nil, "Manager user ID (repeatable; task/plan only)")
	createCmd.Flags().String("due", "", "Due date: +2d, 2025-06-01, tomorrow, next friday")
	rootCmd.AddCommand(createCmd)
}
