package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tdvu/chanwork/internal/types"
	"github.com/tdvu/chanwork/internal/ui"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one work item with its checklist and progress",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		item, err := ctrl.Get(rootCtx, args[0])
		if err != nil {
			FatalError("%v", err)
		}
		ratio, err := ctrl.Progress(rootCtx, item.ID)
		if err != nil {
			FatalError("%v", err)
		}

		if jsonOutput {
			outputJSON(struct {
				*types.WorkItem
				Progress float64 `json:"progress"`
			}{item, ratio})
			return
		}

		marker := ""
		if item.Priority {
			marker = " " + ui.RenderPriority()
		}
		fmt.Printf("%s %s%s\n", ui.RenderAccent(item.ID), item.Title, marker)
		fmt.Printf("  %s %s in %s, created by %s\n",
			ui.RenderMuted(string(item.Kind)), ui.RenderStatus(item.Status),
			item.ChannelID, item.CreatorID)
		if item.DueAt != nil {
			fmt.Printf("  due %s\n", item.DueAt.Format("2006-01-02 15:04"))
		}
		if len(item.AssigneeIDs) > 0 {
			fmt.Printf("  assignees: %v\n", item.AssigneeIDs)
		}
		if len(item.ManagerIDs) > 0 {
			fmt.Printf("  managers: %v\n", item.ManagerIDs)
		}

		printMark := func(label string, m *types.Mark) {
			if m != nil {
				fmt.Printf("  %s by %s at %s\n", label, m.By, m.At.Format(time.RFC3339))
			}
		}
		printMark("confirmed", item.Confirmed)
		printMark("done", item.Done)
		printMark("restored", item.Restored)
		printMark("completed", item.Completed)

		if item.Kind.HasChecklist() {
			fmt.Printf("  progress: %.0f%%\n", ratio*100)
			printChecklist(item)
		}
		if len(item.LinkedItemIDs) > 0 {
			fmt.Println(ui.RenderCategory("linked"))
			linked, err := backend.Statuses(rootCtx, item.LinkedItemIDs)
			if err != nil {
				FatalError("%v", err)
			}
			for _, id := range item.LinkedItemIDs {
				status, ok := linked[id]
				if !ok {
					fmt.Printf("  %s %s\n", id, ui.RenderMuted("(missing)"))
					continue
				}
				fmt.Printf("  %s %s [%s]\n", ui.StatusIcon(status), id, ui.RenderStatus(status))
			}
		}
	},
}

func printChecklist(item *types.WorkItem) {
	printItems := func(items []types.ChecklistItem) {
		for i, it := range items {
			icon := ui.IconOpen
			switch it.State {
			case types.ItemClosed:
				icon = ui.IconDone
			case types.ItemSkipped:
				icon = ui.IconSkip
			case types.ItemSkipRequested:
				icon = ui.IconPending
			}
			fmt.Printf("    %d. %s %s\n", i, icon, it.Title)
		}
	}
	if item.Kind == types.KindPlan {
		printItems(item.ChecklistItems)
		return
	}
	for gi, g := range item.Checklists {
		title := g.Title
		if title == "" {
			title = fmt.Sprintf("group %d", gi)
		}
		fmt.Printf("  %s\n", ui.RenderCategory(title))
		printItems(g.Items)
	}
}

func init() {
	rootCmd.AddCommand(showCmd)
}
