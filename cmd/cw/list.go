package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tdvu/chanwork/internal/types"
	"github.com/tdvu/chanwork/internal/ui"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List work items",
	Run: func(cmd *cobra.Command, args []string) {
		filter := types.ItemFilter{ChannelID: channelFlag}
		if in, _ := cmd.Flags().GetString("in"); in != "" {
			filter.ChannelID = in
		}
		filter.CreatorID, _ = cmd.Flags().GetString("creator")
		if mine, _ := cmd.Flags().GetBool("mine"); mine {
			filter.CreatorID = getActor()
		}

		if kindStr, _ := cmd.Flags().GetString("kind"); kindStr != "" {
			kind := types.Kind(kindStr)
			if !kind.IsValid() {
				FatalError("invalid kind %q", kindStr)
			}
			filter.Kind = &kind
		}
		statuses, _ := cmd.Flags().GetStringArray("status")
		for _, s := range statuses {
			status := types.Status(s)
			if !status.IsValid() {
				FatalError("invalid status %q", s)
			}
			filter.Statuses = append(filter.Statuses, status)
		}
		filter.Page, _ = cmd.Flags().GetInt("page")
		filter.PerPage, _ = cmd.Flags().GetInt("per-page")

		items, err := ctrl.List(rootCtx, filter)
		if err != nil {
			FatalError("%v", err)
		}

		if jsonOutput {
			outputJSON(items)
			return
		}
		if len(items) == 0 {
			fmt.Println(ui.RenderMuted("no items"))
			return
		}
		for _, item := range items {
			marker := " "
			if item.Priority {
				marker = ui.RenderPriority()
			}
			fmt.Printf("%s%s %s [%s] %s\n",
				marker,
				ui.StatusIcon(item.Status),
				ui.RenderAccent(item.ID),
				ui.RenderStatus(item.Status),
				item.Title)
		}
	},
}

func init() {
	listCmd.Flags().String("in", "", "Channel to list (default: --channel)")
	listCmd.Flags().StringP("kind", "k", "", "Filter by kind")
	listCmd.Flags().StringArray("status", nil, "Filter by status (repeatable)")
	listCmd.Flags().String("creator", "", "Filter by creator user ID")
	listCmd.Flags().Bool("mine", false, "Only items created by the acting user")
	listCmd.Flags().Int("page", 0, "Page number")
	listCmd.Flags().Int("per-page", 60, "Items per page")
	rootCmd.AddCommand(listCmd)
}
