package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var channelCmd = &cobra.Command{
	Use:   "channel",
	Short: "Manage the channel registry",
	Long: `Register channels and their members. In a full deployment the chat
layer owns this data; these commands exist for setup and local use.`,
}

var channelAddCmd = &cobra.Command{
	Use:   "add <channel-id>",
	Short: "Register a channel",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		technical, _ := cmd.Flags().GetBool("technical")
		if err := backend.AddChannel(rootCtx, args[0], technical); err != nil {
			FatalError("%v", err)
		}
		fmt.Printf("channel %s registered (technical=%v)\n", args[0], technical)
	},
}

var channelJoinCmd = &cobra.Command{
	Use:   "join <channel-id> <user-id>",
	Short: "Add a user to a channel",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if err := backend.AddMember(rootCtx, args[0], args[1]); err != nil {
			FatalError("%v", err)
		}
		fmt.Printf("%s joined %s\n", args[1], args[0])
	},
}

var channelLeaveCmd = &cobra.Command{
	Use:   "leave <channel-id> <user-id>",
	Short: "Remove a user from a channel",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if err := backend.RemoveMember(rootCtx, args[0], args[1]); err != nil {
			FatalError("%v", err)
		}
		fmt.Printf("%s left %s\n", args[1], args[0])
	},
}

func init() {
	channelAddCmd.Flags().Bool("technical", false, "Mark the channel as part of the technical domain")
	channelCmd.AddCommand(channelAddCmd, channelJoinCmd, channelLeaveCmd)
	rootCmd.AddCommand(channelCmd)
}
