package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tdvu/chanwork/internal/types"
	"github.com/tdvu/chanwork/internal/ui"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate counters for a channel, the technical domain or a user",
	Run: func(cmd *cobra.Command, args []string) {
		scope, err := resolveScope(cmd)
		if err != nil {
			FatalError("%v", err)
		}

		if err := engine.Hydrate(rootCtx, scope); err != nil {
			FatalError("%v", err)
		}
		snap := engine.Snapshot(scope)

		if jsonOutput {
			out := make(map[string]map[string]int)
			for key, n := range snap {
				if out[string(key.Kind)] == nil {
					out[string(key.Kind)] = make(map[string]int)
				}
				out[string(key.Kind)][string(key.Bucket)] = n
			}
			outputJSON(map[string]any{"scope": scope, "counts": out})
			return
		}

		fmt.Println(ui.RenderCategory(scope.Key()))
		fmt.Println(ui.RenderSeparator())
		fmt.Printf("%-10s", "")
		for _, bucket := range types.Buckets() {
			fmt.Printf(" %16s", ui.RenderBucket(bucket))
		}
		fmt.Println()
		for _, kind := range types.Kinds() {
			fmt.Printf("%-10s", kind)
			for _, bucket := range types.Buckets() {
				fmt.Printf(" %6d", snap[types.CounterKey{Kind: kind, Bucket: bucket}])
			}
			fmt.Println()
		}
	},
}

func resolveScope(cmd *cobra.Command) (types.Scope, error) {
	technical, _ := cmd.Flags().GetBool("technical")
	user, _ := cmd.Flags().GetString("user")
	mine, _ := cmd.Flags().GetBool("mine")
	channel, _ := cmd.Flags().GetString("in")
	if channel == "" {
		channel = channelFlag
	}

	switch {
	case technical:
		return types.TechnicalScope(), nil
	case mine:
		return types.UserScope(getActor()), nil
	case user != "":
		return types.UserScope(user), nil
	case channel != "":
		return types.ChannelScope(channel), nil
	}
	return types.Scope{}, fmt.Errorf("no scope: pass --in, --technical, --user or --mine")
}

func init() {
	statsCmd.Flags().String("in", "", "Channel scope (default: --channel)")
	statsCmd.Flags().Bool("technical", false, "Technical domain scope (all technical channels)")
	statsCmd.Flags().String("user", "", "User scope: items created by the given user")
	statsCmd.Flags().Bool("mine", false, "User scope for the acting user")
	rootCmd.AddCommand(statsCmd)
}
