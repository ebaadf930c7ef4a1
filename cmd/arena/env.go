package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Show the resolved network environment",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(field("Environment", env.Name))
		fmt.Println(field("Network", env.NetworkLabel))
		fmt.Println(field("RPC", env.RPCURL))
		fmt.Println(field("Websocket", env.WSURL))
		fmt.Println(field("Program", env.ProgramID))
		fmt.Println(field("Explorer", env.AccountURL(env.ProgramID)))
		if env.RPCRateLimit > 0 {
			fmt.Println(field("Rate limit", fmt.Sprintf("%g req/s", env.RPCRateLimit)))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(envCmd)
}
