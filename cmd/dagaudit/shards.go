package main

import (
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/spf13/cobra"
)

var shardsCmd = &cobra.Command{
	Use:   "shards <root-cid>",
	Short: "List the CAR shards stored for a root CID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := cid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("missing or invalid root CID argument %q: %w", args[0], err)
		}

		auditor, err := newAuditor(cmd.Context())
		if err != nil {
			return err
		}

		paths, err := auditor.Locate(cmd.Context(), root)
		if err != nil {
			return err
		}
		for _, p := range paths {
			cmd.Println(p)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(shardsCmd)
}
