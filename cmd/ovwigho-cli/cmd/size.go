// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/amxrac/ovwigho/ledger"
	"github.com/amxrac/ovwigho/merkle"
	"github.com/amxrac/ovwigho/utils"
)

func newSizeCmd() *cobra.Command {
	var maxDepth, maxBufferSize, canopyDepth uint32
	cmd := &cobra.Command{
		Use:   "size",
		Short: "Print the account size and rent of a tree",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if err := merkle.CheckSupported(maxDepth, maxBufferSize); err != nil {
				return err
			}
			size, err := merkle.Size(maxDepth, maxBufferSize, canopyDepth)
			if err != nil {
				return err
			}
			rent := ledger.NewDefaultConfig().Rent.MinimumBalance(size)
			utils.Outf("{{yellow}}tree:{{/}} depth=%d buffer=%d canopy=%d\n", maxDepth, maxBufferSize, canopyDepth)
			utils.Outf("{{yellow}}size:{{/}} %d bytes\n", size)
			utils.Outf("{{yellow}}rent:{{/}} %d lamports (%s)\n", rent, utils.FormatBalance(rent))
			utils.Outf("{{yellow}}capacity:{{/}} %d leaves\n", uint64(1)<<maxDepth)
			return nil
		},
	}
	cmd.Flags().Uint32Var(&maxDepth, "max-depth", 14, "max depth of the tree")
	cmd.Flags().Uint32Var(&maxBufferSize, "max-buffer-size", 64, "max buffer size of the tree")
	cmd.Flags().Uint32Var(&canopyDepth, "canopy-depth", 0, "canopy depth of the tree")
	return cmd
}

func newPairsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pairs",
		Short: "List the supported max depth and max buffer size pairs",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			for _, p := range merkle.SupportedPairs() {
				size, err := merkle.Size(p.MaxDepth, p.MaxBufferSize, 0)
				if err != nil {
					return err
				}
				utils.Outf("{{cyan}}%s{{/}} capacity=%d size=%d\n", p, uint64(1)<<p.MaxDepth, size)
			}
			return nil
		},
	}
}
