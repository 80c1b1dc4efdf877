// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"os"

	"github.com/amxrac/ovwigho/cmd/ovwigho-cli/cmd"
	"github.com/amxrac/ovwigho/utils"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		utils.Outf("{{red}}error: {{/}}%+v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}
