// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package utils

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"
	"github.com/ava-labs/avalanchego/utils/perms"

	smath "github.com/ava-labs/avalanchego/utils/math"
	formatter "github.com/onsi/ginkgo/v2/formatter"

	"github.com/amxrac/ovwigho/consts"
)

// NativeDecimals is the number of decimal places of one SOL in lamports.
const NativeDecimals = 9

var ErrInvalidBalance = errors.New("invalid balance")

func ToID(bytes []byte) ids.ID {
	return ids.ID(hashing.ComputeHash256Array(bytes))
}

func InitSubDirectory(rootPath string, name string) (string, error) {
	p := path.Join(rootPath, name)
	return p, os.MkdirAll(p, perms.ReadWriteExecute)
}

// Outf writes a ginkgo formatted string to stdout, e.g.
//
//	Outf("{{green}}initialized %s{{/}}\n", config)
func Outf(format string, args ...interface{}) {
	s := formatter.F(format, args...)
	fmt.Fprint(formatter.ColorableStdOut, s)
}

// FormatBalance renders [lamports] in SOL with every decimal place.
func FormatBalance(lamports uint64) string {
	return fmt.Sprintf("%d.%0*d", lamports/consts.LamportsPerSOL, NativeDecimals, lamports%consts.LamportsPerSOL)
}

// ParseBalance converts a SOL amount such as "1.5" to lamports without
// rounding.
func ParseBalance(bal string) (uint64, error) {
	whole, frac, _ := strings.Cut(bal, ".")
	if len(whole) == 0 && len(frac) == 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidBalance, bal)
	}
	if len(frac) > NativeDecimals {
		return 0, fmt.Errorf("%w: %q has more than %d decimals", ErrInvalidBalance, bal, NativeDecimals)
	}
	var sol, lamports uint64
	if len(whole) > 0 {
		v, err := strconv.ParseUint(whole, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %w", ErrInvalidBalance, bal, err)
		}
		sol = v
	}
	if len(frac) > 0 {
		v, err := strconv.ParseUint(frac+strings.Repeat("0", NativeDecimals-len(frac)), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %w", ErrInvalidBalance, bal, err)
		}
		lamports = v
	}
	total, err := smath.Mul(sol, uint64(consts.LamportsPerSOL))
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidBalance, bal, err)
	}
	if total, err = smath.Add(total, lamports); err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidBalance, bal, err)
	}
	return total, nil
}
