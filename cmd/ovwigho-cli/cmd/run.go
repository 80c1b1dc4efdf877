// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/amxrac/ovwigho/client"
	"github.com/amxrac/ovwigho/ledger"
	"github.com/amxrac/ovwigho/programs/ovwigho"
)

func newRunCmd(h *harness) *cobra.Command {
	return &cobra.Command{
		Use:   "run [plan]...",
		Short: "Run one or more plans concurrently against one ledger",
		Long:  "Run one or more plans concurrently against one ledger. A plan of \"-\" is read from stdin.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plans := make([]*Plan, 0, len(args))
			for _, arg := range args {
				p, err := readPlan(cmd.InOrStdin(), arg)
				if err != nil {
					return err
				}
				if err := p.Verify(); err != nil {
					return fmt.Errorf("%s: %w", arg, err)
				}
				plans = append(plans, p)
			}
			vm, closer, err := h.start()
			if err != nil {
				return err
			}
			defer closer()

			cli := client.New(vm.Logger(), vm.Ledger())
			return runPlans(cmd.Context(), vm.Logger(), cli, plans, (*Response).Print)
		},
	}
}

func readPlan(stdin io.Reader, path string) (*Plan, error) {
	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	p, err := unmarshalPlan(b)
	if err != nil {
		return nil, err
	}
	if len(p.Name) == 0 {
		p.Name = path
	}
	return p, nil
}

// runPlans runs every plan in its own goroutine. Key names are scoped to
// their plan. The first plan to fail cancels the others.
func runPlans(
	ctx context.Context,
	log logging.Logger,
	cli *client.Client,
	plans []*Plan,
	out func(*Response),
) error {
	var l sync.Mutex
	emit := func(r *Response) {
		l.Lock()
		defer l.Unlock()

		out(r)
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, p := range plans {
		r := newRunner(log, cli, p, emit)
		g.Go(func() error {
			return r.run(gctx)
		})
	}
	return g.Wait()
}

type runner struct {
	log  logging.Logger
	cli  *client.Client
	plan *Plan
	out  func(*Response)

	keys        map[string]solana.PrivateKey
	collections map[string]*client.Collection
	// Unburned compressed assets per player, oldest first.
	assets map[string][]*client.CompressedAsset
}

func newRunner(log logging.Logger, cli *client.Client, p *Plan, out func(*Response)) *runner {
	return &runner{
		log:         log,
		cli:         cli,
		plan:        p,
		out:         out,
		keys:        make(map[string]solana.PrivateKey),
		collections: make(map[string]*client.Collection),
		assets:      make(map[string][]*client.CompressedAsset),
	}
}

func (r *runner) run(ctx context.Context) error {
	r.log.Info("running plan",
		zap.String("plan", r.plan.Name),
		zap.String("description", r.plan.Description),
		zap.Int("steps", len(r.plan.Steps)),
	)
	for i := range r.plan.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		step := &r.plan.Steps[i]
		r.log.Debug("running step",
			zap.String("plan", r.plan.Name),
			zap.Int("step", i),
			zap.String("action", string(step.Action)),
			zap.String("description", step.Description),
		)
		resp := &Response{Plan: r.plan.Name, ID: i, Action: step.Action}
		err := r.step(ctx, step, &resp.Result)
		if err != nil {
			resp.Error = err.Error()
		}
		r.out(resp)
		if err := checkExpected(step.ExpectError, err); err != nil {
			return fmt.Errorf("plan %s step %d: %w", r.plan.Name, i, err)
		}
	}
	return nil
}

func (r *runner) step(ctx context.Context, s *Step, res *Result) error {
	if s.Action == ActionKey {
		if _, ok := r.keys[s.Key]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateKeyName, s.Key)
		}
		k, err := solana.NewRandomPrivateKey()
		if err != nil {
			return err
		}
		r.keys[s.Key] = k
		res.Address = k.PublicKey().String()
		res.Msg = fmt.Sprintf("created named key %s", s.Key)
		return nil
	}

	key, err := r.key(s.Key)
	if err != nil {
		return err
	}
	switch s.Action {
	case ActionAirdrop:
		if err := r.cli.Airdrop(ctx, key.PublicKey(), s.lamports()); err != nil {
			return err
		}
		res.Address = key.PublicKey().String()
		res.Balance, err = r.cli.Balance(ctx, key.PublicKey())
		return err
	case ActionInitialize:
		col, err := r.cli.InitializeCollection(ctx, key, client.InitializeParams{
			MaxDepth:      s.MaxDepth,
			MaxBufferSize: s.MaxBufferSize,
			CanopyDepth:   s.CanopyDepth,
			CNFT:          ovwigho.CollectionArgs{Name: s.Name, URI: s.URI},
			NFT:           ovwigho.CollectionArgs{Name: s.NFTName, URI: s.NFTURI},
			TreeSpace:     s.TreeSpace,
		})
		if err != nil {
			return err
		}
		r.collections[s.Key] = col
		res.Signature = col.Signature.String()
		res.Address = col.Config.String()
		res.Msg = fmt.Sprintf("tree %s", col.MerkleTree)
		return nil
	}

	col, err := r.collection(s.Authority)
	if err != nil {
		return err
	}
	switch s.Action {
	case ActionMintCNFT:
		a, err := r.cli.MintCNFT(ctx, key, col, ovwigho.MintCNFTArgs{Name: s.Name, URI: s.URI, Symbol: s.Symbol})
		if err != nil {
			return err
		}
		r.assets[s.Key] = append(r.assets[s.Key], a)
		res.Signature = a.Signature.String()
		res.Address = a.ID.String()
		res.Msg = fmt.Sprintf("nonce %d", a.Nonce)
		return nil
	case ActionBurnCNFT:
		owned := r.assets[s.Key]
		if len(owned) == 0 {
			return fmt.Errorf("%w: %s", ErrNoUnburnedAssets, s.Key)
		}
		sig, err := r.cli.BurnCNFT(ctx, key, col, owned[0])
		if err != nil {
			return err
		}
		r.assets[s.Key] = owned[1:]
		res.Signature = sig.String()
		res.Address = owned[0].ID.String()
		return nil
	case ActionMintNFT:
		asset, err := r.cli.MintNFT(ctx, key, col, nil, ovwigho.MintNFTArgs{Name: s.Name, URI: s.URI})
		if err != nil {
			return err
		}
		res.Address = asset.String()
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidAction, s.Action)
	}
}

func (r *runner) key(name string) (solana.PrivateKey, error) {
	k, ok := r.keys[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNamedKeyNotFound, name)
	}
	return k, nil
}

// collection returns the collection [authority] initialized earlier in this
// plan.
func (r *runner) collection(authority string) (*client.Collection, error) {
	if col, ok := r.collections[authority]; ok {
		return col, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, authority)
}

// checkExpected compares the outcome of a step with its expectation. An
// expectation matches a program error by name or any error by substring.
func checkExpected(expect string, err error) error {
	switch {
	case len(expect) == 0 && err == nil:
		return nil
	case len(expect) == 0:
		return fmt.Errorf("%w: %w", ErrUnexpectedError, err)
	case err == nil:
		return fmt.Errorf("%w: %s", ErrExpectedError, expect)
	}
	var custom *ledger.CustomError
	if errors.As(err, &custom) && custom.Name == expect {
		return nil
	}
	if strings.Contains(err.Error(), expect) {
		return nil
	}
	return fmt.Errorf("%w: want %s, got %w", ErrUnexpectedError, expect, err)
}
