// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

// Package client drives collections through a [ledger.Client]. It builds
// and signs transactions, derives the addresses every instruction needs and
// mirrors each compressed tree off chain so it can prove the leaves it
// burns.
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/amxrac/ovwigho/ledger"
	"github.com/amxrac/ovwigho/merkle"
	"github.com/amxrac/ovwigho/pda"
	"github.com/amxrac/ovwigho/programs/bubblegum"
	"github.com/amxrac/ovwigho/programs/compression"
	"github.com/amxrac/ovwigho/programs/core"
	"github.com/amxrac/ovwigho/programs/ovwigho"
)

type Client struct {
	log logging.Logger
	cli ledger.Client

	// l guards [trees] and serializes mints so nonces are read and used
	// in order.
	l     sync.Mutex
	trees map[solana.PublicKey]*merkle.Builder
}

func New(log logging.Logger, cli ledger.Client) *Client {
	return &Client{
		log:   log,
		cli:   cli,
		trees: make(map[solana.PublicKey]*merkle.Builder),
	}
}

// Ledger returns the ledger client transactions are sent through.
func (c *Client) Ledger() ledger.Client {
	return c.cli
}

// Airdrop funds [to] and waits for the transfer to commit.
func (c *Client) Airdrop(ctx context.Context, to solana.PublicKey, lamports uint64) error {
	sig, err := c.cli.RequestAirdrop(ctx, to, lamports)
	if err != nil {
		return err
	}
	c.log.Debug("airdropped",
		zap.Stringer("to", to),
		zap.Uint64("lamports", lamports),
		zap.Stringer("signature", sig),
	)
	return nil
}

// Balance returns the lamports held by [addr], zero when it does not exist.
func (c *Client) Balance(ctx context.Context, addr solana.PublicKey) (uint64, error) {
	a, err := c.cli.GetAccount(ctx, addr)
	if err != nil {
		if isNotFound(err) {
			return 0, nil
		}
		return 0, err
	}
	return a.Lamports, nil
}

func (c *Client) GetConfig(ctx context.Context, authority solana.PublicKey) (*ovwigho.Config, error) {
	addr, _, err := pda.ConfigAddress(authority)
	if err != nil {
		return nil, err
	}
	a, err := c.cli.GetAccount(ctx, addr)
	if err != nil {
		return nil, err
	}
	return ovwigho.UnmarshalConfig(a)
}

func (c *Client) GetPlayerProgress(ctx context.Context, player solana.PublicKey) (*ovwigho.PlayerProgress, error) {
	addr, _, err := pda.PlayerProgressAddress(player)
	if err != nil {
		return nil, err
	}
	a, err := c.cli.GetAccount(ctx, addr)
	if err != nil {
		return nil, err
	}
	return ovwigho.UnmarshalPlayerProgress(a)
}

func (c *Client) GetTreeConfig(ctx context.Context, tree solana.PublicKey) (*bubblegum.TreeConfig, error) {
	addr, _, err := pda.TreeConfigAddress(tree)
	if err != nil {
		return nil, err
	}
	a, err := c.cli.GetAccount(ctx, addr)
	if err != nil {
		return nil, err
	}
	return bubblegum.UnmarshalTreeConfig(a)
}

func (c *Client) GetTree(ctx context.Context, tree solana.PublicKey) (*merkle.Header, *merkle.Tree, error) {
	a, err := c.cli.GetAccount(ctx, tree)
	if err != nil {
		return nil, nil, err
	}
	return compression.LoadTree(a)
}

func (c *Client) GetCollection(ctx context.Context, addr solana.PublicKey) (*core.CollectionV1, error) {
	a, err := c.cli.GetAccount(ctx, addr)
	if err != nil {
		return nil, err
	}
	return core.UnmarshalCollection(a)
}

func (c *Client) GetAsset(ctx context.Context, addr solana.PublicKey) (*core.AssetV1, error) {
	a, err := c.cli.GetAccount(ctx, addr)
	if err != nil {
		return nil, err
	}
	return core.UnmarshalAsset(a)
}

// send signs [instructions] with [payer] first and every key in [signers],
// then submits them as one transaction.
func (c *Client) send(
	ctx context.Context,
	payer solana.PrivateKey,
	instructions []solana.Instruction,
	signers ...solana.PrivateKey,
) (solana.Signature, error) {
	hash, _, err := c.cli.GetLatestBlockhash(ctx)
	if err != nil {
		return solana.Signature{}, err
	}
	tx, err := solana.NewTransaction(instructions, hash, solana.TransactionPayer(payer.PublicKey()))
	if err != nil {
		return solana.Signature{}, err
	}
	keys := make(map[solana.PublicKey]*solana.PrivateKey, len(signers)+1)
	keys[payer.PublicKey()] = &payer
	for i := range signers {
		keys[signers[i].PublicKey()] = &signers[i]
	}
	if _, err := tx.Sign(func(pk solana.PublicKey) *solana.PrivateKey {
		return keys[pk]
	}); err != nil {
		return solana.Signature{}, fmt.Errorf("%w: failed to sign transaction", err)
	}
	return c.cli.SendTransaction(ctx, tx)
}

// builder returns the off chain mirror of [tree].
func (c *Client) builder(tree solana.PublicKey) (*merkle.Builder, error) {
	b, ok := c.trees[tree]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTree, tree)
	}
	return b, nil
}

// Track registers the mirror of a tree this client did not initialize.
// Assets minted into it before tracking began cannot be burned through
// this client.
func (c *Client) Track(tree solana.PublicKey, b *merkle.Builder) {
	c.l.Lock()
	defer c.l.Unlock()

	c.trees[tree] = b
}

func isNotFound(err error) bool {
	return errors.Is(err, ledger.ErrAccountNotFound)
}
