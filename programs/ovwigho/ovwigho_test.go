// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package ovwigho_test

import (
	"context"
	"strings"
	"testing"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	solsystem "github.com/gagliardetto/solana-go/programs/system"

	"github.com/amxrac/ovwigho/consts"
	"github.com/amxrac/ovwigho/ledger"
	"github.com/amxrac/ovwigho/ledger/ledgertest"
	"github.com/amxrac/ovwigho/merkle"
	"github.com/amxrac/ovwigho/metadata"
	"github.com/amxrac/ovwigho/pda"
	"github.com/amxrac/ovwigho/programs/bubblegum"
	"github.com/amxrac/ovwigho/programs/compression"
	"github.com/amxrac/ovwigho/programs/core"
	"github.com/amxrac/ovwigho/programs/noop"
	"github.com/amxrac/ovwigho/programs/ovwigho"
)

var (
	cnftArgs = ovwigho.CollectionArgs{Name: "test cNFT", URI: "https://example.com/cnft.json"}
	nftArgs  = ovwigho.CollectionArgs{Name: "test NFT", URI: "https://example.com/nft.json"}
	rent     = ledger.NewDefaultConfig().Rent
)

func newLedger(t *testing.T) *ledger.Ledger {
	log := logging.NoLog{}
	return ledgertest.New(t,
		noop.New(),
		compression.New(log),
		core.New(log),
		bubblegum.New(log),
		ovwigho.New(log),
	)
}

func newKey(t *testing.T) solana.PrivateKey {
	k, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return k
}

type params struct {
	maxDepth      uint32
	maxBufferSize uint32
	canopyDepth   uint32
	// space overrides the tree size derived from the other parameters
	space     uint64
	treeOwner solana.PublicKey
	skipAlloc bool
	cnft      ovwigho.CollectionArgs
	nft       ovwigho.CollectionArgs
}

func defaultParams() params {
	return params{
		maxDepth:      3,
		maxBufferSize: 8,
		treeOwner:     consts.CompressionProgramID,
		cnft:          cnftArgs,
		nft:           nftArgs,
	}
}

type collection struct {
	authority solana.PrivateKey
	tree      solana.PrivateKey
	cnft      solana.PrivateKey
	nft       solana.PrivateKey
	accs      ovwigho.InitializeAccounts
}

func newCollection(t *testing.T, authority solana.PrivateKey) *collection {
	c := &collection{authority: authority, tree: newKey(t), cnft: newKey(t), nft: newKey(t)}
	var err error
	c.accs, err = ovwigho.NewInitializeAccounts(authority.PublicKey(), c.cnft.PublicKey(), c.nft.PublicKey(), c.tree.PublicKey())
	require.NoError(t, err)
	return c
}

// tx allocates the tree described by [p] and initializes [c] in one
// transaction.
func (c *collection) tx(t *testing.T, l *ledger.Ledger, p params) *solana.Transaction {
	t.Helper()

	space := p.space
	if space == 0 {
		var err error
		space, err = merkle.Size(p.maxDepth, p.maxBufferSize, p.canopyDepth)
		require.NoError(t, err)
	}
	var ixs []solana.Instruction
	if !p.skipAlloc {
		ixs = append(ixs, solsystem.NewCreateAccountInstruction(
			rent.MinimumBalance(space),
			space,
			p.treeOwner,
			c.authority.PublicKey(),
			c.tree.PublicKey(),
		).Build())
	}
	ixs = append(ixs, ovwigho.NewInitializeInstruction(c.accs, ovwigho.InitializeArgs{
		MaxDepth:      p.maxDepth,
		MaxBufferSize: p.maxBufferSize,
		CNFTArgs:      p.cnft,
		NFTArgs:       p.nft,
	}))
	hash, _, err := l.GetLatestBlockhash(context.Background())
	require.NoError(t, err)
	return ledgertest.Tx(t, hash, []solana.PrivateKey{c.authority, c.tree, c.cnft, c.nft}, ixs...)
}

func (c *collection) initialize(t *testing.T, l *ledger.Ledger, p params) error {
	_, err := l.SendTransaction(context.Background(), c.tx(t, l, p))
	return err
}

func loadConfig(t *testing.T, l *ledger.Ledger, authority solana.PublicKey) *ovwigho.Config {
	t.Helper()

	addr, _, err := pda.ConfigAddress(authority)
	require.NoError(t, err)
	a := ledgertest.Account(t, l, addr)
	require.NotNil(t, a)
	c, err := ovwigho.UnmarshalConfig(a)
	require.NoError(t, err)
	return c
}

func TestInitialize(t *testing.T) {
	require := require.New(t)

	l := newLedger(t)
	c := newCollection(t, ledgertest.Fund(t, l))
	p := defaultParams()
	p.maxDepth, p.maxBufferSize, p.canopyDepth = 14, 64, 9
	require.NoError(c.initialize(t, l, p))

	cfg := loadConfig(t, l, c.authority.PublicKey())
	require.Equal(c.authority.PublicKey(), cfg.Authority)
	require.Equal(c.cnft.PublicKey(), cfg.CNFTCollection)
	require.Equal(c.nft.PublicKey(), cfg.NFTCollection)
	require.Equal(c.tree.PublicKey(), cfg.MerkleTree)
	require.Equal(c.accs.TreeConfig, cfg.TreeConfig)
	require.Equal(uint32(14), cfg.MaxDepth)
	require.Equal(uint32(64), cfg.MaxBufferSize)
	require.Equal(cnftArgs, cfg.CNFTMetadata)
	require.Equal(nftArgs, cfg.NFTMetadata)
	require.Zero(cfg.TotalCNFTsMinted)
	require.Zero(cfg.TotalNFTsMinted)

	_, bump, err := pda.ConfigAddress(c.authority.PublicKey())
	require.NoError(err)
	require.Equal(bump, cfg.Bump)

	// Every created account is rent exempt.
	for _, pk := range []solana.PublicKey{c.accs.Config, c.accs.TreeConfig, c.tree.PublicKey(), c.cnft.PublicKey(), c.nft.PublicKey()} {
		a := ledgertest.Account(t, l, pk)
		require.NotNil(a, pk.String())
		require.True(rent.IsExempt(a.Lamports, uint64(len(a.Data))), pk.String())
	}
	require.Len(ledgertest.Account(t, l, c.accs.Config).Data, int(cfg.Len()))

	// The tree config is owned by the collection config.
	tc, err := bubblegum.UnmarshalTreeConfig(ledgertest.Account(t, l, c.accs.TreeConfig))
	require.NoError(err)
	require.Equal(c.accs.Config, tc.TreeCreator)
	require.Equal(c.tree.PublicKey(), tc.MerkleTree)
	require.Equal(uint64(1)<<14, tc.TotalMintCapacity)
	require.Zero(tc.NumMinted)
	require.Zero(tc.SequenceNumber)

	h, tree, err := compression.LoadTree(ledgertest.Account(t, l, c.tree.PublicKey()))
	require.NoError(err)
	require.Equal(c.accs.TreeConfig, h.Authority)
	require.Equal(uint32(9), tree.CanopyDepth())
	require.Equal(merkle.EmptyNodeAt(14), tree.Root())
	require.Zero(tree.SequenceNumber)

	for _, tt := range []struct {
		pk         solana.PublicKey
		args       ovwigho.CollectionArgs
		compressed bool
	}{
		{c.cnft.PublicKey(), cnftArgs, true},
		{c.nft.PublicKey(), nftArgs, false},
	} {
		col, err := core.UnmarshalCollection(ledgertest.Account(t, l, tt.pk))
		require.NoError(err)
		require.Equal(c.accs.Config, col.UpdateAuthority)
		require.Equal(tt.args.Name, col.Name)
		require.Equal(tt.args.URI, col.URI)
		require.Equal(tt.compressed, col.HasBubblegumV2())
	}
}

func TestInitializeRejections(t *testing.T) {
	size := func(maxDepth, maxBufferSize, canopyDepth uint32) uint64 {
		s, err := merkle.Size(maxDepth, maxBufferSize, canopyDepth)
		require.NoError(t, err)
		return s
	}
	tests := []struct {
		name    string
		params  func(p *params)
		wantErr error
	}{
		{
			name:    "empty cNFT name",
			params:  func(p *params) { p.cnft.Name = "" },
			wantErr: ovwigho.ErrInvalidMetadata,
		},
		{
			name:    "empty cNFT uri",
			params:  func(p *params) { p.cnft.URI = "" },
			wantErr: metadata.ErrEmptyURI,
		},
		{
			name:    "empty NFT uri",
			params:  func(p *params) { p.nft.URI = "" },
			wantErr: ovwigho.ErrInvalidMetadata,
		},
		{
			name:    "NFT name too long",
			params:  func(p *params) { p.nft.Name = strings.Repeat("n", metadata.MaxNameLen+1) },
			wantErr: ovwigho.ErrInvalidMetadata,
		},
		{
			name: "unsupported pair",
			params: func(p *params) {
				p.maxDepth, p.maxBufferSize = 14, 63
				p.space = size(14, 64, 0)
			},
			wantErr: ovwigho.ErrUnsupportedTreeParameters,
		},
		{
			name:    "undersized tree",
			params:  func(p *params) { p.space = size(3, 8, 0) - consts.NodeLen },
			wantErr: ovwigho.ErrTreeSizeMismatch,
		},
		{
			name:    "partial canopy",
			params:  func(p *params) { p.space = size(3, 8, 0) + consts.NodeLen },
			wantErr: ovwigho.ErrTreeSizeMismatch,
		},
		{
			name:    "sized for another pair",
			params:  func(p *params) { p.space = size(5, 8, 0) },
			wantErr: ovwigho.ErrTreeSizeMismatch,
		},
		{
			name:    "tree not allocated",
			params:  func(p *params) { p.skipAlloc = true },
			wantErr: ovwigho.ErrTreeNotPreallocated,
		},
		{
			name:    "tree owned by another program",
			params:  func(p *params) { p.treeOwner = consts.SystemProgramID },
			wantErr: ovwigho.ErrTreeNotPreallocated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			l := newLedger(t)
			c := newCollection(t, ledgertest.Fund(t, l))
			p := defaultParams()
			tt.params(&p)

			before := ledgertest.Balance(t, l, c.authority.PublicKey())
			err := c.initialize(t, l, p)
			require.ErrorIs(err, tt.wantErr)

			// Nothing is left behind, not even the tree allocation.
			for _, pk := range []solana.PublicKey{c.accs.Config, c.accs.TreeConfig, c.tree.PublicKey(), c.cnft.PublicKey(), c.nft.PublicKey()} {
				require.Nil(ledgertest.Account(t, l, pk), pk.String())
			}
			require.Equal(before, ledgertest.Balance(t, l, c.authority.PublicKey()))
		})
	}
}

func TestInitializeWrongConfig(t *testing.T) {
	require := require.New(t)

	l := newLedger(t)
	c := newCollection(t, ledgertest.Fund(t, l))
	other, _, err := pda.ConfigAddress(solana.NewWallet().PublicKey())
	require.NoError(err)
	c.accs.Config = other
	require.ErrorIs(c.initialize(t, l, defaultParams()), ledger.ErrConstraintSeeds)
}

func TestInitializeTwice(t *testing.T) {
	require := require.New(t)

	l := newLedger(t)
	authority := ledgertest.Fund(t, l)
	first := newCollection(t, authority)
	require.NoError(first.initialize(t, l, defaultParams()))

	config := ledgertest.Account(t, l, first.accs.Config)
	balance := ledgertest.Balance(t, l, authority.PublicKey())
	slot := l.Slot()

	second := newCollection(t, authority)
	err := second.initialize(t, l, defaultParams())
	require.ErrorIs(err, ovwigho.ErrAlreadyInitialized)

	require.Equal(config, ledgertest.Account(t, l, first.accs.Config))
	require.Equal(balance, ledgertest.Balance(t, l, authority.PublicKey()))
	require.Equal(slot, l.Slot())
	require.Nil(ledgertest.Account(t, l, second.tree.PublicKey()))
	require.Nil(ledgertest.Account(t, l, second.cnft.PublicKey()))
}

func TestInitializeRejectsBoundTree(t *testing.T) {
	require := require.New(t)

	l := newLedger(t)
	c := newCollection(t, ledgertest.Fund(t, l))
	space, err := merkle.Size(3, 8, 0)
	require.NoError(err)

	// Initialize the tree directly so no tree config exists for it.
	_, err = ledgertest.Send(t, l, []solana.PrivateKey{c.authority, c.tree},
		solsystem.NewCreateAccountInstruction(rent.MinimumBalance(space), space, consts.CompressionProgramID, c.authority.PublicKey(), c.tree.PublicKey()).Build(),
		compression.NewInitEmptyMerkleTreeInstruction(c.tree.PublicKey(), c.authority.PublicKey(), 3, 8),
	)
	require.NoError(err)

	p := defaultParams()
	p.skipAlloc = true
	require.ErrorIs(c.initialize(t, l, p), ovwigho.ErrTreeAlreadyBound)
	require.Nil(ledgertest.Account(t, l, c.accs.Config))
}

func TestInitializeInsufficientFunds(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	l := newLedger(t)
	authority := newKey(t)
	space, err := merkle.Size(3, 8, 0)
	require.NoError(err)

	// Enough for the tree and the fees, short of the tree config rent.
	fees := 4 * uint64(ledger.DefaultLamportsPerSignature)
	_, err = l.RequestAirdrop(ctx, authority.PublicKey(), rent.MinimumBalance(space)+fees+rent.MinimumBalance(bubblegum.TreeConfigLen)/2)
	require.NoError(err)

	c := newCollection(t, authority)
	require.ErrorIs(c.initialize(t, l, defaultParams()), ovwigho.ErrInsufficientFunds)
	require.Nil(ledgertest.Account(t, l, c.tree.PublicKey()))
}

func TestInitializeRemainingBalance(t *testing.T) {
	space, err := merkle.Size(3, 8, 0)
	require.NoError(t, err)
	cfg := &ovwigho.Config{CNFTMetadata: cnftArgs, NFTMetadata: nftArgs}
	var need uint64
	for _, size := range []uint64{
		bubblegum.TreeConfigLen,
		core.CollectionLen(cnftArgs.Name, cnftArgs.URI),
		core.CollectionLen(nftArgs.Name, nftArgs.URI),
		cfg.Len(),
	} {
		need += rent.MinimumBalance(size)
	}

	tests := []struct {
		name    string
		extra   uint64
		wantErr error
	}{
		{name: "drained"},
		{name: "below rent exemption", extra: 1, wantErr: ovwigho.ErrInsufficientFunds},
		{name: "rent exempt", extra: rent.MinimumBalance(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			ctx := context.Background()

			l := newLedger(t)
			authority := newKey(t)
			fees := 4 * uint64(ledger.DefaultLamportsPerSignature)
			_, err := l.RequestAirdrop(ctx, authority.PublicKey(), rent.MinimumBalance(space)+fees+need+tt.extra)
			require.NoError(err)

			c := newCollection(t, authority)
			err = c.initialize(t, l, defaultParams())
			require.ErrorIs(err, tt.wantErr)
			if tt.wantErr != nil {
				require.Nil(ledgertest.Account(t, l, c.tree.PublicKey()))
				return
			}
			a := ledgertest.Account(t, l, authority.PublicKey())
			var lamports uint64
			if a != nil {
				lamports = a.Lamports
			}
			require.Equal(tt.extra, lamports)
		})
	}
}

func TestInitializePrefundedConfig(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	l := newLedger(t)
	c := newCollection(t, ledgertest.Fund(t, l))
	_, err := l.RequestAirdrop(ctx, c.accs.Config, rent.MinimumBalance(0))
	require.NoError(err)

	require.NoError(c.initialize(t, l, defaultParams()))
	a := ledgertest.Account(t, l, c.accs.Config)
	require.Equal(consts.OvwighoProgramID, a.Owner)
	require.Equal(rent.MinimumBalance(uint64(len(a.Data))), a.Lamports)
	require.Equal(c.authority.PublicKey(), loadConfig(t, l, c.authority.PublicKey()).Authority)
}

func TestDistinctAuthorities(t *testing.T) {
	require := require.New(t)

	l := newLedger(t)
	a := newCollection(t, ledgertest.Fund(t, l))
	b := newCollection(t, ledgertest.Fund(t, l))
	require.NoError(a.initialize(t, l, defaultParams()))
	require.NoError(b.initialize(t, l, defaultParams()))

	require.NotEqual(a.accs.Config, b.accs.Config)
	ca, cb := loadConfig(t, l, a.authority.PublicKey()), loadConfig(t, l, b.authority.PublicKey())
	require.Equal(a.tree.PublicKey(), ca.MerkleTree)
	require.Equal(b.tree.PublicKey(), cb.MerkleTree)
	require.NotEqual(ca.CNFTCollection, cb.CNFTCollection)
}

func TestConcurrentInitialize(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	const (
		racers      = 4
		authorities = 3
	)
	l := newLedger(t)
	shared := ledgertest.Fund(t, l)

	// Transactions are signed up front so the goroutines only submit.
	var txs []*solana.Transaction
	for i := 0; i < racers; i++ {
		txs = append(txs, newCollection(t, shared).tx(t, l, defaultParams()))
	}
	for i := 0; i < authorities; i++ {
		txs = append(txs, newCollection(t, ledgertest.Fund(t, l)).tx(t, l, defaultParams()))
	}

	errs := make([]error, len(txs))
	var g errgroup.Group
	for i, tx := range txs {
		i, tx := i, tx
		g.Go(func() error {
			_, errs[i] = l.SendTransaction(ctx, tx)
			return nil
		})
	}
	require.NoError(g.Wait())

	var won int
	for _, err := range errs[:racers] {
		if err == nil {
			won++
			continue
		}
		require.ErrorIs(err, ovwigho.ErrAlreadyInitialized)
	}
	require.Equal(1, won)
	for _, err := range errs[racers:] {
		require.NoError(err)
	}
}

func TestMintCNFT(t *testing.T) {
	l := newLedger(t)
	c := newCollection(t, ledgertest.Fund(t, l))
	require.NoError(t, c.initialize(t, l, defaultParams()))
	other := newCollection(t, ledgertest.Fund(t, l))
	require.NoError(t, other.initialize(t, l, defaultParams()))
	player := ledgertest.Fund(t, l)

	mintArgs := ovwigho.MintCNFTArgs{Name: "cNFT", URI: "https://example.com/0.json", Symbol: "OVW"}
	tests := []struct {
		name      string
		authority solana.PublicKey
		tree      solana.PublicKey
		args      ovwigho.MintCNFTArgs
		wantErr   error
	}{
		{
			name:      "minted",
			authority: c.authority.PublicKey(),
			tree:      c.tree.PublicKey(),
			args:      mintArgs,
		},
		{
			name:      "tree of another authority",
			authority: c.authority.PublicKey(),
			tree:      other.tree.PublicKey(),
			args:      mintArgs,
			wantErr:   ledger.ErrConstraintAddress,
		},
		{
			name:      "empty name",
			authority: c.authority.PublicKey(),
			tree:      c.tree.PublicKey(),
			args:      ovwigho.MintCNFTArgs{URI: mintArgs.URI},
			wantErr:   ovwigho.ErrInvalidMetadata,
		},
		{
			name:      "symbol too long",
			authority: c.authority.PublicKey(),
			tree:      c.tree.PublicKey(),
			args:      ovwigho.MintCNFTArgs{Name: "cNFT", URI: mintArgs.URI, Symbol: strings.Repeat("s", metadata.MaxSymbolLen+1)},
			wantErr:   ovwigho.ErrInvalidMetadata,
		},
		{
			name:      "authority without collection",
			authority: solana.NewWallet().PublicKey(),
			tree:      c.tree.PublicKey(),
			args:      mintArgs,
			wantErr:   ledger.ErrAccountNotInitialized,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			before := loadConfig(t, l, c.authority.PublicKey()).TotalCNFTsMinted
			accs, err := ovwigho.NewCompressedAccounts(player.PublicKey(), tt.authority, c.cnft.PublicKey(), tt.tree)
			require.NoError(err)
			_, err = ledgertest.Send(t, l, []solana.PrivateKey{player}, ovwigho.NewMintCNFTInstruction(accs, tt.args))
			require.ErrorIs(err, tt.wantErr)

			want := before
			if tt.wantErr == nil {
				want++
			}
			require.Equal(want, loadConfig(t, l, c.authority.PublicKey()).TotalCNFTsMinted)
			tc, err := bubblegum.UnmarshalTreeConfig(ledgertest.Account(t, l, c.accs.TreeConfig))
			require.NoError(err)
			require.Equal(uint64(want), tc.NumMinted)
		})
	}
}

func TestMintNFTWithoutProgress(t *testing.T) {
	require := require.New(t)

	l := newLedger(t)
	c := newCollection(t, ledgertest.Fund(t, l))
	require.NoError(c.initialize(t, l, defaultParams()))
	player := ledgertest.Fund(t, l)
	asset := newKey(t)

	ix, err := ovwigho.NewMintNFTInstruction(player.PublicKey(), c.authority.PublicKey(), c.nft.PublicKey(), asset.PublicKey(), ovwigho.MintNFTArgs{
		Name: "reward",
		URI:  "https://example.com/reward.json",
	})
	require.NoError(err)
	_, err = ledgertest.Send(t, l, []solana.PrivateKey{player, asset}, ix)
	require.ErrorIs(err, ledger.ErrAccountNotInitialized)
	require.Nil(ledgertest.Account(t, l, asset.PublicKey()))
}
