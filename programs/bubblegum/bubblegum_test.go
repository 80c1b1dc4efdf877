// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package bubblegum_test

import (
	"strings"
	"testing"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	solsystem "github.com/gagliardetto/solana-go/programs/system"

	"github.com/amxrac/ovwigho/consts"
	"github.com/amxrac/ovwigho/ledger"
	"github.com/amxrac/ovwigho/ledger/ledgertest"
	"github.com/amxrac/ovwigho/merkle"
	"github.com/amxrac/ovwigho/pda"
	"github.com/amxrac/ovwigho/programs/bubblegum"
	"github.com/amxrac/ovwigho/programs/compression"
	"github.com/amxrac/ovwigho/programs/core"
	"github.com/amxrac/ovwigho/programs/noop"
	"github.com/amxrac/ovwigho/programs/system"
)

const (
	maxDepth      = 3
	maxBufferSize = 8
)

type fixture struct {
	l          *ledger.Ledger
	authority  solana.PrivateKey
	player     solana.PrivateKey
	collection solana.PublicKey
	tree       solana.PublicKey
	treeConfig solana.PublicKey
	cpiSigner  solana.PublicKey
	mirror     *merkle.Builder
}

func newKey(t *testing.T) solana.PrivateKey {
	k, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return k
}

func newFixture(t *testing.T, public bool) *fixture {
	require := require.New(t)

	log := logging.NoLog{}
	l := ledgertest.New(t, compression.New(log), noop.New(), core.New(log), bubblegum.New(log))
	f := &fixture{
		l:         l,
		authority: ledgertest.Fund(t, l),
		player:    ledgertest.Fund(t, l),
		mirror:    merkle.NewBuilder(maxDepth),
	}
	f.collection = f.createCollection(t, true)

	tree := newKey(t)
	f.tree = tree.PublicKey()
	var err error
	f.treeConfig, _, err = pda.TreeConfigAddress(f.tree)
	require.NoError(err)
	f.cpiSigner, _, err = pda.CoreCPISignerAddress()
	require.NoError(err)

	require.NoError(f.createTree(t, tree, public))
	return f
}

func (f *fixture) createCollection(t *testing.T, compressed bool) solana.PublicKey {
	collection := newKey(t)
	_, err := ledgertest.Send(t, f.l, []solana.PrivateKey{f.authority, collection},
		core.NewCreateCollectionInstruction(collection.PublicKey(), f.authority.PublicKey(), f.authority.PublicKey(), core.CreateCollectionArgs{
			Name:        "test cNFT",
			BubblegumV2: compressed,
		}),
	)
	require.NoError(t, err)
	return collection.PublicKey()
}

func (f *fixture) createTree(t *testing.T, tree solana.PrivateKey, public bool) error {
	space, err := merkle.Size(maxDepth, maxBufferSize, 0)
	require.NoError(t, err)
	_, err = ledgertest.Send(t, f.l, []solana.PrivateKey{f.authority, tree},
		solsystem.NewCreateAccountInstruction(
			ledger.NewDefaultConfig().Rent.MinimumBalance(space),
			space,
			consts.CompressionProgramID,
			f.authority.PublicKey(),
			tree.PublicKey(),
		).Build(),
		bubblegum.NewCreateTreeConfigInstruction(bubblegum.CreateTreeConfigAccounts{
			TreeConfig:  f.treeConfig,
			MerkleTree:  tree.PublicKey(),
			Payer:       f.authority.PublicKey(),
			TreeCreator: f.authority.PublicKey(),
		}, bubblegum.CreateTreeConfigArgs{
			MaxDepth:      maxDepth,
			MaxBufferSize: maxBufferSize,
			Public:        public,
		}),
	)
	return err
}

func (f *fixture) metadata(name string) bubblegum.MetadataArgs {
	return bubblegum.MetadataArgs{
		Name:      name,
		Symbol:    "OVW",
		URI:       "https://example.com/" + name + ".json",
		IsMutable: true,
		Creators:  []bubblegum.Creator{},
	}
}

// mint mints [m] to the player with [creator] signing as tree authority.
func (f *fixture) mint(t *testing.T, creator solana.PrivateKey, collection solana.PublicKey, m bubblegum.MetadataArgs) error {
	_, err := ledgertest.Send(t, f.l, []solana.PrivateKey{f.player, creator, f.authority},
		bubblegum.NewMintInstruction(bubblegum.MintAccounts{
			TreeConfig:            f.treeConfig,
			Payer:                 f.player.PublicKey(),
			TreeCreatorOrDelegate: creator.PublicKey(),
			CollectionAuthority:   f.authority.PublicKey(),
			LeafOwner:             f.player.PublicKey(),
			LeafDelegate:          f.player.PublicKey(),
			MerkleTree:            f.tree,
			CoreCollection:        collection,
			CoreCPISigner:         f.cpiSigner,
		}, m),
	)
	if err != nil {
		return err
	}

	nonce := uint64(f.mirror.Len())
	id, _, err := pda.AssetAddress(f.tree, nonce)
	require.NoError(t, err)
	dataHash, err := bubblegum.DataHash(&m)
	require.NoError(t, err)
	leaf := &bubblegum.LeafSchema{
		ID:             id,
		Owner:          f.player.PublicKey(),
		Delegate:       f.player.PublicKey(),
		Nonce:          nonce,
		DataHash:       dataHash,
		CreatorHash:    bubblegum.CreatorHash(m.Creators),
		CollectionHash: bubblegum.CollectionHash(&f.collection),
		AssetDataHash:  merkle.EmptyNode,
	}
	_, err = f.mirror.Append(leaf.Hash())
	require.NoError(t, err)
	return nil
}

func (f *fixture) burn(t *testing.T, authority solana.PrivateKey, m bubblegum.MetadataArgs, index uint32) error {
	dataHash, err := bubblegum.DataHash(&m)
	require.NoError(t, err)
	proof, err := f.mirror.Proof(index)
	require.NoError(t, err)
	_, err = ledgertest.Send(t, f.l, []solana.PrivateKey{f.player, authority},
		bubblegum.NewBurnInstruction(bubblegum.BurnAccounts{
			TreeConfig:     f.treeConfig,
			Payer:          f.player.PublicKey(),
			Authority:      authority.PublicKey(),
			LeafOwner:      f.player.PublicKey(),
			LeafDelegate:   f.player.PublicKey(),
			MerkleTree:     f.tree,
			CoreCollection: f.collection,
			CoreCPISigner:  f.cpiSigner,
		}, bubblegum.BurnArgs{
			Root:          f.mirror.Root(),
			DataHash:      dataHash,
			CreatorHash:   bubblegum.CreatorHash(m.Creators),
			AssetDataHash: merkle.EmptyNode,
			Nonce:         uint64(index),
			Index:         index,
		}, proof),
	)
	if err != nil {
		return err
	}
	require.NoError(t, f.mirror.Set(index, merkle.EmptyNode))
	return nil
}

func (f *fixture) treeConfigState(t *testing.T) *bubblegum.TreeConfig {
	tc, err := bubblegum.UnmarshalTreeConfig(ledgertest.Account(t, f.l, f.treeConfig))
	require.NoError(t, err)
	return tc
}

func (f *fixture) root(t *testing.T) merkle.Node {
	_, tree, err := compression.LoadTree(ledgertest.Account(t, f.l, f.tree))
	require.NoError(t, err)
	return tree.Root()
}

func (f *fixture) collectionState(t *testing.T) *core.CollectionV1 {
	c, err := core.UnmarshalCollection(ledgertest.Account(t, f.l, f.collection))
	require.NoError(t, err)
	return c
}

func TestCreateTreeConfig(t *testing.T) {
	require := require.New(t)

	f := newFixture(t, false)
	tc := f.treeConfigState(t)
	require.Equal(f.authority.PublicKey(), tc.TreeCreator)
	require.Equal(f.authority.PublicKey(), tc.TreeDelegate)
	require.Equal(f.tree, tc.MerkleTree)
	require.Equal(uint64(1)<<maxDepth, tc.TotalMintCapacity)
	require.Zero(tc.NumMinted)
	require.False(tc.IsPublic)

	h, tree, err := compression.LoadTree(ledgertest.Account(t, f.l, f.tree))
	require.NoError(err)
	require.Equal(f.treeConfig, h.Authority)
	require.Equal(merkle.EmptyNodeAt(maxDepth), tree.Root())

	// A tree binds to one config.
	other := newKey(t)
	_, err = ledgertest.Send(t, f.l, []solana.PrivateKey{f.authority, other},
		bubblegum.NewCreateTreeConfigInstruction(bubblegum.CreateTreeConfigAccounts{
			TreeConfig:  f.treeConfig,
			MerkleTree:  f.tree,
			Payer:       f.authority.PublicKey(),
			TreeCreator: other.PublicKey(),
		}, bubblegum.CreateTreeConfigArgs{MaxDepth: maxDepth, MaxBufferSize: maxBufferSize}),
	)
	require.ErrorIs(err, system.ErrAccountAlreadyInUse)
	require.Equal(f.authority.PublicKey(), f.treeConfigState(t).TreeCreator)

	// The config address is derived from the tree.
	err = f.createTree(t, newKey(t), false)
	require.ErrorIs(err, ledger.ErrConstraintSeeds)
}

func TestMintAndBurn(t *testing.T) {
	require := require.New(t)

	f := newFixture(t, false)
	assets := make([]bubblegum.MetadataArgs, 3)
	for i := range assets {
		assets[i] = f.metadata(strings.Repeat("a", i+1))
		require.NoError(f.mint(t, f.authority, f.collection, assets[i]))
		require.Equal(f.mirror.Root(), f.root(t))
	}
	tc := f.treeConfigState(t)
	require.Equal(uint64(3), tc.NumMinted)
	require.Equal(uint64(3), tc.SequenceNumber)
	c := f.collectionState(t)
	require.Equal(uint32(3), c.NumMinted)
	require.Equal(uint32(3), c.CurrentSize)

	// The leaf owner burns.
	require.NoError(f.burn(t, f.player, assets[1], 1))
	require.Equal(f.mirror.Root(), f.root(t))
	tc = f.treeConfigState(t)
	require.Equal(uint64(3), tc.NumMinted)
	require.Equal(uint64(4), tc.SequenceNumber)
	c = f.collectionState(t)
	require.Equal(uint32(3), c.NumMinted)
	require.Equal(uint32(2), c.CurrentSize)

	// A burned leaf cannot be burned again.
	err := f.burn(t, f.player, assets[1], 1)
	require.ErrorIs(err, compression.ErrConcurrentMerkleTree)

	// A leaf only matches its own metadata.
	err = f.burn(t, f.player, assets[0], 2)
	require.ErrorIs(err, compression.ErrConcurrentMerkleTree)

	// Strangers cannot burn.
	stranger := newKey(t)
	err = f.burn(t, stranger, assets[0], 0)
	require.ErrorIs(err, bubblegum.ErrLeafAuthorityMustSign)

	// The collection update authority is a permanent burn delegate.
	require.NoError(f.burn(t, f.authority, assets[0], 0))
	require.Equal(uint32(1), f.collectionState(t).CurrentSize)
	require.Equal(f.mirror.Root(), f.root(t))
}

func TestMintRejections(t *testing.T) {
	f := newFixture(t, false)
	standard := f.createCollection(t, false)

	tests := []struct {
		name       string
		creator    func(t *testing.T) solana.PrivateKey
		collection solana.PublicKey
		metadata   bubblegum.MetadataArgs
		wantErr    error
	}{
		{
			name:       "name too long",
			creator:    func(*testing.T) solana.PrivateKey { return f.authority },
			collection: f.collection,
			metadata:   f.metadata(strings.Repeat("n", bubblegum.MaxNameLen+1)),
			wantErr:    bubblegum.ErrMetadataNameTooLong,
		},
		{
			name:       "symbol too long",
			creator:    func(*testing.T) solana.PrivateKey { return f.authority },
			collection: f.collection,
			metadata: bubblegum.MetadataArgs{
				Name:   "cnft",
				Symbol: strings.Repeat("s", bubblegum.MaxSymbolLen+1),
			},
			wantErr: bubblegum.ErrMetadataSymbolTooLong,
		},
		{
			name:       "private tree",
			creator:    newKey,
			collection: f.collection,
			metadata:   f.metadata("cnft"),
			wantErr:    bubblegum.ErrTreeAuthorityIncorrect,
		},
		{
			name:       "collection without compression",
			creator:    func(*testing.T) solana.PrivateKey { return f.authority },
			collection: standard,
			metadata:   f.metadata("cnft"),
			wantErr:    bubblegum.ErrInvalidCoreCollection,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			err := f.mint(t, tt.creator(t), tt.collection, tt.metadata)
			require.ErrorIs(err, tt.wantErr)
			require.Zero(f.treeConfigState(t).NumMinted)
			require.Equal(merkle.EmptyNodeAt(maxDepth), f.root(t))
		})
	}
}

func TestPublicTreeCapacity(t *testing.T) {
	require := require.New(t)

	f := newFixture(t, true)
	anyone := newKey(t)
	for i := 0; i < 1<<maxDepth; i++ {
		require.NoError(f.mint(t, anyone, f.collection, f.metadata("cnft")))
	}
	require.Equal(f.mirror.Root(), f.root(t))

	err := f.mint(t, anyone, f.collection, f.metadata("cnft"))
	require.ErrorIs(err, bubblegum.ErrInsufficientMintCapacity)
}

func TestMintCollectionField(t *testing.T) {
	f := newFixture(t, false)
	other := newKey(t).PublicKey()

	tests := []struct {
		name       string
		collection *solana.PublicKey
		wantErr    error
	}{
		{name: "absent"},
		{name: "matching", collection: &f.collection},
		{name: "mismatched", collection: &other, wantErr: bubblegum.ErrCollectionMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			m := f.metadata("cnft")
			m.Collection = tt.collection
			minted := f.treeConfigState(t).NumMinted
			err := f.mint(t, f.authority, f.collection, m)
			require.ErrorIs(err, tt.wantErr)
			if tt.wantErr != nil {
				require.Equal(minted, f.treeConfigState(t).NumMinted)
			} else {
				require.Equal(minted+1, f.treeConfigState(t).NumMinted)
			}
			require.Equal(f.mirror.Root(), f.root(t))
		})
	}
}
