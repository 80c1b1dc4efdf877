// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package ed25519

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignVerify(t *testing.T) {
	require := require.New(t)

	priv, err := GeneratePrivateKey()
	require.NoError(err)
	msg := []byte("initialize")

	sig, err := Sign(msg, priv)
	require.NoError(err)
	require.True(Verify(msg, priv.PublicKey(), sig))
	require.False(Verify([]byte("initialise"), priv.PublicKey(), sig))

	other, err := GeneratePrivateKey()
	require.NoError(err)
	require.False(Verify(msg, other.PublicKey(), sig))
}

func TestSignInvalidKey(t *testing.T) {
	_, err := Sign([]byte("msg"), []byte{1, 2, 3})
	require.ErrorIs(t, err, ErrInvalidPrivateKey)
}

func TestBatch(t *testing.T) {
	require := require.New(t)

	b := NewBatch(MinBatchSize)
	for i := 0; i < MinBatchSize; i++ {
		priv, err := GeneratePrivateKey()
		require.NoError(err)
		msg := []byte{byte(i)}
		sig, err := Sign(msg, priv)
		require.NoError(err)
		b.Add(msg, priv.PublicKey(), sig)
	}
	require.NoError(b.VerifyAsync()())

	priv, err := GeneratePrivateKey()
	require.NoError(err)
	b.Add([]byte("a"), priv.PublicKey(), EmptySignature)
	require.ErrorIs(b.VerifyAsync()(), ErrInvalidSignature)
}
