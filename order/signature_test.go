package order

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySignatureRoundtrip(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signer := crypto.PubkeyToAddress(key.PublicKey)

	digest := HashListing(testDomain(), testListing())
	sig, err := SignDigest(digest, key)
	require.NoError(t, err)
	assert.Contains(t, []uint8{27, 28}, sig.V)

	require.NoError(t, VerifySignature(digest, sig, signer))
}

func TestVerifySignatureWrongSigner(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	digest := HashListing(testDomain(), testListing())
	sig, err := SignDigest(digest, key)
	require.NoError(t, err)

	other := common.HexToAddress("0x7777777777777777777777777777777777777777")
	err = VerifySignature(digest, sig, other)
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestVerifySignatureTamperedDigest(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signer := crypto.PubkeyToAddress(key.PublicKey)

	d := testDomain()
	sig, err := SignDigest(HashListing(d, testListing()), key)
	require.NoError(t, err)

	// 篡改订单字段后重算摘要, 签名恢复出的地址不再是签名人
	tampered := testListing()
	tampered.Amount = big.NewInt(1)
	err = VerifySignature(HashListing(d, tampered), sig, signer)
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestVerifySignatureZeroSigner(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	digest := HashListing(testDomain(), testListing())
	sig, err := SignDigest(digest, key)
	require.NoError(t, err)

	err = VerifySignature(digest, sig, common.Address{})
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestVerifySignatureBadRecoveryID(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signer := crypto.PubkeyToAddress(key.PublicKey)

	digest := HashListing(testDomain(), testListing())
	sig, err := SignDigest(digest, key)
	require.NoError(t, err)

	for _, v := range []uint8{0, 1, 26, 29, 255} {
		bad := sig
		bad.V = v
		err = VerifySignature(digest, bad, signer)
		assert.ErrorIs(t, err, ErrSignatureInvalid, "v=%d", v)
	}
}

func TestVerifySignatureHighS(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signer := crypto.PubkeyToAddress(key.PublicKey)

	digest := HashListing(testDomain(), testListing())
	sig, err := SignDigest(digest, key)
	require.NoError(t, err)

	// 构造可延展的镜像签名: s' = N - s, v 翻转
	// 在链上这是同一订单的另一个 "合法" 签名, 这里必须拒绝
	n := crypto.S256().Params().N
	s := new(big.Int).SetBytes(sig.S[:])
	mirrored := new(big.Int).Sub(n, s)

	var high Signature
	high.R = sig.R
	mirrored.FillBytes(high.S[:])
	if sig.V == 27 {
		high.V = 28
	} else {
		high.V = 27
	}

	err = VerifySignature(digest, high, signer)
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestVerifySignatureZeroValues(t *testing.T) {
	digest := HashListing(testDomain(), testListing())
	signer := common.HexToAddress("0x7777777777777777777777777777777777777777")

	err := VerifySignature(digest, Signature{V: 27}, signer)
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}
