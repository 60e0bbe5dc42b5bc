package chainmock

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	operator = common.HexToAddress("0x000000000000000000000000000000000000dEaD")
	alice    = common.HexToAddress("0xAaAaAaAaaAaAaAaAaAaaAAAAAaaaAaaaaAaAaAa1")
	bob      = common.HexToAddress("0xBbBBBBbbBBBbbbBbbBbbbbBBbBbbbbBbBbbBBbB2")
	nft      = common.HexToAddress("0x1111111111111111111111111111111111111111")
	token    = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func TestNFTTransfer(t *testing.T) {
	m := New(operator)
	ctx := context.Background()

	_, err := m.OwnerOf(ctx, nft, big.NewInt(1))
	assert.ErrorIs(t, err, ErrTokenNotExist)

	m.Mint(nft, alice, big.NewInt(1))
	owner, err := m.OwnerOf(ctx, nft, big.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, alice, owner)

	// 未授权不能转
	err = m.TransferNFT(ctx, nft, alice, bob, big.NewInt(1))
	assert.ErrorIs(t, err, ErrNotApproved)

	// from 不是持有人不能转
	m.SetApprovalForAll(nft, bob, true)
	err = m.TransferNFT(ctx, nft, bob, alice, big.NewInt(1))
	assert.ErrorIs(t, err, ErrNotOwner)

	m.SetApprovalForAll(nft, alice, true)
	require.NoError(t, m.TransferNFT(ctx, nft, alice, bob, big.NewInt(1)))
	owner, err = m.OwnerOf(ctx, nft, big.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, bob, owner)
}

func TestERC20Transfer(t *testing.T) {
	m := New(operator)
	ctx := context.Background()

	m.FundERC20(token, alice, big.NewInt(100))

	// 余额够但额度不足
	err := m.TransferERC20(ctx, token, alice, bob, big.NewInt(50))
	assert.ErrorIs(t, err, ErrInsufficientAllowance)

	m.Approve(token, alice, big.NewInt(60))
	require.NoError(t, m.TransferERC20(ctx, token, alice, bob, big.NewInt(50)))

	aliceBal, _ := m.BalanceOf(ctx, token, alice)
	bobBal, _ := m.BalanceOf(ctx, token, bob)
	assert.Equal(t, big.NewInt(50), aliceBal)
	assert.Equal(t, big.NewInt(50), bobBal)

	// 额度按转账额扣减: 剩余 10, 再转 50 失败
	err = m.TransferERC20(ctx, token, alice, bob, big.NewInt(50))
	assert.ErrorIs(t, err, ErrInsufficientAllowance)

	// 余额不足
	m.Approve(token, alice, big.NewInt(1000))
	err = m.TransferERC20(ctx, token, alice, bob, big.NewInt(51))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestNativeTransfer(t *testing.T) {
	m := New(operator)
	ctx := context.Background()

	m.FundNative(alice, big.NewInt(100))
	require.NoError(t, m.TransferNative(ctx, alice, bob, big.NewInt(30)))

	aliceBal, _ := m.NativeBalance(ctx, alice)
	bobBal, _ := m.NativeBalance(ctx, bob)
	assert.Equal(t, big.NewInt(70), aliceBal)
	assert.Equal(t, big.NewInt(30), bobBal)

	err := m.TransferNative(ctx, alice, bob, big.NewInt(71))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestApprovalQueries(t *testing.T) {
	m := New(operator)
	ctx := context.Background()

	approved, err := m.IsApprovedForAll(ctx, nft, alice)
	require.NoError(t, err)
	assert.False(t, approved)

	m.SetApprovalForAll(nft, alice, true)
	approved, err = m.IsApprovedForAll(ctx, nft, alice)
	require.NoError(t, err)
	assert.True(t, approved)

	// 撤销授权后查询结果同步
	m.SetApprovalForAll(nft, alice, false)
	approved, err = m.IsApprovedForAll(ctx, nft, alice)
	require.NoError(t, err)
	assert.False(t, approved)
}

func TestAllowanceQuery(t *testing.T) {
	m := New(operator)
	ctx := context.Background()

	allowance, err := m.Allowance(ctx, token, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(0), allowance.Int64())

	m.Approve(token, alice, big.NewInt(60))
	m.FundERC20(token, alice, big.NewInt(100))
	require.NoError(t, m.TransferERC20(ctx, token, alice, bob, big.NewInt(50)))

	// 额度随转账扣减
	allowance, err = m.Allowance(ctx, token, alice)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(10), allowance)
}
