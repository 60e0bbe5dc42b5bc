package chainclient

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ChainClient 结算引擎依赖的链上资产操作窄接口
// 引擎只通过这些方法触达外部的 NFT / ERC-20 / 原生币合约,
// 转账失败即整笔结算失败, 由调用方负责中止
type ChainClient interface {
	// OwnerOf 查询 NFT 当前持有人
	OwnerOf(ctx context.Context, collection common.Address, tokenID *big.Int) (common.Address, error)
	// IsApprovedForAll 查询持有人是否已授权市场操作其该集合的全部 NFT
	IsApprovedForAll(ctx context.Context, collection, owner common.Address) (bool, error)
	// TransferNFT 转移 NFT, 要求 from 已将操作权限授予市场
	TransferNFT(ctx context.Context, collection, from, to common.Address, tokenID *big.Int) error

	// BalanceOf 查询 ERC-20 余额
	BalanceOf(ctx context.Context, currency, owner common.Address) (*big.Int, error)
	// Allowance 查询持有人授权给市场的 ERC-20 划转额度
	Allowance(ctx context.Context, currency, owner common.Address) (*big.Int, error)
	// TransferERC20 以市场为 spender 执行 transferFrom
	// 余额或授权不足时由代币合约语义自然失败
	TransferERC20(ctx context.Context, currency, from, to common.Address, amount *big.Int) error

	// NativeBalance 查询原生币余额
	NativeBalance(ctx context.Context, addr common.Address) (*big.Int, error)
	// TransferNative 原生币转账
	TransferNative(ctx context.Context, from, to common.Address, amount *big.Int) error
	// CanSettleNative 是否能以原生币为买方付款方式结算
	// 取决于实现的资金托管能力, 不支持时原生币挂单直接拒绝
	CanSettleNative() bool
}
