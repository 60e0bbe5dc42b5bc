package chainclient

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
)

// 链上调用使用的最小 ABI 片段
const (
	erc721ABIJson = `[
		{"constant":true,"inputs":[{"name":"tokenId","type":"uint256"}],"name":"ownerOf","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"},
		{"constant":true,"inputs":[{"name":"owner","type":"address"},{"name":"operator","type":"address"}],"name":"isApprovedForAll","outputs":[{"name":"","type":"bool"}],"stateMutability":"view","type":"function"},
		{"constant":false,"inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"tokenId","type":"uint256"}],"name":"transferFrom","outputs":[],"stateMutability":"nonpayable","type":"function"}
	]`
	erc20ABIJson = `[
		{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
		{"constant":true,"inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"name":"allowance","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
		{"constant":false,"inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"name":"transferFrom","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"}
	]`

	transferGasLimit = uint64(200000) // 转账类交易的 gas 上限
)

// EvmClient 基于 ethclient 的链上实现
// 市场以托管运营方身份结算: 所有交易由运营方私钥签出,
// 资产转移依赖用户事先对市场地址的 approve / setApprovalForAll
type EvmClient struct {
	client   *ethclient.Client
	chainID  *big.Int
	key      *ecdsa.PrivateKey
	operator common.Address

	erc721ABI abi.ABI
	erc20ABI  abi.ABI

	mu sync.Mutex // 运营方账户的交易 nonce 串行化
}

var _ ChainClient = (*EvmClient)(nil)

// New 创建 EVM 链客户端
func New(chainID int64, rawurl string, operatorKeyHex string) (*EvmClient, error) {
	client, err := ethclient.Dial(rawurl)
	if err != nil {
		return nil, errors.Wrap(err, "failed on dial rpc")
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(operatorKeyHex, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid operator key")
	}

	erc721, err := abi.JSON(strings.NewReader(erc721ABIJson))
	if err != nil {
		return nil, errors.Wrap(err, "failed on parse erc721 abi")
	}
	erc20, err := abi.JSON(strings.NewReader(erc20ABIJson))
	if err != nil {
		return nil, errors.Wrap(err, "failed on parse erc20 abi")
	}

	return &EvmClient{
		client:    client,
		chainID:   big.NewInt(chainID),
		key:       key,
		operator:  crypto.PubkeyToAddress(key.PublicKey),
		erc721ABI: erc721,
		erc20ABI:  erc20,
	}, nil
}

// Operator 返回运营方地址
func (c *EvmClient) Operator() common.Address {
	return c.operator
}

// OwnerOf 查询 NFT 持有人
func (c *EvmClient) OwnerOf(ctx context.Context, collection common.Address, tokenID *big.Int) (common.Address, error) {
	data, err := c.erc721ABI.Pack("ownerOf", tokenID)
	if err != nil {
		return common.Address{}, errors.Wrap(err, "failed on pack ownerOf")
	}

	out, err := c.client.CallContract(ctx, ethereum.CallMsg{To: &collection, Data: data}, nil)
	if err != nil {
		return common.Address{}, errors.Wrap(err, "failed on call ownerOf")
	}

	var owner common.Address
	if err := c.erc721ABI.UnpackIntoInterface(&owner, "ownerOf", out); err != nil {
		return common.Address{}, errors.Wrap(err, "failed on unpack ownerOf")
	}
	return owner, nil
}

// IsApprovedForAll 查询持有人是否已授权市场 (运营方地址) 操作该集合
func (c *EvmClient) IsApprovedForAll(ctx context.Context, collection, owner common.Address) (bool, error) {
	data, err := c.erc721ABI.Pack("isApprovedForAll", owner, c.operator)
	if err != nil {
		return false, errors.Wrap(err, "failed on pack isApprovedForAll")
	}

	out, err := c.client.CallContract(ctx, ethereum.CallMsg{To: &collection, Data: data}, nil)
	if err != nil {
		return false, errors.Wrap(err, "failed on call isApprovedForAll")
	}

	var approved bool
	if err := c.erc721ABI.UnpackIntoInterface(&approved, "isApprovedForAll", out); err != nil {
		return false, errors.Wrap(err, "failed on unpack isApprovedForAll")
	}
	return approved, nil
}

// TransferNFT 执行 ERC-721 transferFrom
func (c *EvmClient) TransferNFT(ctx context.Context, collection, from, to common.Address, tokenID *big.Int) error {
	data, err := c.erc721ABI.Pack("transferFrom", from, to, tokenID)
	if err != nil {
		return errors.Wrap(err, "failed on pack nft transferFrom")
	}
	return c.sendTx(ctx, collection, nil, data)
}

// BalanceOf 查询 ERC-20 余额
func (c *EvmClient) BalanceOf(ctx context.Context, currency, owner common.Address) (*big.Int, error) {
	data, err := c.erc20ABI.Pack("balanceOf", owner)
	if err != nil {
		return nil, errors.Wrap(err, "failed on pack balanceOf")
	}

	out, err := c.client.CallContract(ctx, ethereum.CallMsg{To: &currency, Data: data}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed on call balanceOf")
	}

	balance := new(big.Int)
	if err := c.erc20ABI.UnpackIntoInterface(&balance, "balanceOf", out); err != nil {
		return nil, errors.Wrap(err, "failed on unpack balanceOf")
	}
	return balance, nil
}

// Allowance 查询持有人授权给市场 (运营方地址) 的划转额度
func (c *EvmClient) Allowance(ctx context.Context, currency, owner common.Address) (*big.Int, error) {
	data, err := c.erc20ABI.Pack("allowance", owner, c.operator)
	if err != nil {
		return nil, errors.Wrap(err, "failed on pack allowance")
	}

	out, err := c.client.CallContract(ctx, ethereum.CallMsg{To: &currency, Data: data}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed on call allowance")
	}

	allowance := new(big.Int)
	if err := c.erc20ABI.UnpackIntoInterface(&allowance, "allowance", out); err != nil {
		return nil, errors.Wrap(err, "failed on unpack allowance")
	}
	return allowance, nil
}

// TransferERC20 执行 ERC-20 transferFrom
func (c *EvmClient) TransferERC20(ctx context.Context, currency, from, to common.Address, amount *big.Int) error {
	data, err := c.erc20ABI.Pack("transferFrom", from, to, amount)
	if err != nil {
		return errors.Wrap(err, "failed on pack erc20 transferFrom")
	}
	return c.sendTx(ctx, currency, nil, data)
}

// NativeBalance 查询原生币余额
func (c *EvmClient) NativeBalance(ctx context.Context, addr common.Address) (*big.Int, error) {
	balance, err := c.client.BalanceAt(ctx, addr, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed on get native balance")
	}
	return balance, nil
}

// TransferNative 原生币转账
// 运营方私钥只能支配自己的账户, 无法代扣第三方的原生币余额,
// from 不是运营方时拒绝, 防止把买家应付的货款记到运营方头上
func (c *EvmClient) TransferNative(ctx context.Context, from, to common.Address, amount *big.Int) error {
	if from != c.operator {
		return errors.Errorf("cannot debit native balance of %s, operator is %s", from.Hex(), c.operator.Hex())
	}
	return c.sendTx(ctx, to, amount, nil)
}

// CanSettleNative 原生币结算能力
// 托管模型无法代扣买家的原生币, 原生币挂单在该实现下不可结算
func (c *EvmClient) CanSettleNative() bool {
	return false
}

// sendTx 以运营方身份构造/签名/发送交易并等待上链
func (c *EvmClient) sendTx(ctx context.Context, to common.Address, value *big.Int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	nonce, err := c.client.PendingNonceAt(ctx, c.operator)
	if err != nil {
		return errors.Wrap(err, "failed on get pending nonce")
	}
	gasPrice, err := c.client.SuggestGasPrice(ctx)
	if err != nil {
		return errors.Wrap(err, "failed on suggest gas price")
	}
	if value == nil {
		value = big.NewInt(0)
	}

	tx := types.NewTransaction(nonce, to, value, transferGasLimit, gasPrice, data)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(c.chainID), c.key)
	if err != nil {
		return errors.Wrap(err, "failed on sign tx")
	}
	if err := c.client.SendTransaction(ctx, signed); err != nil {
		return errors.Wrap(err, "failed on send tx")
	}

	receipt, err := bind.WaitMined(ctx, c.client, signed)
	if err != nil {
		return errors.Wrap(err, "failed on wait tx mined")
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return errors.Errorf("tx %s reverted", signed.Hash().Hex())
	}
	return nil
}
