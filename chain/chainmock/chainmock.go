package chainmock

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/ProjectsTask/EasySwapTrade/chain/chainclient"
)

// 资产操作错误, 语义对齐代币合约的失败行为
var (
	ErrTokenNotExist         = errors.New("token does not exist")
	ErrNotOwner              = errors.New("transfer from incorrect owner")
	ErrNotApproved           = errors.New("caller is not token owner or approved")
	ErrInsufficientBalance   = errors.New("transfer amount exceeds balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
)

// MockChain 内存资产账本
// 实现 chainclient.ChainClient, 用于测试与本地开发模式
// 语义模拟 ERC-721 / ERC-20 / 原生币: 市场地址作为被授权的 spender/operator
type MockChain struct {
	mu       sync.Mutex
	operator common.Address // 市场(运营方)地址, 转移资产需要对它的授权

	owners     map[common.Address]map[string]common.Address   // collection -> tokenId -> owner
	nftApprove map[common.Address]map[common.Address]bool     // collection -> owner -> 已授权市场
	balances   map[common.Address]map[common.Address]*big.Int // currency -> owner -> balance
	allowances map[common.Address]map[common.Address]*big.Int // currency -> owner -> 给市场的额度
	native     map[common.Address]*big.Int                    // owner -> 原生币余额
}

var _ chainclient.ChainClient = (*MockChain)(nil)

// New 创建内存账本
func New(operator common.Address) *MockChain {
	return &MockChain{
		operator:   operator,
		owners:     make(map[common.Address]map[string]common.Address),
		nftApprove: make(map[common.Address]map[common.Address]bool),
		balances:   make(map[common.Address]map[common.Address]*big.Int),
		allowances: make(map[common.Address]map[common.Address]*big.Int),
		native:     make(map[common.Address]*big.Int),
	}
}

// Mint 铸造 NFT 给指定地址
func (m *MockChain) Mint(collection, to common.Address, tokenID *big.Int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.owners[collection] == nil {
		m.owners[collection] = make(map[string]common.Address)
	}
	m.owners[collection][tokenID.String()] = to
}

// SetApprovalForAll 持有人授权市场操作其全部 NFT
func (m *MockChain) SetApprovalForAll(collection, owner common.Address, approved bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.nftApprove[collection] == nil {
		m.nftApprove[collection] = make(map[common.Address]bool)
	}
	m.nftApprove[collection][owner] = approved
}

// FundERC20 给地址充值 ERC-20
func (m *MockChain) FundERC20(currency, owner common.Address, amount *big.Int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.balances[currency] == nil {
		m.balances[currency] = make(map[common.Address]*big.Int)
	}
	m.balances[currency][owner] = new(big.Int).Add(m.balanceLocked(currency, owner), amount)
}

// Approve 持有人授权市场划转 ERC-20 额度
func (m *MockChain) Approve(currency, owner common.Address, amount *big.Int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.allowances[currency] == nil {
		m.allowances[currency] = make(map[common.Address]*big.Int)
	}
	m.allowances[currency][owner] = new(big.Int).Set(amount)
}

// FundNative 给地址充值原生币
func (m *MockChain) FundNative(owner common.Address, amount *big.Int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.native[owner] = new(big.Int).Add(m.nativeLocked(owner), amount)
}

// OwnerOf 查询 NFT 持有人
func (m *MockChain) OwnerOf(ctx context.Context, collection common.Address, tokenID *big.Int) (common.Address, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	owner, ok := m.owners[collection][tokenID.String()]
	if !ok {
		return common.Address{}, errors.Wrapf(ErrTokenNotExist, "token %s", tokenID.String())
	}
	return owner, nil
}

// IsApprovedForAll 查询持有人是否已授权市场操作该集合
func (m *MockChain) IsApprovedForAll(ctx context.Context, collection, owner common.Address) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.nftApprove[collection][owner], nil
}

// TransferNFT 转移 NFT
// 校验 from 是当前持有人且已授权市场
func (m *MockChain) TransferNFT(ctx context.Context, collection, from, to common.Address, tokenID *big.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	owner, ok := m.owners[collection][tokenID.String()]
	if !ok {
		return errors.Wrapf(ErrTokenNotExist, "token %s", tokenID.String())
	}
	if owner != from {
		return errors.Wrapf(ErrNotOwner, "owner %s, from %s", owner.Hex(), from.Hex())
	}
	if !m.nftApprove[collection][from] {
		return errors.Wrapf(ErrNotApproved, "owner %s", from.Hex())
	}

	m.owners[collection][tokenID.String()] = to
	return nil
}

// BalanceOf 查询 ERC-20 余额
func (m *MockChain) BalanceOf(ctx context.Context, currency, owner common.Address) (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return new(big.Int).Set(m.balanceLocked(currency, owner)), nil
}

// Allowance 查询持有人授权给市场的划转额度
func (m *MockChain) Allowance(ctx context.Context, currency, owner common.Address) (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return new(big.Int).Set(m.allowanceLocked(currency, owner)), nil
}

// TransferERC20 市场作为 spender 执行 transferFrom
// 余额与授权额度任一不足即失败, 额度按转账金额扣减
func (m *MockChain) TransferERC20(ctx context.Context, currency, from, to common.Address, amount *big.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	balance := m.balanceLocked(currency, from)
	if balance.Cmp(amount) < 0 {
		return errors.Wrapf(ErrInsufficientBalance, "balance %s, need %s", balance.String(), amount.String())
	}
	allowance := m.allowanceLocked(currency, from)
	if allowance.Cmp(amount) < 0 {
		return errors.Wrapf(ErrInsufficientAllowance, "allowance %s, need %s", allowance.String(), amount.String())
	}

	if m.balances[currency] == nil {
		m.balances[currency] = make(map[common.Address]*big.Int)
	}
	if m.allowances[currency] == nil {
		m.allowances[currency] = make(map[common.Address]*big.Int)
	}
	m.balances[currency][from] = new(big.Int).Sub(balance, amount)
	m.balances[currency][to] = new(big.Int).Add(m.balanceLocked(currency, to), amount)
	m.allowances[currency][from] = new(big.Int).Sub(allowance, amount)
	return nil
}

// CanSettleNative 原生币结算能力, 内存账本可直接扣减买家余额
func (m *MockChain) CanSettleNative() bool {
	return true
}

// NativeBalance 查询原生币余额
func (m *MockChain) NativeBalance(ctx context.Context, addr common.Address) (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return new(big.Int).Set(m.nativeLocked(addr)), nil
}

// TransferNative 原生币转账, 余额不足失败
func (m *MockChain) TransferNative(ctx context.Context, from, to common.Address, amount *big.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	balance := m.nativeLocked(from)
	if balance.Cmp(amount) < 0 {
		return errors.Wrapf(ErrInsufficientBalance, "balance %s, need %s", balance.String(), amount.String())
	}
	m.native[from] = new(big.Int).Sub(balance, amount)
	m.native[to] = new(big.Int).Add(m.nativeLocked(to), amount)
	return nil
}

func (m *MockChain) balanceLocked(currency, owner common.Address) *big.Int {
	if b, ok := m.balances[currency][owner]; ok {
		return b
	}
	return big.NewInt(0)
}

func (m *MockChain) allowanceLocked(currency, owner common.Address) *big.Int {
	if a, ok := m.allowances[currency][owner]; ok {
		return a
	}
	return big.NewInt(0)
}

func (m *MockChain) nativeLocked(owner common.Address) *big.Int {
	if b, ok := m.native[owner]; ok {
		return b
	}
	return big.NewInt(0)
}
