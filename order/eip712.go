package order

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// EIP-712 类型串, 必须与验证方约定逐字节一致
// 任何字段增删或顺序调整都会使既有签名全部失效
const (
	eip712DomainType = "EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)"
	listingType      = "Listing(address collection,address currency,uint256 tokenId,uint256 amount,uint256 expiry,address seller,uint256 nonce)"
	offerType        = "Offer(address collection,address currency,uint256 tokenId,uint256 amount,uint256 expiry,address buyer,uint256 nonce)"
)

// 预计算的类型哈希
var (
	eip712DomainTypeHash = crypto.Keccak256Hash([]byte(eip712DomainType))
	listingTypeHash      = crypto.Keccak256Hash([]byte(listingType))
	offerTypeHash        = crypto.Keccak256Hash([]byte(offerType))
)

// abi 编码用的基础类型, 构造一次全局复用
var (
	bytes32Ty, _ = abi.NewType("bytes32", "", nil)
	uint256Ty, _ = abi.NewType("uint256", "", nil)
	addressTy, _ = abi.NewType("address", "", nil)
)

// Domain EIP-712 域分隔符参数
// 链 ID / 合约地址 / 名称 / 版本任意一项变化都会使历史签名作废,
// 这是跨链与跨部署的重放保护手段
type Domain struct {
	Name              string         // 市场名称
	Version           string         // 协议版本
	ChainID           *big.Int       // 链 ID
	VerifyingContract common.Address // 验证方地址
}

// NewDomain 创建域参数
func NewDomain(name, version string, chainID int64, verifying common.Address) *Domain {
	return &Domain{
		Name:              name,
		Version:           version,
		ChainID:           big.NewInt(chainID),
		VerifyingContract: verifying,
	}
}

// Separator 计算域分隔符哈希
// 编码: typeHash ++ keccak256(name) ++ keccak256(version) ++ chainId ++ verifyingContract
func (d *Domain) Separator() common.Hash {
	args := abi.Arguments{
		{Type: bytes32Ty}, // typeHash
		{Type: bytes32Ty}, // nameHash
		{Type: bytes32Ty}, // versionHash
		{Type: uint256Ty}, // chainId
		{Type: addressTy}, // verifyingContract
	}

	encoded, err := args.Pack(
		eip712DomainTypeHash,
		crypto.Keccak256Hash([]byte(d.Name)),
		crypto.Keccak256Hash([]byte(d.Version)),
		d.ChainID,
		d.VerifyingContract,
	)
	if err != nil {
		// 全部是定长静态类型, Pack 不应失败
		panic("failed on encode eip712 domain: " + err.Error())
	}

	return crypto.Keccak256Hash(encoded)
}

// orderArgs Listing/Offer 结构哈希共用的参数布局
// 两者字段布局一致, 仅 typeHash 与 maker 字段语义不同
var orderArgs = abi.Arguments{
	{Type: bytes32Ty}, // typeHash
	{Type: addressTy}, // collection
	{Type: addressTy}, // currency
	{Type: uint256Ty}, // tokenId
	{Type: uint256Ty}, // amount
	{Type: uint256Ty}, // expiry
	{Type: addressTy}, // seller / buyer
	{Type: uint256Ty}, // nonce
}

// structHash 计算订单结构哈希
func structHash(typeHash common.Hash, o *Order, maker common.Address, nonce uint64) common.Hash {
	encoded, err := orderArgs.Pack(
		typeHash,
		o.Collection,
		o.Currency,
		o.TokenID,
		o.Amount,
		new(big.Int).SetUint64(o.Expiry),
		maker,
		new(big.Int).SetUint64(nonce),
	)
	if err != nil {
		panic("failed on encode order struct: " + err.Error())
	}
	return crypto.Keccak256Hash(encoded)
}

// typedDigest 计算最终待签名摘要
// 遵循 EIP-712: keccak256("\x19\x01" ++ domainSeparator ++ structHash)
func typedDigest(d *Domain, sh common.Hash) common.Hash {
	data := make([]byte, 0, 2+32+32)
	data = append(data, 0x19, 0x01)
	data = append(data, d.Separator().Bytes()...)
	data = append(data, sh.Bytes()...)
	return crypto.Keccak256Hash(data)
}

// HashListing 计算挂单的 EIP-712 摘要
// 相同字段与相同域参数下结果确定, 不同逻辑订单不会哈希碰撞
func HashListing(d *Domain, l *Listing) common.Hash {
	return typedDigest(d, structHash(listingTypeHash, &l.Order, l.Seller, l.Nonce))
}

// HashOffer 计算出价的 EIP-712 摘要
func HashOffer(d *Domain, o *Offer) common.Hash {
	return typedDigest(d, structHash(offerTypeHash, &o.Order, o.Buyer, o.Nonce))
}
