package order

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDomain() *Domain {
	return NewDomain("EasySwapTrade", "1", 11155111, common.HexToAddress("0x000000000000000000000000000000000000dEaD"))
}

func testListing() *Listing {
	return &Listing{
		Order: Order{
			Collection: common.HexToAddress("0x1111111111111111111111111111111111111111"),
			Currency:   common.HexToAddress("0x2222222222222222222222222222222222222222"),
			TokenID:    big.NewInt(42),
			Amount:     big.NewInt(1_000_000),
			Expiry:     1700000000,
		},
		Seller: common.HexToAddress("0x3333333333333333333333333333333333333333"),
		Nonce:  7,
	}
}

func TestHashListingDeterministic(t *testing.T) {
	d := testDomain()
	l := testListing()

	h1 := HashListing(d, l)
	h2 := HashListing(d, l)
	require.Equal(t, h1, h2)
	assert.NotEqual(t, common.Hash{}, h1)
}

func TestHashListingFieldSensitive(t *testing.T) {
	d := testDomain()
	base := HashListing(d, testListing())

	// 任一字段变化都必须改变摘要
	l := testListing()
	l.Collection = common.HexToAddress("0x4444444444444444444444444444444444444444")
	assert.NotEqual(t, base, HashListing(d, l))

	l = testListing()
	l.Currency = NativeCurrency
	assert.NotEqual(t, base, HashListing(d, l))

	l = testListing()
	l.TokenID = big.NewInt(43)
	assert.NotEqual(t, base, HashListing(d, l))

	l = testListing()
	l.Amount = big.NewInt(999_999)
	assert.NotEqual(t, base, HashListing(d, l))

	l = testListing()
	l.Expiry = 1700000001
	assert.NotEqual(t, base, HashListing(d, l))

	l = testListing()
	l.Seller = common.HexToAddress("0x5555555555555555555555555555555555555555")
	assert.NotEqual(t, base, HashListing(d, l))

	l = testListing()
	l.Nonce = 8
	assert.NotEqual(t, base, HashListing(d, l))
}

func TestHashListingDomainSensitive(t *testing.T) {
	l := testListing()
	base := HashListing(testDomain(), l)

	// 域参数变化 (跨链/跨部署) 也必须改变摘要
	d := testDomain()
	d.ChainID = big.NewInt(1)
	assert.NotEqual(t, base, HashListing(d, l))

	d = testDomain()
	d.Name = "OtherMarket"
	assert.NotEqual(t, base, HashListing(d, l))

	d = testDomain()
	d.Version = "2"
	assert.NotEqual(t, base, HashListing(d, l))

	d = testDomain()
	d.VerifyingContract = common.HexToAddress("0x6666666666666666666666666666666666666666")
	assert.NotEqual(t, base, HashListing(d, l))
}

func TestHashListingOfferDistinct(t *testing.T) {
	d := testDomain()
	l := testListing()
	o := &Offer{
		Order: l.Order,
		Buyer: l.Seller,
		Nonce: l.Nonce,
	}

	// 字段完全相同的挂单与出价, 类型哈希不同, 摘要必须不同
	assert.NotEqual(t, HashListing(d, l), HashOffer(d, o))
}

func TestDomainSeparatorDeterministic(t *testing.T) {
	s1 := testDomain().Separator()
	s2 := testDomain().Separator()
	require.Equal(t, s1, s2)

	other := NewDomain("EasySwapTrade", "1", 1, common.HexToAddress("0x000000000000000000000000000000000000dEaD"))
	assert.NotEqual(t, s1, other.Separator())
}
