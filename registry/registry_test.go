package registry

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ProjectsTask/EasySwapTrade/model"
	"github.com/ProjectsTask/EasySwapTrade/order"
)

var (
	admin      = common.HexToAddress("0xAaAaAaAaaAaAaAaAaAaaAAAAAaaaAaaaaAaAaAa1")
	nonAdmin   = common.HexToAddress("0xBbBBBBbbBBBbbbBbbBbbbbBBbBbbbbBbBbbBBbB2")
	feeAddr    = common.HexToAddress("0xCcccCCCcCCCCcCCCcCcccCcCCCcCcccCcCCcCcC3")
	usdc       = common.HexToAddress("0x1111111111111111111111111111111111111111")
	collection = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func newTestRegistry(t *testing.T, opts ...Option) *Registry {
	t.Helper()
	r, err := New(admin, FeeConfig{Rate: 200, Precision: FeePrecision, Recipient: feeAddr}, 1000, opts...)
	require.NoError(t, err)
	return r
}

func TestNewValidatesFee(t *testing.T) {
	// 上限不能超过分母
	_, err := New(admin, FeeConfig{Rate: 1, Recipient: feeAddr}, FeePrecision+1)
	assert.ErrorIs(t, err, ErrInvalidFee)

	// 初始费率不能超过上限
	_, err = New(admin, FeeConfig{Rate: 1001, Recipient: feeAddr}, 1000)
	assert.ErrorIs(t, err, ErrInvalidFee)

	// 收款人不能是零地址
	_, err = New(admin, FeeConfig{Rate: 200}, 1000)
	assert.ErrorIs(t, err, ErrInvalidFee)
}

func TestAdminGate(t *testing.T) {
	r := newTestRegistry(t)

	assert.ErrorIs(t, r.AddCurrency(nonAdmin, usdc), ErrUnauthorized)
	assert.ErrorIs(t, r.RemoveCurrency(nonAdmin, usdc), ErrUnauthorized)
	assert.ErrorIs(t, r.AddCollection(nonAdmin, collection), ErrUnauthorized)
	assert.ErrorIs(t, r.RemoveCollection(nonAdmin, collection), ErrUnauthorized)
	assert.ErrorIs(t, r.SetFee(nonAdmin, 100, feeAddr), ErrUnauthorized)
}

func TestCurrencyAllowlist(t *testing.T) {
	r := newTestRegistry(t)

	assert.False(t, r.IsAcceptedCurrency(usdc))
	require.NoError(t, r.AddCurrency(admin, usdc))
	assert.True(t, r.IsAcceptedCurrency(usdc))

	// 重复添加与零地址都拒绝
	assert.ErrorIs(t, r.AddCurrency(admin, usdc), ErrCurrencyAlreadyAccepted)
	assert.ErrorIs(t, r.AddCurrency(admin, common.Address{}), ErrInvalidAddress)

	require.NoError(t, r.RemoveCurrency(admin, usdc))
	assert.False(t, r.IsAcceptedCurrency(usdc))
	assert.ErrorIs(t, r.RemoveCurrency(admin, usdc), ErrCurrencyNotAccepted)
}

func TestNativeCurrencyAlwaysAccepted(t *testing.T) {
	r := newTestRegistry(t)

	// 原生币不在准入表也始终可结算
	assert.True(t, r.IsAcceptedCurrency(order.NativeCurrency))
	assert.Empty(t, r.Currencies())
}

func TestCollectionAllowlist(t *testing.T) {
	r := newTestRegistry(t)

	assert.False(t, r.IsAcceptedCollection(collection))
	require.NoError(t, r.AddCollection(admin, collection))
	assert.True(t, r.IsAcceptedCollection(collection))
	assert.Len(t, r.Collections(), 1)

	assert.ErrorIs(t, r.AddCollection(admin, collection), ErrCollectionAlreadyAccepted)
	assert.ErrorIs(t, r.AddCollection(admin, common.Address{}), ErrInvalidAddress)

	require.NoError(t, r.RemoveCollection(admin, collection))
	assert.ErrorIs(t, r.RemoveCollection(admin, collection), ErrCollectionNotAccepted)
}

func TestSetFee(t *testing.T) {
	r := newTestRegistry(t)

	require.NoError(t, r.SetFee(admin, 500, feeAddr))
	cfg := r.Fee()
	assert.Equal(t, uint64(500), cfg.Rate)
	assert.Equal(t, FeePrecision, cfg.Precision)
	assert.Equal(t, feeAddr, cfg.Recipient)

	// 超限 / 零收款人 / 配置未变化都拒绝
	assert.ErrorIs(t, r.SetFee(admin, 1001, feeAddr), ErrInvalidFee)
	assert.ErrorIs(t, r.SetFee(admin, 500, common.Address{}), ErrInvalidFee)
	assert.ErrorIs(t, r.SetFee(admin, 500, feeAddr), ErrInvalidFee)

	// 失败的更新不污染当前配置
	assert.Equal(t, uint64(500), r.Fee().Rate)
}

func TestNotifyEvents(t *testing.T) {
	var events []*model.Activity
	r := newTestRegistry(t, WithNotify(func(a *model.Activity) {
		events = append(events, a)
	}))

	require.NoError(t, r.AddCurrency(admin, usdc))
	require.NoError(t, r.AddCollection(admin, collection))
	require.NoError(t, r.SetFee(admin, 300, feeAddr))
	require.NoError(t, r.RemoveCurrency(admin, usdc))
	require.NoError(t, r.RemoveCollection(admin, collection))

	require.Len(t, events, 5)
	assert.Equal(t, model.ActivityCurrencyAdded, events[0].EventType)
	assert.Equal(t, model.ActivityCollectionAdded, events[1].EventType)
	assert.Equal(t, model.ActivityFeeChanged, events[2].EventType)
	assert.Equal(t, model.ActivityCurrencyRemoved, events[3].EventType)
	assert.Equal(t, model.ActivityCollectionRemoved, events[4].EventType)
}
