package v1

import (
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/ProjectsTask/EasySwapTrade/errcode"
	"github.com/ProjectsTask/EasySwapTrade/market"
	"github.com/ProjectsTask/EasySwapTrade/order"
	"github.com/ProjectsTask/EasySwapTrade/ordermanager"
	"github.com/ProjectsTask/EasySwapTrade/registry"
	types "github.com/ProjectsTask/EasySwapTrade/types/v1"
	"github.com/ProjectsTask/EasySwapTrade/xhttp"
)

func init() {
	// 注册自定义地址校验规则, binding:"address" 使用
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("address", func(fl validator.FieldLevel) bool {
			addr, ok := fl.Field().Interface().(string)
			if !ok {
				return false
			}
			return common.IsHexAddress(addr)
		})
	}
}

// 结算错误 -> 业务码/选择器名称映射
// 选择器名称随响应返回, 供调用方程序化识别失败原因
var tradeErrTable = []struct {
	err  error
	code int32
	name string
}{
	{registry.ErrCollectionNotAccepted, 20001, "CollectionNotAccepted"},
	{registry.ErrCurrencyNotAccepted, 20002, "CurrencyNotAccepted"},
	{market.ErrOrderExpired, 20003, "OrderExpired"},
	{market.ErrInvalidOrder, 20004, "InvalidOrder"},
	{market.ErrSellerNotOwner, 20005, "SellerNotOwner"},
	{market.ErrOrderCreatorCannotExecute, 20006, "OrderCreatorCannotExecute"},
	{market.ErrPaymentMismatch, 20007, "PaymentMismatch"},
	{market.ErrCurrencyMismatch, 20008, "CurrencyMismatch"},
	{order.ErrSignatureInvalid, 20009, "SignatureInvalid"},
	{ordermanager.ErrArrayEmpty, 20010, "ArrayEmpty"},
	{ordermanager.ErrOrderAlreadyCancelled, 20011, "OrderAlreadyCancelled"},
	{ordermanager.ErrNonceLowerThanCurrent, 20012, "NonceLowerThanCurrent"},
	{registry.ErrUnauthorized, 20013, "Unauthorized"},
	{registry.ErrInvalidAddress, 20014, "InvalidAddress"},
	{registry.ErrCurrencyAlreadyAccepted, 20015, "CurrencyAlreadyAccepted"},
	{registry.ErrCollectionAlreadyAccepted, 20016, "CollectionAlreadyAccepted"},
	{registry.ErrInvalidFee, 20017, "InvalidFee"},
	{market.ErrAssetNotApproved, 20018, "AssetNotApproved"},
	{market.ErrInsufficientFunds, 20019, "InsufficientFunds"},
}

// tradeError 将结算域错误转换为带选择器的响应
func tradeError(c *gin.Context, err error) {
	for _, entry := range tradeErrTable {
		if errors.Is(err, entry.err) {
			xhttp.Error(c, errcode.NewErr(entry.code, entry.name+": "+err.Error()))
			return
		}
	}
	xhttp.Error(c, errcode.NewCustomErr(err.Error()))
}

// parseBig 解析十进制大整数串
func parseBig(s string) (*big.Int, error) {
	if s == "" {
		return big.NewInt(0), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, errors.Errorf("invalid integer %q", s)
	}
	return v, nil
}

// parseHash32 解析 32 字节 hex 串
func parseHash32(s string) ([32]byte, error) {
	var out [32]byte
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return out, errors.Wrapf(err, "invalid hex %q", s)
	}
	if len(raw) != 32 {
		return out, errors.Errorf("expected 32 bytes, got %d", len(raw))
	}
	copy(out[:], raw)
	return out, nil
}

// toSignature 转换签名参数
func toSignature(p types.SignatureParam) (order.Signature, error) {
	r, err := parseHash32(p.R)
	if err != nil {
		return order.Signature{}, err
	}
	s, err := parseHash32(p.S)
	if err != nil {
		return order.Signature{}, err
	}
	return order.Signature{V: p.V, R: r, S: s}, nil
}

// toOrder 转换订单条款
func toOrder(p types.OrderParam) (order.Order, error) {
	tokenID, err := parseBig(p.TokenID)
	if err != nil {
		return order.Order{}, err
	}
	amount, err := parseBig(p.Amount)
	if err != nil {
		return order.Order{}, err
	}
	currency := order.NativeCurrency
	if p.Currency != "" {
		if !common.IsHexAddress(p.Currency) {
			return order.Order{}, errors.Errorf("invalid currency %q", p.Currency)
		}
		currency = common.HexToAddress(p.Currency)
	}
	return order.Order{
		Collection: common.HexToAddress(p.Collection),
		Currency:   currency,
		TokenID:    tokenID,
		Amount:     amount,
		Expiry:     p.Expiry,
	}, nil
}

// toListing 组装挂单
func toListing(p *types.ExecuteListingParam) (*order.Listing, error) {
	o, err := toOrder(p.Order)
	if err != nil {
		return nil, err
	}
	sig, err := toSignature(p.Sig)
	if err != nil {
		return nil, err
	}
	return &order.Listing{
		Order:  o,
		Seller: common.HexToAddress(p.Seller),
		Nonce:  p.Nonce,
		Sig:    sig,
	}, nil
}

// toOffer 组装出价
func toOffer(p *types.AcceptOfferParam) (*order.Offer, error) {
	o, err := toOrder(p.Order)
	if err != nil {
		return nil, err
	}
	sig, err := toSignature(p.Sig)
	if err != nil {
		return nil, err
	}
	return &order.Offer{
		Order: o,
		Buyer: common.HexToAddress(p.Buyer),
		Nonce: p.Nonce,
		Sig:   sig,
	}, nil
}
