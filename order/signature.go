package order

import (
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// ErrSignatureInvalid 签名无效
// 所有恢复失败 / 可延展性拒绝 / 签名人不匹配都归入该错误,
// 调用方通过 errors.Is 判断, 不允许以静默 false 的形式扩散
var ErrSignatureInvalid = errors.New("signature invalid")

// secp256k1 曲线阶的一半, 用于 low-s 检查
var secp256k1HalfN = new(big.Int).Rsh(crypto.S256().Params().N, 1)

// VerifySignature 校验 (v, r, s) 签名是否由 expected 对 digest 签出
// 拒绝条件:
//   - expected 为零地址
//   - v 不是 27/28
//   - s 落在曲线阶上半区 (签名可延展性)
//   - 公钥恢复失败或恢复出零地址
//   - 恢复地址与 expected 不一致
func VerifySignature(digest common.Hash, sig Signature, expected common.Address) error {
	if expected == (common.Address{}) {
		return errors.Wrap(ErrSignatureInvalid, "expected signer is zero address")
	}
	if sig.V != 27 && sig.V != 28 {
		return errors.Wrap(ErrSignatureInvalid, "invalid recovery id")
	}

	r := new(big.Int).SetBytes(sig.R[:])
	s := new(big.Int).SetBytes(sig.S[:])
	// low-s 检查: s > N/2 的签名可以被第三方改写成另一个合法签名,
	// 会破坏以摘要+签名为键的去重, 必须拒绝
	if s.Cmp(secp256k1HalfN) > 0 {
		return errors.Wrap(ErrSignatureInvalid, "signature s value is in upper half order")
	}
	if !crypto.ValidateSignatureValues(sig.V-27, r, s, true) {
		return errors.Wrap(ErrSignatureInvalid, "invalid signature values")
	}

	// 拼接 65 字节签名 [R || S || V], V 归一化为 0/1
	raw := make([]byte, 65)
	copy(raw[:32], sig.R[:])
	copy(raw[32:64], sig.S[:])
	raw[64] = sig.V - 27

	pub, err := crypto.SigToPub(digest.Bytes(), raw)
	if err != nil {
		return errors.Wrap(ErrSignatureInvalid, "failed on recover public key")
	}

	recovered := crypto.PubkeyToAddress(*pub)
	if recovered == (common.Address{}) {
		return errors.Wrap(ErrSignatureInvalid, "recovered zero address")
	}
	if recovered != expected {
		return errors.Wrapf(ErrSignatureInvalid, "recovered %s, expected %s", recovered.Hex(), expected.Hex())
	}

	return nil
}

// SignDigest 使用私钥对摘要签名, 返回 (v, r, s)
// geth 返回的签名 v 为 0/1, 这里转换为以太坊惯用的 27/28
func SignDigest(digest common.Hash, key *ecdsa.PrivateKey) (Signature, error) {
	raw, err := crypto.Sign(digest.Bytes(), key)
	if err != nil {
		return Signature{}, errors.Wrap(err, "failed on sign digest")
	}

	var sig Signature
	copy(sig.R[:], raw[:32])
	copy(sig.S[:], raw[32:64])
	sig.V = raw[64] + 27
	return sig, nil
}
