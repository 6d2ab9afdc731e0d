package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

// NewID 内部主键
func NewID() string { return uuid.NewString() }

// NewEmployeeID 对外工号：EM-〇〇〇〇〇〇（6 位数字）
// 碰撞由调用方在写库时兜底重试
func NewEmployeeID() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		// crypto/rand 不可用时退化到 uuid 派生
		return "EM-" + uuid.NewString()[:6]
	}
	return fmt.Sprintf("EM-%06d", n.Int64())
}

const tempPasswordChars = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewTempPassword 一次性初始密码（仅创建响应里回显一次）
func NewTempPassword(length int) string {
	if length <= 0 {
		length = 8
	}
	out := make([]byte, length)
	max := big.NewInt(int64(len(tempPasswordChars)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return NewResetToken()[:length]
		}
		out[i] = tempPasswordChars[n.Int64()]
	}
	return string(out)
}

// NewResetToken 密码重置用的不透明随机串（32 hex）
func NewResetToken() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return uuid.NewString()
	}
	return hex.EncodeToString(b)
}
