package service

import (
	"github.com/sirupsen/logrus"
	"github.com/trustspirit/reimburse-gin/internal/utils"
)

// BankCipher 银行账号的落库加密器
// 密钥来自配置,为空时退化为明文直存(开发环境用)
type BankCipher struct {
	key string
}

// NewBankCipher 创建银行账号加密器
func NewBankCipher(key string) *BankCipher {
	if key == "" {
		logrus.Warn("bank account encryption key not configured, accounts stored in plaintext")
	}
	return &BankCipher{key: key}
}

// Encrypt 加密银行账号
func (c *BankCipher) Encrypt(account string) (string, error) {
	if c.key == "" || account == "" {
		return account, nil
	}
	return utils.Encrypt(account, c.key)
}

// Decrypt 解密银行账号
// 解密失败按历史明文数据处理,原样返回
func (c *BankCipher) Decrypt(stored string) string {
	if c.key == "" || stored == "" {
		return stored
	}
	plain, err := utils.Decrypt(stored, c.key)
	if err != nil {
		return stored
	}
	return plain
}
