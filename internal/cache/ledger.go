// Package cache 提供基于 Redis 的代币资金账本
package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

var (
	// ErrInsufficientFunds 账户余额不足
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInvalidAmount 无效金额
	ErrInvalidAmount = errors.New("invalid amount")
)

// VaultAccount 托管金库账户, 所有订单托管资金统一存放于此
const VaultAccount = "escrow:vault"

// TokenLedger 代币资金账本, 按 持有人+代币 维度记账
type TokenLedger struct {
	client    redis.UniversalClient
	keyPrefix string
	precision int32 // 小数精度
}

// NewTokenLedger 创建代币资金账本
func NewTokenLedger(client redis.UniversalClient, keyPrefix string, precision int32) *TokenLedger {
	if keyPrefix == "" {
		keyPrefix = "ledger"
	}
	if precision <= 0 {
		precision = 18 // 默认 18 位小数
	}
	return &TokenLedger{
		client:    client,
		keyPrefix: keyPrefix,
		precision: precision,
	}
}

// balanceKey 账户余额键
func (l *TokenLedger) balanceKey(holder, token string) string {
	return fmt.Sprintf("%s:%s:%s:balance", l.keyPrefix, holder, token)
}

// formatAmount 格式化金额
func (l *TokenLedger) formatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(l.precision)
}

// GetBalance 获取账户余额
func (l *TokenLedger) GetBalance(ctx context.Context, holder, token string) (decimal.Decimal, error) {
	result, err := l.client.Eval(ctx, LedgerScripts.GetBalance, []string{
		l.balanceKey(holder, token),
	}).Text()
	if err != nil {
		return decimal.Zero, fmt.Errorf("get balance failed: %w", err)
	}

	balance, err := decimal.NewFromString(result)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse balance failed: %w", err)
	}
	return balance, nil
}

// SetBalance 设置账户余额 (仅用于初始化和测试)
func (l *TokenLedger) SetBalance(ctx context.Context, holder, token string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidAmount
	}

	key := l.balanceKey(holder, token)
	return l.client.Set(ctx, key, l.formatAmount(amount), 0).Err()
}

// Credit 增加账户余额
func (l *TokenLedger) Credit(ctx context.Context, holder, token string, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}

	result, err := l.client.Eval(ctx, LedgerScripts.Credit, []string{
		l.balanceKey(holder, token),
	}, l.formatAmount(amount)).Text()
	if err != nil {
		return decimal.Zero, fmt.Errorf("credit failed: %w", err)
	}

	newBalance, _ := decimal.NewFromString(result)
	return newBalance, nil
}

// Debit 扣减账户余额
func (l *TokenLedger) Debit(ctx context.Context, holder, token string, amount decimal.Decimal) error {
	if amount.IsNegative() || amount.IsZero() {
		return ErrInvalidAmount
	}

	result, err := l.client.Eval(ctx, LedgerScripts.Debit, []string{
		l.balanceKey(holder, token),
	}, l.formatAmount(amount)).Int64()
	if err != nil {
		return fmt.Errorf("debit failed: %w", err)
	}

	switch result {
	case 1:
		return nil
	case 0:
		return ErrInsufficientFunds
	default:
		return ErrInvalidAmount
	}
}

// Transfer 原子转账, 余额检查与转移在同一脚本内完成
func (l *TokenLedger) Transfer(ctx context.Context, from, to, token string, amount decimal.Decimal) error {
	if amount.IsNegative() || amount.IsZero() {
		return ErrInvalidAmount
	}

	result, err := l.client.Eval(ctx, LedgerScripts.Transfer, []string{
		l.balanceKey(from, token),
		l.balanceKey(to, token),
	}, l.formatAmount(amount)).Int64()
	if err != nil {
		return fmt.Errorf("transfer failed: %w", err)
	}

	switch result {
	case 1:
		return nil
	case 0:
		return ErrInsufficientFunds
	default:
		return ErrInvalidAmount
	}
}

// TransferToVault 从账户转入托管金库
func (l *TokenLedger) TransferToVault(ctx context.Context, from, token string, amount decimal.Decimal) error {
	return l.Transfer(ctx, from, VaultAccount, token, amount)
}

// TransferFromVault 从托管金库转出到账户
func (l *TokenLedger) TransferFromVault(ctx context.Context, to, token string, amount decimal.Decimal) error {
	return l.Transfer(ctx, VaultAccount, to, token, amount)
}
