package cache

// LedgerScripts 资金账本相关 Lua 脚本
var LedgerScripts = struct {
	// Transfer 原子转账
	// KEYS[1]: 源账户余额键
	// KEYS[2]: 目标账户余额键
	// ARGV[1]: 转账金额 (字符串格式的数值)
	// 返回: 1 成功, 0 源余额不足, -1 参数错误
	Transfer string

	// Credit 增加账户余额
	// KEYS[1]: 账户余额键
	// ARGV[1]: 增加金额
	// 返回: 新的余额
	Credit string

	// Debit 扣减账户余额
	// KEYS[1]: 账户余额键
	// ARGV[1]: 扣减金额
	// 返回: 1 成功, 0 余额不足, -1 参数错误
	Debit string

	// GetBalance 获取账户余额
	// KEYS[1]: 账户余额键
	// 返回: 余额
	GetBalance string
}{
	Transfer: `
local srcBalance = redis.call('GET', KEYS[1])
if not srcBalance then
    srcBalance = '0'
end

local amount = ARGV[1]
if not amount or amount == '' then
    return -1
end

local srcNum = tonumber(srcBalance)
local amountNum = tonumber(amount)

if not srcNum or not amountNum then
    return -1
end

if amountNum <= 0 then
    return -1
end

if srcNum < amountNum then
    return 0
end

-- 扣减源账户
local newSrc = srcNum - amountNum
redis.call('SET', KEYS[1], tostring(newSrc))

-- 增加目标账户
local dstBalance = redis.call('GET', KEYS[2])
if not dstBalance then
    dstBalance = '0'
end
local dstNum = tonumber(dstBalance) or 0
local newDst = dstNum + amountNum
redis.call('SET', KEYS[2], tostring(newDst))

return 1
`,

	Credit: `
local balance = redis.call('GET', KEYS[1])
if not balance then
    balance = '0'
end

local amount = ARGV[1]
if not amount or amount == '' then
    return -1
end

local balanceNum = tonumber(balance)
local amountNum = tonumber(amount)

if not balanceNum or not amountNum then
    return -1
end

local newBalance = balanceNum + amountNum
redis.call('SET', KEYS[1], tostring(newBalance))

return tostring(newBalance)
`,

	Debit: `
local balance = redis.call('GET', KEYS[1])
if not balance then
    balance = '0'
end

local amount = ARGV[1]
if not amount or amount == '' then
    return -1
end

local balanceNum = tonumber(balance)
local amountNum = tonumber(amount)

if not balanceNum or not amountNum then
    return -1
end

if amountNum <= 0 then
    return -1
end

if balanceNum < amountNum then
    return 0
end

local newBalance = balanceNum - amountNum
redis.call('SET', KEYS[1], tostring(newBalance))

return 1
`,

	GetBalance: `
local balance = redis.call('GET', KEYS[1])
if not balance then
    balance = '0'
end

return balance
`,
}
