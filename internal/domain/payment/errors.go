package payment

import "errors"

// Payment ドメインのエラー定義
var (
	ErrPaymentNotFound       = errors.New("決済レコードが見つかりません")
	ErrDuplicateTransaction  = errors.New("同じトランザクションIDの決済が既に存在します")
	ErrProviderRequired      = errors.New("プロバイダー名は必須です")
	ErrTransactionIDRequired = errors.New("トランザクションIDは必須です")
)
