package payment

import "time"

// Outcome は正規化後の決済結果を表す
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomePending   Outcome = "pending"
)

// Status は決済レコードの状態を表す
type Status string

const (
	StatusPending       Status = "pending"
	StatusPaid          Status = "paid"
	StatusPaymentFailed Status = "payment_failed"
)

// Payment はプロバイダーの1トランザクションの記録を表す
// (Provider, TransactionID) が冪等性キーであり、同じキーへの書き込みは
// 高々1回しか起こらない（再配送は成功として no-op になる）
type Payment struct {
	Provider      string
	TransactionID string
	BookingID     string
	Status        Status
	Amount        int
	RawPayload    []byte
	ProcessedAt   time.Time
	CreatedAt     time.Time
}

// NewPayment は新しい決済レコードを作成する
func NewPayment(provider, transactionID, bookingID string, amount int, outcome Outcome, raw []byte) *Payment {
	now := time.Now()
	return &Payment{
		Provider:      provider,
		TransactionID: transactionID,
		BookingID:     bookingID,
		Status:        StatusForOutcome(outcome),
		Amount:        amount,
		RawPayload:    raw,
		ProcessedAt:   now,
		CreatedAt:     now,
	}
}

// StatusForOutcome は正規化済みの結果を決済レコードの状態に写す
func StatusForOutcome(o Outcome) Status {
	switch o {
	case OutcomeSucceeded:
		return StatusPaid
	case OutcomeFailed:
		return StatusPaymentFailed
	}
	return StatusPending
}

// Validate は決済レコードの検証を行う
func (p *Payment) Validate() error {
	if p.Provider == "" {
		return ErrProviderRequired
	}
	if p.TransactionID == "" {
		return ErrTransactionIDRequired
	}
	return nil
}
