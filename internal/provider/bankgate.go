package provider

import (
	"encoding/json"
	"fmt"

	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/payment"
)

// BankgateChecksumHeader はBankgateがチェックサムを載せるHTTPヘッダー
const BankgateChecksumHeader = "X-Bankgate-Checksum"

// Bankgate は銀行振込ゲートウェイBankgateのWebhookを扱う
// Fastpayとはフィールド名も結果コードの形式も異なる
// ペイロード例:
//
//	{"transaction_ref":"BG-2025-0001","order_id":"...","hold_ref":"...",
//	 "amount_cents":4800,"result_code":2}
type Bankgate struct {
	secret string
}

// NewBankgate は新しいBankgateプロバイダーを作成する
func NewBankgate(secret string) *Bankgate {
	return &Bankgate{secret: secret}
}

func (p *Bankgate) Name() string { return "bankgate" }

func (p *Bankgate) SignatureHeader() string { return BankgateChecksumHeader }

func (p *Bankgate) Verify(payload []byte, signature string) error {
	return VerifySignature(p.secret, payload, signature)
}

// Bankgateの結果コード
const (
	bankgateResultPending = 0
	bankgateResultSuccess = 2
	bankgateResultFailed  = -1
)

type bankgatePayload struct {
	TransactionRef string `json:"transaction_ref"`
	OrderID        string `json:"order_id"`
	HoldRef        string `json:"hold_ref"`
	AmountCents    int    `json:"amount_cents"`
	ResultCode     int    `json:"result_code"`
}

func (p *Bankgate) Parse(payload []byte) (*Event, error) {
	var body bankgatePayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if body.TransactionRef == "" {
		return nil, fmt.Errorf("%w: transaction_ref がありません", ErrBadPayload)
	}

	var outcome payment.Outcome
	switch body.ResultCode {
	case bankgateResultSuccess:
		outcome = payment.OutcomeSucceeded
	case bankgateResultFailed:
		outcome = payment.OutcomeFailed
	case bankgateResultPending:
		outcome = payment.OutcomePending
	default:
		return nil, fmt.Errorf("%w: 未知の result_code %d", ErrBadPayload, body.ResultCode)
	}

	return &Event{
		TransactionID: body.TransactionRef,
		BookingID:     body.OrderID,
		HoldID:        body.HoldRef,
		Amount:        body.AmountCents,
		Outcome:       outcome,
	}, nil
}

var _ Provider = (*Bankgate)(nil)
