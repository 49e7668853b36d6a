package provider

import (
	"encoding/json"
	"fmt"

	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/payment"
)

// FastpaySignatureHeader はFastpayが署名を載せるHTTPヘッダー
const FastpaySignatureHeader = "X-Fastpay-Signature"

// Fastpay はカード決済プロバイダーFastpayのWebhookを扱う
// ペイロード例:
//
//	{"id":"tx_123","status":"succeeded","amount":4800,
//	 "metadata":{"booking_id":"...","hold_id":"..."}}
type Fastpay struct {
	secret string
}

// NewFastpay は新しいFastpayプロバイダーを作成する
func NewFastpay(secret string) *Fastpay {
	return &Fastpay{secret: secret}
}

func (p *Fastpay) Name() string { return "fastpay" }

func (p *Fastpay) SignatureHeader() string { return FastpaySignatureHeader }

func (p *Fastpay) Verify(payload []byte, signature string) error {
	return VerifySignature(p.secret, payload, signature)
}

type fastpayPayload struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Amount   int    `json:"amount"`
	Metadata struct {
		BookingID string `json:"booking_id"`
		HoldID    string `json:"hold_id"`
	} `json:"metadata"`
}

func (p *Fastpay) Parse(payload []byte) (*Event, error) {
	var body fastpayPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if body.ID == "" {
		return nil, fmt.Errorf("%w: id がありません", ErrBadPayload)
	}

	var outcome payment.Outcome
	switch body.Status {
	case "succeeded":
		outcome = payment.OutcomeSucceeded
	case "failed":
		outcome = payment.OutcomeFailed
	case "pending":
		outcome = payment.OutcomePending
	default:
		return nil, fmt.Errorf("%w: 未知の status %q", ErrBadPayload, body.Status)
	}

	return &Event{
		TransactionID: body.ID,
		BookingID:     body.Metadata.BookingID,
		HoldID:        body.Metadata.HoldID,
		Amount:        body.Amount,
		Outcome:       outcome,
	}, nil
}

var _ Provider = (*Fastpay)(nil)
