package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/payment"
)

func TestSign(t *testing.T) {
	payload := []byte(`{"id":"tx-001"}`)

	sig := Sign("secret-a", payload)
	assert.NotEmpty(t, sig)
	// 同じ入力なら決定的
	assert.Equal(t, sig, Sign("secret-a", payload))
	// シークレットが違えば署名も変わる
	assert.NotEqual(t, sig, Sign("secret-b", payload))
}

func TestVerifySignature(t *testing.T) {
	payload := []byte(`{"id":"tx-001"}`)
	secret := "webhook-secret"

	t.Run("正しい署名は検証を通る", func(t *testing.T) {
		assert.NoError(t, VerifySignature(secret, payload, Sign(secret, payload)))
	})

	t.Run("別のシークレットで作った署名は拒否される", func(t *testing.T) {
		err := VerifySignature(secret, payload, Sign("other-secret", payload))
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("改ざんされたペイロードは拒否される", func(t *testing.T) {
		sig := Sign(secret, payload)
		err := VerifySignature(secret, []byte(`{"id":"tx-002"}`), sig)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("空の署名は拒否される", func(t *testing.T) {
		err := VerifySignature(secret, payload, "")
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})
}

func TestFastpay_Parse(t *testing.T) {
	p := NewFastpay("secret")

	assert.Equal(t, "fastpay", p.Name())
	assert.Equal(t, FastpaySignatureHeader, p.SignatureHeader())

	tests := []struct {
		name        string
		payload     string
		expected    *Event
		errExpected error
	}{
		{
			name:    "決済成功イベント",
			payload: `{"id":"tx-001","status":"succeeded","amount":4800,"metadata":{"booking_id":"booking-1","hold_id":"hold-1"}}`,
			expected: &Event{
				TransactionID: "tx-001",
				BookingID:     "booking-1",
				HoldID:        "hold-1",
				Amount:        4800,
				Outcome:       payment.OutcomeSucceeded,
			},
		},
		{
			name:    "決済失敗イベント",
			payload: `{"id":"tx-002","status":"failed","amount":4800,"metadata":{"hold_id":"hold-1"}}`,
			expected: &Event{
				TransactionID: "tx-002",
				HoldID:        "hold-1",
				Amount:        4800,
				Outcome:       payment.OutcomeFailed,
			},
		},
		{
			name:    "処理中イベント",
			payload: `{"id":"tx-003","status":"pending","amount":4800,"metadata":{}}`,
			expected: &Event{
				TransactionID: "tx-003",
				Amount:        4800,
				Outcome:       payment.OutcomePending,
			},
		},
		{
			name:        "未知のステータス",
			payload:     `{"id":"tx-004","status":"refunded","amount":4800}`,
			errExpected: ErrBadPayload,
		},
		{
			name:        "トランザクションID欠落",
			payload:     `{"status":"succeeded","amount":4800}`,
			errExpected: ErrBadPayload,
		},
		{
			name:        "JSONとして不正",
			payload:     `{"id":`,
			errExpected: ErrBadPayload,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := p.Parse([]byte(tt.payload))
			if tt.errExpected != nil {
				assert.ErrorIs(t, err, tt.errExpected)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ev)
		})
	}
}

func TestBankgate_Parse(t *testing.T) {
	p := NewBankgate("secret")

	assert.Equal(t, "bankgate", p.Name())
	assert.Equal(t, BankgateChecksumHeader, p.SignatureHeader())

	tests := []struct {
		name        string
		payload     string
		expected    *Event
		errExpected error
	}{
		{
			name:    "振込完了イベント",
			payload: `{"transaction_ref":"BG-2025-0001","order_id":"booking-1","hold_ref":"hold-1","amount_cents":9600,"result_code":2}`,
			expected: &Event{
				TransactionID: "BG-2025-0001",
				BookingID:     "booking-1",
				HoldID:        "hold-1",
				Amount:        9600,
				Outcome:       payment.OutcomeSucceeded,
			},
		},
		{
			name:    "振込失敗イベント",
			payload: `{"transaction_ref":"BG-2025-0002","hold_ref":"hold-1","amount_cents":9600,"result_code":-1}`,
			expected: &Event{
				TransactionID: "BG-2025-0002",
				HoldID:        "hold-1",
				Amount:        9600,
				Outcome:       payment.OutcomeFailed,
			},
		},
		{
			name:    "処理中イベント",
			payload: `{"transaction_ref":"BG-2025-0003","amount_cents":9600,"result_code":0}`,
			expected: &Event{
				TransactionID: "BG-2025-0003",
				Amount:        9600,
				Outcome:       payment.OutcomePending,
			},
		},
		{
			name:        "未知の結果コード",
			payload:     `{"transaction_ref":"BG-2025-0004","result_code":99}`,
			errExpected: ErrBadPayload,
		},
		{
			name:        "トランザクション参照欠落",
			payload:     `{"order_id":"booking-1","result_code":2}`,
			errExpected: ErrBadPayload,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := p.Parse([]byte(tt.payload))
			if tt.errExpected != nil {
				assert.ErrorIs(t, err, tt.errExpected)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ev)
		})
	}
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry(NewFastpay("s1"), NewBankgate("s2"))

	t.Run("登録済みのプロバイダーを引ける", func(t *testing.T) {
		p, ok := registry.Get("fastpay")
		require.True(t, ok)
		assert.Equal(t, "fastpay", p.Name())

		p, ok = registry.Get("bankgate")
		require.True(t, ok)
		assert.Equal(t, "bankgate", p.Name())
	})

	t.Run("未登録のプロバイダーは見つからない", func(t *testing.T) {
		_, ok := registry.Get("paypal")
		assert.False(t, ok)
	})
}
