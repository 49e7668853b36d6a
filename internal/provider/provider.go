package provider

import (
	"errors"

	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/payment"
)

// プロバイダー層のエラー定義
var (
	ErrUnknownProvider  = errors.New("未知の決済プロバイダーです")
	ErrInvalidSignature = errors.New("Webhook署名が一致しません")
	ErrBadPayload       = errors.New("Webhookペイロードを解釈できません")
)

// Event はプロバイダーごとのペイロードを正規化した内部イベント
// TransactionID が冪等性キーになる
type Event struct {
	TransactionID string
	BookingID     string
	HoldID        string
	Amount        int
	Outcome       payment.Outcome
}

// Provider は1つの決済プロバイダーの認証とペイロード正規化を表す
// Verify は必ず Parse より先に呼ばれ、失敗したペイロードは一切処理されない
type Provider interface {
	// Name はプロバイダー名（Webhookパスの識別子）を返す
	Name() string

	// SignatureHeader は署名が載るHTTPヘッダー名を返す
	SignatureHeader() string

	// Verify は生のペイロードに対する署名を検証する
	Verify(payload []byte, signature string) error

	// Parse はペイロードを正規化イベントに変換する
	Parse(payload []byte) (*Event, error)
}

// Registry はプロバイダー名から実装を引く
type Registry struct {
	providers map[string]Provider
}

// NewRegistry は新しいレジストリを作成する
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	return r
}

// Get は名前からプロバイダーを取得する
func (r *Registry) Get(name string) (Provider, bool) {
	p, ok := r.providers[name]
	return p, ok
}
