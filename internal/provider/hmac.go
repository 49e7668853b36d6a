package provider

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign はシークレットでペイロードのHMAC-SHA256署名（hex）を計算する
// テストとクライアント実装の両方で使う
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature は生ペイロードの署名を定数時間で比較する
func VerifySignature(secret string, payload []byte, signature string) error {
	expected := Sign(secret, payload)
	// hmac.Equal はタイミング攻撃を防ぐ定数時間比較
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}
	return nil
}
