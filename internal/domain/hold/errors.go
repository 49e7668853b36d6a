package hold

import "errors"

// Hold ドメインのエラー定義
var (
	ErrHoldNotFound    = errors.New("仮押さえが見つかりません")
	ErrHoldExpired     = errors.New("仮押さえの有効期限が切れています")
	ErrHoldNotActive   = errors.New("仮押さえは有効ではありません")
	ErrTripIDRequired  = errors.New("便IDは必須です")
	ErrSeatIDsRequired = errors.New("座席IDは必須です")
	ErrDuplicateSeatID = errors.New("座席IDが重複しています")
	ErrInvalidTTL      = errors.New("TTLは正の値である必要があります")
)
