package booking

import "errors"

// Booking ドメインのエラー定義
var (
	ErrBookingNotFound         = errors.New("予約が見つかりません")
	ErrBookingNotPayable       = errors.New("予約は支払い待ちではありません")
	ErrBookingNotCancellable   = errors.New("予約はキャンセルできません")
	ErrBookingAlreadyCancelled = errors.New("予約は既にキャンセルされています")
	ErrTripIDRequired          = errors.New("便IDは必須です")
	ErrHoldIDRequired          = errors.New("仮押さえIDは必須です")
	ErrOwnerIDRequired         = errors.New("購入者IDは必須です")
	ErrSeatIDsRequired         = errors.New("座席IDは必須です")
)
