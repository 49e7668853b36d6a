package seat

import "errors"

// Seat ドメインのエラー定義
var (
	ErrSeatNotFound       = errors.New("座席が見つかりません")
	ErrSeatConflict       = errors.New("座席は確保できません")
	ErrSeatNotHeld        = errors.New("座席は仮押さえされていません")
	ErrTripIDRequired     = errors.New("便IDは必須です")
	ErrSeatNumberRequired = errors.New("座席番号は必須です")
	ErrInvalidPrice       = errors.New("価格は0以上である必要があります")
)
