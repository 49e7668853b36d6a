package trip

import "errors"

// Trip ドメインのエラー定義
var (
	ErrTripNotFound      = errors.New("便が見つかりません")
	ErrTripNotScheduled  = errors.New("便は運行予定ではありません")
	ErrTripNotBookable   = errors.New("便は予約受付期間外です")
	ErrRouteIDRequired   = errors.New("路線IDは必須です")
	ErrVehicleIDRequired = errors.New("車両IDは必須です")
	ErrInvalidTripTime   = errors.New("到着予定は出発時刻より後である必要があります")
)
