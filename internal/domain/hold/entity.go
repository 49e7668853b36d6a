package hold

import "time"

// Status は仮押さえの状態を表す
type Status string

const (
	StatusActive   Status = "active"
	StatusConsumed Status = "consumed"
	StatusExpired  Status = "expired"
	StatusReleased Status = "released"
)

// TTLの既定値と上限
const (
	DefaultTTL = 10 * time.Minute
	MaxTTL     = 30 * time.Minute
)

// Hold は座席の時限付き専有クレームを表す
// active 以外は終端状態で、以降の遷移は起こらない
// 期限切れ（now > ExpiresAt）の active な Hold は、リーパーが物理的に
// 回収する前であっても全ての操作から存在しないものとして扱われる
type Hold struct {
	ID        string
	TripID    string
	SeatIDs   []string
	OwnerID   string
	Status    Status
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewHold は新しい仮押さえを作成する
// ttl が 0 の場合は DefaultTTL、上限を超える場合は丸める
func NewHold(tripID, ownerID string, seatIDs []string, ttl time.Duration) *Hold {
	now := time.Now()
	return &Hold{
		TripID:    tripID,
		SeatIDs:   seatIDs,
		OwnerID:   ownerID,
		Status:    StatusActive,
		ExpiresAt: now.Add(ClampTTL(ttl)),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ClampTTL はTTLを既定値・上限に丸める
// 指定されたTTLを引き延ばすことはない: created_at + ttl を過ぎた仮押さえは
// どれだけ短いTTLでも予約に使えない
func ClampTTL(ttl time.Duration) time.Duration {
	switch {
	case ttl == 0:
		return DefaultTTL
	case ttl > MaxTTL:
		return MaxTTL
	}
	return ttl
}

// IsExpired は期限切れかを返す
func (h *Hold) IsExpired() bool {
	return time.Now().After(h.ExpiresAt)
}

// IsActive は時計基準で有効な仮押さえかを返す
// リーパーの実行タイミングに関わらず、期限切れは無効として扱う
func (h *Hold) IsActive() bool {
	return h.Status == StatusActive && !h.IsExpired()
}

// Consume は仮押さえを予約へ消費する
func (h *Hold) Consume() error {
	if h.Status != StatusActive {
		return ErrHoldNotActive
	}
	if h.IsExpired() {
		return ErrHoldExpired
	}
	h.Status = StatusConsumed
	h.UpdatedAt = time.Now()
	return nil
}

// Release は仮押さえを明示的に解放する
func (h *Hold) Release() error {
	if h.Status != StatusActive {
		return ErrHoldNotActive
	}
	h.Status = StatusReleased
	h.UpdatedAt = time.Now()
	return nil
}

// Expire は仮押さえを期限切れにする
func (h *Hold) Expire() error {
	if h.Status != StatusActive {
		return ErrHoldNotActive
	}
	h.Status = StatusExpired
	h.UpdatedAt = time.Now()
	return nil
}

// Validate は仮押さえの検証を行う
func (h *Hold) Validate() error {
	if h.TripID == "" {
		return ErrTripIDRequired
	}
	if len(h.SeatIDs) == 0 {
		return ErrSeatIDsRequired
	}
	return nil
}
