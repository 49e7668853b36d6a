package seat

import "time"

// Status は座席の状態を表す
type Status string

const (
	StatusFree    Status = "free"
	StatusHeld    Status = "held"
	StatusBooked  Status = "booked"
	StatusBlocked Status = "blocked"
)

// Seat は座席エンティティを表す
// 状態が free 以外のとき、HoldID / BookingID のどちらか一方だけが
// 生きた Hold / Booking を指す（両方を同時に指すことはない）
type Seat struct {
	ID         string
	TripID     string
	SeatNumber string
	Class      string
	Status     Status
	Price      int
	HoldID     *string
	BookingID  *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Version    int // 楽観的ロック用
}

// NewSeat は新しい座席を作成する
func NewSeat(tripID, seatNumber, class string, price int) *Seat {
	now := time.Now()
	return &Seat{
		TripID:     tripID,
		SeatNumber: seatNumber,
		Class:      class,
		Status:     StatusFree,
		Price:      price,
		CreatedAt:  now,
		UpdatedAt:  now,
		Version:    0,
	}
}

// IsFree は座席が確保可能かを返す
func (s *Seat) IsFree() bool {
	return s.Status == StatusFree
}

// Hold は座席を仮押さえ状態にする
func (s *Seat) Hold(holdID string) error {
	if s.Status != StatusFree {
		return ErrSeatConflict
	}
	s.Status = StatusHeld
	s.HoldID = &holdID
	s.UpdatedAt = time.Now()
	return nil
}

// Book は仮押さえ中の座席を予約確定にする
func (s *Seat) Book(bookingID string) error {
	if s.Status != StatusHeld {
		return ErrSeatNotHeld
	}
	s.Status = StatusBooked
	s.HoldID = nil
	s.BookingID = &bookingID
	s.UpdatedAt = time.Now()
	return nil
}

// Release は座席を解放する
func (s *Seat) Release() {
	s.Status = StatusFree
	s.HoldID = nil
	s.BookingID = nil
	s.UpdatedAt = time.Now()
}

// Block は座席を提供停止にする（運行管理者用）
func (s *Seat) Block() error {
	if s.Status != StatusFree {
		return ErrSeatConflict
	}
	s.Status = StatusBlocked
	s.UpdatedAt = time.Now()
	return nil
}

// Validate は座席の検証を行う
func (s *Seat) Validate() error {
	if s.TripID == "" {
		return ErrTripIDRequired
	}
	if s.SeatNumber == "" {
		return ErrSeatNumberRequired
	}
	if s.Price < 0 {
		return ErrInvalidPrice
	}
	return nil
}
