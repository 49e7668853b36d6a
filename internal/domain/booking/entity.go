package booking

import "time"

// Status は予約の状態を表す
type Status string

const (
	StatusReserved        Status = "reserved"
	StatusPaid            Status = "paid"
	StatusPaymentFailed   Status = "payment_failed"
	StatusCancelRequested Status = "cancel_requested"
	StatusCancelled       Status = "cancelled"
)

// Booking は確定済みの座席予約を表す
// 消費した Hold のIDを恒久的な外部キーとして保持し、
// 決済プロバイダーが hold_id でしか照会できない場合の突合に使う
type Booking struct {
	ID          string
	TripID      string
	HoldID      string
	SeatIDs     []string
	OwnerID     string
	Status      Status
	TotalAmount int
	PaymentID   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewBooking は仮押さえから新しい予約を作成する
func NewBooking(tripID, holdID, ownerID string, seatIDs []string, totalAmount int) *Booking {
	now := time.Now()
	return &Booking{
		TripID:      tripID,
		HoldID:      holdID,
		SeatIDs:     seatIDs,
		OwnerID:     ownerID,
		Status:      StatusReserved,
		TotalAmount: totalAmount,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// MarkPaid は予約を支払い済みにする
func (b *Booking) MarkPaid(paymentID string) error {
	if b.Status != StatusReserved {
		return ErrBookingNotPayable
	}
	b.Status = StatusPaid
	b.PaymentID = &paymentID
	b.UpdatedAt = time.Now()
	return nil
}

// MarkPaymentFailed は予約を支払い失敗にする
func (b *Booking) MarkPaymentFailed(paymentID string) error {
	if b.Status != StatusReserved {
		return ErrBookingNotPayable
	}
	b.Status = StatusPaymentFailed
	b.PaymentID = &paymentID
	b.UpdatedAt = time.Now()
	return nil
}

// RequestCancel は購入者によるキャンセル申請を受け付ける
// 運行管理者・経理の確認待ちの中間状態であり、このエンジンは以降の遷移を自動では行わない
func (b *Booking) RequestCancel() error {
	if b.Status != StatusReserved && b.Status != StatusPaid {
		return ErrBookingNotCancellable
	}
	b.Status = StatusCancelRequested
	b.UpdatedAt = time.Now()
	return nil
}

// Cancel は予約をキャンセルする（運行管理者用）
func (b *Booking) Cancel() error {
	if b.Status == StatusCancelled {
		return ErrBookingAlreadyCancelled
	}
	if b.Status == StatusPaid {
		return ErrBookingNotCancellable
	}
	b.Status = StatusCancelled
	b.UpdatedAt = time.Now()
	return nil
}

// Validate は予約の検証を行う
func (b *Booking) Validate() error {
	if b.TripID == "" {
		return ErrTripIDRequired
	}
	if b.HoldID == "" {
		return ErrHoldIDRequired
	}
	if b.OwnerID == "" {
		return ErrOwnerIDRequired
	}
	if len(b.SeatIDs) == 0 {
		return ErrSeatIDsRequired
	}
	return nil
}
