package trip

import "time"

// Status は便の状態を表す
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// Trip は運行便エンティティを表す
type Trip struct {
	ID        string
	RouteID   string
	VehicleID string
	DepartAt  time.Time
	ArriveBy  time.Time
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int // 楽観的ロック用
}

// NewTrip は新しい便を作成する
func NewTrip(routeID, vehicleID string, departAt, arriveBy time.Time) *Trip {
	now := time.Now()
	return &Trip{
		RouteID:   routeID,
		VehicleID: vehicleID,
		DepartAt:  departAt,
		ArriveBy:  arriveBy,
		Status:    StatusScheduled,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   0,
	}
}

// IsBookable は便が予約可能かを返す
// 運行予定かつ出発前の便のみ座席を確保できる
func (t *Trip) IsBookable() bool {
	return t.Status == StatusScheduled && time.Now().Before(t.DepartAt)
}

// Cancel は便を運休にする
func (t *Trip) Cancel() error {
	if t.Status != StatusScheduled {
		return ErrTripNotScheduled
	}
	t.Status = StatusCancelled
	t.UpdatedAt = time.Now()
	return nil
}

// Complete は便を運行完了にする
func (t *Trip) Complete() error {
	if t.Status != StatusScheduled {
		return ErrTripNotScheduled
	}
	t.Status = StatusCompleted
	t.UpdatedAt = time.Now()
	return nil
}

// Validate は便の検証を行う
func (t *Trip) Validate() error {
	if t.RouteID == "" {
		return ErrRouteIDRequired
	}
	if t.VehicleID == "" {
		return ErrVehicleIDRequired
	}
	if t.ArriveBy.Before(t.DepartAt) {
		return ErrInvalidTripTime
	}
	return nil
}
