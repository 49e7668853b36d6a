package trip

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTrip(t *testing.T) {
	departAt := time.Now().Add(24 * time.Hour)
	arriveBy := departAt.Add(8 * time.Hour)

	tr := NewTrip("tokyo-osaka", "bus-101", departAt, arriveBy)

	require.NoError(t, tr.Validate())
	assert.Equal(t, "tokyo-osaka", tr.RouteID)
	assert.Equal(t, "bus-101", tr.VehicleID)
	assert.Equal(t, StatusScheduled, tr.Status)
	assert.Equal(t, 0, tr.Version)
}

func TestTrip_Validate(t *testing.T) {
	departAt := time.Now().Add(24 * time.Hour)
	arriveBy := departAt.Add(8 * time.Hour)

	tests := []struct {
		name        string
		routeID     string
		vehicleID   string
		departAt    time.Time
		arriveBy    time.Time
		errExpected error
	}{
		{
			name: "正常な便", routeID: "tokyo-osaka", vehicleID: "bus-101",
			departAt: departAt, arriveBy: arriveBy,
		},
		{
			name: "路線ID未指定", routeID: "", vehicleID: "bus-101",
			departAt: departAt, arriveBy: arriveBy, errExpected: ErrRouteIDRequired,
		},
		{
			name: "車両ID未指定", routeID: "tokyo-osaka", vehicleID: "",
			departAt: departAt, arriveBy: arriveBy, errExpected: ErrVehicleIDRequired,
		},
		{
			name: "到着が出発より前", routeID: "tokyo-osaka", vehicleID: "bus-101",
			departAt: departAt, arriveBy: departAt.Add(-1 * time.Hour), errExpected: ErrInvalidTripTime,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTrip(tt.routeID, tt.vehicleID, tt.departAt, tt.arriveBy)
			err := tr.Validate()
			if tt.errExpected != nil {
				assert.ErrorIs(t, err, tt.errExpected)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestTrip_IsBookable(t *testing.T) {
	t.Run("出発前の運行予定便は予約可能", func(t *testing.T) {
		tr := NewTrip("r", "v", time.Now().Add(1*time.Hour), time.Now().Add(9*time.Hour))
		assert.True(t, tr.IsBookable())
	})

	t.Run("出発済みの便は予約不可", func(t *testing.T) {
		tr := NewTrip("r", "v", time.Now().Add(-1*time.Hour), time.Now().Add(7*time.Hour))
		assert.False(t, tr.IsBookable())
	})

	t.Run("運休の便は予約不可", func(t *testing.T) {
		tr := NewTrip("r", "v", time.Now().Add(1*time.Hour), time.Now().Add(9*time.Hour))
		require.NoError(t, tr.Cancel())
		assert.False(t, tr.IsBookable())
	})
}

func TestTrip_Cancel(t *testing.T) {
	t.Run("運行予定の便を運休にできる", func(t *testing.T) {
		tr := NewTrip("r", "v", time.Now().Add(1*time.Hour), time.Now().Add(9*time.Hour))
		require.NoError(t, tr.Cancel())
		assert.Equal(t, StatusCancelled, tr.Status)
	})

	t.Run("運休済みの便は再度運休にできない", func(t *testing.T) {
		tr := NewTrip("r", "v", time.Now().Add(1*time.Hour), time.Now().Add(9*time.Hour))
		require.NoError(t, tr.Cancel())
		assert.ErrorIs(t, tr.Cancel(), ErrTripNotScheduled)
	})
}

func TestTrip_Complete(t *testing.T) {
	t.Run("運行予定の便を完了にできる", func(t *testing.T) {
		tr := NewTrip("r", "v", time.Now().Add(-9*time.Hour), time.Now().Add(-1*time.Hour))
		require.NoError(t, tr.Complete())
		assert.Equal(t, StatusCompleted, tr.Status)
	})

	t.Run("運休の便は完了にできない", func(t *testing.T) {
		tr := NewTrip("r", "v", time.Now().Add(1*time.Hour), time.Now().Add(9*time.Hour))
		require.NoError(t, tr.Cancel())
		assert.ErrorIs(t, tr.Complete(), ErrTripNotScheduled)
	})
}
