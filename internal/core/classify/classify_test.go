package classify

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDevice(t *testing.T) {
	tests := []struct {
		name     string
		fallback string
		want     string
	}{
		// Case variations - matching is case-insensitive
		{"Tesla Model 3", "bluetooth", "car"},
		{"tesla model 3", "bluetooth", "car"},
		{"FORD SYNC", "bluetooth", "car"},
		// TV brands
		{"Samsung QLED 75", "bluetooth", "tv"},
		{"KDL-55W805", "router", "tv"},
		// Audio
		{"Sony WH-1000XM4", "bluetooth", "headphone"},
		{"JBL Flip 5", "bluetooth", "headphone"},
		// Surveillance
		{"Hikvision DS-2CD", "router", "camera"},
		{"Ring Doorbell", "router", "camera"},
		// Wearables
		{"Apple Watch", "bluetooth", "iot"},
		{"FITBIT CHARGE", "bluetooth", "iot"},
		// No match keeps the caller's default
		{"Linksys02842", "router", "router"},
		{"Hidden_BT_Tracker", "bluetooth", "bluetooth"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Device(tc.name, tc.fallback))
		})
	}
}

func TestDeviceGroupOrder(t *testing.T) {
	// GARMIN appears in the wearable group, but dashcam is checked first.
	require.Equal(t, "dashcam", Device("GARMIN DASH CAM", "bluetooth"))
	require.Equal(t, "dashcam", Device("70mai Pro Plus", "router"))
	// A plain GARMIN name still lands in the wearable group.
	require.Equal(t, "iot", Device("Garmin Forerunner", "bluetooth"))
	// CAM alone resolves to camera, not dashcam.
	require.Equal(t, "camera", Device("IPCAM-3000", "router"))
}

func TestDeviceEmptyName(t *testing.T) {
	require.Equal(t, "router", Device("", "router"))
	require.Equal(t, "iot_device", Device("", "iot_device"))
}
