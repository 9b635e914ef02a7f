// Package classify refines coarse device categories from free-text device
// names and banners using ordered keyword groups.
package classify

import "strings"

// keywordGroup pairs a device category with the name fragments that imply it.
type keywordGroup struct {
	category string
	keywords []string
}

// groups are evaluated in order and the first match wins. The order is
// load-bearing: "GARMIN DASH CAM" must resolve to dashcam even though GARMIN
// also appears in the wearable group further down.
var groups = []keywordGroup{
	{"car", []string{
		"CAR", "FORD", "TOYOTA", "BMW", "TESLA", "SYNC", "MAZDA",
		"HONDA", "UCONNECT", "HYUNDAI", "LEXUS", "NISSAN",
	}},
	{"tv", []string{
		"TV", "BRAVIA", "VIZIO", "SAMSUNG", "LG", "ROKU", "FIRE",
		"SMARTVIEW", "KDL-",
	}},
	{"headphone", []string{
		"HEADPHONE", "EARBUD", "BOSE", "SONY", "BEATS", "AUDIO",
		"AIRPOD", "JBL", "SENNHEISER",
	}},
	{"dashcam", []string{
		"DASHCAM", "DASH CAM", "DVR", "70MAI", "VIOFO", "GARMIN DASH",
	}},
	{"camera", []string{
		"CAM", "SURVEILLANCE", "SECURITY", "NEST", "RING", "ARLO",
		"HIKVISION", "DAHUA", "REOLINK",
	}},
	{"iot", []string{
		"WATCH", "FITBIT", "GARMIN", "WHOOP",
	}},
}

// Device maps a free-text device name to a refined category. An empty name or
// a name matching no keyword group returns fallback unchanged.
func Device(name, fallback string) string {
	if name == "" {
		return fallback
	}

	upper := strings.ToUpper(name)
	for _, group := range groups {
		for _, keyword := range group.keywords {
			if strings.Contains(upper, keyword) {
				return group.category
			}
		}
	}

	return fallback
}
