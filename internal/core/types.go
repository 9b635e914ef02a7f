package core

// Device is the uniform record every provider's payload is normalized into.
// Providers populate disjoint subsets of the identity fields; only Type is
// guaranteed to be present.
type Device struct {
	Lat       float64  `json:"lat"`
	Lon       float64  `json:"lon"`
	SSID      string   `json:"ssid,omitempty"`
	BSSID     string   `json:"bssid,omitempty"`
	CellID    string   `json:"cell_id,omitempty"`
	IP        string   `json:"ip,omitempty"`
	Vendor    string   `json:"vendor,omitempty"`
	Signal    *float64 `json:"signal,omitempty"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
	Timestamp string   `json:"timestamp,omitempty"`
	Type      string   `json:"type"`
	Info      string   `json:"info,omitempty"`
}

// Tower is a normalized cell-tower record served by the tower endpoints.
type Tower struct {
	ID     string  `json:"id"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	LAC    int     `json:"lac"`
	MCC    int     `json:"mcc"`
	MNC    int     `json:"mnc"`
	Signal int     `json:"signal"`
	Radio  string  `json:"radio"`
}

// Float returns a pointer to v, for the optional numeric Device fields.
func Float(v float64) *float64 {
	return &v
}
