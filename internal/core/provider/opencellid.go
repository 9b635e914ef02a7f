package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/h9zdev/wiretapper/internal/core"
)

const (
	unwiredProcessURL = "https://us1.unwiredlabs.com/v2/process.php"
	openCellIDAreaURL = "http://opencellid.org/cell/getInArea"
	openCellIDAjaxURL = "https://www.opencellid.org/ajax/getCells.php"
)

// OpenCellID covers the three cell-tower upstream shapes: the UnwiredLabs
// token "process" call and the two semi-documented public OpenCellID
// endpoints. The public endpoints are lenient by contract: a 200 body that
// is not JSON means "no usable payload" (nil result), never a decode error.
type OpenCellID struct {
	Token  string
	Client *http.Client

	// Test overrides.
	ProcessURL string
	AreaURL    string
	AjaxURL    string
}

// ProcessCell is one cell from the UnwiredLabs process response.
type ProcessCell struct {
	Lat      float64     `json:"lat"`
	Lon      float64     `json:"lon"`
	CellID   json.Number `json:"cellid"`
	Signal   *float64    `json:"signal"`
	Accuracy *float64    `json:"accuracy"`
	Updated  string      `json:"updated"`
}

// ProcessResponse is the UnwiredLabs process payload. A non-"ok" Status
// means zero results, not an error.
type ProcessResponse struct {
	Status string        `json:"status"`
	Cells  []ProcessCell `json:"cells"`
}

// Process performs the token+coordinate lookup.
func (o *OpenCellID) Process(ctx context.Context, lat, lon float64) (*ProcessResponse, error) {
	body, err := json.Marshal(map[string]any{
		"token":   o.Token,
		"lat":     lat,
		"lon":     lon,
		"address": 0,
	})
	if err != nil {
		return nil, &UpstreamError{Message: "encoding process request failed", Err: err}
	}

	target := o.ProcessURL
	if target == "" {
		target = unwiredProcessURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, &UpstreamError{Message: "building process request failed", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := doRequest(o.Client, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP response body

	var payload ProcessResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &UpstreamError{Message: "decoding process response failed", Err: err}
	}
	return &payload, nil
}

// GetInArea fetches towers inside bbox ("minLat,minLon,maxLat,maxLon"). The
// body is either {cells:[...]} or a bare list. A non-JSON 200 body returns
// (nil, nil); callers distinguish that from an empty (but valid) result.
func (o *OpenCellID) GetInArea(ctx context.Context, bbox string) ([]core.Tower, error) {
	target := o.AreaURL
	if target == "" {
		target = openCellIDAreaURL
	}
	params := url.Values{
		"key":    {o.Token},
		"BBOX":   {bbox},
		"format": {"json"},
	}

	data, err := o.getBody(ctx, target+"?"+params.Encode())
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(data) {
		return nil, nil
	}

	root := gjson.ParseBytes(data)
	cells := root
	if !root.IsArray() {
		cells = root.Get("cells")
	}

	towers := make([]core.Tower, 0)
	cells.ForEach(func(_, cell gjson.Result) bool {
		towers = append(towers, areaTower(cell))
		return true
	})
	return towers, nil
}

// AjaxCells fetches the GeoJSON tower layer for bbox
// ("minLon,minLat,maxLon,maxLat"). A non-JSON body or an empty object
// returns (nil, nil) - this endpoint, unlike GetInArea, never serves an
// empty top-level document on success.
func (o *OpenCellID) AjaxCells(ctx context.Context, bbox string) ([]core.Tower, error) {
	target := o.AjaxURL
	if target == "" {
		target = openCellIDAjaxURL
	}

	data, err := o.getBody(ctx, target+"?"+url.Values{"bbox": {bbox}}.Encode())
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(data) {
		return nil, nil
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() || len(root.Map()) == 0 {
		return nil, nil
	}

	towers := make([]core.Tower, 0)
	root.Get("features").ForEach(func(_, feature gjson.Result) bool {
		towers = append(towers, ajaxTower(feature))
		return true
	})
	return towers, nil
}

func (o *OpenCellID) getBody(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &UpstreamError{Message: "building opencellid request failed", Err: err}
	}

	resp, err := doRequest(o.Client, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP response body

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Message: "reading opencellid response failed", Err: err}
	}
	return data, nil
}

func areaTower(cell gjson.Result) core.Tower {
	id := "Unknown"
	if v := cell.Get("cellid"); v.Exists() {
		id = v.String()
	}
	radio := cell.Get("radio").String()
	if radio == "" {
		radio = "gsm"
	}
	return core.Tower{
		ID:     id,
		Lat:    cell.Get("lat").Float(),
		Lon:    cell.Get("lon").Float(),
		LAC:    int(cell.Get("lac").Int()),
		MCC:    int(cell.Get("mcc").Int()),
		MNC:    int(cell.Get("mnc").Int()),
		Signal: int(cell.Get("signal").Int()),
		Radio:  radio,
	}
}

func ajaxTower(feature gjson.Result) core.Tower {
	props := feature.Get("properties")
	coords := feature.Get("geometry.coordinates")

	id := props.Get("cellid")
	if !id.Exists() {
		id = props.Get("unit")
	}
	idStr := "Unknown"
	if id.Exists() {
		idStr = id.String()
	}

	radio := props.Get("radio").String()
	if radio == "" {
		radio = "gsm"
	}

	// GeoJSON property names differ from the area endpoint:
	// net is the MNC, area the LAC, samples the signal proxy.
	return core.Tower{
		ID:     idStr,
		Lat:    coords.Get("1").Float(),
		Lon:    coords.Get("0").Float(),
		LAC:    int(props.Get("area").Int()),
		MCC:    int(props.Get("mcc").Int()),
		MNC:    int(props.Get("net").Int()),
		Signal: int(props.Get("samples").Int()),
		Radio:  radio,
	}
}
