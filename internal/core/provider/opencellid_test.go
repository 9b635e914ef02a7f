package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProcess(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","cells":[
			{"lat":51.5052,"lon":-0.0898,"cellid":123456789,"signal":-70,"accuracy":100,"updated":"2025-04-11T10:01:00Z"}
		]}`))
	}))
	defer srv.Close()

	o := &OpenCellID{Token: "tok", ProcessURL: srv.URL}
	resp, err := o.Process(context.Background(), 51.505, -0.09)
	require.NoError(t, err)
	require.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Cells, 1)
	require.Equal(t, "123456789", resp.Cells[0].CellID.String())
	require.NotNil(t, resp.Cells[0].Signal)
	require.Equal(t, float64(-70), *resp.Cells[0].Signal)

	require.Equal(t, "tok", gotBody["token"])
	require.InDelta(t, 51.505, gotBody["lat"].(float64), 1e-9)
	require.Equal(t, float64(0), gotBody["address"])
}

func TestProcessNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"error","message":"No valid token"}`))
	}))
	defer srv.Close()

	o := &OpenCellID{Token: "tok", ProcessURL: srv.URL}
	resp, err := o.Process(context.Background(), 51.505, -0.09)
	require.NoError(t, err)
	// Non-"ok" status is zero results for the caller, not an error.
	require.Equal(t, "error", resp.Status)
	require.Empty(t, resp.Cells)
}

func TestGetInAreaObjectBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "51.455,-0.14,51.555,-0.04", r.URL.Query().Get("BBOX"))
		require.Equal(t, "json", r.URL.Query().Get("format"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"cells":[
			{"cellid":42,"lat":51.5,"lon":-0.1,"lac":101,"mcc":234,"mnc":30,"signal":-80,"radio":"lte"},
			{"cellid":43,"lat":51.51,"lon":-0.11,"lac":101,"mcc":234,"mnc":30}
		]}`))
	}))
	defer srv.Close()

	o := &OpenCellID{Token: "key", AreaURL: srv.URL}
	towers, err := o.GetInArea(context.Background(), "51.455,-0.14,51.555,-0.04")
	require.NoError(t, err)
	require.Len(t, towers, 2)
	require.Equal(t, "42", towers[0].ID)
	require.Equal(t, "lte", towers[0].Radio)
	// Absent signal and radio fall back to defaults.
	require.Equal(t, 0, towers[1].Signal)
	require.Equal(t, "gsm", towers[1].Radio)
}

func TestGetInAreaBareListBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"cellid":7,"lat":51.5,"lon":-0.1,"lac":9,"mcc":234,"mnc":10,"signal":-60}]`))
	}))
	defer srv.Close()

	o := &OpenCellID{Token: "key", AreaURL: srv.URL}
	towers, err := o.GetInArea(context.Background(), "bbox")
	require.NoError(t, err)
	require.Len(t, towers, 1)
	require.Equal(t, "7", towers[0].ID)
	require.Equal(t, -60, towers[0].Signal)
}

func TestGetInAreaNonJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>rate limited</html>"))
	}))
	defer srv.Close()

	o := &OpenCellID{Token: "key", AreaURL: srv.URL}
	towers, err := o.GetInArea(context.Background(), "bbox")
	require.NoError(t, err)
	// Lenient: no usable payload, not a decode error.
	require.Nil(t, towers)
}

func TestGetInAreaEmptyObjectIsValid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	o := &OpenCellID{Token: "key", AreaURL: srv.URL}
	towers, err := o.GetInArea(context.Background(), "bbox")
	require.NoError(t, err)
	// Valid JSON without cells is an empty result, distinct from nil.
	require.NotNil(t, towers)
	require.Empty(t, towers)
}

func TestAjaxCells(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "-0.1,51.495,-0.08,51.515", r.URL.Query().Get("bbox"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"type":"FeatureCollection","features":[
			{"properties":{"cellid":555,"area":12,"mcc":234,"net":30,"samples":17,"radio":"umts"},
			 "geometry":{"type":"Point","coordinates":[-0.09,51.505]}},
			{"properties":{"unit":9,"area":12,"mcc":234,"net":30,"samples":3},
			 "geometry":{"type":"Point","coordinates":[-0.091,51.506]}}
		]}`))
	}))
	defer srv.Close()

	o := &OpenCellID{AjaxURL: srv.URL}
	towers, err := o.AjaxCells(context.Background(), "-0.1,51.495,-0.08,51.515")
	require.NoError(t, err)
	require.Len(t, towers, 2)

	// Property mapping: net -> mnc, area -> lac, samples -> signal,
	// coordinates are [lon, lat].
	require.Equal(t, "555", towers[0].ID)
	require.InDelta(t, 51.505, towers[0].Lat, 1e-9)
	require.InDelta(t, -0.09, towers[0].Lon, 1e-9)
	require.Equal(t, 12, towers[0].LAC)
	require.Equal(t, 30, towers[0].MNC)
	require.Equal(t, 17, towers[0].Signal)
	require.Equal(t, "umts", towers[0].Radio)

	// unit substitutes for a missing cellid; radio defaults to gsm.
	require.Equal(t, "9", towers[1].ID)
	require.Equal(t, "gsm", towers[1].Radio)
}

func TestAjaxCellsEmptyObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	o := &OpenCellID{AjaxURL: srv.URL}
	towers, err := o.AjaxCells(context.Background(), "bbox")
	require.NoError(t, err)
	// Unlike GetInArea, an empty object here means no usable payload.
	require.Nil(t, towers)
}

func TestAjaxCellsNonJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("maintenance"))
	}))
	defer srv.Close()

	o := &OpenCellID{AjaxURL: srv.URL}
	towers, err := o.AjaxCells(context.Background(), "bbox")
	require.NoError(t, err)
	require.Nil(t, towers)
}

func TestOpenCellIDStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	o := &OpenCellID{Token: "bad", AreaURL: srv.URL}
	_, err := o.GetInArea(context.Background(), "bbox")

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	require.Equal(t, http.StatusForbidden, upstream.StatusCode)
}
