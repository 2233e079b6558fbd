package ee

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClientWithHTTPClient("demo-project", server.URL, server.Client())
}

func TestGetOperationRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":{"code":500,"message":"backend error","status":"INTERNAL"}}`))
			return
		}
		w.Write([]byte(`{"name":"projects/demo-project/operations/abc","metadata":{"state":"RUNNING"}}`))
	})

	op, err := client.GetOperation(context.Background(), "projects/demo-project/operations/abc")
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, StateRunning, op.State())
	assert.False(t, op.Finished())
}

func TestForbiddenFailsWithoutRetry(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"permission denied on project","status":"PERMISSION_DENIED"}}`))
	})

	_, err := client.GetOperation(context.Background(), "projects/demo-project/operations/abc")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Contains(t, err.Error(), "unauthorized access")
	assert.Contains(t, err.Error(), "permission denied on project")
}

func TestExhaustedRetriesReportLastError(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`))
	})

	_, err := client.GetOperation(context.Background(), "projects/demo-project/operations/abc")
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestExportVideoToDriveRequest(t *testing.T) {
	var captured map[string]interface{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/projects/demo-project/video:export", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(`{"name":"projects/demo-project/operations/xyz","metadata":{"state":"PENDING"}}`))
	})

	coll := LoadCollection("MODIS/061/MOD09A1").Select("sur_refl_b01", "sur_refl_b02", "sur_refl_b03")
	op, err := client.ExportVideoToDrive(context.Background(), coll, VideoExport{
		Description:     "bands:B1,B2,B3;loc:42;s:2021-04-01;e:2021-09-30",
		Folder:          "demo_videos",
		FileNamePrefix:  "bands:B1,B2,B3;loc:42;s:2021-04-01;e:2021-09-30",
		FramesPerSecond: 12,
		Region:          PolygonGeometry(squarePolygon()),
		ScaleMeters:     500,
		CRS:             "EPSG:4326",
	})
	require.NoError(t, err)
	assert.Equal(t, "projects/demo-project/operations/xyz", op.Name)
	assert.Equal(t, StatePending, op.State())

	assert.NotEmpty(t, captured["requestId"])
	assert.Equal(t, "bands:B1,B2,B3;loc:42;s:2021-04-01;e:2021-09-30", captured["description"])

	video := captured["videoOptions"].(map[string]interface{})
	assert.Equal(t, float64(12), video["framesPerSecond"])

	export := captured["fileExportOptions"].(map[string]interface{})
	assert.Equal(t, "MP4", export["fileFormat"])
	drive := export["driveDestination"].(map[string]interface{})
	assert.Equal(t, "demo_videos", drive["folder"])
	assert.Equal(t, "bands:B1,B2,B3;loc:42;s:2021-04-01;e:2021-09-30", drive["filenamePrefix"])

	expression := captured["expression"].(map[string]interface{})
	assert.NotEmpty(t, expression["result"])
	assert.NotEmpty(t, expression["values"])

	exprRaw, err := json.Marshal(expression)
	require.NoError(t, err)
	assert.Contains(t, string(exprRaw), "Image.clipToBoundsAndScale")
	assert.Contains(t, string(exprRaw), "Image.reproject")
	assert.Contains(t, string(exprRaw), "EPSG:4326")
}

func TestWaitOperationPollsUntilDone(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.Write([]byte(`{"name":"projects/demo-project/operations/abc","metadata":{"state":"RUNNING"}}`))
			return
		}
		w.Write([]byte(`{"name":"projects/demo-project/operations/abc","done":true,"metadata":{"state":"SUCCEEDED","progress":1}}`))
	})

	op, err := client.WaitOperation(context.Background(), "projects/demo-project/operations/abc", time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, StateSucceeded, op.State())
	assert.True(t, op.Finished())
}

func TestListOperationsFollowsPagination(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/projects/demo-project/operations", r.URL.Path)
		if r.URL.Query().Get("pageToken") == "" {
			w.Write([]byte(`{"operations":[{"name":"projects/demo-project/operations/a"}],"nextPageToken":"next"}`))
			return
		}
		w.Write([]byte(`{"operations":[{"name":"projects/demo-project/operations/b"}]}`))
	})

	ops, err := client.ListOperations(context.Background())
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, "projects/demo-project/operations/a", ops[0].Name)
	assert.Equal(t, "projects/demo-project/operations/b", ops[1].Name)
}

func TestCancelOperation(t *testing.T) {
	var path string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Write([]byte(`{}`))
	})

	err := client.CancelOperation(context.Background(), "projects/demo-project/operations/abc")
	require.NoError(t, err)
	assert.Equal(t, "/projects/demo-project/operations/abc:cancel", path)
}

func TestComputePixelsReturnsRawBytes(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a}
	var captured map[string]interface{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/projects/demo-project/image:computePixels", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write(payload)
	})

	img := LoadCollection("MODIS/061/MOD09A1").Mosaic()
	got, err := client.ComputePixels(context.Background(), img, PixelGrid{
		Width:      256,
		Height:     256,
		CRSCode:    "EPSG:4326",
		ScaleX:     0.005,
		ScaleY:     -0.005,
		TranslateX: -47.2,
		TranslateY: -3.1,
	}, FormatPNG)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	assert.Equal(t, "PNG", captured["fileFormat"])
	grid := captured["grid"].(map[string]interface{})
	dims := grid["dimensions"].(map[string]interface{})
	assert.Equal(t, float64(256), dims["width"])
	assert.Equal(t, "EPSG:4326", grid["crsCode"])
}

func TestComputeNumber(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/projects/demo-project/value:compute", r.URL.Path)
		w.Write([]byte(`{"result":1894.5}`))
	})

	got, err := client.ComputeNumber(context.Background(), ConstantNumber(0))
	require.NoError(t, err)
	assert.Equal(t, 1894.5, got)
}

func TestDecodeAPIErrorFallsBackToRawBody(t *testing.T) {
	structured := decodeAPIError(400, []byte(`{"error":{"code":400,"message":"bad expression","status":"INVALID_ARGUMENT"}}`))
	assert.Equal(t, 400, structured.Code)
	assert.Equal(t, "INVALID_ARGUMENT", structured.Status)
	assert.Contains(t, structured.Error(), "bad expression")

	raw := decodeAPIError(502, []byte("upstream connect error"))
	assert.Equal(t, 502, raw.HTTPStatus)
	assert.Contains(t, raw.Error(), "upstream connect error")
}
