package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BerniceZTT/funnel_end/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFunnel2Rows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/funnel-2rows", r.URL.Path)
		assert.Equal(t, "2025", r.URL.Query().Get("year"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "t1", r.Header.Get("X-Tenant-Id"))

		json.NewEncoder(w).Encode(models.FunnelResponse{
			Rows:    []models.SegmentFunnel{{Segment: "SOE"}},
			Year:    2025,
			HasData: true,
		})
	}))
	defer server.Close()

	c := New(server.URL, WithToken("tok"), WithTenantID("t1"))
	resp, err := c.GetFunnel2Rows(context.Background(), 2025, "")
	require.NoError(t, err)
	assert.Equal(t, 2025, resp.Year)
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, "SOE", resp.Rows[0].Segment)
}

func TestGetFunnel2RowsSegmentParam(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Telkom Group", r.URL.Query().Get("segment"))
		json.NewEncoder(w).Encode(models.FunnelResponse{Year: 2026})
	}))
	defer server.Close()

	c := New(server.URL)
	_, err := c.GetFunnel2Rows(context.Background(), 2026, "Telkom Group")
	require.NoError(t, err)
}

func TestGetLopTargetsServerError(t *testing.T) {
	// 服务端失败时返回{data:[], error}，客户端转为error
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data":  []models.LopTargetRow{},
			"error": "查询目标数据失败",
		})
	}))
	defer server.Close()

	c := New(server.URL)
	_, err := c.GetLopTargets(context.Background(), 2026)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "查询目标数据失败")
}

func TestGetMsdcLeadsQueryParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "Open", q.Get("status"))
		assert.Equal(t, "telkom", q.Get("q"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "50", q.Get("pageSize"))

		json.NewEncoder(w).Encode(models.LeadsResponse{
			Meta: models.LeadsMeta{Total: 120, Page: 2, PageSize: 50},
		})
	}))
	defer server.Close()

	c := New(server.URL)
	resp, err := c.GetMsdcLeads(context.Background(), models.LeadsQuery{
		Status: "Open", Q: "telkom", Page: 2, PageSize: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(120), resp.Meta.Total)
}

func TestClientContextCancellation(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(server.URL)
	_, err := c.GetLopTargets(ctx, 2026)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
