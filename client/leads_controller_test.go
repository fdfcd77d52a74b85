package client

import (
	"context"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/BerniceZTT/funnel_end/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLeadsFetcher struct {
	mu    sync.Mutex
	calls int
	last  models.LeadsQuery
}

func (f *fakeLeadsFetcher) GetMsdcLeads(ctx context.Context, q models.LeadsQuery) (*models.LeadsResponse, error) {
	f.mu.Lock()
	f.calls++
	f.last = q
	f.mu.Unlock()

	return &models.LeadsResponse{
		Data: []models.MsdcLead{{LeadID: "1", CustomerName: "PT Telkom"}},
		Meta: models.LeadsMeta{Total: 1, Page: q.Page, PageSize: q.PageSize},
	}, nil
}

func (f *fakeLeadsFetcher) snapshot() (int, models.LeadsQuery) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls, f.last
}

func TestLeadsControllerFetch(t *testing.T) {
	fetcher := &fakeLeadsFetcher{}
	lc := NewLeadsController(fetcher)
	defer lc.Close()

	lc.Fetch(context.Background())
	require.Eventually(t, func() bool {
		return lc.Result().Status == StatusSuccess
	}, 2*time.Second, 5*time.Millisecond)

	result := lc.Result()
	require.Len(t, result.Data, 1)
	assert.Equal(t, int64(1), result.Meta.Total)
}

func TestLeadsControllerSearchDebounced(t *testing.T) {
	fetcher := &fakeLeadsFetcher{}
	lc := NewLeadsController(fetcher)
	defer lc.Close()

	ctx := context.Background()

	// 快速连续输入，只有最后一次搜索词触发请求
	lc.SetSearch(ctx, "t")
	lc.SetSearch(ctx, "te")
	lc.SetSearch(ctx, "telkom")

	require.Eventually(t, func() bool {
		calls, _ := fetcher.snapshot()
		return calls == 1
	}, 2*time.Second, 10*time.Millisecond)

	// 防抖窗口过后不再有多余请求
	time.Sleep(400 * time.Millisecond)
	calls, last := fetcher.snapshot()
	assert.Equal(t, 1, calls)
	assert.Equal(t, "telkom", last.Q)
	assert.Equal(t, 1, last.Page, "搜索应回到第一页")
}

func TestLeadsControllerSetPageImmediate(t *testing.T) {
	fetcher := &fakeLeadsFetcher{}
	lc := NewLeadsController(fetcher)
	defer lc.Close()

	lc.SetPage(context.Background(), 3)
	require.Eventually(t, func() bool {
		calls, _ := fetcher.snapshot()
		return calls == 1
	}, 2*time.Second, 5*time.Millisecond)

	_, last := fetcher.snapshot()
	assert.Equal(t, 3, last.Page)

	// 非法页码回退到第一页
	lc.SetPage(context.Background(), 0)
	require.Eventually(t, func() bool {
		calls, _ := fetcher.snapshot()
		return calls == 2
	}, 2*time.Second, 5*time.Millisecond)
	_, last = fetcher.snapshot()
	assert.Equal(t, 1, last.Page)
}

func TestLeadsControllerStatusFilter(t *testing.T) {
	fetcher := &fakeLeadsFetcher{}
	lc := NewLeadsController(fetcher)
	defer lc.Close()

	lc.SetPage(context.Background(), 2)
	require.Eventually(t, func() bool {
		calls, _ := fetcher.snapshot()
		return calls == 1
	}, 2*time.Second, 5*time.Millisecond)

	lc.SetStatus(context.Background(), "Open")
	require.Eventually(t, func() bool {
		calls, _ := fetcher.snapshot()
		return calls == 2
	}, 2*time.Second, 5*time.Millisecond)

	_, last := fetcher.snapshot()
	assert.Equal(t, "Open", last.Status)
	assert.Equal(t, 1, last.Page, "切换状态过滤应回到第一页")
}

func TestLeadsQueryValuesOmitDefaults(t *testing.T) {
	fetcher := &fakeLeadsFetcher{}
	lc := NewLeadsController(fetcher)
	defer lc.Close()

	// 默认状态不产生任何查询参数
	assert.Empty(t, lc.QueryValues().Encode())

	lc.SetPage(context.Background(), 2)
	lc.SetStatus(context.Background(), "Open")

	values := lc.QueryValues()
	assert.Equal(t, "Open", values.Get("status"))
	// 切换状态过滤回到第一页，page不写入
	assert.Empty(t, values.Get("page"))
}

func TestLeadsSyncQueryNoRedundantWrites(t *testing.T) {
	fetcher := &fakeLeadsFetcher{}
	lc := NewLeadsController(fetcher)
	defer lc.Close()

	current := url.Values{}
	_, changed := lc.SyncQuery(current)
	assert.False(t, changed)

	lc.SetPage(context.Background(), 3)
	next, changed := lc.SyncQuery(current)
	assert.True(t, changed)
	assert.Equal(t, "3", next.Get("page"))
}

func TestDebouncerTrailingEdge(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	var fired int64
	for i := 0; i < 5; i++ {
		d.Do(func() { atomic.AddInt64(&fired, 1) })
	}

	require.Eventually(t, func() bool {
		return atomic.LoadInt64(&fired) == 1
	}, 2*time.Second, 5*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int64(1), atomic.LoadInt64(&fired))
}

func TestDebouncerStop(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var fired int64
	d.Do(func() { atomic.AddInt64(&fired, 1) })
	d.Stop()

	time.Sleep(120 * time.Millisecond)
	assert.Zero(t, atomic.LoadInt64(&fired))
}
