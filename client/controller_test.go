package client

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/BerniceZTT/funnel_end/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher 可控的数据源假实现
// blockFunnel中的年份会阻塞到对应channel关闭或上下文取消
type fakeFetcher struct {
	mu          sync.Mutex
	funnelCalls int
	targetCalls int

	blockFunnel map[int]chan struct{}
	funnelErr   map[int]error
	targetsErr  map[int]error
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		blockFunnel: make(map[int]chan struct{}),
		funnelErr:   make(map[int]error),
		targetsErr:  make(map[int]error),
	}
}

func (f *fakeFetcher) GetFunnel2Rows(ctx context.Context, year int, segment string) (*models.FunnelResponse, error) {
	f.mu.Lock()
	f.funnelCalls++
	block := f.blockFunnel[year]
	err := f.funnelErr[year]
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return &models.FunnelResponse{
		Rows: []models.SegmentFunnel{
			{Segment: "Telkom Group", Stages: map[models.FunnelStage]models.FunnelCell{
				models.StageLeads: {ValueM: float64(year), Projects: 1},
			}},
			{Segment: "SOE", Stages: map[models.FunnelStage]models.FunnelCell{}},
		},
		Year:    year,
		HasData: true,
	}, nil
}

func (f *fakeFetcher) GetLopTargets(ctx context.Context, year int) (*models.LopTargetsResponse, error) {
	f.mu.Lock()
	f.targetCalls++
	err := f.targetsErr[year]
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return &models.LopTargetsResponse{
		Data:    []models.LopTargetRow{{Segment: "Telkom Group", TargetRkapM: 100}},
		HasData: true,
		Year:    year,
	}, nil
}

func (f *fakeFetcher) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.funnelCalls, f.targetCalls
}

var testYears = []int{2024, 2025, 2026}

func waitStatus(t *testing.T, get func() FetchStatus, want FetchStatus) {
	t.Helper()
	require.Eventually(t, func() bool {
		return get() == want
	}, 2*time.Second, 5*time.Millisecond)
}

func TestSelectYearRejectsUnsupported(t *testing.T) {
	dc := NewDashboardController(newFakeFetcher(), testYears, 2026)

	err := dc.SelectYear(context.Background(), 2019)
	require.Error(t, err)
	assert.Equal(t, 2026, dc.Year())
	assert.Equal(t, StatusIdle, dc.Funnel().Status)
}

func TestSelectYearFetchesBothSources(t *testing.T) {
	fetcher := newFakeFetcher()
	dc := NewDashboardController(fetcher, testYears, 2026)

	require.NoError(t, dc.SelectYear(context.Background(), 2025))

	waitStatus(t, func() FetchStatus { return dc.Funnel().Status }, StatusSuccess)
	waitStatus(t, func() FetchStatus { return dc.Targets().Status }, StatusSuccess)

	assert.Equal(t, 2025, dc.Funnel().Year)
	assert.Equal(t, 2025, dc.Targets().Year)
	assert.True(t, dc.Funnel().HasData)
}

func TestSelectYearStaleResponseDropped(t *testing.T) {
	fetcher := newFakeFetcher()
	release2025 := make(chan struct{})
	fetcher.blockFunnel[2025] = release2025

	dc := NewDashboardController(fetcher, testYears, 2026)
	ctx := context.Background()

	// 先切到2025，该请求被挂住
	require.NoError(t, dc.SelectYear(ctx, 2025))
	assert.Equal(t, StatusLoading, dc.Funnel().Status)

	// 再切到2026，2026应立即完成
	require.NoError(t, dc.SelectYear(ctx, 2026))
	waitStatus(t, func() FetchStatus { return dc.Funnel().Status }, StatusSuccess)
	require.Equal(t, 2026, dc.Funnel().Year)

	// 放行2025的迟到响应，它必须被丢弃而不是覆盖2026的数据
	close(release2025)
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, StatusSuccess, dc.Funnel().Status)
	assert.Equal(t, 2026, dc.Funnel().Year)
	cell := dc.Funnel().Rows[0].Stages[models.StageLeads]
	assert.Equal(t, 2026.0, cell.ValueM)
}

func TestPartialFailureIsolated(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.funnelErr[2025] = errors.New("boom")

	dc := NewDashboardController(fetcher, testYears, 2026)
	require.NoError(t, dc.SelectYear(context.Background(), 2025))

	// 漏斗失败不影响目标数据源
	waitStatus(t, func() FetchStatus { return dc.Funnel().Status }, StatusError)
	waitStatus(t, func() FetchStatus { return dc.Targets().Status }, StatusSuccess)

	require.Error(t, dc.Funnel().Err)
	assert.True(t, dc.Targets().HasData)
}

func TestRetrySingleSource(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.funnelErr[2025] = errors.New("boom")

	dc := NewDashboardController(fetcher, testYears, 2026)
	ctx := context.Background()
	require.NoError(t, dc.SelectYear(ctx, 2025))
	waitStatus(t, func() FetchStatus { return dc.Funnel().Status }, StatusError)
	waitStatus(t, func() FetchStatus { return dc.Targets().Status }, StatusSuccess)

	_, targetCallsBefore := fetcher.calls()

	// 清除故障后只重试漏斗数据源
	fetcher.mu.Lock()
	delete(fetcher.funnelErr, 2025)
	fetcher.mu.Unlock()

	require.NoError(t, dc.Retry(ctx, "funnel"))
	waitStatus(t, func() FetchStatus { return dc.Funnel().Status }, StatusSuccess)

	_, targetCallsAfter := fetcher.calls()
	assert.Equal(t, targetCallsBefore, targetCallsAfter, "重试漏斗不应触发目标请求")

	require.Error(t, dc.Retry(ctx, "unknown"))
}

func TestSelectSegmentIsPureFilter(t *testing.T) {
	fetcher := newFakeFetcher()
	dc := NewDashboardController(fetcher, testYears, 2026)
	ctx := context.Background()

	require.NoError(t, dc.SelectYear(ctx, 2026))
	waitStatus(t, func() FetchStatus { return dc.Funnel().Status }, StatusSuccess)

	funnelCalls, targetCalls := fetcher.calls()

	dc.SelectSegment("telkom")
	assert.Equal(t, string(models.SegmentTELKOM_GROUP), dc.Segment())

	visible := dc.VisibleRows()
	require.Len(t, visible, 1)
	assert.Equal(t, "Telkom Group", visible[0].Segment)

	dc.ClearSegment()
	assert.Len(t, dc.VisibleRows(), 2)

	// 细分切换前后请求数不变
	funnelAfter, targetAfter := fetcher.calls()
	assert.Equal(t, funnelCalls, funnelAfter)
	assert.Equal(t, targetCalls, targetAfter)
}

func TestSegmentOptionsOrdered(t *testing.T) {
	fetcher := newFakeFetcher()
	dc := NewDashboardController(fetcher, testYears, 2026)

	require.NoError(t, dc.SelectYear(context.Background(), 2026))
	waitStatus(t, func() FetchStatus { return dc.Funnel().Status }, StatusSuccess)

	options := dc.SegmentOptions(true)
	assert.Equal(t, []string{"Telkom Group", "SOE"}, options)
}

func TestQueryValuesMirrorsYearOnly(t *testing.T) {
	dc := NewDashboardController(newFakeFetcher(), testYears, 2026)
	dc.SelectSegment("SOE")

	values := dc.QueryValues()
	assert.Equal(t, "2026", values.Get("year"))
	assert.Empty(t, values.Get("segment"))
	assert.Len(t, values, 1)
}

func TestSyncQueryNoRedundantWrites(t *testing.T) {
	dc := NewDashboardController(newFakeFetcher(), testYears, 2026)

	// 已经一致时不产生写入
	current := url.Values{"year": {"2026"}}
	next, changed := dc.SyncQuery(current)
	assert.False(t, changed)
	assert.Equal(t, "2026", next.Get("year"))

	// 年份不同则写入，其它键保持不动
	current = url.Values{"year": {"2024"}, "tab": {"funnel"}}
	next, changed = dc.SyncQuery(current)
	assert.True(t, changed)
	assert.Equal(t, "2026", next.Get("year"))
	assert.Equal(t, "funnel", next.Get("tab"))
}

func TestOnChangeNotified(t *testing.T) {
	fetcher := newFakeFetcher()
	dc := NewDashboardController(fetcher, testYears, 2026)

	var mu sync.Mutex
	notified := 0
	dc.OnChange(func() {
		mu.Lock()
		notified++
		mu.Unlock()
	})

	require.NoError(t, dc.SelectYear(context.Background(), 2025))
	waitStatus(t, func() FetchStatus { return dc.Funnel().Status }, StatusSuccess)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return notified >= 2
	}, 2*time.Second, 5*time.Millisecond)
}
