package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"github.com/BerniceZTT/funnel_end/models"
	"github.com/BerniceZTT/funnel_end/service"
)

// DashboardFetcher 看板数据源抽象，Client实现该接口
type DashboardFetcher interface {
	GetFunnel2Rows(ctx context.Context, year int, segment string) (*models.FunnelResponse, error)
	GetLopTargets(ctx context.Context, year int) (*models.LopTargetsResponse, error)
}

// DashboardController 总览页视图状态控制器
// 管理年份切换、细分过滤和两个独立数据源的拉取状态。
// 年份切换采用"最后请求的年份获胜"策略：旧请求被取消，
// 即使旧响应先到也会被序号守卫丢弃，绝不覆盖新年份的数据
type DashboardController struct {
	mu      sync.Mutex
	fetcher DashboardFetcher

	supportedYears []int
	year           int
	segment        string

	funnel  FunnelResult
	targets TargetsResult

	// 每次发起新拉取时自增，响应回来时序号不匹配则丢弃
	funnelSeq  uint64
	targetsSeq uint64

	funnelCancel  context.CancelFunc
	targetsCancel context.CancelFunc

	onChange func()
}

// NewDashboardController 创建控制器
func NewDashboardController(fetcher DashboardFetcher, supportedYears []int, defaultYear int) *DashboardController {
	return &DashboardController{
		fetcher:        fetcher,
		supportedYears: supportedYears,
		year:           defaultYear,
		funnel:         FunnelResult{Status: StatusIdle},
		targets:        TargetsResult{Status: StatusIdle},
	}
}

// OnChange 注册状态变更回调
func (dc *DashboardController) OnChange(fn func()) {
	dc.mu.Lock()
	dc.onChange = fn
	dc.mu.Unlock()
}

// notify 状态变更后触发回调，必须在锁外调用
func (dc *DashboardController) notify() {
	dc.mu.Lock()
	fn := dc.onChange
	dc.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// isSupportedYear 判断年份是否受支持
func (dc *DashboardController) isSupportedYear(year int) bool {
	for _, y := range dc.supportedYears {
		if y == year {
			return true
		}
	}
	return false
}

// Year 当前选中的年份
func (dc *DashboardController) Year() int {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	return dc.year
}

// Segment 当前选中的细分规范键，空串表示不过滤
func (dc *DashboardController) Segment() string {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	return dc.segment
}

// Funnel 漏斗数据源的当前状态
func (dc *DashboardController) Funnel() FunnelResult {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	return dc.funnel
}

// Targets LOP目标数据源的当前状态
func (dc *DashboardController) Targets() TargetsResult {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	return dc.targets
}

// SelectYear 切换年份并重新拉取两个数据源
// 不支持的年份直接拒绝，状态保持不变
func (dc *DashboardController) SelectYear(ctx context.Context, year int) error {
	if !dc.isSupportedYear(year) {
		return fmt.Errorf("不支持的年份: %d", year)
	}

	dc.mu.Lock()
	dc.year = year
	dc.mu.Unlock()

	dc.fetchFunnel(ctx, year)
	dc.fetchTargets(ctx, year)
	return nil
}

// Refresh 按当前年份重新拉取两个数据源
func (dc *DashboardController) Refresh(ctx context.Context) {
	year := dc.Year()
	dc.fetchFunnel(ctx, year)
	dc.fetchTargets(ctx, year)
}

// Retry 重试单个数据源，另一个数据源的状态不受影响
func (dc *DashboardController) Retry(ctx context.Context, source string) error {
	year := dc.Year()
	switch source {
	case "funnel":
		dc.fetchFunnel(ctx, year)
	case "targets":
		dc.fetchTargets(ctx, year)
	default:
		return fmt.Errorf("未知的数据源: %s", source)
	}
	return nil
}

// fetchFunnel 发起漏斗数据拉取，取消上一次未完成的请求
func (dc *DashboardController) fetchFunnel(ctx context.Context, year int) {
	dc.mu.Lock()
	if dc.funnelCancel != nil {
		dc.funnelCancel()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	dc.funnelCancel = cancel
	dc.funnelSeq++
	seq := dc.funnelSeq
	dc.funnel = FunnelResult{Status: StatusLoading, Year: year}
	dc.mu.Unlock()
	dc.notify()

	go func() {
		resp, err := dc.fetcher.GetFunnel2Rows(fetchCtx, year, "")

		dc.mu.Lock()
		// 过期响应直接丢弃
		if seq != dc.funnelSeq {
			dc.mu.Unlock()
			return
		}
		if err != nil {
			dc.funnel = FunnelResult{Status: StatusError, Year: year, Err: err}
		} else {
			dc.funnel = FunnelResult{
				Status:  StatusSuccess,
				Rows:    resp.Rows,
				HasData: resp.HasData,
				Year:    year,
			}
		}
		dc.mu.Unlock()
		dc.notify()
	}()
}

// fetchTargets 发起LOP目标拉取，取消上一次未完成的请求
func (dc *DashboardController) fetchTargets(ctx context.Context, year int) {
	dc.mu.Lock()
	if dc.targetsCancel != nil {
		dc.targetsCancel()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	dc.targetsCancel = cancel
	dc.targetsSeq++
	seq := dc.targetsSeq
	dc.targets = TargetsResult{Status: StatusLoading, Year: year}
	dc.mu.Unlock()
	dc.notify()

	go func() {
		resp, err := dc.fetcher.GetLopTargets(fetchCtx, year)

		dc.mu.Lock()
		if seq != dc.targetsSeq {
			dc.mu.Unlock()
			return
		}
		if err != nil {
			dc.targets = TargetsResult{Status: StatusError, Year: year, Err: err}
		} else {
			dc.targets = TargetsResult{
				Status:  StatusSuccess,
				Data:    resp.Data,
				HasData: resp.HasData,
				Year:    year,
			}
		}
		dc.mu.Unlock()
		dc.notify()
	}()
}

// SelectSegment 切换细分过滤
// 纯内存过滤，不触发任何网络请求；无法归一化的标签按原样保存
func (dc *DashboardController) SelectSegment(label string) {
	key := label
	if seg, ok := service.NormalizeSegment(label); ok {
		key = string(seg)
	}

	dc.mu.Lock()
	dc.segment = key
	dc.mu.Unlock()
	dc.notify()
}

// ClearSegment 清除细分过滤
func (dc *DashboardController) ClearSegment() {
	dc.mu.Lock()
	dc.segment = ""
	dc.mu.Unlock()
	dc.notify()
}

// VisibleRows 当前细分过滤下可见的漏斗行
// 过滤按规范键匹配，保持原有顺序
func (dc *DashboardController) VisibleRows() []models.SegmentFunnel {
	dc.mu.Lock()
	rows := dc.funnel.Rows
	selected := dc.segment
	dc.mu.Unlock()

	if selected == "" {
		return rows
	}

	var visible []models.SegmentFunnel
	for _, row := range rows {
		key := row.Segment
		if seg, ok := service.NormalizeSegment(row.Segment); ok {
			key = string(seg)
		}
		if key == selected {
			visible = append(visible, row)
		}
	}
	return visible
}

// SegmentOptions 已拉取数据中出现的细分标签，按固定优先级排序
func (dc *DashboardController) SegmentOptions(includeTotal bool) []string {
	dc.mu.Lock()
	rows := dc.funnel.Rows
	dc.mu.Unlock()

	labels := make([]string, 0, len(rows))
	for _, row := range rows {
		labels = append(labels, row.Segment)
	}
	return service.OrderSegments(labels, includeTotal)
}

// QueryValues 需要镜像到URL查询串的状态
// 只镜像年份，细分过滤是会话内的临时状态，刻意不进URL
func (dc *DashboardController) QueryValues() url.Values {
	values := url.Values{}
	values.Set("year", strconv.Itoa(dc.Year()))
	return values
}

// SyncQuery 将当前状态同步到给定查询串
// 编码结果不变时返回changed=false，调用方据此跳过历史记录写入
func (dc *DashboardController) SyncQuery(current url.Values) (url.Values, bool) {
	next := url.Values{}
	for key, vals := range current {
		next[key] = append([]string(nil), vals...)
	}
	next.Set("year", strconv.Itoa(dc.Year()))

	changed := next.Encode() != current.Encode()
	return next, changed
}
