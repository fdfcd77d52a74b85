package client

import (
	"context"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/BerniceZTT/funnel_end/models"
	"github.com/BerniceZTT/funnel_end/service"
)

// LeadsFetcher 线索数据源抽象，Client实现该接口
type LeadsFetcher interface {
	GetMsdcLeads(ctx context.Context, q models.LeadsQuery) (*models.LeadsResponse, error)
}

// LeadsController 线索列表视图状态控制器
// 搜索输入经防抖后触发拉取，翻页立即拉取；
// 与看板控制器相同，过期响应被序号守卫丢弃
type LeadsController struct {
	mu      sync.Mutex
	fetcher LeadsFetcher

	query  models.LeadsQuery
	result LeadsResult

	seq       uint64
	cancel    context.CancelFunc
	debouncer *Debouncer

	onChange func()
}

// NewLeadsController 创建线索控制器
func NewLeadsController(fetcher LeadsFetcher) *LeadsController {
	return &LeadsController{
		fetcher: fetcher,
		query: models.LeadsQuery{
			Page:     1,
			PageSize: service.DefaultLeadsPageSize,
		},
		result:    LeadsResult{Status: StatusIdle},
		debouncer: NewDebouncer(300 * time.Millisecond),
	}
}

// OnChange 注册状态变更回调
func (lc *LeadsController) OnChange(fn func()) {
	lc.mu.Lock()
	lc.onChange = fn
	lc.mu.Unlock()
}

func (lc *LeadsController) notify() {
	lc.mu.Lock()
	fn := lc.onChange
	lc.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Query 当前查询参数
func (lc *LeadsController) Query() models.LeadsQuery {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.query
}

// Result 当前数据源状态
func (lc *LeadsController) Result() LeadsResult {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.result
}

// SetSearch 更新搜索词，防抖后回到第一页并重新拉取
func (lc *LeadsController) SetSearch(ctx context.Context, q string) {
	lc.mu.Lock()
	lc.query.Q = q
	lc.query.Page = 1
	lc.mu.Unlock()

	lc.debouncer.Do(func() {
		lc.Fetch(ctx)
	})
}

// SetStatus 更新状态过滤，回到第一页并立即拉取
func (lc *LeadsController) SetStatus(ctx context.Context, status string) {
	lc.mu.Lock()
	lc.query.Status = status
	lc.query.Page = 1
	lc.mu.Unlock()

	lc.Fetch(ctx)
}

// SetPage 翻页，立即拉取
func (lc *LeadsController) SetPage(ctx context.Context, page int) {
	if page < 1 {
		page = 1
	}
	lc.mu.Lock()
	lc.query.Page = page
	lc.mu.Unlock()

	lc.Fetch(ctx)
}

// Fetch 按当前查询参数拉取线索列表
func (lc *LeadsController) Fetch(ctx context.Context) {
	lc.mu.Lock()
	if lc.cancel != nil {
		lc.cancel()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	lc.cancel = cancel
	lc.seq++
	seq := lc.seq
	query := lc.query
	lc.result = LeadsResult{Status: StatusLoading}
	lc.mu.Unlock()
	lc.notify()

	go func() {
		resp, err := lc.fetcher.GetMsdcLeads(fetchCtx, query)

		lc.mu.Lock()
		if seq != lc.seq {
			lc.mu.Unlock()
			return
		}
		if err != nil {
			lc.result = LeadsResult{Status: StatusError, Err: err}
		} else {
			lc.result = LeadsResult{
				Status: StatusSuccess,
				Data:   resp.Data,
				Meta:   resp.Meta,
			}
		}
		lc.mu.Unlock()
		lc.notify()
	}()
}

// QueryValues 需要镜像到URL查询串的状态，默认值不写入
func (lc *LeadsController) QueryValues() url.Values {
	query := lc.Query()

	values := url.Values{}
	if query.Status != "" {
		values.Set("status", query.Status)
	}
	if query.Q != "" {
		values.Set("q", query.Q)
	}
	if query.Page > 1 {
		values.Set("page", strconv.Itoa(query.Page))
	}
	if query.PageSize != service.DefaultLeadsPageSize {
		values.Set("pageSize", strconv.Itoa(query.PageSize))
	}
	return values
}

// SyncQuery 将当前状态同步到给定查询串
// 编码结果不变时返回changed=false，调用方据此跳过历史记录写入
func (lc *LeadsController) SyncQuery(current url.Values) (url.Values, bool) {
	next := lc.QueryValues()
	changed := next.Encode() != current.Encode()
	return next, changed
}

// Close 释放防抖器资源
func (lc *LeadsController) Close() {
	lc.debouncer.Stop()

	lc.mu.Lock()
	if lc.cancel != nil {
		lc.cancel()
	}
	lc.mu.Unlock()
}
