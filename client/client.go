package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/BerniceZTT/funnel_end/models"
)

// apiError 服务端错误响应体
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Client 看板API客户端
type Client struct {
	baseURL    string
	token      string
	tenantID   string
	httpClient *http.Client
}

// Option 客户端配置项
type Option func(*Client)

// WithToken 设置认证token
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTenantID 设置租户ID请求头
func WithTenantID(tenantID string) Option {
	return func(c *Client) { c.tenantID = tenantID }
}

// WithHTTPClient 替换底层HTTP客户端
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New 创建看板API客户端
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// doJSON 发送请求并将成功响应解码到out
// 非2xx响应解析{error}字段转为error返回
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("构建请求失败: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.tenantID != "" {
		req.Header.Set("X-Tenant-Id", c.tenantID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("读取响应失败: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("服务端错误(%d): %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("服务端错误(%d)", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("解析响应失败: %w", err)
	}
	return nil
}

// GetFunnel2Rows 获取按细分分组的漏斗数据
func (c *Client) GetFunnel2Rows(ctx context.Context, year int, segment string) (*models.FunnelResponse, error) {
	query := url.Values{}
	query.Set("year", strconv.Itoa(year))
	if segment != "" {
		query.Set("segment", segment)
	}

	var out models.FunnelResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/funnel-2rows", query, nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetLopTargets 获取各细分的目标与LOP指标
func (c *Client) GetLopTargets(ctx context.Context, year int) (*models.LopTargetsResponse, error) {
	query := url.Values{}
	query.Set("year", strconv.Itoa(year))

	var out models.LopTargetsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/lop-targets", query, nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetMsdcLeads 获取MSDC线索列表
func (c *Client) GetMsdcLeads(ctx context.Context, q models.LeadsQuery) (*models.LeadsResponse, error) {
	query := url.Values{}
	if q.Status != "" {
		query.Set("status", q.Status)
	}
	if q.Q != "" {
		query.Set("q", q.Q)
	}
	if q.Page > 0 {
		query.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		query.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	if q.Lembaga != "" {
		query.Set("lembaga", q.Lembaga)
	}
	if q.Year > 0 {
		query.Set("year", strconv.Itoa(q.Year))
	}

	var out models.LeadsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/leads/msdc", query, nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ImportCreated POST /api/imports 的成功响应
type ImportCreated struct {
	ImportID string `json:"importId"`
	Status   string `json:"status"`
	Message  string `json:"message"`
}

// CreateImport 上传数据文件，multipart字段为file和division
func (c *Client) CreateImport(ctx context.Context, division, fileName string, file io.Reader) (*ImportCreated, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("构建multipart失败: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("写入文件内容失败: %w", err)
	}
	if err := writer.WriteField("division", division); err != nil {
		return nil, fmt.Errorf("写入division字段失败: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("关闭multipart失败: %w", err)
	}

	var out ImportCreated
	if err := c.doJSON(ctx, http.MethodPost, "/api/imports", nil, &buf, writer.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListImports 获取当前租户的导入历史
func (c *Client) ListImports(ctx context.Context) ([]models.ImportRecord, error) {
	var out struct {
		Success bool                  `json:"success"`
		Data    []models.ImportRecord `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/imports", nil, nil, "", &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}
