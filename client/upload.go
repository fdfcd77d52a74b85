package client

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFileType 文件扩展名不在允许范围内
var ErrUnsupportedFileType = errors.New("仅支持 csv/xls/xlsx 文件")

// PreviewMaxRows 预览最多展示的数据行数
const PreviewMaxRows = 50

// PreviewTable 上传前的本地预览结果
// 预览只是给用户确认列对得上，提交给服务端的永远是原始文件
type PreviewTable struct {
	Headers   []string
	Rows      [][]string
	Truncated bool
}

// ValidatePreviewFile 校验文件名扩展名
// 不合法的文件在发起任何网络请求之前就被拒绝
func ValidatePreviewFile(fileName string) error {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".csv", ".xls", ".xlsx":
		return nil
	default:
		return ErrUnsupportedFileType
	}
}

// ParsePreview 解析文件内容生成预览表格
// 解析失败是可恢复的：返回错误但不影响后续重新选择文件
func ParsePreview(fileName string, r io.Reader) (*PreviewTable, error) {
	if err := ValidatePreviewFile(fileName); err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".csv":
		return parseCSVPreview(r)
	case ".xlsx":
		return parseXlsxPreview(r)
	default:
		// xls是旧二进制格式，本地不解析，交给服务端ETL处理
		return nil, fmt.Errorf("xls 文件不支持本地预览，可直接上传")
	}
}

// parseCSVPreview 解析CSV前若干行
func parseCSVPreview(r io.Reader) (*PreviewTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New("文件为空")
	}
	if err != nil {
		return nil, fmt.Errorf("解析CSV失败: %w", err)
	}

	table := &PreviewTable{Headers: fillHeaders(header)}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("解析CSV失败: %w", err)
		}
		if len(table.Rows) >= PreviewMaxRows {
			table.Truncated = true
			break
		}
		table.Rows = append(table.Rows, padRow(record, len(table.Headers)))
	}
	return table, nil
}

// parseXlsxPreview 解析xlsx首个工作表的前若干行
func parseXlsxPreview(r io.Reader) (*PreviewTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("打开xlsx失败: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("文件不含工作表")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("读取工作表失败: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("文件为空")
	}

	table := &PreviewTable{Headers: fillHeaders(rows[0])}
	for _, row := range rows[1:] {
		if len(table.Rows) >= PreviewMaxRows {
			table.Truncated = true
			break
		}
		table.Rows = append(table.Rows, padRow(row, len(table.Headers)))
	}
	return table, nil
}

// fillHeaders 空表头替换为column_N占位
func fillHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		headers[i] = h
	}
	return headers
}

// padRow 短行补齐到表头宽度
func padRow(row []string, width int) []string {
	if len(row) >= width {
		return row[:width]
	}
	padded := make([]string, width)
	copy(padded, row)
	return padded
}

// Upload 校验扩展名后提交上传
// 注意预览结果不参与提交，服务端收到的是原始文件字节
func (c *Client) Upload(ctx context.Context, division, fileName string, file io.Reader) (*ImportCreated, error) {
	if err := ValidatePreviewFile(fileName); err != nil {
		return nil, err
	}
	return c.CreateImport(ctx, division, fileName, file)
}
