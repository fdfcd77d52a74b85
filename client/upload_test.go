package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xuri/excelize/v2"
)

func TestValidatePreviewFile(t *testing.T) {
	assert.NoError(t, ValidatePreviewFile("data.csv"))
	assert.NoError(t, ValidatePreviewFile("data.XLSX"))
	assert.NoError(t, ValidatePreviewFile("legacy.xls"))
	assert.ErrorIs(t, ValidatePreviewFile("notes.txt"), ErrUnsupportedFileType)
	assert.ErrorIs(t, ValidatePreviewFile("archive.zip"), ErrUnsupportedFileType)
	assert.ErrorIs(t, ValidatePreviewFile("noext"), ErrUnsupportedFileType)
}

func TestUploadRejectsBeforeNetwork(t *testing.T) {
	// 非法扩展名在发起任何网络请求之前就被拒绝
	var requests int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(ImportCreated{ImportID: "x", Status: "QUEUED"})
	}))
	defer server.Close()

	c := New(server.URL)
	_, err := c.Upload(context.Background(), "MSDC", "notes.txt", strings.NewReader("x"))
	require.ErrorIs(t, err, ErrUnsupportedFileType)
	assert.Zero(t, atomic.LoadInt64(&requests))
}

func TestUploadSubmitsMultipart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "MSDC", r.FormValue("division"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "leads.csv", header.Filename)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(ImportCreated{ImportID: "imp-1", Status: "QUEUED", Message: "文件已入队等待处理"})
	}))
	defer server.Close()

	c := New(server.URL, WithToken("tok"), WithTenantID("t1"))
	created, err := c.Upload(context.Background(), "MSDC", "leads.csv", strings.NewReader("a,b\n1,2\n"))
	require.NoError(t, err)
	assert.Equal(t, "imp-1", created.ImportID)
	assert.Equal(t, "QUEUED", created.Status)
}

func TestUploadServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "无效的业务条线"})
	}))
	defer server.Close()

	c := New(server.URL)
	_, err := c.Upload(context.Background(), "BOGUS", "leads.csv", strings.NewReader("a\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "无效的业务条线")
}

func TestParsePreviewCSV(t *testing.T) {
	content := "Segment,Stage,Value\nTelkom,Leads,10\nSOE,Win,5\n"
	table, err := ParsePreview("data.csv", strings.NewReader(content))
	require.NoError(t, err)

	assert.Equal(t, []string{"Segment", "Stage", "Value"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"Telkom", "Leads", "10"}, table.Rows[0])
	assert.False(t, table.Truncated)
}

func TestParsePreviewCSVTruncates(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("col\n")
	for i := 0; i < PreviewMaxRows+10; i++ {
		sb.WriteString("x\n")
	}

	table, err := ParsePreview("big.csv", strings.NewReader(sb.String()))
	require.NoError(t, err)
	assert.Len(t, table.Rows, PreviewMaxRows)
	assert.True(t, table.Truncated)
}

func TestParsePreviewCSVFallbackHeaders(t *testing.T) {
	// 空表头用column_N占位
	content := ",Name,\na,b,c\n"
	table, err := ParsePreview("data.csv", strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, []string{"column_1", "Name", "column_3"}, table.Headers)
}

func TestParsePreviewCSVPadsShortRows(t *testing.T) {
	content := "a,b,c\n1,2\n"
	table, err := ParsePreview("data.csv", strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, []string{"1", "2", ""}, table.Rows[0])
}

func TestParsePreviewEmptyCSV(t *testing.T) {
	_, err := ParsePreview("empty.csv", strings.NewReader(""))
	require.Error(t, err)
}

func TestParsePreviewXlsx(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Segment", "Value"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"Telkom", 10}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"SOE", 5}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	table, err := ParsePreview("data.xlsx", buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"Segment", "Value"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Telkom", table.Rows[0][0])
}

func TestParsePreviewCorruptXlsxRecoverable(t *testing.T) {
	// 解析失败返回错误，调用方可重新选择文件
	_, err := ParsePreview("broken.xlsx", strings.NewReader("not an xlsx"))
	require.Error(t, err)
}

func TestParsePreviewXlsNotSupported(t *testing.T) {
	_, err := ParsePreview("legacy.xls", strings.NewReader("binary"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xls")
}
