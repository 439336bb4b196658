// Command bookmarksort-mcp exposes the bookmarksort API as MCP tools over
// stdio.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/use-agent/bookmarksort/category"
	"github.com/use-agent/bookmarksort/models"
)

func main() {
	apiURL := os.Getenv("BOOKMARKSORT_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:5000"
	}
	api := newAPIClient(apiURL, os.Getenv("BOOKMARKSORT_API_KEY"))

	s := server.NewMCPServer(
		"bookmarksort",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	classifyTool := mcp.NewTool("classify_bookmarks",
		mcp.WithDescription("Classify bookmarks into categories. Returns a per-category summary followed by the classified bookmarks as JSON."),
		mcp.WithString("bookmarks",
			mcp.Required(),
			mcp.Description(`JSON array of bookmarks, e.g. [{"title":"GitHub","url":"https://github.com","folder":"Dev"}]`),
		),
		mcp.WithString("method",
			mcp.Description("Classification method: 'keyword' (default), 'tfidf', 'folder', 'domain', or 'smart_keyword' (fetches each page's live title)"),
			mcp.Enum("keyword", "tfidf", "folder", "domain", "smart_keyword"),
		),
		mcp.WithString("categories",
			mcp.Description(`Optional JSON object overriding category keywords, e.g. {"recipes":["cooking","菜谱"]}`),
		),
	)
	s.AddTool(classifyTool, handleClassify(api))

	parseTool := mcp.NewTool("parse_bookmark_file",
		mcp.WithDescription("Upload a browser bookmark export (Netscape HTML) from the local disk and return its bookmarks as JSON."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the exported bookmarks .html file"),
		),
	)
	s.AddTool(parseTool, handleParseFile(api))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiClient talks to a running bookmarksort server.
type apiClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func newAPIClient(baseURL, apiKey string) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Minute},
	}
}

// do sends req and decodes a 2xx JSON body into out. Error bodies are
// surfaced as "[CODE] message".
func (a *apiClient) do(req *http.Request, out any) error {
	if a.apiKey != "" {
		req.Header.Set("X-API-Key", a.apiKey)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		var errResp models.ErrorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != nil {
			return fmt.Errorf("[%s] %s", errResp.Error.Code, errResp.Error.Message)
		}
		return fmt.Errorf("API returned status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func (a *apiClient) postJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return a.do(req, out)
}

func (a *apiClient) upload(ctx context.Context, name string, content []byte) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		return "", err
	}
	if _, err := fw.Write(content); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/v1/upload", &buf)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp models.UploadResponse
	if err := a.do(req, &resp); err != nil {
		return "", err
	}
	return resp.Filename, nil
}

func handleClassify(api *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := request.RequireString("bookmarks")
		if err != nil {
			return mcp.NewToolResultError("bookmarks is required"), nil
		}

		req := models.ClassifyRequest{Method: request.GetString("method", "")}
		if err := json.Unmarshal([]byte(raw), &req.Bookmarks); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("bookmarks must be a JSON array: %v", err)), nil
		}
		if cats := request.GetString("categories", ""); cats != "" {
			var table category.Table
			if err := json.Unmarshal([]byte(cats), &table); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("categories must be a JSON object: %v", err)), nil
			}
			req.Categories = table
		}

		var resp models.ClassifyResponse
		if err := api.postJSON(ctx, "/api/v1/classify", req, &resp); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		out, err := json.MarshalIndent(resp.Classified, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to format result: %v", err)), nil
		}
		return mcp.NewToolResultText(summarize(resp.Classified) + "\n" + string(out)), nil
	}
}

func handleParseFile(api *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := request.RequireString("path")
		if err != nil {
			return mcp.NewToolResultError("path is required"), nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read %s: %v", path, err)), nil
		}

		handle, err := api.upload(ctx, filepath.Base(path), content)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("upload failed: %v", err)), nil
		}

		var resp models.ParseResponse
		if err := api.postJSON(ctx, "/api/v1/parse", models.ParseRequest{Filename: handle}, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("parse failed: %v", err)), nil
		}

		out, err := json.MarshalIndent(resp.Bookmarks, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to format result: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Parsed %d bookmarks from %s\n\n%s", len(resp.Bookmarks), path, out)), nil
	}
}

// summarize renders "label: count" lines, largest first.
func summarize(bookmarks []models.Bookmark) string {
	counts := make(map[string]int)
	for _, b := range bookmarks {
		counts[b.Category]++
	}
	labels := make([]string, 0, len(counts))
	for l := range counts {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool {
		if counts[labels[i]] != counts[labels[j]] {
			return counts[labels[i]] > counts[labels[j]]
		}
		return labels[i] < labels[j]
	})

	var sb strings.Builder
	fmt.Fprintf(&sb, "Classified %d bookmarks:\n", len(bookmarks))
	for _, l := range labels {
		fmt.Fprintf(&sb, "- %s: %d\n", l, counts[l])
	}
	return sb.String()
}
