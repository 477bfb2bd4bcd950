package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"styleme/internal/model"
	"styleme/internal/service"
)

// Searcher runs natural-language product searches
type Searcher interface {
	Search(ctx context.Context, req *model.SearchRequest) *model.SearchResponse
	SearchStream(ctx context.Context, req *model.SearchRequest, callback service.SearchEventCallback) (*model.SearchResponse, error)
}

// SearchHandler handles search-related HTTP requests
type SearchHandler struct {
	searcher Searcher
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(searcher Searcher) *SearchHandler {
	return &SearchHandler{searcher: searcher}
}

// Search handles GET and POST /api/v1/search. Business failures are reported
// with success:false and HTTP 200.
func (h *SearchHandler) Search(c *gin.Context) {
	req, msg := bindSearchRequest(c)
	if msg != "" {
		c.JSON(http.StatusOK, service.ErrorResponse(msg))
		return
	}
	c.JSON(http.StatusOK, h.searcher.Search(c.Request.Context(), req))
}

// SearchStream handles POST /api/v1/search/stream - SSE streaming search
func (h *SearchHandler) SearchStream(c *gin.Context) {
	req, msg := bindSearchRequest(c)
	if msg != "" {
		c.JSON(http.StatusOK, service.ErrorResponse(msg))
		return
	}

	// Create flusher for SSE
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusOK, service.ErrorResponse("Streaming not supported"))
		return
	}

	// Set SSE headers
	c.Header("Content-Type", "text/event-stream; charset=utf-8")
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	ctx := c.Request.Context()
	response, err := h.searcher.SearchStream(ctx, req, func(event string, data any) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		sendSSE(c, event, data)
		flusher.Flush()
		return nil
	})
	if err != nil {
		// client went away
		return
	}
	if !response.Success {
		sendSSE(c, "error", response)
		flusher.Flush()
	}
}

// sendSSE sends a Server-Sent Event
func sendSSE(c *gin.Context, event string, data any) {
	if data == nil {
		fmt.Fprintf(c.Writer, "event: %s\ndata: {}\n\n", event)
		return
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		fmt.Fprintf(c.Writer, "event: error\ndata: {\"success\":false,\"message\":\"JSON marshal failed\"}\n\n")
		return
	}
	fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, string(jsonData))
}

// bindSearchRequest reads the request from a JSON body (POST) or query
// parameters (GET). A POST whose body is empty or not JSON is read from the
// query parameters. A non-empty message means the request is rejected.
func bindSearchRequest(c *gin.Context) (*model.SearchRequest, string) {
	if c.Request.Method == http.MethodGet {
		return bindSearchQuery(c)
	}
	var req model.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.Is(err, io.EOF) || errors.As(err, &syntaxErr) {
			return bindSearchQuery(c)
		}
		return nil, "Invalid request: " + err.Error()
	}
	return &req, ""
}

func bindSearchQuery(c *gin.Context) (*model.SearchRequest, string) {
	var req model.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		return nil, "Invalid request: " + err.Error()
	}
	if req.Query == "" {
		req.Query = c.Query("q")
	}
	req.Preferences = preferencesFromQuery(c)
	return &req, ""
}

// preferencesFromQuery builds a preference set from GET parameters. Tag lists
// accept repeated keys, the [] suffix, or comma-separated values.
func preferencesFromQuery(c *gin.Context) *model.PreferenceSet {
	prefs := &model.PreferenceSet{
		StylePreferences: queryList(c, "style_preferences"),
		ColorPreferences: queryList(c, "color_preferences"),
		BudgetMin:        queryFloat(c, "budget_min"),
		BudgetMax:        queryFloat(c, "budget_max"),
		Occasion:         c.Query("occasion"),
	}
	if prefs.IsEmpty() {
		return nil
	}
	return prefs
}

func queryList(c *gin.Context, key string) []string {
	var out []string
	for _, raw := range append(c.QueryArray(key), c.QueryArray(key+"[]")...) {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func queryFloat(c *gin.Context, key string) *float64 {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}
