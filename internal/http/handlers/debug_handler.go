// Mobile debugging endpoints.
//
// Some mobile webviews mangle POST bodies or strip headers in ways that are
// hard to reproduce; these endpoints exist so a struggling client can be
// inspected in the field:
//   - POST|GET /api/test-mobile   (echo the parsed body and headers back)
//   - GET      /api/mobile-debug  (show the attribution the server derives)
//
// Both are public and return whatever they saw verbatim; they never touch
// the store.
package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kmarinos/go-anonbox-backend/internal/clientinfo"
)

// flattenHeaders joins multi-valued headers for echo responses.
func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vv := range h {
		out[k] = strings.Join(vv, ", ")
	}
	return out
}

// TestMobile echoes the request back to the caller. POST parses the raw body
// and reports parse failures verbatim; GET just confirms the endpoint is up.
func (h *Handlers) TestMobile(c *gin.Context) {
	headers := flattenHeaders(c.Request.Header)

	if c.Request.Method == http.MethodGet {
		ok(c, http.StatusOK, gin.H{
			"message":   "Test endpoint is working",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		ok(c, http.StatusInternalServerError, gin.H{
			"error":   "Server error",
			"details": err.Error(),
		})
		return
	}
	if len(raw) == 0 {
		ok(c, http.StatusBadRequest, gin.H{
			"error":   "Empty request body",
			"headers": headers,
		})
		return
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		ok(c, http.StatusBadRequest, gin.H{
			"error":      "JSON parse error",
			"rawBody":    string(raw),
			"parseError": err.Error(),
			"headers":    headers,
		})
		return
	}

	ok(c, http.StatusOK, gin.H{
		"success":      true,
		"message":      "Mobile test successful",
		"receivedData": parsed,
		"headers":      headers,
	})
}

// MobileDebug reports the sender attribution the server would attach to a
// message submitted by this request.
func (h *Handlers) MobileDebug(c *gin.Context) {
	attr := clientinfo.Resolve(c.Request.Header, c.Request.RemoteAddr)

	ok(c, http.StatusOK, gin.H{
		"success":   true,
		"message":   "Mobile debug endpoint working",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"attribution": gin.H{
			"ip":         attr.IP,
			"user_agent": attr.UserAgent,
			"location":   attr.Location,
		},
		"sender_hint": clientinfo.ParseUserAgent(attr.UserAgent),
		"requestInfo": gin.H{
			"method":      c.Request.Method,
			"url":         c.Request.URL.String(),
			"contentType": c.ContentType(),
			"headers":     flattenHeaders(c.Request.Header),
		},
	})
}
