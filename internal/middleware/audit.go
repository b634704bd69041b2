package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prefeitura-rio/app-fomento/internal/models"
)

const (
	auditActionKey = "audit_action"
	auditSkipKey   = "audit_skip"
)

// ActivityRecorder appends entries to a user's log.
// *services.UserLogService implements it.
type ActivityRecorder interface {
	AppendAsync(email string, entry models.LogEntry)
}

// SetAuditAction names the action recorded for the current request.
func SetAuditAction(c *gin.Context, action string) {
	c.Set(auditActionKey, action)
}

// SkipAudit stops the audit middleware from recording the current request.
func SkipAudit(c *gin.Context) {
	c.Set(auditSkipKey, true)
}

// Audit appends an entry to the caller's log for every successful
// authenticated write request.
func Audit(recorder ActivityRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		if method != http.MethodPost && method != http.MethodPut && method != http.MethodDelete && method != http.MethodPatch {
			c.Next()
			return
		}

		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/v1/health") || strings.HasPrefix(path, "/metrics") {
			c.Next()
			return
		}

		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 || c.GetBool(auditSkipKey) {
			return
		}
		session := SessionFrom(c)
		if session == nil || session.Email == "" {
			return
		}

		resource := extractResourceFromPath(path)
		action := c.GetString(auditActionKey)
		if action == "" {
			action = mapHTTPMethodToAction(method) + "_" + resource
		}

		metadata := map[string]string{
			"endpoint":        path,
			"method":          method,
			"resource":        resource,
			"ip_address":      c.ClientIP(),
			"response_status": strconv.Itoa(status),
		}
		if id := extractResourceID(c); id != "" {
			metadata["resource_id"] = id
		}
		if requestID := c.GetString(requestIDKey); requestID != "" {
			metadata["request_id"] = requestID
		}
		if len(c.Request.URL.RawQuery) > 0 {
			metadata["query_params"] = c.Request.URL.RawQuery
		}

		recorder.AppendAsync(session.Email, models.LogEntry{
			Action:    action,
			Timestamp: time.Now().UTC(),
			Metadata:  metadata,
		})
	}
}

// mapHTTPMethodToAction maps HTTP methods to audit actions
func mapHTTPMethodToAction(method string) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodDelete:
		return "delete"
	default:
		return "update"
	}
}

// extractResourceFromPath extracts the resource type from the request path
func extractResourceFromPath(path string) string {
	path = strings.TrimPrefix(path, "/v1/")
	path = strings.TrimPrefix(path, "admin/")

	parts := strings.Split(path, "/")
	switch {
	case parts[0] == "cidades" && len(parts) > 2:
		return parts[2]
	case parts[0] != "":
		return parts[0]
	}
	return "unknown"
}

// extractResourceID extracts the resource identifier from route parameters
func extractResourceID(c *gin.Context) string {
	for _, name := range []string{"id", "cityId", "email"} {
		if id := c.Param(name); id != "" {
			return id
		}
	}
	return ""
}
