package ginapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	goerrors "github.com/goliatone/go-errors"
	notifiarr "github.com/goliatone/go-notifiarr"
	notifiarrcommand "github.com/goliatone/go-notifiarr/command"
	"github.com/goliatone/go-notifiarr/core"
	notifiarrquery "github.com/goliatone/go-notifiarr/query"
)

// HeaderAPIKey lets callers keep the relay api key out of request bodies.
const HeaderAPIKey = "X-Notifiarr-API-Key"

type fieldJSON struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type endpointJSON struct {
	APIKey       string `json:"api_key"`
	InstanceName string `json:"instance_name"`
	Environment  string `json:"environment"`
}

type sendRequest struct {
	endpointJSON
	Fields         []fieldJSON `json:"fields"`
	IdempotencyKey string      `json:"idempotency_key"`
}

type testResponse struct {
	OK      bool   `json:"ok"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message,omitempty"`
}

type dispatchJSON struct {
	ID           string `json:"id"`
	Operation    string `json:"operation"`
	InstanceName string `json:"instance_name"`
	Environment  string `json:"environment"`
	StatusCode   int    `json:"status_code"`
	Category     string `json:"category"`
	Message      string `json:"message,omitempty"`
	Fields       int    `json:"fields"`
	DurationMS   int64  `json:"duration_ms"`
	CreatedAt    string `json:"created_at"`
}

type pageJSON struct {
	Items   []dispatchJSON `json:"items"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
	Total   int            `json:"total"`
}

// NewRouter builds a gin engine exposing the facade.
//
//	POST /notifications        send synchronously
//	POST /notifications/queue  enqueue for the background worker
//	POST /endpoints/test       connectivity test
//	GET  /dispatches           dispatch ledger
func NewRouter(facade *notifiarr.Facade) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	RegisterRoutes(r, facade)
	return r
}

func RegisterRoutes(r gin.IRoutes, facade *notifiarr.Facade) {
	commands := facade.Commands()
	queries := facade.Queries()

	r.POST("/notifications", func(c *gin.Context) {
		var req sendRequest
		if !bindJSON(c, &req) {
			return
		}
		endpoint, ok := resolveEndpoint(c, req.endpointJSON)
		if !ok {
			return
		}
		if commands.SendNotification == nil {
			writeUnavailable(c, "send")
			return
		}
		err := commands.SendNotification.Execute(c.Request.Context(), notifiarrcommand.SendNotificationMessage{
			Payload:  payloadFromJSON(req.Fields),
			Endpoint: endpoint,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	r.POST("/notifications/queue", func(c *gin.Context) {
		var req sendRequest
		if !bindJSON(c, &req) {
			return
		}
		endpoint, ok := resolveEndpoint(c, req.endpointJSON)
		if !ok {
			return
		}
		if commands.EnqueueNotification == nil {
			writeUnavailable(c, "queue")
			return
		}
		idempotencyKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		if idempotencyKey == "" {
			idempotencyKey = req.IdempotencyKey
		}
		err := commands.EnqueueNotification.Execute(c.Request.Context(), notifiarrcommand.EnqueueNotificationMessage{
			Payload:        payloadFromJSON(req.Fields),
			Endpoint:       endpoint,
			IdempotencyKey: idempotencyKey,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusAccepted)
	})

	r.POST("/endpoints/test", func(c *gin.Context) {
		var req endpointJSON
		if !bindJSON(c, &req) {
			return
		}
		endpoint, ok := resolveEndpoint(c, req)
		if !ok {
			return
		}
		if queries.TestEndpoint == nil {
			writeUnavailable(c, "test")
			return
		}
		result, err := queries.TestEndpoint.Query(c.Request.Context(), notifiarrquery.TestEndpointMessage{
			Endpoint: endpoint,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, testResponse{OK: result.OK(), Field: result.Field, Message: result.Message})
	})

	r.GET("/dispatches", func(c *gin.Context) {
		if queries.ListDispatches == nil {
			writeUnavailable(c, "dispatch ledger")
			return
		}
		filter := core.DispatchFilter{
			InstanceName: c.Query("instance_name"),
			Operation:    core.Operation(c.Query("operation")),
			Page:         queryInt(c, "page"),
			PerPage:      queryInt(c, "per_page"),
		}
		page, err := queries.ListDispatches.Query(c.Request.Context(), notifiarrquery.ListDispatchesMessage{Filter: filter})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, pageToJSON(page))
	})
}

func bindJSON(c *gin.Context, target any) bool {
	if err := c.ShouldBindJSON(target); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"text_code": core.ErrorBadInput,
			"message":   "invalid JSON payload",
		}})
		return false
	}
	return true
}

func resolveEndpoint(c *gin.Context, in endpointJSON) (core.EndpointConfig, bool) {
	apiKey := strings.TrimSpace(c.GetHeader(HeaderAPIKey))
	if apiKey == "" {
		apiKey = in.APIKey
	}
	env, ok := core.ParseEnvironment(in.Environment)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"text_code": core.ErrorBadInput,
			"message":   "environment must be production or development",
		}})
		return core.EndpointConfig{}, false
	}
	return core.EndpointConfig{APIKey: apiKey, InstanceName: in.InstanceName, Environment: env}, true
}

func payloadFromJSON(fields []fieldJSON) *core.EventPayload {
	payload := core.NewEventPayload()
	for _, field := range fields {
		payload.Set(field.Name, field.Value)
	}
	return payload
}

func queryInt(c *gin.Context, key string) int {
	value, err := strconv.Atoi(strings.TrimSpace(c.Query(key)))
	if err != nil {
		return 0
	}
	return value
}

func writeUnavailable(c *gin.Context, feature string) {
	c.JSON(http.StatusNotImplemented, gin.H{"error": gin.H{
		"text_code": core.ErrorInternal,
		"message":   feature + " is not configured",
	}})
}

// writeError renders go-errors envelopes with their own status and text code.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	body := gin.H{"text_code": core.ErrorInternal, "message": "internal error"}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		if rich.Code > 0 {
			status = rich.Code
		}
		body["text_code"] = rich.TextCode
		body["message"] = rich.Message
	}
	c.JSON(status, gin.H{"error": body})
}

func pageToJSON(page core.DispatchPage) pageJSON {
	out := pageJSON{
		Items:   make([]dispatchJSON, 0, len(page.Items)),
		Page:    page.Page,
		PerPage: page.PerPage,
		Total:   page.Total,
	}
	for _, item := range page.Items {
		out.Items = append(out.Items, dispatchJSON{
			ID:           item.ID,
			Operation:    string(item.Operation),
			InstanceName: item.InstanceName,
			Environment:  item.Environment.String(),
			StatusCode:   item.StatusCode,
			Category:     item.Category.String(),
			Message:      item.Message,
			Fields:       item.Fields,
			DurationMS:   item.Duration.Milliseconds(),
			CreatedAt:    item.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}
