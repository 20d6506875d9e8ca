package common

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: `{"a":1}`, want: `{"a":1}`},
		{name: "markdown fence", in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "leading prose", in: `Here you go: {"a":{"b":2}} enjoy`, want: `{"a":{"b":2}}`},
		{name: "no object", in: "  nothing  ", want: "nothing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSONObject(tt.in))
		})
	}
}

func TestRepairJSON(t *testing.T) {
	repaired := RepairJSON(`{ingredients: [{name: "Onion", quantity: {value: "2", unit: "kg"},},], recipeSteps: ["Chop."]}`)

	var out struct {
		Ingredients []struct {
			Name string `json:"name"`
		} `json:"ingredients"`
		RecipeSteps []string `json:"recipeSteps"`
	}
	require.NoError(t, ParseJSON(repaired, &out))
	require.Len(t, out.Ingredients, 1)
	assert.Equal(t, "Onion", out.Ingredients[0].Name)
	assert.Equal(t, []string{"Chop."}, out.RecipeSteps)
}

func TestParseJSON_RejectsTrailingData(t *testing.T) {
	var v map[string]interface{}
	assert.Error(t, ParseJSON(`{"a":1} {"b":2}`, &v))
	assert.NoError(t, ParseJSON(`{"a":1}`, &v))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab...", Truncate("abcdef", 2))
	assert.Equal(t, "abcdef", Truncate("abcdef", 0))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("WARN"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("bogus"))
}

func TestLogHelpers_FilterSensitiveFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	LogWarn("config loaded",
		zap.String("openrouter_api_key", "sk-secret"),
		zap.String("Authorization", "Bearer x"),
		zap.String("model", "m"),
	)

	entries := logs.All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "m", ctx["model"])
	assert.NotContains(t, ctx, "openrouter_api_key")
	assert.NotContains(t, ctx, "Authorization")
}

func TestLogInfo_ConciseMode(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	LogMode = "concise"
	defer func() {
		SetLogger(nil)
		LogMode = ""
	}()

	LogInfo("食材對應完成")
	LogInfo("請求完成")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "請求完成", logs.All()[0].Message)
}

func TestCustomError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewError(ErrCodeInternalError, "Internal server error", http.StatusInternalServerError, cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Internal server error: disk full", err.Error())
	assert.Equal(t, "Too many requests", ErrTooManyRequests.Error())
}

func TestWriteErrorResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	WriteErrorResponse(c, ErrNotFound, "onion")

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusNotFound, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, ErrorResponse{Code: ErrCodeNotFound, Message: "Resource not found", Details: "onion"}, resp)
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("X-Request-ID", "from-client")
	assert.Equal(t, "from-client", RequestID(c))

	c.Writer.Header().Set("X-Request-ID", "from-middleware")
	assert.Equal(t, "from-middleware", RequestID(c))

	c2, _ := gin.CreateTestContext(httptest.NewRecorder())
	c2.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Len(t, RequestID(c2), 36)
}
