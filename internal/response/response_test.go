package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestEnvelope(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ok", func(c *gin.Context) { Success(c, http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/bad", func(c *gin.Context) {
		FailWithFields(c, http.StatusBadRequest, ErrValidation, map[string]string{"choiceId": "required"})
	})

	tests := []struct {
		name     string
		path     string
		reqID    string
		status   int
		wantCode ErrCode
	}{
		{name: "success keeps request id", path: "/ok", reqID: "abc-123", status: http.StatusOK},
		{name: "failure carries code", path: "/bad", status: http.StatusBadRequest, wantCode: ErrValidation},
		{name: "overlong id is replaced", path: "/ok", reqID: strings.Repeat("x", 100), status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.reqID != "" {
				req.Header.Set("X-Request-ID", tt.reqID)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.status {
				t.Fatalf("Expected %d, got %d", tt.status, w.Code)
			}
			var body Response
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if body.Metadata.RequestID == "" || body.Metadata.Timestamp == "" {
				t.Errorf("Missing metadata: %+v", body.Metadata)
			}
			if body.Metadata.RequestID != w.Header().Get("X-Request-ID") {
				t.Errorf("Header and envelope ids differ")
			}
			if tt.reqID != "" && len(tt.reqID) <= maxRequestIDLen && body.Metadata.RequestID != tt.reqID {
				t.Errorf("Expected request id %q, got %q", tt.reqID, body.Metadata.RequestID)
			}
			if tt.wantCode == "" {
				if body.Error != nil {
					t.Errorf("Unexpected error body %+v", body.Error)
				}
				return
			}
			if body.Error == nil || body.Error.Code != tt.wantCode || body.Error.Message != GetMessage(tt.wantCode) {
				t.Errorf("Unexpected error body %+v", body.Error)
			}
		})
	}
}
