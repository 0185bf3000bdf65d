package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid JSON body %q: %v", w.Body.String(), err)
	}
	return env
}

func TestResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewResponse().
		Message("ok").
		Data(map[string]int{"id": 7}).
		Write(w)

	if w.Code != http.StatusOK {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	env := decodeEnvelope(t, w)
	if !env.Success || env.Message != "ok" {
		t.Errorf("unexpected envelope %+v", env)
	}
	data, ok := env.Data.(map[string]any)
	if !ok || data["id"] != float64(7) {
		t.Errorf("unexpected data %#v", env.Data)
	}
}

func TestResponseBuilder_CustomHeader(t *testing.T) {
	w := httptest.NewRecorder()

	NewResponse().
		Header("X-Custom", "value").
		Write(w)

	if w.Header().Get("X-Custom") != "value" {
		t.Errorf("X-Custom header = %q, want 'value'", w.Header().Get("X-Custom"))
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name     string
		builder  *ResponseBuilder
		wantCode int
	}{
		{"BadRequest", BadRequestError("bad"), http.StatusBadRequest},
		{"Unauthorized", UnauthorizedError("who"), http.StatusUnauthorized},
		{"NotFound", NotFoundError("missing"), http.StatusNotFound},
		{"Conflict", ConflictError("taken"), http.StatusConflict},
		{"UnprocessableEntity", UnprocessableEntityError("invalid"), http.StatusUnprocessableEntity},
		{"TooManyRequests", TooManyRequestsError("slow down"), http.StatusTooManyRequests},
		{"InternalServer", InternalServerError("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)

			if w.Code != tt.wantCode {
				t.Errorf("Status code = %d, want %d", w.Code, tt.wantCode)
			}
			env := decodeEnvelope(t, w)
			if env.Success {
				t.Error("error responses must not report success")
			}
			if env.Message == "" {
				t.Error("error responses must carry a message")
			}
		})
	}
}

func TestCreatedResponse(t *testing.T) {
	w := httptest.NewRecorder()
	CreatedResponse("saved", nil).Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	env := decodeEnvelope(t, w)
	if !env.Success || env.Data != nil {
		t.Errorf("unexpected envelope %+v", env)
	}
}
