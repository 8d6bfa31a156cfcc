package handlers

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGreetingRouter() *gin.Engine {
	router := gin.New()
	router.POST("/hello", GreetingHandler)
	return router
}

func postForm(router http.Handler, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/hello", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRenderGreeting(t *testing.T) {
	assert.Equal(t,
		"<html><body><h1>Hello, World!</h1></body></html>",
		string(RenderGreeting("World")))
	assert.Equal(t,
		"<html><body><h1>Hello, !</h1></body></html>",
		string(RenderGreeting("")))
}

func TestGreetingHandler(t *testing.T) {
	tests := []struct {
		name      string
		paramName string
	}{
		{
			name:      "greeting with simple name",
			paramName: "World",
		},
		{
			name:      "greeting with complex name",
			paramName: "Mary-Jane",
		},
		{
			name:      "greeting with space",
			paramName: "John Doe",
		},
		{
			name:      "greeting with single letter",
			paramName: "A",
		},
		{
			name:      "greeting with empty value",
			paramName: "",
		},
		{
			name:      "greeting with script tag is not escaped",
			paramName: "<script>alert(1)</script>",
		},
		{
			name:      "greeting with html entities is not escaped",
			paramName: `Tom & "Jerry" <b>`,
		},
		{
			name:      "greeting with control characters",
			paramName: "tab\there\nnewline\x01",
		},
		{
			name:      "greeting with non-ascii",
			paramName: "Zoë 世界",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newGreetingRouter()

			w := postForm(router, url.Values{GreetingField: {tt.paramName}})

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "<html><body><h1>Hello, "+tt.paramName+"!</h1></body></html>", w.Body.String())
			assert.Equal(t, "text/html", w.Header().Get("Content-Type"))
		})
	}
}

func TestGreetingHandler_PrintableASCII(t *testing.T) {
	router := newGreetingRouter()

	for ch := byte(0x20); ch < 0x7f; ch++ {
		name := strings.Repeat(string(ch), 3)
		w := postForm(router, url.Values{GreetingField: {name}})

		require.Equal(t, http.StatusOK, w.Code, "char %q", ch)
		require.Equal(t, "<html><body><h1>Hello, "+name+"!</h1></body></html>", w.Body.String(), "char %q", ch)
	}
}

func TestGreetingHandler_MissingName(t *testing.T) {
	router := newGreetingRouter()

	w := postForm(router, url.Values{"other": {"value"}})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<html><body><h1>Hello, !</h1></body></html>", w.Body.String())
	assert.Equal(t, "text/html", w.Header().Get("Content-Type"))
}

func TestGreetingHandler_EmptyBody(t *testing.T) {
	router := newGreetingRouter()

	req := httptest.NewRequest(http.MethodPost, "/hello", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<html><body><h1>Hello, !</h1></body></html>", w.Body.String())
}

func TestGreetingHandler_FirstValueWins(t *testing.T) {
	router := newGreetingRouter()

	w := postForm(router, url.Values{GreetingField: {"first", "second"}})

	assert.Equal(t, "<html><body><h1>Hello, first!</h1></body></html>", w.Body.String())
}

func TestGreetingHandler_IgnoresQueryString(t *testing.T) {
	router := newGreetingRouter()

	req := httptest.NewRequest(http.MethodPost, "/hello?name=query", strings.NewReader("name=body"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "<html><body><h1>Hello, body!</h1></body></html>", w.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/hello?name=query", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "<html><body><h1>Hello, !</h1></body></html>", w.Body.String())
}

func TestGreetingHandler_NonFormContentType(t *testing.T) {
	router := newGreetingRouter()

	req := httptest.NewRequest(http.MethodPost, "/hello", strings.NewReader(`{"name":"World"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<html><body><h1>Hello, !</h1></body></html>", w.Body.String())
}

func TestGreetingHandler_Multipart(t *testing.T) {
	router := newGreetingRouter()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField(GreetingField, "Multipart"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/hello", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<html><body><h1>Hello, Multipart!</h1></body></html>", w.Body.String())
}

// failingWriter is a ResponseWriter whose body writes always fail
type failingWriter struct {
	*httptest.ResponseRecorder
}

func (f failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestGreetingHandler_WriteFailureRecordedOnContext(t *testing.T) {
	router := gin.New()

	var recorded []error
	router.Use(func(c *gin.Context) {
		c.Next()
		for _, e := range c.Errors {
			recorded = append(recorded, e.Err)
		}
	})
	router.POST("/hello", GreetingHandler)

	req := httptest.NewRequest(http.MethodPost, "/hello", strings.NewReader("name=World"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	router.ServeHTTP(failingWriter{httptest.NewRecorder()}, req)

	require.Len(t, recorded, 1)
	assert.EqualError(t, recorded[0], "connection reset")
}
