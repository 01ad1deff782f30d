package middleware_test

import (
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/valcriss/sovrane/internal/transport/middleware"
)

var _ = Describe("CORS", func() {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	perform := func(allowedOrigins, origin, method string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(method, "/api/v1/sites", nil)
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		middleware.CORS(allowedOrigins)(okHandler).ServeHTTP(rec, req)
		return rec
	}

	It("should allow any origin when configured with a wildcard", func() {
		rec := perform("*", "https://anywhere.example.com", http.MethodGet)

		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("*"))
		Expect(rec.Code).To(Equal(http.StatusOK))
	})

	It("should echo an origin from the configured list", func() {
		rec := perform("https://app.example.com, https://admin.example.com", "https://admin.example.com", http.MethodGet)

		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("https://admin.example.com"))
		Expect(rec.Header().Values("Vary")).To(ContainElement("Origin"))
	})

	It("should send no CORS headers for an origin outside the list", func() {
		rec := perform("https://app.example.com", "https://evil.example.com", http.MethodGet)

		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(BeEmpty())
		Expect(rec.Code).To(Equal(http.StatusOK))
	})

	It("should short-circuit preflight requests", func() {
		rec := perform("https://app.example.com", "https://app.example.com", http.MethodOptions)

		Expect(rec.Code).To(Equal(http.StatusNoContent))
		Expect(rec.Header().Get("Access-Control-Allow-Methods")).To(ContainSubstring("OPTIONS"))
	})
})
