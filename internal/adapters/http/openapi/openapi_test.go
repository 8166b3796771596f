package openapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestRegister(t *testing.T) {
	convey.Convey("Given a mux with the API description", t, func() {
		mux := http.NewServeMux()
		Register(context.Background(), mux)

		convey.Convey("Then GET /openapi.yaml serves the embedded document", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/openapi.yaml", http.NoBody))

			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "application/yaml; charset=utf-8")
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "/frames:")
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "/night-mode:")
		})

		convey.Convey("Then other methods are not found", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/openapi.yaml", http.NoBody))
			convey.So(w.Code, convey.ShouldEqual, http.StatusNotFound)
		})

		convey.Convey("Then a nil mux panics", func() {
			convey.So(func() { Register(context.Background(), nil) }, convey.ShouldPanic)
		})
	})
}
