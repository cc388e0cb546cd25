package swagger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/smartystreets/goconvey/convey"
	"go.yaml.in/yaml/v3"
)

func TestSwaggerHandler(t *testing.T) {
	convey.Convey("Given a router with the docs registered", t, func() {
		r := chi.NewRouter()
		Register(context.Background(), r)

		convey.Convey("Then /openapi.yaml serves a parseable document", func() {
			req := httptest.NewRequest(http.MethodGet, "/openapi.yaml", http.NoBody)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "application/yaml; charset=utf-8")

			var doc struct {
				OpenAPI string         `yaml:"openapi"`
				Paths   map[string]any `yaml:"paths"`
			}
			convey.So(yaml.Unmarshal(w.Body.Bytes(), &doc), convey.ShouldBeNil)
			convey.So(doc.OpenAPI, convey.ShouldStartWith, "3.")
			convey.So(doc.Paths, convey.ShouldContainKey, "/rooms/{room}/teams/next")
			convey.So(doc.Paths, convey.ShouldContainKey, "/rooms/{room}/match/result")
			convey.So(doc.Paths, convey.ShouldContainKey, "/rooms")
		})

		convey.Convey("And /api-docs serves the ReDoc page", func() {
			req := httptest.NewRequest(http.MethodGet, "/api-docs", http.NoBody)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "text/html; charset=utf-8")
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "redoc-container")
		})
	})

	convey.Convey("Given a nil router", t, func() {
		convey.So(func() { Register(context.Background(), nil) }, convey.ShouldPanic)
	})
}
