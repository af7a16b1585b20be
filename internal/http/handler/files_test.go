package handler_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"gerard.app/bot/internal/http/handler"
	"gerard.app/bot/internal/store"
)

var _ = Describe("FilesHandler", func() {
	var router *gin.Engine

	do := func(method, path, contentType, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		slots, err := store.NewFileStore(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())
		h := handler.NewFilesHandler(slots)
		router.GET("/files", h.ListGroups)
		router.GET("/files/:group", h.ListSlots)
		router.GET("/files/:group/:slot", h.Read)
		router.POST("/files/:group/:slot", h.Write)
	})

	It("writes then reads a slot as plain text", func() {
		w := do(http.MethodPost, "/files/123/system", "text/plain", "Sois poli.")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(Equal("system file updated successfully"))

		w = do(http.MethodGet, "/files/123/system", "", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(Equal("text/plain; charset=utf-8"))
		Expect(w.Body.String()).To(Equal("Sois poli."))
	})

	It("keeps groups isolated", func() {
		Expect(do(http.MethodPost, "/files/123/memory", "text/plain", "note").Code).To(Equal(http.StatusOK))

		Expect(do(http.MethodGet, "/files/456/memory", "", "").Code).To(Equal(http.StatusNotFound))
		Expect(do(http.MethodGet, "/files/123/context", "", "").Code).To(Equal(http.StatusNotFound))
	})

	It("rejects an unknown slot with the allowed list", func() {
		w := do(http.MethodGet, "/files/123/secrets", "", "")

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(Equal("Invalid file type. Allowed values: context, system, memory"))
	})

	It("rejects an unusable group id", func() {
		w := do(http.MethodPost, "/files/bad.group/system", "text/plain", "x")

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("rejects non text bodies", func() {
		w := do(http.MethodPost, "/files/123/context", "application/json", `{"a":1}`)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(Equal("Content must be plain text"))
	})

	It("lists groups and their slots", func() {
		Expect(do(http.MethodPost, "/files/123/memory", "text/plain", "a").Code).To(Equal(http.StatusOK))
		Expect(do(http.MethodPost, "/files/123/context", "text/plain; charset=utf-8", "b").Code).To(Equal(http.StatusOK))
		Expect(do(http.MethodPost, "/files/dm/system", "", "c").Code).To(Equal(http.StatusOK))

		w := do(http.MethodGet, "/files", "", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(MatchJSON(`{"groups":["123","dm"]}`))

		w = do(http.MethodGet, "/files/123", "", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(MatchJSON(`{"group":"123","slots":["context","memory"]}`))
	})

	It("lists no groups on an empty store", func() {
		w := do(http.MethodGet, "/files", "", "")

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(MatchJSON(`{"groups":[]}`))
	})
})
