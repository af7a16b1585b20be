package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"gerard.app/bot/common/logger"
	"gerard.app/bot/internal/command"
	"gerard.app/bot/internal/domain"
	"gerard.app/bot/internal/http/handler"
	"gerard.app/bot/internal/mapper"
	"gerard.app/bot/internal/worker"
)

func commandPayload(name string, guildID string, options string) string {
	guild := ""
	if guildID != "" {
		guild = `"guild_id":"` + guildID + `",`
	}
	return `{"type":2,"id":"i1","application_id":"app1","token":"tok1",` + guild +
		`"channel_id":"55","member":{"nick":"Al","user":{"id":"9","username":"alice"}},` +
		`"user":{"id":"9","username":"alice"},` +
		`"data":{"id":"c1","name":"` + name + `","type":1,"options":[` + options + `]}}`
}

var _ = Describe("InteractionHandler", func() {
	var (
		router     *gin.Engine
		dispatcher *mockDispatcher
		answerer   *mockAnswerer
	)

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/interactions", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		dispatcher = &mockDispatcher{}
		answerer = &mockAnswerer{}
		registry := command.NewRegistry(command.NewPing(), command.NewAsk(answerer, deferredAck{}))
		h := handler.NewInteractionHandler(registry, mapper.NewInteractionMapper(), dispatcher)
		router.POST("/interactions", h.Handle)
	})

	It("answers the ping handshake", func() {
		w := post(`{"type":1,"id":"i0","application_id":"app1","token":"t"}`)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(MatchJSON(`{"type":1}`))
		Expect(dispatcher.Submitted()).To(BeEmpty())
	})

	It("rejects an unknown command without acknowledging it", func() {
		w := post(commandPayload("foo", "123", ""))

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(MatchJSON(`{"error":"unknown command"}`))
		Expect(dispatcher.Submitted()).To(BeEmpty())
	})

	It("answers ping immediately", func() {
		w := post(commandPayload("ping", "123", ""))

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp["type"]).To(BeEquivalentTo(4))
		Expect(resp["data"]).To(HaveKeyWithValue("content", "Pong !"))
		Expect(dispatcher.Submitted()).To(BeEmpty())
	})

	It("acknowledges a question and submits the answer keyed by guild", func() {
		var answered domain.CommandEvent
		answerer.answerFn = func(_ context.Context, event domain.CommandEvent) error {
			answered = event
			return nil
		}

		w := post(commandPayload("ollama", "123", `{"name":"question","type":3,"value":"Ça va ?"}`))

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(MatchJSON(`{"type":5}`))

		submitted := dispatcher.Submitted()
		Expect(submitted).To(HaveLen(1))
		Expect(submitted[0].key).To(Equal("123"))

		fields := logger.GetLogFields(submitted[0].ctx)
		Expect(fields.RunID).NotTo(BeNil())
		Expect(*fields.InteractionID).To(Equal("i1"))
		Expect(*fields.Command).To(Equal("ollama"))
		Expect(submitted[0].ctx.Err()).NotTo(HaveOccurred())

		Expect(submitted[0].task(submitted[0].ctx)).To(Succeed())
		Expect(answered.UserName).To(Equal("Al"))
		Expect(answered.Token).To(Equal("tok1"))
		Expect(answered.Options).To(HaveKeyWithValue("question", "Ça va ?"))
	})

	It("keys direct messages on the dm group", func() {
		w := post(commandPayload("ollama", "", `{"name":"question","type":3,"value":"Salut"}`))

		Expect(w.Code).To(Equal(http.StatusOK))
		submitted := dispatcher.Submitted()
		Expect(submitted).To(HaveLen(1))
		Expect(submitted[0].key).To(Equal(domain.DirectMessageGroup))
	})

	It("rejects a blank question with an ephemeral message", func() {
		w := post(commandPayload("ollama", "123", `{"name":"question","type":3,"value":"  "}`))

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp["type"]).To(BeEquivalentTo(4))
		Expect(resp["data"]).To(HaveKeyWithValue("flags", BeEquivalentTo(64)))
		Expect(dispatcher.Submitted()).To(BeEmpty())
	})

	It("answers with an ephemeral notice instead of acknowledging when the dispatcher is stopped", func() {
		dispatcher.submitFn = func(context.Context, string, worker.Task) error {
			return worker.ErrStopped
		}

		w := post(commandPayload("ollama", "123", `{"name":"question","type":3,"value":"Ça va ?"}`))

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp["type"]).To(BeEquivalentTo(4))
		Expect(resp["data"]).To(HaveKeyWithValue("flags", BeEquivalentTo(64)))
		Expect(resp["data"]).To(HaveKeyWithValue("content", ContainSubstring("Redémarrage")))
	})

	It("refuses deferred work on a real dispatcher that was stopped", func() {
		stopped := worker.NewDispatcher()
		Expect(stopped.Stop(context.Background())).To(Succeed())
		var answered bool
		answerer.answerFn = func(context.Context, domain.CommandEvent) error {
			answered = true
			return nil
		}
		registry := command.NewRegistry(command.NewPing(), command.NewAsk(answerer, deferredAck{}))
		router = gin.New()
		router.POST("/interactions", handler.NewInteractionHandler(registry, mapper.NewInteractionMapper(), stopped).Handle)

		w := post(commandPayload("ollama", "123", `{"name":"question","type":3,"value":"Ça va ?"}`))

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).NotTo(MatchJSON(`{"type":5}`))
		Expect(answered).To(BeFalse())

		w = post(commandPayload("ping", "123", ""))
		Expect(w.Body.String()).To(ContainSubstring("Pong !"))
	})

	It("runs the acknowledged answer on a live dispatcher", func() {
		var answered bool
		answerer.answerFn = func(context.Context, domain.CommandEvent) error {
			answered = true
			return nil
		}
		live := worker.NewDispatcher()
		DeferCleanup(func() { Expect(live.Stop(context.Background())).To(Succeed()) })
		registry := command.NewRegistry(command.NewAsk(answerer, deferredAck{}))
		router = gin.New()
		router.POST("/interactions", handler.NewInteractionHandler(registry, mapper.NewInteractionMapper(), live).Handle)

		w := post(commandPayload("ollama", "123", `{"name":"question","type":3,"value":"Ça va ?"}`))

		Expect(w.Body.String()).To(MatchJSON(`{"type":5}`))
		Eventually(func() int { return live.Busy() }).Should(BeZero())
		Expect(answered).To(BeTrue())
	})

	It("returns 400 for an unknown interaction type", func() {
		w := post(`{"type":99,"id":"i2","application_id":"app1","token":"t"}`)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(MatchJSON(`{"error":"unknown interaction type"}`))
	})

	It("returns 400 for malformed JSON", func() {
		w := post(`{`)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(MatchJSON(`{"error":"invalid payload"}`))
	})
})
