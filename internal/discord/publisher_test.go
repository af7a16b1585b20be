package discord_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"gerard.app/bot/internal/discord"
	"gerard.app/bot/internal/domain"
)

var _ = Describe("Publisher", func() {
	var (
		server    *httptest.Server
		mux       *http.ServeMux
		publisher *discord.Publisher
		event     domain.CommandEvent
	)

	BeforeEach(func() {
		mux = http.NewServeMux()
		server = httptest.NewServer(mux)
		DeferCleanup(server.Close)
		publisher = discord.NewPublisher(newTestSession(server))
		event = domain.CommandEvent{AppID: "app1", Token: "tok1", GroupID: "123", ChannelID: "55"}
	})

	It("acknowledges with a deferred channel message", func() {
		Expect(publisher.Acknowledge().Type).To(Equal(discordgo.InteractionResponseDeferredChannelMessageWithSource))
	})

	It("patches the original response without allowing pings", func() {
		var body map[string]any
		mux.HandleFunc("PATCH /api/v9/webhooks/app1/tok1/messages/@original", func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			raw, _ := io.ReadAll(r.Body)
			Expect(json.Unmarshal(raw, &body)).To(Succeed())
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"1","channel_id":"55","content":"ok"}`))
		})

		err := publisher.EditOriginal(context.Background(), event, "Salut <@42>")

		Expect(err).NotTo(HaveOccurred())
		Expect(body).To(HaveKeyWithValue("content", "Salut <@42>"))
		Expect(body).To(HaveKey("allowed_mentions"))
		Expect(body["allowed_mentions"]).To(HaveKeyWithValue("parse", BeEmpty()))
	})

	It("reports an expired token distinctly", func() {
		mux.HandleFunc("PATCH /api/v9/webhooks/app1/tok1/messages/@original", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Unknown Webhook","code":10015}`))
		})

		err := publisher.EditOriginal(context.Background(), event, "late")

		Expect(errors.Is(err, discord.ErrInteractionExpired)).To(BeTrue())
	})

	It("truncates content to Discord's limit", func() {
		long := strings.Repeat("é", discord.MaxContentLength+10)

		out := discord.TruncateContent(long)

		Expect(utf8.RuneCountInString(out)).To(Equal(discord.MaxContentLength))
		Expect(out).To(HaveSuffix("…"))
		Expect(discord.TruncateContent("court")).To(Equal("court"))
	})
})
