package discord_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"gerard.app/bot/internal/discord"
	"gerard.app/bot/internal/domain"
)

const historyPage = `[
  {"id":"3","type":20,"content":"","timestamp":"2026-10-16T12:05:00.000000+00:00",
   "author":{"id":"900","username":"gerard","global_name":null,"bot":true},
   "mentions":[],
   "components":[{"type":10,"content":"**Question de Bob :** salut\n\nYo Bob"}]},
  {"id":"2","type":19,"content":"d'accord <@42>","timestamp":"2026-10-16T12:01:00.000000+00:00",
   "author":{"id":"7","username":"bob","global_name":"Bob"},
   "mentions":[{"id":"42","username":"alice"}]},
  {"id":"1","type":0,"content":"hello","timestamp":"2026-10-16T12:00:00.000000+00:00",
   "author":{"id":"42","username":"alice","global_name":"Alice"},
   "mentions":[]},
  {"id":"0","type":7,"content":"","timestamp":"2026-10-16T11:00:00.000000+00:00",
   "author":{"id":"8","username":"carol"}}
]`

var _ = Describe("Fetcher", func() {
	var (
		server  *httptest.Server
		mux     *http.ServeMux
		fetcher *discord.Fetcher
		ctx     context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		mux = http.NewServeMux()
		server = httptest.NewServer(mux)
		DeferCleanup(server.Close)
		fetcher = discord.NewFetcher(newTestSession(server), 50)
	})

	Describe("History", func() {
		It("requests the configured depth and maps every message kind", func() {
			mux.HandleFunc("GET /api/v9/channels/55/messages", func(w http.ResponseWriter, r *http.Request) {
				defer GinkgoRecover()
				Expect(r.URL.Query().Get("limit")).To(Equal("50"))
				Expect(r.Header.Get("Authorization")).To(Equal("Bot test-token"))
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(historyPage))
			})

			msgs, err := fetcher.History(ctx, "55")

			Expect(err).NotTo(HaveOccurred())
			Expect(msgs).To(HaveLen(4))

			By("keeping Discord's newest-first order")
			Expect(msgs[0].ID).To(Equal("3"))
			Expect(msgs[3].ID).To(Equal("0"))

			By("extracting component text for command replies")
			Expect(msgs[0].Kind).To(Equal(domain.MessageKindCommandReply))
			Expect(msgs[0].Automated).To(BeTrue())
			Expect(msgs[0].AuthorName).To(Equal("gerard"))
			Expect(msgs[0].Text()).To(Equal("**Question de Bob :** salut\n\nYo Bob"))

			By("collecting mentions")
			Expect(msgs[1].Kind).To(Equal(domain.MessageKindReply))
			Expect(msgs[1].Mentions).To(HaveKeyWithValue("42", "alice"))
			Expect(msgs[1].AuthorName).To(Equal("Bob"))
			Expect(msgs[1].AuthorHandle).To(Equal("bob"))

			Expect(msgs[2].Kind).To(Equal(domain.MessageKindPlain))
			Expect(msgs[2].CreatedAt).To(BeTemporally("==", time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)))

			By("leaving unknown kinds without text")
			Expect(msgs[3].Kind).To(Equal(domain.MessageKindUnknown))
			Expect(msgs[3].Text()).To(BeEmpty())
		})

		It("returns an error when Discord refuses", func() {
			mux.HandleFunc("GET /api/v9/channels/55/messages", func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"message":"Missing Access","code":50001}`))
			})

			_, err := fetcher.History(ctx, "55")

			Expect(err).To(MatchError(ContainSubstring("fetching messages of 55")))
		})
	})

	Describe("ChannelName", func() {
		It("returns the channel name", func() {
			mux.HandleFunc("GET /api/v9/channels/55", func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"id":"55","type":0,"name":"general"}`))
			})

			name, err := fetcher.ChannelName(ctx, "55")

			Expect(err).NotTo(HaveOccurred())
			Expect(name).To(Equal("general"))
		})

		It("fails independently of the history read", func() {
			mux.HandleFunc("GET /api/v9/channels/55", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			})
			mux.HandleFunc("GET /api/v9/channels/55/messages", func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`[]`))
			})

			_, err := fetcher.ChannelName(ctx, "55")
			Expect(err).To(HaveOccurred())

			msgs, err := fetcher.History(ctx, "55")
			Expect(err).NotTo(HaveOccurred())
			Expect(msgs).To(BeEmpty())
		})
	})

	It("falls back to the default depth for out-of-range limits", func() {
		Expect(discord.NewFetcher(nil, 0).Limit()).To(Equal(discord.DefaultHistoryLimit))
		Expect(discord.NewFetcher(nil, 500).Limit()).To(Equal(discord.DefaultHistoryLimit))
		Expect(discord.NewFetcher(nil, 10).Limit()).To(Equal(10))
	})
})
