package mapper_test

import (
	"encoding/json"

	"github.com/bwmarrin/discordgo"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"gerard.app/bot/internal/domain"
	"gerard.app/bot/internal/mapper"
)

func decode(payload string) *discordgo.Interaction {
	var i discordgo.Interaction
	Expect(json.Unmarshal([]byte(payload), &i)).To(Succeed())
	return &i
}

var _ = Describe("InteractionMapper", func() {
	var m *mapper.InteractionMapper

	BeforeEach(func() {
		m = mapper.NewInteractionMapper()
	})

	It("maps a guild command invocation", func() {
		payload := `{
			"id":"111","application_id":"app","type":2,"token":"tok","guild_id":"123","channel_id":"55",
			"locale":"fr",
			"member":{"nick":"Ali","user":{"id":"42","username":"alice","global_name":"Alice"}},
			"data":{"id":"c1","name":"ollama","type":1,
				"options":[{"name":"question","type":3,"value":"Ça va ?"}]}
		}`

		event, err := m.Map(decode(payload), json.RawMessage(payload))

		Expect(err).NotTo(HaveOccurred())
		Expect(event.InteractionID).To(Equal("111"))
		Expect(event.AppID).To(Equal("app"))
		Expect(event.Name).To(Equal("ollama"))
		Expect(event.Token).To(Equal("tok"))
		Expect(event.GroupID).To(Equal("123"))
		Expect(event.ChannelID).To(Equal("55"))
		Expect(event.Locale).To(Equal("fr"))
		Expect(event.UserName).To(Equal("Ali"))
		Expect(event.Options).To(HaveKeyWithValue("question", "Ça va ?"))
		Expect(event.Raw).NotTo(BeEmpty())
	})

	It("uses the direct-message group outside guilds", func() {
		payload := `{"id":"1","application_id":"app","type":2,"token":"t","channel_id":"9",
			"user":{"id":"42","username":"alice"},
			"data":{"id":"c1","name":"ping","type":1}}`

		event, err := m.Map(decode(payload), nil)

		Expect(err).NotTo(HaveOccurred())
		Expect(event.GroupID).To(Equal(domain.DirectMessageGroup))
		Expect(event.IsDirectMessage()).To(BeTrue())
		Expect(event.UserName).To(Equal("alice"))
		Expect(event.Options).To(BeEmpty())
	})

	It("flattens subcommand options and stringifies values", func() {
		payload := `{"id":"1","application_id":"app","type":2,"token":"t","channel_id":"9","guild_id":"5",
			"member":{"user":{"id":"42","username":"alice"}},
			"data":{"id":"c1","name":"files","type":1,"options":[
				{"name":"set","type":1,"options":[{"name":"slot","type":3,"value":"memory"},{"name":"count","type":4,"value":3}]}
			]}}`

		event, err := m.Map(decode(payload), nil)

		Expect(err).NotTo(HaveOccurred())
		Expect(event.Options).To(HaveKeyWithValue("slot", "memory"))
		Expect(event.Options).To(HaveKeyWithValue("count", "3"))
	})

	It("rejects non-command interactions", func() {
		_, err := m.Map(decode(`{"id":"1","type":1}`), nil)
		Expect(err).To(MatchError(mapper.ErrNotACommand))
	})

	DescribeTable("resolves the display name",
		func(payload, expected string) {
			Expect(mapper.DisplayName(decode(payload))).To(Equal(expected))
		},
		Entry("member nick first",
			`{"type":2,"data":{"name":"ping"},"member":{"nick":"Nick","user":{"username":"u","global_name":"G"}},"user":{"username":"x"}}`, "Nick"),
		Entry("member global name second",
			`{"type":2,"data":{"name":"ping"},"member":{"user":{"username":"u","global_name":"G"}}}`, "G"),
		Entry("member username third",
			`{"type":2,"data":{"name":"ping"},"member":{"user":{"username":"u"}}}`, "u"),
		Entry("user global name fourth",
			`{"type":2,"data":{"name":"ping"},"user":{"username":"u","global_name":"G"}}`, "G"),
		Entry("user username last",
			`{"type":2,"data":{"name":"ping"},"user":{"username":"u"}}`, "u"),
		Entry("nothing known",
			`{"type":2,"data":{"name":"ping"}}`, ""),
	)
})
