package mcp_test

import (
	"context"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/mudler/MCBridge/core/state"
	"github.com/mudler/MCBridge/core/types"
	"github.com/mudler/MCBridge/pkg/botapi"
	"github.com/mudler/MCBridge/pkg/botapi/botapitest"
	mcpserver "github.com/mudler/MCBridge/services/mcp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type echoDispatcher struct {
	calls []string
}

func (e *echoDispatcher) ProcessChatCommand(ctx context.Context, speaker, message string) types.DispatchResult {
	e.calls = append(e.calls, speaker+": "+message)
	return types.DispatchResult{
		Speaker:    speaker,
		Message:    message,
		Resolution: types.ResolutionLiteral,
		Reply:      "Stopping.",
		Results:    []types.ActionResult{{Action: "stopActivity", Success: true, Message: "stop ok"}},
	}
}

func text(res *mcp.CallToolResult) string {
	Expect(res.Content).To(HaveLen(1))
	tc, ok := res.Content[0].(*mcp.TextContent)
	Expect(ok).To(BeTrue())
	return tc.Text
}

var _ = Describe("MCP server", func() {
	var (
		fake       *botapitest.Server
		store      *state.Store
		dispatcher *echoDispatcher
		session    *mcp.ClientSession
		ctx        context.Context
		cancel     context.CancelFunc
	)

	call := func(name string, args map[string]any) *mcp.CallToolResult {
		res, err := session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
		Expect(err).ToNot(HaveOccurred())
		return res
	}

	BeforeEach(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
		fake = botapitest.NewServer()
		store = state.NewStore()
		dispatcher = &echoDispatcher{}

		srv := mcpserver.NewServer(botapi.NewClient(fake.URL, 2*time.Second), dispatcher, store)

		serverTransport, clientTransport := mcp.NewInMemoryTransports()
		_, err := srv.MCP().Connect(ctx, serverTransport, nil)
		Expect(err).ToNot(HaveOccurred())

		client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "v0.0.1"}, nil)
		session, err = client.Connect(ctx, clientTransport, nil)
		Expect(err).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		session.Close()
		fake.Close()
		cancel()
	})

	It("lists every tool", func() {
		res, err := session.ListTools(ctx, nil)
		Expect(err).ToNot(HaveOccurred())

		names := []string{}
		for _, t := range res.Tools {
			names = append(names, t.Name)
		}
		Expect(names).To(ConsistOf(
			"get_bot_status", "check_api_health", "check_inventory", "move_bot",
			"follow_player", "bot_say", "mine_block", "place_block", "collect_block",
			"drop_item", "equip_item", "use_item", "recipe_item", "craft_item",
			"attack_entity", "attack_nearest", "defend", "flee", "stop",
			"bot_coucou", "start_quest", "process_chat_command", "get_chat_history",
		))
	})

	It("moves the bot", func() {
		fake.Respond("move", http.StatusOK, `{"success":true,"message":"Moved to (1, 64, 2)"}`)

		res := call("move_bot", map[string]any{"x": 1, "y": 64, "z": 2.5})
		Expect(res.IsError).To(BeFalse())
		Expect(text(res)).To(Equal("Moved to (1, 64, 2)"))
		Expect(fake.CallsTo("move")[0].Body).To(Equal(map[string]any{"x": 1.0, "y": 64.0, "z": 2.5}))
	})

	It("reports control API failures as tool errors", func() {
		fake.Respond("craft", http.StatusOK, `{"success":false,"error":"Missing materials"}`)

		res := call("craft_item", map[string]any{"item": "stick"})
		Expect(res.IsError).To(BeTrue())
		Expect(text(res)).To(Equal("Crafting failed: Missing materials"))
	})

	It("validates required text arguments", func() {
		res := call("follow_player", map[string]any{"player": "  "})
		Expect(res.IsError).To(BeTrue())
		Expect(text(res)).To(ContainSubstring("player is required"))
		Expect(fake.Calls()).To(BeEmpty())
	})

	It("formats the status", func() {
		fake.Respond("status", http.StatusOK, `{"success":true,"data":{"username":"Bot","health":20,"food":18,"position":{"x":1,"y":64,"z":2},"gameMode":"survival","playersOnline":2,"inventory":5}}`)

		Expect(text(call("get_bot_status", map[string]any{}))).To(Equal(`Bot Status:
- Username: Bot
- Health: 20/20
- Food: 18/20
- Position: (1.0, 64.0, 2.0)
- Game Mode: survival
- Players Online: 2
- Inventory Items: 5`))
	})

	It("checks health", func() {
		fake.Respond("health", http.StatusOK, `{"success":true,"data":{"server":"online","bot":"disconnected"}}`)
		Expect(text(call("check_api_health", map[string]any{}))).To(Equal("API Status: online\nBot: Disconnected"))
	})

	It("starts quests by name", func() {
		fake.Respond("quest", http.StatusOK, `{"success":true}`)

		res := call("start_quest", map[string]any{"questName": "mineWood"})
		Expect(res.IsError).To(BeFalse())
		Expect(text(res)).To(Equal("Quest 'mineWood': Quest completed"))
		Expect(fake.CallsTo("quest")[0].Body).To(Equal(map[string]any{"questName": "mineWood"}))
	})

	It("lists the available quests when a quest is rejected", func() {
		fake.Respond("quest", http.StatusBadRequest, `{"success":false,"error":"Unknown quest","availableQuests":["mineWood","craftAxe"]}`)

		res := call("start_quest", map[string]any{"questName": "fly"})
		Expect(res.IsError).To(BeTrue())
		Expect(text(res)).To(Equal("Quest failed: Unknown quest\nAvailable quests: mineWood, craftAxe"))
	})

	It("requires a quest name", func() {
		res := call("start_quest", map[string]any{"questName": ""})
		Expect(res.IsError).To(BeTrue())
		Expect(text(res)).To(Equal("Quest failed: questName is required"))
		Expect(fake.Calls()).To(BeEmpty())
	})

	It("says coucou", func() {
		fake.Respond("coucou", http.StatusOK, `{"success":true}`)

		res := call("bot_coucou", map[string]any{})
		Expect(res.IsError).To(BeFalse())
		Expect(text(res)).To(Equal("Coucou action completed"))
		Expect(fake.CallsTo("coucou")).To(HaveLen(1))
	})

	It("forwards chat lines to the dispatcher", func() {
		res := call("process_chat_command", map[string]any{"username": "Alice", "message": "Bot stop"})
		Expect(dispatcher.calls).To(Equal([]string{"Alice: Bot stop"}))
		Expect(text(res)).To(Equal("Reply: Stopping.\nActions:\n- stopActivity(): stop ok"))
	})

	It("returns the chat history", func() {
		Expect(text(call("get_chat_history", map[string]any{}))).To(Equal("No chat messages yet"))

		store.RecordMessage("Alice", "hi")
		store.RecordMessage("Bob", "hello")
		out := text(call("get_chat_history", map[string]any{"limit": 1}))
		Expect(out).To(HavePrefix("Chat history:"))
		Expect(out).To(ContainSubstring("Bob: hello"))
		Expect(out).ToNot(ContainSubstring("Alice: hi"))
	})

	It("documents the action grammar", func() {
		res, err := session.ReadResource(ctx, &mcp.ReadResourceParams{URI: mcpserver.ActionsResourceURI})
		Expect(err).ToNot(HaveOccurred())
		Expect(res.Contents).To(HaveLen(1))
		Expect(res.Contents[0].Text).To(ContainSubstring("moveTo(x, y, z)"))
		Expect(res.Contents[0].Text).To(ContainSubstring(`craftItem("item")`))
	})

	It("documents the quests", func() {
		res, err := session.ReadResource(ctx, &mcp.ReadResourceParams{URI: mcpserver.QuestsResourceURI})
		Expect(err).ToNot(HaveOccurred())
		Expect(res.Contents).To(HaveLen(1))
		doc := res.Contents[0].Text
		Expect(doc).To(ContainSubstring("Crafting:\n- craftPickaxe: Craft a wooden pickaxe"))
		Expect(doc).To(ContainSubstring("- checkInventory:"))
		Expect(doc).To(ContainSubstring("start_quest"))
	})
})
