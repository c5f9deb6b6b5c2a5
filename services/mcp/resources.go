package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/mudler/MCBridge/core/action"
)

const actionsHeader = `Minecraft bot actions

Replies generated for in-game chat may embed these calls. Each call found in
a reply is executed in order against the bot; the rest of the text is said in
chat. String arguments may be quoted, names are case-insensitive.

`

const actionsFooter = `

Literal chat commands handled without the model: "stop", "status",
"health", "how are you", "follow me", "come here", "come to me", "inventory".`

// Quest is one scripted quest the bridge can run.
type Quest struct {
	Name        string
	Category    string
	Description string
}

// Quests lists the bridge's scripted quests by category.
var Quests = []Quest{
	{Name: "mineWood", Category: "Resource gathering", Description: "Find and mine wood logs"},
	{Name: "mineStone", Category: "Resource gathering", Description: "Find and mine stone or cobblestone"},
	{Name: "collectNearbyItems", Category: "Resource gathering", Description: "Collect dropped items nearby"},
	{Name: "craftPickaxe", Category: "Crafting", Description: "Craft a wooden pickaxe"},
	{Name: "craftAxe", Category: "Crafting", Description: "Craft a wooden axe"},
	{Name: "digAround", Category: "Actions", Description: "Dig dirt and grass blocks around the bot"},
	{Name: "followPlayer", Category: "Actions", Description: "Follow the nearest player"},
	{Name: "checkInventory", Category: "Actions", Description: "Display current inventory contents"},
}

func QuestNames() []string {
	names := make([]string, 0, len(Quests))
	for _, q := range Quests {
		names = append(names, q.Name)
	}
	return names
}

// QuestsDocument lists the quests grouped by category.
func QuestsDocument() string {
	sb := strings.Builder{}
	sb.WriteString("Available Minecraft bot quests")
	category := ""
	for _, q := range Quests {
		if q.Category != category {
			category = q.Category
			sb.WriteString("\n\n" + category + ":")
		}
		sb.WriteString(fmt.Sprintf("\n- %s: %s", q.Name, q.Description))
	}
	sb.WriteString(`

Usage: call the start_quest tool with the quest name, e.g. {"questName": "mineWood"}`)
	return sb.String()
}

// ActionsDocument documents the action grammar for tool callers.
func ActionsDocument() string {
	return actionsHeader + action.Catalogue() + actionsFooter
}

func textResource(uri, name, description string, body func() string) (*mcp.Resource, mcp.ResourceHandler) {
	return &mcp.Resource{
			URI:         uri,
			Name:        name,
			Description: description,
			MIMEType:    "text/plain",
		}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			return &mcp.ReadResourceResult{
				Contents: []*mcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/plain",
					Text:     body(),
				}},
			}, nil
		}
}

func (s *Server) registerResources() {
	s.server.AddResource(textResource(ActionsResourceURI, "actions",
		"Action call syntax understood by the chat dispatcher", ActionsDocument))
	s.server.AddResource(textResource(QuestsResourceURI, "quests",
		"Scripted quests accepted by the start_quest tool", QuestsDocument))
}
