package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/mudler/MCBridge/pkg/botapi"
	"github.com/mudler/xlog"
)

type NoInput struct{}

type MoveInput struct {
	X float64 `json:"x" jsonschema:"target X coordinate"`
	Y float64 `json:"y" jsonschema:"target Y coordinate"`
	Z float64 `json:"z" jsonschema:"target Z coordinate"`
}

type PlayerInput struct {
	Player string `json:"player" jsonschema:"name of the player"`
}

type SayInput struct {
	Message string `json:"message" jsonschema:"text to say in chat"`
}

type BlockInput struct {
	BlockType string `json:"blockType" jsonschema:"block type, e.g. oak_log"`
}

type ItemInput struct {
	Item string `json:"item" jsonschema:"item name, e.g. stick"`
}

type AttackInput struct {
	EntityID int `json:"entityId" jsonschema:"numeric id of the entity to attack"`
}

type ChatInput struct {
	Username string `json:"username" jsonschema:"player who sent the message"`
	Message  string `json:"message" jsonschema:"chat message as typed in game"`
}

type QuestInput struct {
	QuestName string `json:"questName" jsonschema:"quest to start, e.g. mineWood"`
}

type HistoryInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"return only the last N messages"`
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}
}

func errorResult(text string) *mcp.CallToolResult {
	res := textResult(text)
	res.IsError = true
	return res
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// addAction registers a tool that forwards to one control API operation.
func addAction[In any](s *Server, name, description string, op botapi.Op, label string, args func(In) ([]any, error)) {
	mcp.AddTool(s.server, &mcp.Tool{Name: name, Description: description},
		func(ctx context.Context, req *mcp.CallToolRequest, in In) (*mcp.CallToolResult, any, error) {
			a, err := args(in)
			if err != nil {
				return errorResult(fmt.Sprintf("%s failed: %v", label, err)), nil, nil
			}

			res := s.api.Invoke(ctx, op, botapi.Payload(op, a...))
			xlog.Debug("MCP tool called", "tool", name, "success", res.Success)
			if !res.Success {
				return errorResult(fmt.Sprintf("%s failed: %s", label, res.Message)), nil, nil
			}
			msg := res.Message
			if msg == "" {
				msg = label + " completed"
			}
			return textResult(msg), nil, nil
		})
}

func noArgs(NoInput) ([]any, error) { return nil, nil }

func blockArgs(in BlockInput) ([]any, error) {
	if err := required("blockType", in.BlockType); err != nil {
		return nil, err
	}
	return []any{strings.TrimSpace(in.BlockType)}, nil
}

func itemArgs(in ItemInput) ([]any, error) {
	if err := required("item", in.Item); err != nil {
		return nil, err
	}
	return []any{strings.TrimSpace(in.Item)}, nil
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_bot_status",
		Description: "Get current bot status, health, position and connection info",
	}, func(ctx context.Context, req *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
		res := s.api.Invoke(ctx, botapi.OpStatus, nil)
		if !res.Success {
			return errorResult(botapi.FormatStatus(res)), nil, nil
		}
		return textResult(botapi.FormatStatus(res)), nil, nil
	})

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "check_api_health",
		Description: "Check if the bot API is running and accessible",
	}, func(ctx context.Context, req *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
		res := s.api.Invoke(ctx, botapi.OpHealth, nil)
		if !res.Success {
			return errorResult(botapi.FormatHealth(res)), nil, nil
		}
		return textResult(botapi.FormatHealth(res)), nil, nil
	})

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "check_inventory",
		Description: "Check the bot's current inventory",
	}, func(ctx context.Context, req *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
		res := s.api.Invoke(ctx, botapi.OpInventory, nil)
		if !res.Success {
			return errorResult(botapi.FormatInventory(res)), nil, nil
		}
		return textResult(botapi.FormatInventory(res)), nil, nil
	})

	addAction(s, "move_bot", "Move the bot to specific coordinates", botapi.OpMove, "Movement",
		func(in MoveInput) ([]any, error) { return []any{in.X, in.Y, in.Z}, nil })

	addAction(s, "follow_player", "Make the bot follow a player", botapi.OpFollowPlayer, "Follow",
		func(in PlayerInput) ([]any, error) {
			if err := required("player", in.Player); err != nil {
				return nil, err
			}
			return []any{strings.TrimSpace(in.Player)}, nil
		})

	addAction(s, "bot_say", "Make the bot say something in chat", botapi.OpSay, "Chat",
		func(in SayInput) ([]any, error) {
			if err := required("message", in.Message); err != nil {
				return nil, err
			}
			return []any{in.Message}, nil
		})

	addAction(s, "mine_block", "Find and mine the nearest block of a type", botapi.OpMine, "Mining", blockArgs)
	addAction(s, "place_block", "Place a block from the inventory", botapi.OpPlace, "Placing", blockArgs)
	addAction(s, "collect_block", "Collect dropped items or blocks of a type", botapi.OpCollect, "Collecting", blockArgs)
	addAction(s, "drop_item", "Drop an item from the inventory", botapi.OpDrop, "Drop", itemArgs)
	addAction(s, "equip_item", "Hold or wear an item", botapi.OpEquip, "Equip", itemArgs)
	addAction(s, "use_item", "Use an item, e.g. eat food", botapi.OpUse, "Use", itemArgs)
	addAction(s, "recipe_item", "Look up how to craft an item", botapi.OpRecipe, "Recipe lookup", itemArgs)
	addAction(s, "craft_item", "Craft one item", botapi.OpCraft, "Crafting", itemArgs)

	addAction(s, "attack_entity", "Attack the entity with the given id", botapi.OpAttack, "Attack",
		func(in AttackInput) ([]any, error) { return []any{in.EntityID}, nil })

	addAction(s, "attack_nearest", "Attack the nearest hostile mob", botapi.OpAttackNearest, "Attack", noArgs)
	addAction(s, "defend", "Guard and fight back when attacked", botapi.OpDefend, "Defend", noArgs)
	addAction(s, "flee", "Run away from nearby hostile mobs", botapi.OpFlee, "Flee", noArgs)
	addAction(s, "stop", "Stop whatever the bot is doing", botapi.OpStop, "Stop", noArgs)
	addAction(s, "bot_coucou", "Make the bot say 'coucou' and crouch 3 times", botapi.OpCoucou, "Coucou action", noArgs)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "start_quest",
		Description: "Start a scripted quest. Available quests: " + strings.Join(QuestNames(), ", "),
	}, func(ctx context.Context, req *mcp.CallToolRequest, in QuestInput) (*mcp.CallToolResult, any, error) {
		if err := required("questName", in.QuestName); err != nil {
			return errorResult("Quest failed: " + err.Error()), nil, nil
		}
		name := strings.TrimSpace(in.QuestName)
		res := s.api.Invoke(ctx, botapi.OpQuest, botapi.Payload(botapi.OpQuest, name))
		if !res.Success {
			return errorResult(botapi.FormatQuest(name, res)), nil, nil
		}
		return textResult(botapi.FormatQuest(name, res)), nil, nil
	})

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "process_chat_command",
		Description: "Handle a chat line as if a player typed it in game: literal commands, model reply and actions",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in ChatInput) (*mcp.CallToolResult, any, error) {
		if err := required("username", in.Username); err != nil {
			return errorResult(err.Error()), nil, nil
		}
		if err := required("message", in.Message); err != nil {
			return errorResult(err.Error()), nil, nil
		}
		res := s.dispatcher.ProcessChatCommand(ctx, in.Username, in.Message)
		return textResult(res.String()), nil, nil
	})

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_chat_history",
		Description: "Get the recent in-game chat seen by the bot",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in HistoryInput) (*mcp.CallToolResult, any, error) {
		history := s.history.History()
		if in.Limit > 0 && in.Limit < len(history) {
			history = history[len(history)-in.Limit:]
		}
		if len(history) == 0 {
			return textResult("No chat messages yet"), nil, nil
		}
		sb := strings.Builder{}
		sb.WriteString("Chat history:")
		for _, r := range history {
			sb.WriteString(fmt.Sprintf("\n[%s] %s: %s", r.Timestamp.Format("15:04:05"), r.Speaker, r.Message))
		}
		return textResult(sb.String()), nil, nil
	})
}
