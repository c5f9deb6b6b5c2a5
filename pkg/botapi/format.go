package botapi

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Status is the payload of GET /status.
type Status struct {
	Username      string    `json:"username"`
	Connected     *bool     `json:"connected,omitempty"`
	Health        *float64  `json:"health,omitempty"`
	Food          *float64  `json:"food,omitempty"`
	Position      *Position `json:"position,omitempty"`
	GameMode      string    `json:"gameMode"`
	PlayersOnline int       `json:"playersOnline"`
	Inventory     int       `json:"inventory"`
}

// DecodeStatus reads a Status from a result's data payload.
func DecodeStatus(data json.RawMessage) (Status, error) {
	var s Status
	if len(data) == 0 {
		return s, fmt.Errorf("empty status payload")
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("decoding status: %w", err)
	}
	return s, nil
}

func orNA(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%g", *v)
}

// String renders the multi-line status used by tool callers.
func (s Status) String() string {
	pos := Position{}
	if s.Position != nil {
		pos = *s.Position
	}
	username := s.Username
	if username == "" {
		username = "N/A"
	}
	gameMode := s.GameMode
	if gameMode == "" {
		gameMode = "N/A"
	}
	return fmt.Sprintf(`Bot Status:
- Username: %s
- Health: %s/20
- Food: %s/20
- Position: (%.1f, %.1f, %.1f)
- Game Mode: %s
- Players Online: %d
- Inventory Items: %d`,
		username, orNA(s.Health), orNA(s.Food), pos.X, pos.Y, pos.Z, gameMode, s.PlayersOnline, s.Inventory)
}

// Line renders a single chat line summarizing the status.
func (s Status) Line() string {
	parts := []string{
		fmt.Sprintf("Health %s/20", orNA(s.Health)),
		fmt.Sprintf("Food %s/20", orNA(s.Food)),
	}
	if s.Position != nil {
		parts = append(parts, fmt.Sprintf("at (%.1f, %.1f, %.1f)", s.Position.X, s.Position.Y, s.Position.Z))
	}
	return strings.Join(parts, ", ")
}

type Item struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Count       int    `json:"count"`
}

// Inventory is the payload of GET /inventory. Older bridges name the item
// list "inventory", newer ones "items".
type Inventory struct {
	Items      []Item `json:"items"`
	Legacy     []Item `json:"inventory"`
	TotalItems int    `json:"totalItems"`
}

func DecodeInventory(data json.RawMessage) (Inventory, error) {
	var inv Inventory
	if len(data) == 0 {
		return inv, nil
	}
	if err := json.Unmarshal(data, &inv); err != nil {
		return inv, fmt.Errorf("decoding inventory: %w", err)
	}
	if len(inv.Items) == 0 {
		inv.Items = inv.Legacy
	}
	inv.Legacy = nil
	if inv.TotalItems == 0 {
		inv.TotalItems = len(inv.Items)
	}
	return inv, nil
}

func (i Item) label() string {
	name := i.DisplayName
	if name == "" {
		name = i.Name
	}
	if name == "" {
		name = "Unknown"
	}
	count := i.Count
	if count == 0 {
		count = 1
	}
	return fmt.Sprintf("%s x%d", name, count)
}

func (inv Inventory) String() string {
	if inv.TotalItems == 0 || len(inv.Items) == 0 {
		return "Inventory is empty"
	}
	sb := strings.Builder{}
	sb.WriteString("Inventory:")
	for _, it := range inv.Items {
		sb.WriteString("\n- " + it.label())
	}
	return sb.String()
}

// Line renders the inventory on one chat line.
func (inv Inventory) Line() string {
	if inv.TotalItems == 0 || len(inv.Items) == 0 {
		return "My inventory is empty."
	}
	labels := make([]string, 0, len(inv.Items))
	for _, it := range inv.Items {
		labels = append(labels, it.label())
	}
	return "I have: " + strings.Join(labels, ", ")
}

// Health is the payload of GET /health.
type Health struct {
	Server       string `json:"server"`
	Bot          string `json:"bot"`
	BotConnected *bool  `json:"botConnected,omitempty"`
}

// FormatHealth renders the result of a health check.
func FormatHealth(res Result) string {
	if !res.Success {
		msg := res.Message
		if msg == "" {
			msg = "Cannot reach bot API"
		}
		return "API Health Check Failed: " + msg
	}

	var h Health
	if len(res.Data) > 0 {
		_ = json.Unmarshal(res.Data, &h)
	}

	connected := h.Bot == "connected"
	if h.BotConnected != nil {
		connected = *h.BotConnected
	}
	bot := "Disconnected"
	if connected {
		bot = "Connected"
	}
	server := h.Server
	if server == "" {
		server = "online"
	}
	return fmt.Sprintf("API Status: %s\nBot: %s", server, bot)
}

// FormatStatus renders the result of a status query for tool callers.
func FormatStatus(res Result) string {
	if !res.Success {
		return "Failed to get bot status: " + res.Message
	}
	s, err := DecodeStatus(res.Data)
	if err != nil {
		return "Failed to get bot status: " + err.Error()
	}
	return s.String()
}

// FormatInventory renders the result of an inventory query for tool callers.
func FormatInventory(res Result) string {
	if !res.Success {
		return "Failed to get inventory: " + res.Message
	}
	inv, err := DecodeInventory(res.Data)
	if err != nil {
		return "Failed to get inventory: " + err.Error()
	}
	return inv.String()
}

// FormatQuest renders the outcome of starting quest name.
func FormatQuest(name string, res Result) string {
	if res.Success {
		msg := res.Message
		if msg == "" {
			msg = "Quest completed"
		}
		return fmt.Sprintf("Quest '%s': %s", name, msg)
	}

	out := "Quest failed: " + res.Message
	if len(res.AvailableQuests) > 0 {
		out += "\nAvailable quests: " + strings.Join(res.AvailableQuests, ", ")
	}
	return out
}
