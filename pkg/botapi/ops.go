package botapi

import (
	"context"
	"net/http"
)

// Op names a control API operation. The endpoint path is "/" + op.
type Op string

const (
	OpStatus        Op = "status"
	OpHealth        Op = "health"
	OpInventory     Op = "inventory"
	OpMove          Op = "move"
	OpFollowPlayer  Op = "followPlayer"
	OpSay           Op = "say"
	OpMine          Op = "mine"
	OpPlace         Op = "place"
	OpCollect       Op = "collect"
	OpDrop          Op = "drop"
	OpEquip         Op = "equip"
	OpUse           Op = "use"
	OpRecipe        Op = "recipe"
	OpCraft         Op = "craft"
	OpAttack        Op = "attack"
	OpAttackNearest Op = "attackNearest"
	OpDefend        Op = "defend"
	OpFlee          Op = "flee"
	OpStop          Op = "stop"
	OpQuest         Op = "quest"
	OpCoucou        Op = "coucou"
)

type endpoint struct {
	method   string
	fields   []string
	defaults map[string]any
}

var endpoints = map[Op]endpoint{
	OpStatus:        {method: http.MethodGet},
	OpHealth:        {method: http.MethodGet},
	OpInventory:     {method: http.MethodGet},
	OpMove:          {method: http.MethodPost, fields: []string{"x", "y", "z"}},
	OpFollowPlayer:  {method: http.MethodPost, fields: []string{"playerName"}},
	OpSay:           {method: http.MethodPost, fields: []string{"message"}},
	OpMine:          {method: http.MethodPost, fields: []string{"blockType"}},
	OpPlace:         {method: http.MethodPost, fields: []string{"blockType"}},
	OpCollect:       {method: http.MethodPost, fields: []string{"blockType"}},
	OpDrop:          {method: http.MethodPost, fields: []string{"item"}},
	OpEquip:         {method: http.MethodPost, fields: []string{"item"}},
	OpUse:           {method: http.MethodPost, fields: []string{"item"}},
	OpRecipe:        {method: http.MethodPost, fields: []string{"item"}},
	OpCraft:         {method: http.MethodPost, fields: []string{"item"}, defaults: map[string]any{"count": 1}},
	OpAttack:        {method: http.MethodPost, fields: []string{"entityId"}},
	OpAttackNearest: {method: http.MethodPost},
	OpDefend:        {method: http.MethodPost},
	OpFlee:          {method: http.MethodPost},
	OpStop:          {method: http.MethodPost},
	OpQuest:         {method: http.MethodPost, fields: []string{"questName"}},
	OpCoucou:        {method: http.MethodPost},
}

func (o Op) Path() string {
	return "/" + string(o)
}

// Method is the HTTP method used for the operation, empty if unknown.
func (o Op) Method() string {
	return endpoints[o].method
}

// Known reports whether o is a control API operation.
func Known(o Op) bool {
	_, ok := endpoints[o]
	return ok
}

// Payload maps positional arguments onto the JSON fields of op.
// Extra arguments are ignored; missing ones are left out.
func Payload(op Op, args ...any) map[string]any {
	ep := endpoints[op]
	payload := map[string]any{}
	for k, v := range ep.defaults {
		payload[k] = v
	}
	for i, f := range ep.fields {
		if i >= len(args) {
			break
		}
		payload[f] = args[i]
	}
	return payload
}

func (c *Client) call(ctx context.Context, op Op, args ...any) Result {
	return c.Invoke(ctx, op, Payload(op, args...))
}

func (c *Client) Status(ctx context.Context) Result    { return c.call(ctx, OpStatus) }
func (c *Client) Health(ctx context.Context) Result    { return c.call(ctx, OpHealth) }
func (c *Client) Inventory(ctx context.Context) Result { return c.call(ctx, OpInventory) }

func (c *Client) Move(ctx context.Context, x, y, z float64) Result {
	return c.call(ctx, OpMove, x, y, z)
}

func (c *Client) FollowPlayer(ctx context.Context, player string) Result {
	return c.call(ctx, OpFollowPlayer, player)
}

func (c *Client) Say(ctx context.Context, message string) Result {
	return c.call(ctx, OpSay, message)
}

func (c *Client) Mine(ctx context.Context, block string) Result    { return c.call(ctx, OpMine, block) }
func (c *Client) Place(ctx context.Context, block string) Result   { return c.call(ctx, OpPlace, block) }
func (c *Client) Collect(ctx context.Context, block string) Result { return c.call(ctx, OpCollect, block) }
func (c *Client) Drop(ctx context.Context, item string) Result     { return c.call(ctx, OpDrop, item) }
func (c *Client) Equip(ctx context.Context, item string) Result    { return c.call(ctx, OpEquip, item) }
func (c *Client) Use(ctx context.Context, item string) Result      { return c.call(ctx, OpUse, item) }
func (c *Client) Recipe(ctx context.Context, item string) Result   { return c.call(ctx, OpRecipe, item) }
func (c *Client) Craft(ctx context.Context, item string) Result    { return c.call(ctx, OpCraft, item) }

func (c *Client) Attack(ctx context.Context, entityID int) Result {
	return c.call(ctx, OpAttack, entityID)
}

func (c *Client) AttackNearest(ctx context.Context) Result { return c.call(ctx, OpAttackNearest) }
func (c *Client) Defend(ctx context.Context) Result        { return c.call(ctx, OpDefend) }
func (c *Client) Flee(ctx context.Context) Result          { return c.call(ctx, OpFlee) }
func (c *Client) Stop(ctx context.Context) Result          { return c.call(ctx, OpStop) }
func (c *Client) Coucou(ctx context.Context) Result        { return c.call(ctx, OpCoucou) }

// Quest starts one of the bridge's scripted quests.
func (c *Client) Quest(ctx context.Context, name string) Result {
	return c.call(ctx, OpQuest, name)
}
