package action

import (
	"github.com/mudler/MCBridge/core/types"
	"github.com/mudler/MCBridge/pkg/botapi"
)

func param(name string, kind types.ArgKind) types.ActionParam {
	return types.ActionParam{Name: name, Kind: kind}
}

// Definitions is the fixed catalogue of call syntaxes the model may emit.
// The prompt is rendered from this same table, so adding an entry here is
// all it takes to teach the model a new action.
var Definitions = []types.ActionDefinition{
	{
		Name:        "followPlayer",
		Params:      []types.ActionParam{param("player", types.ArgString)},
		Op:          string(botapi.OpFollowPlayer),
		Description: "follow a player around",
	},
	{
		Name:        "moveTo",
		Params:      []types.ActionParam{param("x", types.ArgFloat), param("y", types.ArgFloat), param("z", types.ArgFloat)},
		Op:          string(botapi.OpMove),
		Description: "walk to the given coordinates",
	},
	{
		Name:        "attackEntity",
		Aliases:     []string{"attack"},
		Params:      []types.ActionParam{param("entityId", types.ArgInt)},
		Op:          string(botapi.OpAttack),
		Description: "attack the entity with the given numeric id",
	},
	{
		Name:        "mineBlock",
		Aliases:     []string{"mine"},
		Params:      []types.ActionParam{param("block", types.ArgString)},
		Op:          string(botapi.OpMine),
		Description: "find and mine the nearest block of a type, e.g. oak_log",
	},
	{
		Name:        "placeBlock",
		Aliases:     []string{"place"},
		Params:      []types.ActionParam{param("block", types.ArgString)},
		Op:          string(botapi.OpPlace),
		Description: "place a block from the inventory",
	},
	{
		Name:        "collectBlock",
		Aliases:     []string{"collect"},
		Params:      []types.ActionParam{param("block", types.ArgString)},
		Op:          string(botapi.OpCollect),
		Description: "collect dropped items or blocks of a type",
	},
	{
		Name:        "dropItem",
		Aliases:     []string{"drop"},
		Params:      []types.ActionParam{param("item", types.ArgString)},
		Op:          string(botapi.OpDrop),
		Description: "drop an item from the inventory",
	},
	{
		Name:        "equipItem",
		Aliases:     []string{"equip"},
		Params:      []types.ActionParam{param("item", types.ArgString)},
		Op:          string(botapi.OpEquip),
		Description: "hold or wear an item",
	},
	{
		Name:        "recipeItem",
		Aliases:     []string{"recipe"},
		Params:      []types.ActionParam{param("item", types.ArgString)},
		Op:          string(botapi.OpRecipe),
		Description: "look up how to craft an item",
	},
	{
		Name:        "useItem",
		Aliases:     []string{"use"},
		Params:      []types.ActionParam{param("item", types.ArgString)},
		Op:          string(botapi.OpUse),
		Description: "use the held item, e.g. eat food",
	},
	{
		Name:        "craftItem",
		Aliases:     []string{"craft"},
		Params:      []types.ActionParam{param("item", types.ArgString)},
		Op:          string(botapi.OpCraft),
		Description: "craft one item",
	},
	{
		Name:        "attackNearestEntity",
		Op:          string(botapi.OpAttackNearest),
		Description: "attack the nearest hostile mob",
	},
	{
		Name:        "defend",
		Op:          string(botapi.OpDefend),
		Description: "guard yourself and fight back when attacked",
	},
	{
		Name:        "flee",
		Op:          string(botapi.OpFlee),
		Description: "run away from nearby hostile mobs",
	},
	{
		Name:        "stopActivity",
		Aliases:     []string{"stop"},
		Op:          string(botapi.OpStop),
		Description: "stop whatever you are doing",
	},
}
