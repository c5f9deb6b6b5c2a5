package action_test

import (
	. "github.com/mudler/MCBridge/core/action"
	"github.com/mudler/MCBridge/core/types"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Grammar", func() {
	names := func(invs []types.ActionInvocation) []string {
		out := []string{}
		for _, i := range invs {
			out = append(out, i.String())
		}
		return out
	}

	It("parses calls in textual order", func() {
		invs := DefaultGrammar.Parse(`mineBlock("oak_log") then craft(stick) and moveTo(10, 64.5, -3)`)
		Expect(names(invs)).To(Equal([]string{
			"mineBlock(oak_log)",
			"craftItem(stick)",
			"moveTo(10, 64.5, -3)",
		}))
		Expect(invs[2].Args).To(Equal([]any{10.0, 64.5, -3.0}))
		Expect(invs[0].Match).To(Equal(`mineBlock("oak_log")`))
	})

	It("is case-insensitive and accepts aliases", func() {
		invs := DefaultGrammar.Parse(`FOLLOWPLAYER('Alice') Attack(42) STOP()`)
		Expect(names(invs)).To(Equal([]string{"followPlayer(Alice)", "attackEntity(42)", "stopActivity()"}))
		Expect(invs[1].Args).To(Equal([]any{42}))
	})

	It("tolerates whitespace inside the argument list", func() {
		invs := DefaultGrammar.Parse(`equipItem( "iron_sword" )`)
		Expect(names(invs)).To(Equal([]string{"equipItem(iron_sword)"}))
	})

	It("leaves parenthetical prose alone", func() {
		text := "I can use (carefully) the sword, and drop (maybe) some dirt."
		Expect(DefaultGrammar.Parse(text)).To(BeEmpty())
		Expect(DefaultGrammar.Parse("Sure, I'll mine (if I can find any) some stone")).To(BeEmpty())
		Expect(DefaultGrammar.Parse("I could place (somewhere safe) a torch")).To(BeEmpty())
		Expect(DefaultGrammar.Parse("mine(if I can find any)")).To(BeEmpty())
		Expect(Residual(text, DefaultGrammar.Parse(text))).To(Equal(text))
	})

	It("accepts quoted arguments with spaces", func() {
		invs := DefaultGrammar.Parse(`say it: dropItem("rotten flesh")`)
		Expect(invs).To(HaveLen(1))
		Expect(invs[0].Args).To(Equal([]any{"rotten flesh"}))
	})

	It("keeps commas inside quoted strings", func() {
		invs := DefaultGrammar.Parse(`dropItem("a, b")`)
		Expect(invs).To(HaveLen(1))
		Expect(invs[0].Args).To(Equal([]any{"a, b"}))
	})

	It("drops calls with malformed arguments", func() {
		Expect(DefaultGrammar.Parse(`moveTo(ten, 64, 3)`)).To(BeEmpty())
		Expect(DefaultGrammar.Parse(`moveTo(1, 2)`)).To(BeEmpty())
		Expect(DefaultGrammar.Parse(`attack(1.5)`)).To(BeEmpty())
		Expect(DefaultGrammar.Parse(`mine("")`)).To(BeEmpty())
		Expect(DefaultGrammar.Parse(`flee(now)`)).To(BeEmpty())
		Expect(DefaultGrammar.Parse(`Heading out: moveTo(NaN, 64, Inf)`)).To(BeEmpty())
		Expect(DefaultGrammar.Parse(`moveTo(1, infinity, 3)`)).To(BeEmpty())
		Expect(DefaultGrammar.Parse(`moveTo(1, 2, -Inf)`)).To(BeEmpty())
	})

	It("keeps well-formed calls next to malformed ones", func() {
		invs := DefaultGrammar.Parse(`moveTo(a, b, c) flee()`)
		Expect(names(invs)).To(Equal([]string{"flee()"}))
	})

	It("does not match names inside longer words", func() {
		Expect(DefaultGrammar.Parse(`unstop() premine(x)`)).To(BeEmpty())
	})

	It("does not parse the same call twice through an alias", func() {
		invs := DefaultGrammar.Parse(`attackNearestEntity() defend()`)
		Expect(names(invs)).To(Equal([]string{"attackNearestEntity()", "defend()"}))
	})

	It("renders the catalogue from the same table", func() {
		cat := Catalogue()
		for _, def := range Definitions {
			Expect(cat).To(ContainSubstring(def.Syntax()))
		}
		Expect(cat).To(ContainSubstring(`moveTo(x, y, z)`))
		Expect(cat).To(ContainSubstring(`followPlayer("player")`))
		Expect(cat).To(ContainSubstring(`(also: attack)`))
	})
})

var _ = Describe("FollowIntent", func() {
	It("detects follow cues regardless of case", func() {
		Expect(FollowIntent("OK, I'LL FOLLOW you")).To(BeTrue())
		Expect(FollowIntent("on my way!")).To(BeTrue())
		Expect(FollowIntent("I’ll follow")).To(BeTrue())
		Expect(FollowIntent("I like trees")).To(BeFalse())
	})
})
