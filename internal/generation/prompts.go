package generation

import "math/rand/v2"

// promptIdeas backs the "inspire me" affordance.
var promptIdeas = []string{
	"A romantic dinner under the Eiffel Tower at sunset",
	"Hiking together in the Swiss Alps on a sunny day",
	"Sharing a milkshake at a 1950s retro diner",
	"Dancing in the rain on a cobblestone street in Paris",
	"A cozy campfire night under the starry sky",
	"Walking hand in hand on a tropical beach in Bali",
	"A futuristic cyberpunk city adventure at night",
	"Picnic in a field of sunflowers in Tuscany",
	"Exploring an ancient temple in the jungle together",
	"A snowy Christmas morning opening gifts by the fireplace",
	"Riding a hot air balloon over Cappadocia",
	"Snorkeling in the Great Barrier Reef",
	"Cooking a messy vibrant pasta dinner together in a rustic kitchen",
	"Dressed as royalty at a masquerade ball in Venice",
	"A road trip in a vintage convertible along Route 66",
	"Watching the Northern Lights in Iceland",
	"A candid laugh together in a busy Tokyo street market",
	"Sipping coffee in a cozy bookshop café on a rainy day",
	"Portrait as astronauts on the surface of Mars",
	"A magical forest walk surrounded by glowing fireflies",
}

// RandomPrompt returns one of the built-in scene ideas.
func RandomPrompt() string {
	return promptIdeas[rand.IntN(len(promptIdeas))]
}
