// internal/engine/commodities.go
package engine

// commodities is the static grain/oilseed/feed commodity lexicon.
// Unlike collection points and regions this list is not fetched: the
// commodity universe of the ingested bulletins is stable and ships with
// the binary. Order matters (first-match-wins in the scan loop), so more
// specific compound terms precede their prefixes.
var commodities = []string{
	"玉米淀粉",
	"玉米",
	"小麦",
	"大麦",
	"高粱",
	"稻谷",
	"大米",
	"大豆",
	"豆粕",
	"豆油",
	"菜籽粕",
	"菜籽油",
	"棕榈油",
	"花生",
	"燕麦",
	"麸皮",
	"DDGS",
}

// CommodityList returns a copy of the static commodity lexicon.
// Exposed for the CLI and rule-authoring collaborators; the engine itself
// reads the copy embedded in each snapshot.
func CommodityList() []string {
	out := make([]string, len(commodities))
	copy(out, commodities)
	return out
}
