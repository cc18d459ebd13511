// Package damage turns image labels and an optional owner description into a
// damage assessment report. Everything here is pure string scanning over
// read-only term lists, so it is safe for concurrent use.
package damage

// Category names a term list in the dictionary
type Category string

const (
	CategoryVehicle   Category = "vehicle"
	CategoryDamage    Category = "damage"
	CategoryPart      Category = "part"
	CategoryCondition Category = "condition"
)

// TermDictionary maps a category to its ordered keyword list.
type TermDictionary map[Category][]string

// Terms returns the keywords of a category in dictionary order.
func (d TermDictionary) Terms(c Category) []string {
	return d[c]
}

// Dictionary is the curated term dictionary. Treat it as read-only.
var Dictionary = TermDictionary{
	CategoryVehicle: {
		"car", "vehicle", "automobile", "tire", "wheel", "engine", "brake",
		"headlight", "tail light", "motor", "transport",
	},
	// Repeated entries are part of the curated list and show up once per
	// occurrence in FoundDamage.
	CategoryDamage: {
		"scratch", "dent", "crack", "rust", "damage", "broken", "worn", "bent", "deformed",
		"shattered", "smashed", "crushed", "collision", "accident", "impact", "hit",
		"scratched", "dented", "cracked", "rusted", "damaged", "broken", "worn out",
		"bent", "deformed", "shattered", "smashed", "crushed", "collision", "accident",
		"impact", "hit", "crash", "wreck", "totaled", "destroyed", "mangled",
		"metal", "plastic", "glass", "paint", "body", "panel", "bumper", "fender",
		"hood", "trunk", "door", "window", "mirror", "grill", "headlight", "taillight",
		"wheel", "tire", "rim", "hubcap", "exhaust", "muffler", "tailpipe",
	},
	CategoryPart: {
		"bumper", "fender", "hood", "trunk", "door", "window", "mirror", "grill",
		"headlight", "taillight",
	},
	CategoryCondition: {
		"new", "old", "clean", "dirty", "polished", "matted", "shiny", "dull",
	},
}

// Rule term groups. Gating is exact label membership, collection is substring.
var (
	directDamageTerms = []string{"scratch", "dent", "crack", "rust", "damage", "broken"}
	collisionTerms    = []string{"collision", "accident", "crash", "wreck", "impact"}
	exteriorTerms     = []string{"automotive exterior", "automotive tire", "automotive lighting"}
	motorVehicleTerms = []string{"personal luxury car", "motor vehicle"}
	materialTerms     = []string{"metal", "plastic", "glass", "paint"}
	wearTerms         = []string{"old", "dirty", "worn", "matted", "dull"}
	structuralTerms   = []string{"bent", "deformed", "smashed", "crushed"}
)

// Indicators that decide the label-derived tier.
var (
	highTierIndicators = []string{"crash", "accident", "collision", "wreck", IndicatorStructural}
	spreadIndicators   = []string{IndicatorMultipleAreas, IndicatorExterior}
)

// Description keyword tiers.
var (
	crashWords = []string{"crash", "accident", "collision", "wreck", "totaled", "destroyed"}
	bumpWords  = []string{"dent", "scratch", "bump", "hit"}
)

// Synthetic indicators appended by rules.
const (
	IndicatorMultipleAreas = "multiple affected areas"
	IndicatorExterior      = "exterior damage detected"
	IndicatorMaterialWear  = "material wear"
	IndicatorAging         = "aging"
	IndicatorStructural    = "structural damage"
	IndicatorUserReported  = "user-reported damage"
)

// minAffectedParts is the part count that triggers IndicatorMultipleAreas.
const minAffectedParts = 3
