package damage

// Rule derives damage indicators from a label set. Rules are independent of
// each other; their order only fixes the order of the collected indicators.
type Rule struct {
	ID    string
	Apply func(labels LabelSet) []string
}

var rules = []Rule{
	{ID: "direct_damage", Apply: gatedMatch(directDamageTerms)},
	{ID: "collision", Apply: gatedMatch(collisionTerms)},
	{ID: "multiple_parts", Apply: multipleParts},
	// exterior_combination and material_wear are coarse co-occurrence
	// heuristics, not visual damage detectors.
	{ID: "exterior_combination", Apply: exteriorCombination},
	{ID: "material_wear", Apply: materialWear},
	{ID: "structural", Apply: structural},
}

// Rules returns the label rules in evaluation order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// labelIndicators runs every rule and concatenates their indicators.
func labelIndicators(labels LabelSet) []string {
	var out []string
	for _, r := range rules {
		out = append(out, r.Apply(labels)...)
	}
	return out
}

// gatedMatch fires when a label equals one of terms, then reports every term
// found as a substring of any label.
func gatedMatch(terms []string) func(LabelSet) []string {
	return func(labels LabelSet) []string {
		if !labels.HasAny(terms) {
			return nil
		}
		return labels.Match(terms)
	}
}

func multipleParts(labels LabelSet) []string {
	if len(labels.Match(Dictionary.Terms(CategoryPart))) >= minAffectedParts {
		return []string{IndicatorMultipleAreas}
	}
	return nil
}

func exteriorCombination(labels LabelSet) []string {
	if labels.HasAny(exteriorTerms) && labels.HasAny(motorVehicleTerms) {
		return []string{IndicatorExterior}
	}
	return nil
}

func materialWear(labels LabelSet) []string {
	if labels.HasAny(materialTerms) && labels.HasAny(wearTerms) {
		return []string{IndicatorMaterialWear, IndicatorAging}
	}
	return nil
}

func structural(labels LabelSet) []string {
	if labels.HasAny(structuralTerms) {
		return []string{IndicatorStructural}
	}
	return nil
}
