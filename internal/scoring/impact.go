package scoring

// Impact holds the linear "what you save" metrics for one result.
type Impact struct {
	EcoFactor        int `json:"ecoFactor"`
	TreesPerYear     int `json:"treesPerYear"`
	LitersWaterSaved int `json:"litersWaterSaved"`
	KwhSaved         int `json:"kwhSaved"`
	KmAvoided        int `json:"kmAvoided"`
}

// ProjectImpact derives impact metrics from ecoFactor = max(0, outOf-score).
func ProjectImpact(score, outOf int) Impact {
	f := outOf - score
	if f < 0 {
		f = 0
	}
	return Impact{
		EcoFactor:        f,
		TreesPerYear:     f * 2,
		LitersWaterSaved: f * 1200,
		KwhSaved:         f * 40,
		KmAvoided:        f * 6,
	}
}

// Future is the long-horizon projection shown in 2050 mode.
type Future struct {
	Factor            int `json:"factor"`
	LitersWasteBy2050 int `json:"litersWasteBy2050"`
	ExtraEnergyBy2050 int `json:"extraEnergyBy2050"`
	TreesSavedBy2050  int `json:"treesSavedBy2050"`
}

// ProjectFuture projects to 2050 from factor = max(1, 16-lastScore).
func ProjectFuture(lastScore int) Future {
	f := 16 - lastScore
	if f < 1 {
		f = 1
	}
	return Future{
		Factor:            f,
		LitersWasteBy2050: 3000 * f,
		ExtraEnergyBy2050: 80 * f,
		TreesSavedBy2050:  10 * f,
	}
}
