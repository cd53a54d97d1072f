package decoder

// Result holds the conversion output.
type Result struct {
	Text     string  // decoded sentence, units concatenated without separator
	Units    []Unit  // segmentation details
	LogScore float64 // log10 score of the best path
}

// Unit holds one decoded unit and the syllables it covers.
type Unit struct {
	Text          string
	Pronunciation string  // table key the unit was found under
	Start         int     // first syllable index
	End           int     // one past the last syllable index
	LogProb       float64 // unigram log10 probability
}
