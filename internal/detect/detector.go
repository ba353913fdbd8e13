package detect

import (
	"path/filepath"
	"strings"

	"github.com/claimsight/claims-pipeline/constants"
)

// Keyword sets scored against lowercased OCR text. Scoring is additive so a
// document mentioning both sides still classifies by the dominant one.
var (
	frontKeywords = []string{
		"front bumper",
		"windshield",
		"headlight",
		"hood",
		"grille",
		"front end",
		"front of the vehicle",
	}
	backKeywords = []string{
		"rear bumper",
		"back bumper",
		"taillight",
		"tail light",
		"trunk",
		"tailgate",
		"rear windshield",
		"rear window",
		"rear end",
		"back of the vehicle",
	}
	frontHints = []string{"front"}
	backHints  = []string{"back", "rear"}
)

// Detect classifies OCR text into a processing variant. Pure and total:
// identical text always yields the identical variant, with unclassified as
// the fallback. Never consults a model.
func Detect(text string) constants.Variant {
	lower := strings.ToLower(text)
	return classify(frontScore(lower), score(lower, backKeywords))
}

// DetectWithHint additionally scores the document filename; the hint only
// breaks ties, so text evidence always wins over naming.
func DetectWithHint(text, sourcePath string) constants.Variant {
	lower := strings.ToLower(text)
	front := frontScore(lower)
	back := score(lower, backKeywords)
	if front != back {
		return classify(front, back)
	}

	name := strings.ToLower(filepath.Base(sourcePath))
	return classify(score(name, frontHints), score(name, backHints))
}

// frontScore excludes "windshield" occurrences that are part of the back
// phrase "rear windshield", so those count toward the back score only.
func frontScore(lower string) int {
	return score(lower, frontKeywords) - strings.Count(lower, "rear windshield")
}

func score(lower string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		n += strings.Count(lower, kw)
	}
	return n
}

func classify(front, back int) constants.Variant {
	switch {
	case front > back:
		return constants.VariantFront
	case back > front:
		return constants.VariantBack
	default:
		return constants.VariantUnclassified
	}
}
