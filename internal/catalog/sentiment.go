package catalog

import (
	"math"
	"strings"
)

// Sentiment labels attached to product reviews.
const (
	SentimentPositive = "POSITIVE"
	SentimentNegative = "NEGATIVE"
	SentimentNeutral  = "NEUTRAL"
)

// Compound-score cutoffs. A review scoring inside (-0.05, 0.05) is neutral.
const (
	positiveThreshold = 0.05
	negativeThreshold = -0.05
)

// valence maps lexicon words to raw valence on the [-4, 4] scale.
var valence = map[string]float64{
	"good":        1.9,
	"great":       3.1,
	"excellent":   2.7,
	"amazing":     2.8,
	"awesome":     3.1,
	"love":        3.2,
	"loved":       2.9,
	"like":        1.5,
	"best":        3.2,
	"nice":        1.8,
	"perfect":     2.7,
	"happy":       2.7,
	"fast":        1.1,
	"quality":     1.4,
	"recommend":   1.6,
	"recommended": 1.6,
	"works":       1.2,
	"useful":      1.9,
	"fresh":       1.3,
	"worth":       1.1,
	"bad":         -2.5,
	"poor":        -2.1,
	"terrible":    -3.1,
	"horrible":    -2.5,
	"awful":       -2.0,
	"hate":        -2.7,
	"hated":       -3.2,
	"worst":       -3.1,
	"broken":      -1.8,
	"slow":        -1.2,
	"waste":       -1.8,
	"useless":     -1.8,
	"defective":   -2.1,
	"disappoint":  -1.6,
	"disappointed": -2.2,
	"refund":      -0.8,
	"cheap":       -0.6,
	"damaged":     -1.9,
	"late":        -1.1,
	"expensive":   -0.8,
}

var negations = map[string]bool{
	"not": true, "no": true, "never": true, "isnt": true, "isn't": true,
	"wasnt": true, "wasn't": true, "dont": true, "don't": true,
	"didnt": true, "didn't": true, "cant": true, "can't": true,
}

// Score computes a normalized sentiment score in [-1, 1] for a review comment.
// A negation word flips the sign of the word that follows it.
func Score(comment string) float64 {
	var sum float64
	negate := false
	for _, tok := range strings.Fields(strings.ToLower(comment)) {
		tok = strings.Trim(tok, ".,!?;:\"()")
		if negations[tok] {
			negate = true
			continue
		}
		if v, ok := valence[tok]; ok {
			if negate {
				v = -v
			}
			sum += v
		}
		negate = false
	}
	// alpha-normalization keeps the score inside [-1, 1]
	const alpha = 15.0
	if sum == 0 {
		return 0
	}
	return sum / math.Sqrt(sum*sum+alpha)
}

// Label maps a score to its user-facing sentiment label.
func Label(score float64) string {
	switch {
	case score >= positiveThreshold:
		return SentimentPositive
	case score <= negativeThreshold:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}
