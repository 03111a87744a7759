package pipeline

import (
	"sort"
	"strings"
)

// stopwordSets is a minimal per-language stopword table used by the
// frequency-based detector. No language-identification library exists
// anywhere in the retrieval corpus (searched for lingua/whatlanggo/franco-
// style packages and found none), so this heuristic is the justified
// standard-library fallback documented in the design ledger.
var stopwordSets = map[string][]string{
	"eng": {"the", "and", "of", "to", "in", "is", "that", "it", "was", "for"},
	"fra": {"le", "la", "de", "et", "les", "des", "est", "une", "dans", "pour"},
	"deu": {"der", "die", "das", "und", "ist", "den", "von", "mit", "ein", "zu"},
	"spa": {"el", "la", "de", "que", "y", "en", "los", "es", "para", "con"},
	"ita": {"il", "la", "di", "che", "e", "un", "per", "sono", "con", "del"},
	"por": {"o", "a", "de", "que", "e", "do", "da", "em", "para", "com"},
	"nld": {"de", "het", "een", "en", "van", "is", "dat", "voor", "met", "op"},
}

// detectLanguage returns the best-matching language code and a confidence
// in [0,1] based on stopword density, the simplest signal that needs no
// n-gram model (spec §4.4 step 4).
func detectLanguage(text string) (lang string, confidence float64) {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return "", 0
	}
	wordSet := make(map[string]int, len(words))
	for _, w := range words {
		wordSet[trimPunct(w)]++
	}

	bestLang, bestHits := "", 0
	for code, stopwords := range stopwordSets {
		hits := 0
		for _, sw := range stopwords {
			hits += wordSet[sw]
		}
		if hits > bestHits {
			bestHits = hits
			bestLang = code
		}
	}
	if bestLang == "" {
		return "", 0
	}
	confidence = float64(bestHits) / float64(len(words))
	if confidence > 1 {
		confidence = 1
	}
	return bestLang, confidence
}

func trimPunct(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})
}

// detectLanguages implements the full step 4 algorithm: single-language
// detection when detectMultiple is false, or chunked histogram detection
// with a relaxed threshold when true.
func detectLanguages(content string, minConfidence float64, detectMultiple bool) []string {
	if !detectMultiple {
		lang, confidence := detectLanguage(content)
		if lang != "" && confidence >= minConfidence {
			return []string{lang}
		}
		return nil
	}

	const chunkSize = 200
	relaxed := minConfidence
	if relaxed > 0.35 {
		relaxed = 0.35
	}

	runes := []rune(content)
	counts := make(map[string]int)
	var order []string
	for start := 0; start < len(runes); start += chunkSize {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		lang, confidence := detectLanguage(string(runes[start:end]))
		if lang == "" || confidence < relaxed {
			continue
		}
		if _, seen := counts[lang]; !seen {
			order = append(order, lang)
		}
		counts[lang]++
	}

	if len(order) == 0 {
		lang, confidence := detectLanguage(content)
		if lang != "" && confidence >= minConfidence {
			return []string{lang}
		}
		return nil
	}

	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	return order
}
