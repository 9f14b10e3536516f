package application

import (
	"strconv"
	"strings"
)

// parseVoteLine turns "NPP=4500,NDC=3200" into candidate id counts using the
// abbreviation index. Malformed pairs, negative counts and unknown
// abbreviations are skipped rather than failing the whole line; the caller
// re-prompts when nothing parsed at all.
func parseVoteLine(raw string, candidateByAbbr map[string]string) map[string]int {
	votes := make(map[string]int)
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		abbr := strings.ToUpper(strings.TrimSpace(parts[0]))
		count, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil || count < 0 {
			continue
		}
		candidateID, ok := candidateByAbbr[abbr]
		if !ok {
			continue
		}
		votes[candidateID] = count
	}
	return votes
}

// lastInputSegment extracts the newest reply from the aggregator's
// cumulative "1*2*NPP=4500" text format.
func lastInputSegment(text string) string {
	parts := strings.Split(text, "*")
	return strings.TrimSpace(parts[len(parts)-1])
}
