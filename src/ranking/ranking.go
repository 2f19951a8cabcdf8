package ranking

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/stake-plus/ideaforge/src/types"
)

var priorityRe = regexp.MustCompile(`^P([1-5])$`)

var priorityWeights = map[int]int{
	1: 50,
	2: 30,
	3: 15,
	4: 5,
	5: 1,
}

// Score is the ranking value for one idea: raw up-votes plus a fixed weight
// for its priority label, if any.
func Score(idea types.IdeaIssue) int {
	return idea.Votes + priorityWeight(idea.Labels)
}

func priorityWeight(labels []string) int {
	for _, l := range labels {
		m := priorityRe.FindStringSubmatch(l)
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		return priorityWeights[n]
	}
	return 0
}

// Rank orders ideas by descending score, breaking ties by ascending issue
// number (earliest filed first). The input slice is not modified.
func Rank(ideas []types.IdeaIssue) []types.IdeaIssue {
	out := make([]types.IdeaIssue, len(ideas))
	copy(out, ideas)
	sort.SliceStable(out, func(i, j int) bool {
		si, sj := Score(out[i]), Score(out[j])
		if si != sj {
			return si > sj
		}
		return out[i].Number < out[j].Number
	})
	return out
}
