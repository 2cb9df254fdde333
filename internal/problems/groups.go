package problems

import (
	"path"
	"regexp"
	"strconv"
	"strings"

	"ocwsync/internal/store"
)

// Group is one questions document and its optional answer key.
type Group struct {
	SectionID *int64
	Questions *store.Resource
	Solutions *store.Resource
	// Paired is set when Solutions came from a different section.
	Paired bool
}

// BuildGroups groups ordered problem resources by section and pairs stranded
// solutions with unanswered questions by assignment key. Sections without a
// questions document yield no group.
func BuildGroups(resources []store.Resource) []Group {
	type bucket struct {
		sectionID *int64
		questions *store.Resource
		solutions *store.Resource
	}
	var (
		order   []string
		buckets = make(map[string]*bucket)
	)
	for i := range resources {
		r := &resources[i]
		key := sectionKey(r)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{sectionID: r.SectionID}
			buckets[key] = b
			order = append(order, key)
		}
		switch r.ResourceType {
		case store.ResourceProblemSet, store.ResourceExam:
			if b.questions == nil {
				b.questions = r
			}
		case store.ResourceSolution:
			if b.solutions == nil {
				b.solutions = r
			}
		}
	}

	stranded := make(map[string]*store.Resource)
	for _, key := range order {
		b := buckets[key]
		if b.questions != nil || b.solutions == nil {
			continue
		}
		if k := AssignmentKey(resourceFile(b.solutions)); k != "" {
			if _, taken := stranded[k]; !taken {
				stranded[k] = b.solutions
			}
		}
	}

	groups := make([]Group, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		if b.questions == nil {
			continue
		}
		g := Group{SectionID: b.sectionID, Questions: b.questions, Solutions: b.solutions}
		if g.Solutions == nil {
			if k := AssignmentKey(resourceFile(b.questions)); k != "" {
				if sol, ok := stranded[k]; ok {
					g.Solutions = sol
					g.Paired = true
					delete(stranded, k)
				}
			}
		}
		groups = append(groups, g)
	}
	return groups
}

func sectionKey(r *store.Resource) string {
	if r.SectionID == nil {
		return "resource:" + strconv.FormatInt(r.ID, 10)
	}
	return "section:" + strconv.FormatInt(*r.SectionID, 10)
}

func resourceFile(r *store.Resource) string {
	if r == nil || r.PDFPath == nil {
		return ""
	}
	return path.Base(*r.PDFPath)
}

var (
	keySplit       = regexp.MustCompile(`[^a-z0-9]+`)
	solutionTokens = map[string]bool{
		"sol": true, "sols": true, "soln": true, "solns": true,
		"solution": true, "solutions": true, "answers": true, "key": true,
	}
	trailingSol = regexp.MustCompile(`(solutions?|solns?|sols?)$`)
)

// AssignmentKey reduces a PDF filename to the part shared by a problem set
// and its solutions: "ps3_sol.pdf" and "PS3.pdf" both yield "ps3".
func AssignmentKey(filename string) string {
	name := strings.TrimSuffix(strings.ToLower(filename), ".pdf")
	var kept []string
	for _, token := range keySplit.Split(name, -1) {
		if token == "" || solutionTokens[token] {
			continue
		}
		if stripped := trailingSol.ReplaceAllString(token, ""); stripped != "" {
			token = stripped
		}
		kept = append(kept, token)
	}
	return strings.Join(kept, "-")
}
