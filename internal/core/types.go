// Package core provides the shared domain types and error taxonomy for the
// catalog gateway.
package core

// Difficulty levels as reported by the upstream catalog.
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// Topic is a topic tag attached to a problem. The lightweight list query
// does not return tags, so Topics on a Problem are only populated when the
// entry was loaded from a bootstrap artifact.
type Topic struct {
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// Problem is a single catalog entry. Field names mirror the upstream
// GraphQL schema so responses round-trip without renaming.
type Problem struct {
	ID               string  `json:"questionId"`
	DisplayID        string  `json:"questionFrontendId,omitempty"`
	Title            string  `json:"title"`
	Slug             string  `json:"titleSlug"`
	Difficulty       string  `json:"difficulty"`
	PaidOnly         bool    `json:"paidOnly"`
	HasSolution      bool    `json:"hasSolution"`
	HasVideoSolution bool    `json:"hasVideoSolution"`
	Topics           []Topic `json:"topicTags,omitempty"`
}

// Solution is the official-solution stub on a problem detail.
type Solution struct {
	CanSeeDetail bool   `json:"canSeeDetail"`
	Content      string `json:"content,omitempty"`
}

// ProblemDetail is the full per-problem record returned by the upstream
// detail query. Stats and SimilarQuestions are JSON-encoded strings exactly
// as the upstream delivers them; URL is synthesized at fetch time.
type ProblemDetail struct {
	ID               string    `json:"questionId"`
	DisplayID        string    `json:"questionFrontendId"`
	Title            string    `json:"title"`
	Slug             string    `json:"titleSlug"`
	Content          string    `json:"content"`
	Difficulty       string    `json:"difficulty"`
	Likes            int       `json:"likes"`
	Dislikes         int       `json:"dislikes"`
	PaidOnly         bool      `json:"isPaidOnly"`
	Stats            string    `json:"stats"`
	SimilarQuestions string    `json:"similarQuestions"`
	CategoryTitle    string    `json:"categoryTitle"`
	Hints            []string  `json:"hints"`
	Topics           []Topic   `json:"topicTags"`
	CompanyTags      []Topic   `json:"companyTags"`
	Solution         *Solution `json:"solution"`
	HasSolution      bool      `json:"hasSolution"`
	HasVideoSolution bool      `json:"hasVideoSolution"`
	URL              string    `json:"url"`
}

// TagCount is one row of the aggregated tag table.
type TagCount struct {
	Slug  string `json:"slug"`
	Name  string `json:"name,omitempty"`
	Count int    `json:"problem_count"`
}
