package leetcode

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"goleet/internal/core"
)

// CatalogPage is one page of the paginated problem list.
type CatalogPage struct {
	Total    int
	Problems []core.Problem
}

// FetchCatalogPage retrieves one page of the lightweight problem list.
// Page fetches retry internally; a returned error means the attempts are
// exhausted.
func (c *Client) FetchCatalogPage(ctx context.Context, skip, limit int) (*CatalogPage, error) {
	variables := map[string]any{
		"categorySlug": "",
		"limit":        limit,
		"skip":         skip,
		"filters":      map[string]any{},
	}

	doc, err := c.QueryWithRetry(ctx, opProblemList, queryProblemList, variables)
	if err != nil {
		return nil, err
	}

	return catalogPageFromDoc(doc)
}

// FetchProblemsByTag retrieves problems carrying the given topic tag,
// straight from the upstream (tag filtering is not served from the local
// snapshot because the lightweight list carries no tags).
func (c *Client) FetchProblemsByTag(ctx context.Context, tag string, limit int) (*CatalogPage, error) {
	variables := map[string]any{
		"categorySlug": "",
		"limit":        limit,
		"skip":         0,
		"filters":      map[string]any{"tags": []string{tag}},
	}

	doc, err := c.Query(ctx, opProblemList, queryProblemList, variables)
	if err != nil {
		return nil, err
	}

	return catalogPageFromDoc(doc)
}

func catalogPageFromDoc(doc gjson.Result) (*CatalogPage, error) {
	list := doc.Get("data.problemsetQuestionList")
	if !list.Exists() || list.Type == gjson.Null {
		return nil, core.NewMalformedDataError(opProblemList, nil)
	}

	page := &CatalogPage{Total: int(list.Get("total").Int())}
	list.Get("questions").ForEach(func(_, q gjson.Result) bool {
		page.Problems = append(page.Problems, core.Problem{
			ID:               q.Get("questionId").String(),
			DisplayID:        q.Get("questionFrontendId").String(),
			Title:            q.Get("title").String(),
			Slug:             q.Get("titleSlug").String(),
			Difficulty:       q.Get("difficulty").String(),
			PaidOnly:         q.Get("paidOnly").Bool(),
			HasSolution:      q.Get("hasSolution").Bool(),
			HasVideoSolution: q.Get("hasVideoSolution").Bool(),
		})
		return true
	})
	return page, nil
}

// FetchDetail retrieves the full record for one problem. Retries
// internally; an upstream null question maps to a not-found error.
func (c *Client) FetchDetail(ctx context.Context, slug string) (*core.ProblemDetail, error) {
	doc, err := c.QueryWithRetry(ctx, opQuestionData, queryQuestionData, map[string]any{"titleSlug": slug})
	if err != nil {
		return nil, err
	}

	q := doc.Get("data.question")
	if !q.Exists() || q.Type == gjson.Null {
		return nil, core.NewNotFoundError("Question data not found")
	}

	detail := &core.ProblemDetail{
		ID:               q.Get("questionId").String(),
		DisplayID:        q.Get("questionFrontendId").String(),
		Title:            q.Get("title").String(),
		Slug:             q.Get("titleSlug").String(),
		Content:          q.Get("content").String(),
		Difficulty:       q.Get("difficulty").String(),
		Likes:            int(q.Get("likes").Int()),
		Dislikes:         int(q.Get("dislikes").Int()),
		PaidOnly:         q.Get("isPaidOnly").Bool(),
		Stats:            q.Get("stats").String(),
		SimilarQuestions: q.Get("similarQuestions").String(),
		CategoryTitle:    q.Get("categoryTitle").String(),
		Hints:            stringsFrom(q.Get("hints")),
		Topics:           topicsFrom(q.Get("topicTags")),
		CompanyTags:      topicsFrom(q.Get("companyTags")),
		HasSolution:      q.Get("hasSolution").Bool(),
		HasVideoSolution: q.Get("hasVideoSolution").Bool(),
		URL:              fmt.Sprintf("https://leetcode.com/problems/%s/", slug),
	}
	if s := q.Get("solution"); s.Exists() && s.Type != gjson.Null {
		detail.Solution = &core.Solution{
			CanSeeDetail: s.Get("canSeeDetail").Bool(),
			Content:      s.Get("content").String(),
		}
	}
	return detail, nil
}

// FetchDaily retrieves today's challenge as a raw JSON subtree.
func (c *Client) FetchDaily(ctx context.Context) (json.RawMessage, error) {
	doc, err := c.Query(ctx, opDailyChallenge, queryDailyChallenge, nil)
	if err != nil {
		return nil, err
	}

	v := doc.Get("data.activeDailyCodingChallengeQuestion")
	if !v.Exists() {
		return nil, core.NewMalformedDataError(opDailyChallenge, nil)
	}
	return json.RawMessage(v.Raw), nil
}

// FetchUserProfile retrieves a user's public profile as a raw JSON subtree.
func (c *Client) FetchUserProfile(ctx context.Context, username string) (json.RawMessage, error) {
	doc, err := c.Query(ctx, opUserProfile, queryUserProfile, map[string]any{"username": username})
	if err != nil {
		return nil, err
	}

	v := doc.Get("data.matchedUser")
	if !v.Exists() || v.Type == gjson.Null {
		return nil, core.NewNotFoundError("User not found")
	}
	return json.RawMessage(v.Raw), nil
}

// FetchUserContests retrieves a user's contest ranking and history as a raw
// JSON subtree containing both userContestRanking and
// userContestRankingHistory.
func (c *Client) FetchUserContests(ctx context.Context, username string) (json.RawMessage, error) {
	doc, err := c.Query(ctx, opUserContests, queryUserContests, map[string]any{"username": username})
	if err != nil {
		return nil, err
	}

	v := doc.Get("data")
	if !v.Exists() || v.Type == gjson.Null {
		return nil, core.NewNotFoundError("User not found")
	}
	return json.RawMessage(v.Raw), nil
}

// FetchRecentSubmissions retrieves a user's recent submission list as a raw
// JSON subtree. The upstream signals an unknown user through a GraphQL
// errors array rather than a null payload.
func (c *Client) FetchRecentSubmissions(ctx context.Context, username string, limit int) (json.RawMessage, error) {
	doc, err := c.Query(ctx, opRecentSubmissions, queryRecentSubmissions, map[string]any{
		"username": username,
		"limit":    limit,
	})
	if err != nil {
		return nil, err
	}

	if doc.Get("errors").Exists() {
		return nil, core.NewNotFoundError("User not found")
	}

	v := doc.Get("data.recentSubmissionList")
	if !v.Exists() {
		return nil, core.NewMalformedDataError(opRecentSubmissions, nil)
	}
	return json.RawMessage(v.Raw), nil
}

func stringsFrom(v gjson.Result) []string {
	var out []string
	v.ForEach(func(_, item gjson.Result) bool {
		out = append(out, item.String())
		return true
	})
	return out
}

func topicsFrom(v gjson.Result) []core.Topic {
	var out []core.Topic
	v.ForEach(func(_, item gjson.Result) bool {
		out = append(out, core.Topic{
			Name: item.Get("name").String(),
			Slug: item.Get("slug").String(),
		})
		return true
	})
	return out
}
