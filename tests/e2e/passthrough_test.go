//go:build e2e

package e2e

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDailyChallenge checks the daily endpoint forwards the upstream
// payload untouched and never caches it.
func TestDailyChallenge(t *testing.T) {
	warmCatalog(t)
	baseline := upstream.CountFor("questionOfToday")

	var daily struct {
		Date     string `json:"date"`
		Link     string `json:"link"`
		Question struct {
			TitleSlug string `json:"titleSlug"`
		} `json:"question"`
	}
	for i := 0; i < 2; i++ {
		resp := getJSON(t, "/daily", &daily)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "2024-06-01", daily.Date)
		assert.Equal(t, "two-sum", daily.Question.TitleSlug)
	}

	assert.Equal(t, baseline+2, upstream.CountFor("questionOfToday"))
}

func TestUserProfile(t *testing.T) {
	var profile struct {
		Username string `json:"username"`
		Profile  struct {
			RealName string `json:"realName"`
			Ranking  int    `json:"ranking"`
		} `json:"profile"`
	}
	resp := getJSON(t, "/user/alice", &profile)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, "Alice Example", profile.Profile.RealName)
	assert.Equal(t, 1234, profile.Profile.Ranking)
}

func TestUserProfileNotFound(t *testing.T) {
	var errBody struct {
		Detail string `json:"detail"`
	}
	resp := getJSON(t, "/user/ghost", &errBody)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "User not found", errBody.Detail)
}

func TestUserContests(t *testing.T) {
	var contests struct {
		Ranking struct {
			Attended int     `json:"attendedContestsCount"`
			Rating   float64 `json:"rating"`
		} `json:"userContestRanking"`
		History []struct {
			Attended bool `json:"attended"`
		} `json:"userContestRankingHistory"`
	}
	resp := getJSON(t, "/user/alice/contests", &contests)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, 12, contests.Ranking.Attended)
	assert.InDelta(t, 1650.5, contests.Ranking.Rating, 0.001)
	require.Len(t, contests.History, 1)
	assert.True(t, contests.History[0].Attended)
}

func TestUserSubmissions(t *testing.T) {
	var subs []struct {
		TitleSlug     string `json:"titleSlug"`
		StatusDisplay string `json:"statusDisplay"`
	}

	resp := getJSON(t, "/user/alice/submissions", &subs)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, subs, 2)
	assert.Equal(t, "Accepted", subs[0].StatusDisplay)
	assert.Equal(t, "Wrong Answer", subs[1].StatusDisplay)

	resp = getJSON(t, "/user/alice/submissions?limit=1", &subs)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, subs, 1)
	assert.Equal(t, "two-sum", subs[0].TitleSlug)

	resp = get(t, "/user/alice/submissions?limit=0")
	body := bodyString(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "limit must be between 1 and 100")
}

func TestUserSubmissionsUnknownUser(t *testing.T) {
	var errBody struct {
		Detail string `json:"detail"`
	}
	resp := getJSON(t, "/user/ghost/submissions", &errBody)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "User not found", errBody.Detail)
}
