package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classroom-ledger/internal/domain"
)

func posts() []domain.Post {
	return []domain.Post{
		{
			ID: "hw1", ClassID: "c1", AuthorID: "t1",
			Type: domain.PostHomework, Status: domain.PostPublished, Priority: domain.PriorityHigh,
			Interactions: domain.Interactions{Views: 100, Likes: 10, Shares: 2, Bookmarks: 4},
			Comments: []domain.Comment{
				{ID: "c-1", AuthorID: "s1"},
				{ID: "c-2", AuthorID: "t1"},
			},
			Submissions: []domain.Submission{{ID: "sub-1", StudentID: "s1"}, {ID: "sub-2", StudentID: "s2"}},
		},
		{
			ID: "an1", ClassID: "c1", AuthorID: "t1",
			Type: domain.PostAnnouncement, Status: domain.PostPublished, Priority: domain.PriorityLow,
			Interactions: domain.Interactions{Views: 50, Likes: 2},
			Comments:     []domain.Comment{{ID: "c-3", AuthorID: "s2"}},
		},
		{
			ID: "an2", ClassID: "c2", AuthorID: "t2",
			Type: domain.PostAnnouncement, Status: domain.PostPublished, Priority: domain.PriorityMedium,
			Interactions: domain.Interactions{Views: 10},
		},
		{
			ID: "draft", ClassID: "c2", AuthorID: "t2",
			Type: domain.PostQuiz, Status: domain.PostDraft, Priority: domain.PriorityUrgent,
			Interactions: domain.Interactions{Views: 1000},
			Submissions:  []domain.Submission{{ID: "sub-3", StudentID: "s3"}},
		},
	}
}

func TestSummarizePosts(t *testing.T) {
	st := SummarizePosts(posts())

	assert.Equal(t, 4, st.TotalPosts)
	assert.Equal(t, domain.CountShare{Count: 2, Percentage: 50}, st.ByType[domain.PostAnnouncement])
	assert.Equal(t, domain.CountShare{Count: 1, Percentage: 25}, st.ByType[domain.PostQuiz])
	assert.Equal(t, domain.CountShare{}, st.ByType[domain.PostPoll])
	assert.Equal(t, 3, st.ByStatus[domain.PostPublished].Count)
	assert.Equal(t, 75.0, st.ByStatus[domain.PostPublished].Percentage)
	assert.Equal(t, 1, st.ByPriority[domain.PriorityUrgent].Count)
	assert.Equal(t, 1160, st.TotalViews)
	assert.Equal(t, 12, st.TotalLikes)
	assert.Equal(t, 3, st.TotalComments)
	assert.Equal(t, 3, st.TotalSubmissions)
	assert.Equal(t, 290.0, st.AverageViews)
}

func TestSummarizePosts_Empty(t *testing.T) {
	st := SummarizePosts(nil)
	assert.Zero(t, st.TotalPosts)
	assert.Zero(t, st.AverageViews)
	assert.Zero(t, st.ByType[domain.PostHomework].Percentage)
}

func TestScoreClasses(t *testing.T) {
	scores := ScoreClasses(posts(), DefaultEngagementPolicy)
	require.Len(t, scores, 2)

	c1 := scores[0]
	assert.Equal(t, "c1", c1.ID)
	assert.Equal(t, domain.ScopeClass, c1.Scope)
	assert.Equal(t, 2, c1.Posts)
	assert.Equal(t, 3, c1.Comments)
	assert.Equal(t, 2, c1.Submissions)
	// hw1: 10 + 5 + 2 + 2 + 4 + 10 = 33; an1: 5 + 1 + 2 = 8
	assert.Equal(t, 41.0, c1.Raw)
	assert.Equal(t, 41.0, c1.Score)

	c2 := scores[1]
	assert.Equal(t, "c2", c2.ID)
	assert.Equal(t, 1, c2.Posts, "drafts are not counted")
	assert.Equal(t, 2.0, c2.Score)
}

func TestScoreStudents(t *testing.T) {
	scores := ScoreStudents(posts(), DefaultEngagementPolicy)
	require.Len(t, scores, 2, "post authors and draft submitters are not scored")

	assert.Equal(t, "s1", scores[0].ID)
	assert.Equal(t, 1, scores[0].Comments)
	assert.Equal(t, 1, scores[0].Submissions)
	assert.Equal(t, 1, scores[0].Posts)
	assert.Equal(t, 14.0, scores[0].Score)

	assert.Equal(t, "s2", scores[1].ID)
	assert.Equal(t, 2, scores[1].Posts)
	assert.Equal(t, 14.0, scores[1].Score)
}

func TestEngagementScoreBounds(t *testing.T) {
	policy := DefaultEngagementPolicy
	policy.FullScoreAt = 1
	for _, s := range ScoreClasses(posts(), policy) {
		assert.LessOrEqual(t, s.Score, 100.0)
		assert.GreaterOrEqual(t, s.Score, 0.0)
	}

	policy.FullScoreAt = 0
	for _, s := range ScoreStudents(posts(), policy) {
		assert.Zero(t, s.Score)
	}
}
