package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classroom-ledger/internal/aggregate"
	"classroom-ledger/internal/domain"
)

func TestPostService(t *testing.T) {
	repo := &fakePosts{posts: []domain.Post{
		{
			ID: "a", ClassID: "c1", AuthorID: "t1", Type: domain.PostHomework, Status: domain.PostPublished,
			Priority:     domain.PriorityHigh,
			Interactions: domain.Interactions{Views: 200},
			Submissions:  []domain.Submission{{ID: "s-1", StudentID: "s1"}},
		},
		{
			ID: "b", ClassID: "c2", AuthorID: "t2", Type: domain.PostAnnouncement, Status: domain.PostPublished,
			Priority:     domain.PriorityLow,
			Interactions: domain.Interactions{Views: 10},
		},
	}}
	svc := NewPostService(repo, aggregate.DefaultEngagementPolicy)
	ctx := context.Background()

	stats, err := svc.Stats(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalPosts)
	assert.Equal(t, 100.0, stats.ByType[domain.PostHomework].Percentage)

	students, err := svc.StudentEngagement(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "s1", students[0].ID)
	assert.Equal(t, 10.0, students[0].Score)

	classes, err := svc.ClassEngagement(ctx)
	require.NoError(t, err)
	require.Len(t, classes, 2)
	assert.Equal(t, "c1", classes[0].ID)
	assert.Equal(t, 50.0, classes[0].Score)
	assert.Equal(t, 2.0, classes[1].Score)
}
