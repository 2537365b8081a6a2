package service

import (
	"context"

	"classroom-ledger/internal/aggregate"
	"classroom-ledger/internal/domain"
)

type PostService struct {
	repo   PostRepository
	policy aggregate.EngagementPolicy
}

func NewPostService(repo PostRepository, policy aggregate.EngagementPolicy) *PostService {
	return &PostService{repo: repo, policy: policy}
}

func (s *PostService) Stats(ctx context.Context, classID string) (domain.PostStats, error) {
	posts, err := s.repo.List(ctx, classID)
	if err != nil {
		return domain.PostStats{}, err
	}
	return aggregate.SummarizePosts(posts), nil
}

// StudentEngagement scores the students active on a class's posts.
func (s *PostService) StudentEngagement(ctx context.Context, classID string) ([]domain.EngagementScore, error) {
	posts, err := s.repo.List(ctx, classID)
	if err != nil {
		return nil, err
	}
	return aggregate.ScoreStudents(posts, s.policy), nil
}

// ClassEngagement ranks every class by post engagement.
func (s *PostService) ClassEngagement(ctx context.Context) ([]domain.EngagementScore, error) {
	posts, err := s.repo.List(ctx, "")
	if err != nil {
		return nil, err
	}
	return aggregate.ScoreClasses(posts, s.policy), nil
}
