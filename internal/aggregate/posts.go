package aggregate

import (
	"cmp"
	"slices"

	"classroom-ledger/internal/domain"
)

// SummarizePosts counts posts per type, status and priority and totals their interactions.
func SummarizePosts(posts []domain.Post) domain.PostStats {
	st := domain.PostStats{
		TotalPosts: len(posts),
		ByType:     make(map[domain.PostType]domain.CountShare, len(domain.PostTypes)),
		ByStatus:   make(map[domain.PostStatus]domain.CountShare, len(domain.PostStatuses)),
		ByPriority: make(map[domain.PostPriority]domain.CountShare, len(domain.PostPriorities)),
	}

	types := make(map[domain.PostType]int)
	statuses := make(map[domain.PostStatus]int)
	priorities := make(map[domain.PostPriority]int)
	for _, p := range posts {
		types[p.Type]++
		statuses[p.Status]++
		priorities[p.Priority]++

		st.TotalViews += p.Interactions.Views
		st.TotalLikes += p.Interactions.Likes
		st.TotalShares += p.Interactions.Shares
		st.TotalBookmarks += p.Interactions.Bookmarks
		st.TotalComments += len(p.Comments)
		st.TotalSubmissions += len(p.Submissions)
	}

	for _, t := range domain.PostTypes {
		st.ByType[t] = domain.CountShare{Count: types[t], Percentage: share(types[t], len(posts))}
	}
	for _, s := range domain.PostStatuses {
		st.ByStatus[s] = domain.CountShare{Count: statuses[s], Percentage: share(statuses[s], len(posts))}
	}
	for _, p := range domain.PostPriorities {
		st.ByPriority[p] = domain.CountShare{Count: priorities[p], Percentage: share(priorities[p], len(posts))}
	}
	if len(posts) > 0 {
		st.AverageViews = round2(float64(st.TotalViews) / float64(len(posts)))
	}
	return st
}

// EngagementPolicy weighs interactions into a raw score; FullScoreAt is the
// raw value that maps to 100.
type EngagementPolicy struct {
	View        float64
	Like        float64
	Share       float64
	Bookmark    float64
	Comment     float64
	Submission  float64
	FullScoreAt float64
}

var DefaultEngagementPolicy = EngagementPolicy{
	View:        0.1,
	Like:        0.5,
	Share:       1,
	Bookmark:    0.5,
	Comment:     2,
	Submission:  5,
	FullScoreAt: 50,
}

func (p EngagementPolicy) normalize(raw float64) float64 {
	if p.FullScoreAt <= 0 || raw <= 0 {
		return 0
	}
	return round2(min(100, raw/p.FullScoreAt*100))
}

// counted reports whether a post has an audience; drafts and posts awaiting approval do not.
func counted(p domain.Post) bool {
	return p.Status == domain.PostPublished || p.Status == domain.PostArchived
}

// ScoreClasses rates each class by its average weighted interactions per post.
func ScoreClasses(posts []domain.Post, policy EngagementPolicy) []domain.EngagementScore {
	byClass := make(map[string]*domain.EngagementScore)
	var order []string
	for _, p := range posts {
		if !counted(p) {
			continue
		}
		s, ok := byClass[p.ClassID]
		if !ok {
			s = &domain.EngagementScore{Scope: domain.ScopeClass, ID: p.ClassID}
			byClass[p.ClassID] = s
			order = append(order, p.ClassID)
		}
		s.Posts++
		s.Views += p.Interactions.Views
		s.Likes += p.Interactions.Likes
		s.Comments += len(p.Comments)
		s.Submissions += len(p.Submissions)
		s.Raw += float64(p.Interactions.Views)*policy.View +
			float64(p.Interactions.Likes)*policy.Like +
			float64(p.Interactions.Shares)*policy.Share +
			float64(p.Interactions.Bookmarks)*policy.Bookmark +
			float64(len(p.Comments))*policy.Comment +
			float64(len(p.Submissions))*policy.Submission
	}

	out := make([]domain.EngagementScore, 0, len(order))
	for _, id := range order {
		s := byClass[id]
		perPost := s.Raw / float64(s.Posts)
		s.Raw = round2(s.Raw)
		s.Score = policy.normalize(perPost)
		out = append(out, *s)
	}
	sortScores(out)
	return out
}

// ScoreStudents rates each student by the comments and submissions they authored.
func ScoreStudents(posts []domain.Post, policy EngagementPolicy) []domain.EngagementScore {
	byStudent := make(map[string]*domain.EngagementScore)
	touched := make(map[string]map[string]struct{})
	var order []string

	get := func(id string) *domain.EngagementScore {
		s, ok := byStudent[id]
		if !ok {
			s = &domain.EngagementScore{Scope: domain.ScopeStudent, ID: id}
			byStudent[id] = s
			touched[id] = make(map[string]struct{})
			order = append(order, id)
		}
		return s
	}

	for _, p := range posts {
		if !counted(p) {
			continue
		}
		for _, c := range p.Comments {
			if c.AuthorID == "" || c.AuthorID == p.AuthorID {
				continue
			}
			s := get(c.AuthorID)
			s.Comments++
			s.Raw += policy.Comment
			touched[c.AuthorID][p.ID] = struct{}{}
		}
		for _, sub := range p.Submissions {
			if sub.StudentID == "" {
				continue
			}
			s := get(sub.StudentID)
			s.Submissions++
			s.Raw += policy.Submission
			touched[sub.StudentID][p.ID] = struct{}{}
		}
	}

	out := make([]domain.EngagementScore, 0, len(order))
	for _, id := range order {
		s := byStudent[id]
		s.Posts = len(touched[id])
		s.Raw = round2(s.Raw)
		s.Score = policy.normalize(s.Raw)
		out = append(out, *s)
	}
	sortScores(out)
	return out
}

func sortScores(scores []domain.EngagementScore) {
	slices.SortStableFunc(scores, func(a, b domain.EngagementScore) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
