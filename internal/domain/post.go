package domain

import "time"

type PostType string

const (
	PostAnnouncement PostType = "announcement"
	PostHomework     PostType = "homework"
	PostQuiz         PostType = "quiz"
	PostPoll         PostType = "poll"
	PostDiscussion   PostType = "discussion"
	PostResource     PostType = "resource"
)

var PostTypes = []PostType{
	PostAnnouncement, PostHomework, PostQuiz, PostPoll, PostDiscussion, PostResource,
}

type PostStatus string

const (
	PostDraft           PostStatus = "draft"
	PostPublished       PostStatus = "published"
	PostPendingApproval PostStatus = "pending_approval"
	PostArchived        PostStatus = "archived"
)

var PostStatuses = []PostStatus{PostDraft, PostPublished, PostPendingApproval, PostArchived}

type PostPriority string

const (
	PriorityLow    PostPriority = "low"
	PriorityMedium PostPriority = "medium"
	PriorityHigh   PostPriority = "high"
	PriorityUrgent PostPriority = "urgent"
)

var PostPriorities = []PostPriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

type Interactions struct {
	Views     int `json:"views"`
	Likes     int `json:"likes"`
	Shares    int `json:"shares"`
	Bookmarks int `json:"bookmarks"`
}

type Comment struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type Submission struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"studentId"`
	SubmittedAt time.Time `json:"submittedAt"`
	Late        bool      `json:"late"`
}

// Post is a classroom content item.
type Post struct {
	ID       string       `json:"id"`
	ClassID  string       `json:"classId"`
	AuthorID string       `json:"authorId"`
	Title    string       `json:"title"`
	Content  string       `json:"content"`
	Type     PostType     `json:"type"`
	Status   PostStatus   `json:"status"`
	Priority PostPriority `json:"priority"`

	Interactions Interactions `json:"interactions"`
	Comments     []Comment    `json:"comments"`
	Submissions  []Submission `json:"submissions"`

	DueDate     *time.Time `json:"dueDate,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type CountShare struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type PostStats struct {
	TotalPosts       int                         `json:"totalPosts"`
	ByType           map[PostType]CountShare     `json:"byType"`
	ByStatus         map[PostStatus]CountShare   `json:"byStatus"`
	ByPriority       map[PostPriority]CountShare `json:"byPriority"`
	TotalViews       int                         `json:"totalViews"`
	TotalLikes       int                         `json:"totalLikes"`
	TotalShares      int                         `json:"totalShares"`
	TotalBookmarks   int                         `json:"totalBookmarks"`
	TotalComments    int                         `json:"totalComments"`
	TotalSubmissions int                         `json:"totalSubmissions"`
	AverageViews     float64                     `json:"averageViews"`
}

type EngagementScope string

const (
	ScopeStudent EngagementScope = "student"
	ScopeClass   EngagementScope = "class"
)

type EngagementScore struct {
	Scope       EngagementScope `json:"scope"`
	ID          string          `json:"id"`
	Posts       int             `json:"posts"`
	Views       int             `json:"views"`
	Likes       int             `json:"likes"`
	Comments    int             `json:"comments"`
	Submissions int             `json:"submissions"`
	Raw         float64         `json:"raw"`
	Score       float64         `json:"score"`
}
