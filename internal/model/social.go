package model

import "time"

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestDeclined RequestStatus = "declined"
)

type Friend struct {
	ID    string    `json:"id"`
	User  UserInfo  `json:"user"`
	Since time.Time `json:"since"`
}

// FriendRequest transitions pending -> accepted (materializes a Friend and
// removes the request) or pending -> declined (removes the request). Both
// transitions are terminal.
type FriendRequest struct {
	ID          string        `json:"id"`
	Sender      UserInfo      `json:"sender"`
	RecipientID string        `json:"recipientId"`
	Status      RequestStatus `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
}

type Comment struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"createdAt"`
}

// FeedUpdate is the fan-out entity created once per milestone completion.
// After creation it is only ever touched for likes and comments.
type FeedUpdate struct {
	ID             string    `json:"id"`
	AuthorID       string    `json:"authorId"`
	AuthorName     string    `json:"authorName"`
	GoalID         string    `json:"goalId"`
	GoalTitle      string    `json:"goalTitle"`
	MilestoneID    string    `json:"milestoneId"`
	MilestoneTitle string    `json:"milestoneTitle"`
	Description    string    `json:"description,omitempty"`
	ImageURL       string    `json:"imageUrl,omitempty"`
	ThumbnailURL   string    `json:"thumbnailUrl,omitempty"`
	Likes          []string  `json:"likes"`
	Comments       []Comment `json:"comments"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Clone returns a deep copy. Likes and Comments get their own backing arrays
// so a returned snapshot cannot observe later in-place feed mutations.
func (u *FeedUpdate) Clone() FeedUpdate {
	out := *u
	out.Likes = append([]string{}, u.Likes...)
	out.Comments = append([]Comment{}, u.Comments...)
	return out
}

// Liked reports whether userID already appears in the likers set.
func (u *FeedUpdate) Liked(userID string) bool {
	for _, id := range u.Likes {
		if id == userID {
			return true
		}
	}
	return false
}
