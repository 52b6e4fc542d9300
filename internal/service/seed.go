package service

import (
	"time"

	"github.com/jcthewizard/Goalshare-sub000/internal/model"
)

// seedSocialData returns the first-launch fixtures: a couple of friends, one
// incoming request, and a short feed so the app is not a blank page. Returned
// in the slot order friends, incoming, outgoing, feed.
func seedSocialData() ([]model.Friend, []model.FriendRequest, []model.FriendRequest, []model.FeedUpdate) {
	now := time.Now()

	maya := model.UserInfo{ID: "seed-user-maya", Name: "Maya Chen", Username: "mayac", Avatar: ""}
	diego := model.UserInfo{ID: "seed-user-diego", Name: "Diego Alvarez", Username: "dalvarez", Avatar: ""}
	priya := model.UserInfo{ID: "seed-user-priya", Name: "Priya Nair", Username: "priyan", Avatar: ""}

	friends := []model.Friend{
		{ID: model.GenerateID(), User: maya, Since: now.AddDate(0, -2, 0)},
		{ID: model.GenerateID(), User: diego, Since: now.AddDate(0, -1, -12)},
	}

	incoming := []model.FriendRequest{
		{
			ID:        model.GenerateID(),
			Sender:    priya,
			Status:    model.RequestPending,
			CreatedAt: now.AddDate(0, 0, -2),
		},
	}

	outgoing := []model.FriendRequest{}

	feed := []model.FeedUpdate{
		{
			ID:             model.GenerateID(),
			AuthorID:       maya.ID,
			AuthorName:     maya.Name,
			GoalTitle:      "Run a half marathon",
			MilestoneTitle: "Finished a 15k training run",
			Description:    "Longest run yet, legs are jelly",
			Likes:          []string{diego.ID},
			Comments: []model.Comment{
				{
					ID:         model.GenerateID(),
					AuthorID:   diego.ID,
					AuthorName: diego.Name,
					Text:       "Beast mode",
					CreatedAt:  now.AddDate(0, 0, -1),
				},
			},
			CreatedAt: now.AddDate(0, 0, -1),
		},
		{
			ID:             model.GenerateID(),
			AuthorID:       diego.ID,
			AuthorName:     diego.Name,
			GoalTitle:      "Learn to cook",
			MilestoneTitle: "Made fresh pasta from scratch",
			Likes:          []string{},
			Comments:       []model.Comment{},
			CreatedAt:      now.AddDate(0, 0, -3),
		},
	}

	return friends, incoming, outgoing, feed
}
