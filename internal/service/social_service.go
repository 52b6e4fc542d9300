package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jcthewizard/Goalshare-sub000/internal/model"
	"github.com/jcthewizard/Goalshare-sub000/internal/repository"
	"github.com/jcthewizard/Goalshare-sub000/internal/util"

	"go.uber.org/zap"
)

// The four storage slots. Each holds one JSON snapshot of its collection and
// is rewritten in full after every mutation; there are no delta writes.
const (
	kvFriends     = "social:friends"
	kvRequestsIn  = "social:requests:in"
	kvRequestsOut = "social:requests:out"
	kvFeed        = "social:feed"
)

// SocialService owns the friend graph and the activity feed. It shares no
// mutable state with the goal cache; the completion coordinator is the only
// bridge, and it crosses by value.
type SocialService struct {
	kv        repository.KVStore
	directory repository.UserDirectory
	log       *zap.Logger

	mu       sync.Mutex
	friends  []model.Friend
	incoming []model.FriendRequest
	outgoing []model.FriendRequest
	feed     []model.FeedUpdate
}

func NewSocialService(kv repository.KVStore, directory repository.UserDirectory, log *zap.Logger) *SocialService {
	return &SocialService{kv: kv, directory: directory, log: log}
}

// Load hydrates the store from the four slots. A completely empty storage is
// a first launch: the store seeds example data instead of starting blank.
// This is a bootstrap convenience, not part of the mutation API.
func (s *SocialService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	missing := 0
	missing += s.loadSlot(ctx, kvFriends, &s.friends)
	missing += s.loadSlot(ctx, kvRequestsIn, &s.incoming)
	missing += s.loadSlot(ctx, kvRequestsOut, &s.outgoing)
	missing += s.loadSlot(ctx, kvFeed, &s.feed)

	if missing == 4 {
		s.friends, s.incoming, s.outgoing, s.feed = seedSocialData()
		s.persistAll(ctx)
	}
	return nil
}

// loadSlot returns 1 when the slot was absent.
func (s *SocialService) loadSlot(ctx context.Context, key string, out interface{}) int {
	raw, err := s.kv.Get(ctx, key)
	if errors.Is(err, repository.ErrKeyNotFound) {
		return 1
	}
	if err != nil {
		s.log.Error("failed to read social slot", zap.String("slot", key), zap.Error(err))
		return 1
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		s.log.Error("corrupt social slot, starting empty", zap.String("slot", key), zap.Error(err))
	}
	return 0
}

func (s *SocialService) Friends() []model.Friend {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Friend{}, s.friends...)
}

func (s *SocialService) IncomingRequests() []model.FriendRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.FriendRequest{}, s.incoming...)
}

func (s *SocialService) OutgoingRequests() []model.FriendRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.FriendRequest{}, s.outgoing...)
}

// Feed deep-copies each update so a handler serializing the snapshot cannot
// race with in-place like and comment mutations. Friend and FriendRequest
// hold no slices, so the plain value copies above are already isolated.
func (s *SocialService) Feed() []model.FeedUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.FeedUpdate, 0, len(s.feed))
	for i := range s.feed {
		out = append(out, s.feed[i].Clone())
	}
	return out
}

// SearchUsers queries the remote directory and hides everyone the caller
// cannot send a request to: themselves, existing friends, and targets of a
// pending outgoing request.
func (s *SocialService) SearchUsers(ctx context.Context, selfID, query string) ([]model.UserInfo, error) {
	found, err := s.directory.Search(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	excluded := map[string]bool{selfID: true}
	for _, f := range s.friends {
		excluded[f.User.ID] = true
	}
	for _, r := range s.outgoing {
		if r.Status == model.RequestPending {
			excluded[r.RecipientID] = true
		}
	}

	users := make([]model.UserInfo, 0, len(found))
	for _, u := range found {
		if !excluded[u.ID] {
			users = append(users, u)
		}
	}
	return users, nil
}

// SendFriendRequest creates a pending outgoing request. Duplicate sends to
// the same target collapse onto the existing request, so two rapid calls for
// one target never produce two entries.
func (s *SocialService) SendFriendRequest(ctx context.Context, sender model.UserInfo, recipientID string) (model.FriendRequest, error) {
	if sender.ID == recipientID {
		return model.FriendRequest{}, util.ErrSelfRequest
	}

	s.mu.Lock()
	for _, f := range s.friends {
		if f.User.ID == recipientID {
			s.mu.Unlock()
			return model.FriendRequest{}, util.ErrAlreadyFriends
		}
	}
	for _, r := range s.outgoing {
		if r.RecipientID == recipientID && r.Status == model.RequestPending {
			s.mu.Unlock()
			return r, nil
		}
	}

	req := model.FriendRequest{
		ID:          model.GenerateID(),
		Sender:      sender,
		RecipientID: recipientID,
		Status:      model.RequestPending,
		CreatedAt:   time.Now(),
	}
	s.outgoing = append(s.outgoing, req)
	s.mu.Unlock()

	s.persist(ctx, kvRequestsOut)
	return req, nil
}

// AcceptFriendRequest materializes a Friend from a pending incoming request
// and removes the request. Terminal.
func (s *SocialService) AcceptFriendRequest(ctx context.Context, requestID string) (model.Friend, error) {
	s.mu.Lock()
	idx := -1
	for i, r := range s.incoming {
		if r.ID == requestID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return model.Friend{}, util.ErrRequestNotFound
	}

	req := s.incoming[idx]
	s.incoming = append(s.incoming[:idx], s.incoming[idx+1:]...)
	friend := model.Friend{
		ID:    model.GenerateID(),
		User:  req.Sender,
		Since: time.Now(),
	}
	s.friends = append(s.friends, friend)
	s.mu.Unlock()

	s.persist(ctx, kvRequestsIn)
	s.persist(ctx, kvFriends)
	return friend, nil
}

// DeclineFriendRequest removes a pending incoming request. Terminal.
func (s *SocialService) DeclineFriendRequest(ctx context.Context, requestID string) error {
	s.mu.Lock()
	idx := -1
	for i, r := range s.incoming {
		if r.ID == requestID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return util.ErrRequestNotFound
	}
	s.incoming = append(s.incoming[:idx], s.incoming[idx+1:]...)
	s.mu.Unlock()

	s.persist(ctx, kvRequestsIn)
	return nil
}

func (s *SocialService) RemoveFriend(ctx context.Context, userID string) error {
	s.mu.Lock()
	idx := -1
	for i, f := range s.friends {
		if f.User.ID == userID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return util.ErrRequestNotFound
	}
	s.friends = append(s.friends[:idx], s.friends[idx+1:]...)
	s.mu.Unlock()

	s.persist(ctx, kvFriends)
	return nil
}

// AppendFeedUpdate prepends one update to the feed. Called exactly once per
// completion by the coordinator.
func (s *SocialService) AppendFeedUpdate(ctx context.Context, update model.FeedUpdate) {
	if update.ID == "" {
		update.ID = model.GenerateID()
	}
	if update.Likes == nil {
		update.Likes = []string{}
	}
	if update.Comments == nil {
		update.Comments = []model.Comment{}
	}
	if update.CreatedAt.IsZero() {
		update.CreatedAt = time.Now()
	}

	s.mu.Lock()
	s.feed = append([]model.FeedUpdate{update}, s.feed...)
	s.mu.Unlock()

	s.persist(ctx, kvFeed)
}

// Like is idempotent: liking twice has the effect of liking once.
func (s *SocialService) Like(ctx context.Context, updateID, userID string) error {
	s.mu.Lock()
	u := s.findUpdate(updateID)
	if u == nil {
		s.mu.Unlock()
		return util.ErrUpdateNotFound
	}
	if u.Liked(userID) {
		s.mu.Unlock()
		return nil
	}
	u.Likes = append(u.Likes, userID)
	s.mu.Unlock()

	s.persist(ctx, kvFeed)
	return nil
}

// Unlike of a non-liked update is a no-op.
func (s *SocialService) Unlike(ctx context.Context, updateID, userID string) error {
	s.mu.Lock()
	u := s.findUpdate(updateID)
	if u == nil {
		s.mu.Unlock()
		return util.ErrUpdateNotFound
	}
	removed := false
	for i, id := range u.Likes {
		if id == userID {
			u.Likes = append(u.Likes[:i], u.Likes[i+1:]...)
			removed = true
			break
		}
	}
	s.mu.Unlock()

	if removed {
		s.persist(ctx, kvFeed)
	}
	return nil
}

func (s *SocialService) AddComment(ctx context.Context, updateID string, author model.UserInfo, text string) (model.Comment, error) {
	comment := model.Comment{
		ID:         model.GenerateID(),
		AuthorID:   author.ID,
		AuthorName: author.Name,
		Text:       text,
		CreatedAt:  time.Now(),
	}

	s.mu.Lock()
	u := s.findUpdate(updateID)
	if u == nil {
		s.mu.Unlock()
		return model.Comment{}, util.ErrUpdateNotFound
	}
	u.Comments = append(u.Comments, comment)
	s.mu.Unlock()

	s.persist(ctx, kvFeed)
	return comment, nil
}

func (s *SocialService) DeleteComment(ctx context.Context, updateID, commentID string) error {
	s.mu.Lock()
	u := s.findUpdate(updateID)
	if u == nil {
		s.mu.Unlock()
		return util.ErrUpdateNotFound
	}
	idx := -1
	for i, c := range u.Comments {
		if c.ID == commentID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return util.ErrCommentNotFound
	}
	u.Comments = append(u.Comments[:idx], u.Comments[idx+1:]...)
	s.mu.Unlock()

	s.persist(ctx, kvFeed)
	return nil
}

// findUpdate must be called with the lock held.
func (s *SocialService) findUpdate(id string) *model.FeedUpdate {
	for i := range s.feed {
		if s.feed[i].ID == id {
			return &s.feed[i]
		}
	}
	return nil
}

// persist writes one slot's full snapshot. Persistence failures keep the
// in-memory state, matching the optimistic discipline everywhere else.
func (s *SocialService) persist(ctx context.Context, key string) {
	s.mu.Lock()
	var payload interface{}
	switch key {
	case kvFriends:
		payload = s.friends
	case kvRequestsIn:
		payload = s.incoming
	case kvRequestsOut:
		payload = s.outgoing
	case kvFeed:
		payload = s.feed
	}
	data, err := json.Marshal(payload)
	s.mu.Unlock()
	if err != nil {
		s.log.Error("failed to serialize social slot", zap.String("slot", key), zap.Error(err))
		return
	}

	if err := s.kv.Set(ctx, key, string(data)); err != nil {
		s.log.Error("failed to persist social slot", zap.String("slot", key), zap.Error(err))
	}
}

// persistAll must be called with the lock held (only used by Load's seeding).
func (s *SocialService) persistAll(ctx context.Context) {
	for key, payload := range map[string]interface{}{
		kvFriends:     s.friends,
		kvRequestsIn:  s.incoming,
		kvRequestsOut: s.outgoing,
		kvFeed:        s.feed,
	} {
		data, err := json.Marshal(payload)
		if err != nil {
			continue
		}
		if err := s.kv.Set(ctx, key, string(data)); err != nil {
			s.log.Error("failed to persist social slot", zap.String("slot", key), zap.Error(err))
		}
	}
}
