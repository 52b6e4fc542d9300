package util

import "errors"

var (
	ErrGoalNotFound      = errors.New("goal not found")
	ErrMilestoneNotFound = errors.New("milestone not found")
	ErrTimelineNotFound  = errors.New("timeline item not found")
	ErrUpdateNotFound    = errors.New("feed update not found")
	ErrCommentNotFound   = errors.New("comment not found")
	ErrRequestNotFound   = errors.New("friend request not found")
	ErrTitleRequired     = errors.New("title is required")
	ErrFetchFailed       = errors.New("fetch failed")
	ErrEmptyImage        = errors.New("image is empty or unreadable")
	ErrCaptureCanceled   = errors.New("capture canceled")
	ErrCaptureBusy       = errors.New("capture already in flight")
	ErrNothingHeld       = errors.New("no image held")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrSelfRequest       = errors.New("cannot friend yourself")
	ErrAlreadyFriends    = errors.New("already friends")
)
