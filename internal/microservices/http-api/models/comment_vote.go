package models

import "time"

type VoteType string

const (
	Upvote   VoteType = "upvote"
	Downvote VoteType = "downvote"
)

func (v VoteType) Valid() bool {
	return v == Upvote || v == Downvote
}

type CommentVote struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	CommentID int64     `json:"comment_id" gorm:"not null;uniqueIndex:idx_comment_vote_user"`
	UserID    string    `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_comment_vote_user"`
	VoteType  VoteType  `json:"vote_type" gorm:"type:varchar(16);not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Comment Comment `json:"-" gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE;"`
}

func (CommentVote) TableName() string {
	return "comment_votes"
}

// VoteState is the per-(comment, user) vote state.
type VoteState string

const (
	VoteNone      VoteState = "none"
	VoteUpvoted   VoteState = "upvoted"
	VoteDownvoted VoteState = "downvoted"
)

// VoteStateOf maps a stored vote row (nil for none) to its state.
func VoteStateOf(v *CommentVote) VoteState {
	if v == nil {
		return VoteNone
	}
	if v.VoteType == Downvote {
		return VoteDownvoted
	}
	return VoteUpvoted
}

// VoteType is the row stored for the state; ok is false for VoteNone.
func (s VoteState) VoteType() (VoteType, bool) {
	switch s {
	case VoteUpvoted:
		return Upvote, true
	case VoteDownvoted:
		return Downvote, true
	}
	return "", false
}

type VoteTransition struct {
	From  VoteState
	To    VoteState
	Delta int
}

var voteTransitions = map[VoteState]map[VoteType]VoteTransition{
	VoteNone: {
		Upvote:   {From: VoteNone, To: VoteUpvoted, Delta: 1},
		Downvote: {From: VoteNone, To: VoteDownvoted, Delta: -1},
	},
	VoteUpvoted: {
		Upvote:   {From: VoteUpvoted, To: VoteNone, Delta: -1},
		Downvote: {From: VoteUpvoted, To: VoteDownvoted, Delta: -2},
	},
	VoteDownvoted: {
		Downvote: {From: VoteDownvoted, To: VoteNone, Delta: 1},
		Upvote:   {From: VoteDownvoted, To: VoteUpvoted, Delta: 2},
	},
}

// NextVote returns the transition for casting vote from state.
func NextVote(from VoteState, cast VoteType) (VoteTransition, bool) {
	t, ok := voteTransitions[from][cast]
	return t, ok
}
