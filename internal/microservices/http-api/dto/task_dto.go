package dto

import "time"

type ClaimRewardRequest struct {
	TaskCode string `json:"taskCode" binding:"required,max=64"`
}

type UserTaskResponse struct {
	TaskCode      string     `json:"task_code"`
	Category      string     `json:"category"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Target        int        `json:"target"`
	Progress      int        `json:"progress"`
	State         string     `json:"state"`
	Completed     bool       `json:"completed"`
	RewardClaimed bool       `json:"reward_claimed"`
	Claimable     bool       `json:"claimable"`
	RewardInvites int        `json:"reward_invites"`
	Repeatable    bool       `json:"repeatable"`
	RepeatCount   int        `json:"repeat_count"`
	MaxRepeats    int        `json:"max_repeats"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

type ClaimRewardResponse struct {
	TaskCode         string `json:"task_code"`
	RewardInvites    int    `json:"reward_invites"`
	InviteQuota      int    `json:"invite_quota"`
	RepeatCount      int    `json:"repeat_count"`
	NextInstanceOpen bool   `json:"next_instance_open"`
}
