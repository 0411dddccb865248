package domain

import "strings"

// CampaignStatus is a node of the campaign lifecycle.
type CampaignStatus string

const (
	StatusDraft     CampaignStatus = "draft"
	StatusPending   CampaignStatus = "pending"
	StatusActive    CampaignStatus = "active"
	StatusPaused    CampaignStatus = "paused"
	StatusCompleted CampaignStatus = "completed"
)

// CampaignStatuses lists every status in lifecycle order.
var CampaignStatuses = []CampaignStatus{StatusDraft, StatusPending, StatusActive, StatusPaused, StatusCompleted}

// ParseCampaignStatus normalises a status string.
func ParseCampaignStatus(s string) (CampaignStatus, bool) {
	st := CampaignStatus(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range CampaignStatuses {
		if st == known {
			return st, true
		}
	}
	return st, false
}

// Terminal reports whether no transition leaves the status.
func (s CampaignStatus) Terminal() bool { return s == StatusCompleted }

// Action triggers a lifecycle transition.
type Action string

const (
	ActionSubmit   Action = "submit"
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionPause    Action = "pause"
	ActionActivate Action = "activate"
	ActionComplete Action = "complete"
)

// ParseAction normalises an action string.
func ParseAction(s string) (Action, bool) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	switch a {
	case ActionSubmit, ActionApprove, ActionReject, ActionPause, ActionActivate, ActionComplete:
		return a, true
	}
	return a, false
}

// CampaignTransitions is the complete lifecycle table. Any (from, to) pair
// absent here is illegal. Reject parks a pending campaign in paused.
var CampaignTransitions = map[CampaignStatus]map[Action]CampaignStatus{
	StatusDraft: {
		ActionSubmit: StatusPending,
	},
	StatusPending: {
		ActionApprove: StatusActive,
		ActionReject:  StatusPaused,
	},
	StatusActive: {
		ActionPause:    StatusPaused,
		ActionComplete: StatusCompleted,
	},
	StatusPaused: {
		ActionActivate: StatusActive,
		ActionComplete: StatusCompleted,
	},
}

// Apply returns the status reached by applying action to from.
func Apply(from CampaignStatus, action Action) (CampaignStatus, bool) {
	to, ok := CampaignTransitions[from][action]
	return to, ok
}

// Transition returns the action that moves from to to.
func Transition(from, to CampaignStatus) (Action, bool) {
	for action, target := range CampaignTransitions[from] {
		if target == to {
			return action, true
		}
	}
	return "", false
}
