package policy

import "github.com/boxline/boxline-backend/internal/model"

const (
	ResourceAny    = "*"
	ResourceBox    = "box"
	ResourceItem   = "item"
	ResourcePickup = "pickup"
	ResourceVouch  = "vouch"
	ResourceUser   = "user"
	ResourceRate   = "rate"
)

const (
	ActionAny         = "*"
	ActionCreate      = "create"
	ActionRead        = "read"
	ActionUpdate      = "update"
	ActionDelete      = "delete"
	ActionList        = "list"
	ActionTransfer    = "transfer"
	ActionManageItems = "manage_items"
	ActionApprove     = "approve"
	ActionDecline     = "decline"
)

// DefaultRules is the static permission table. ADMIN and SYSTEM hold the
// wildcard; everything else is deny-by-default. Box read is deliberately
// coarse here: the box service applies the creator/owner visibility split
// itself because a creator who transferred the box away still sees it.
func DefaultRules() Rules {
	return Rules{
		model.RoleAdmin: {
			ResourceAny: {ActionAny: Allow()},
		},
		model.RoleSystem: {
			ResourceAny: {ActionAny: Allow()},
		},
		model.RoleShipper: {
			ResourceBox: {
				ActionCreate:      Allow(),
				ActionRead:        Allow(),
				ActionList:        Allow(),
				ActionUpdate:      If(IsOwner),
				ActionTransfer:    If(IsOwner),
				ActionManageItems: If(IsOwner),
			},
			ResourcePickup: {
				ActionCreate: Allow(),
				ActionRead:   AnyOf(IsAdmin, IsOwner),
				ActionList:   If(IsOwner),
				ActionUpdate: If(IsOwner),
			},
			ResourceItem: {
				ActionCreate: Allow(),
				ActionRead:   AnyOf(IsAdmin, IsOwner),
				ActionList:   If(IsOwner),
			},
			ResourceVouch: {
				ActionApprove: Allow(),
				ActionDecline: Allow(),
				ActionList:    Allow(),
			},
			ResourceRate: {
				ActionCreate: Allow(),
				ActionRead:   Allow(),
				ActionList:   Allow(),
			},
			ResourceUser: {
				ActionRead:   If(IsSelf),
				ActionUpdate: If(IsSelf),
			},
		},
		model.RoleClient: {
			ResourcePickup: {
				ActionRead: If(IsOwner),
				ActionList: If(IsOwner),
			},
			ResourceVouch: {
				ActionApprove: Allow(),
				ActionDecline: Allow(),
				ActionList:    Allow(),
			},
			ResourceRate: {
				ActionRead: Allow(),
				ActionList: Allow(),
			},
			ResourceUser: {
				ActionRead:   If(IsSelf),
				ActionUpdate: If(IsSelf),
			},
		},
	}
}
