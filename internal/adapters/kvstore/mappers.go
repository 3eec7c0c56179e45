package kvstore

import (
	"time"

	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/domain"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/ports"
)

const (
	attrID                   = "id"
	attrKey                  = "key"
	attrValue                = "value"
	attrOwnerID              = "ownerId"
	attrClaimedAt            = "claimedAt"
	attrName                 = "name"
	attrEmail                = "email"
	attrPasswordHash         = "passwordHash"
	attrRole                 = "role"
	attrCreatedAt            = "createdAt"
	attrUpdatedAt            = "updatedAt"
	attrDeletedAt            = "deletedAt"
	attrUserID               = "userId"
	attrTeamID               = "teamId"
	attrJoinedAt             = "joinedAt"
	attrInvitedBy            = "invitedBy"
	attrInvitedAt            = "invitedAt"
	attrStatus               = "status"
	attrAction               = "action"
	attrTimestamp            = "timestamp"
	attrIPAddress            = "ipAddress"
	attrKind                 = "kind"
	attrStripeCustomerID     = "stripeCustomerId"
	attrStripeSubscriptionID = "stripeSubscriptionId"
	attrStripeProductID      = "stripeProductId"
	attrPlanName             = "planName"
	attrSubscriptionStatus   = "subscriptionStatus"
)

func userToItem(u domain.User) ports.Item {
	item := ports.Item{
		attrID:           u.ID,
		attrEmail:        u.Email,
		attrPasswordHash: u.PasswordHash,
		attrRole:         u.Role,
		attrCreatedAt:    domain.FormatTimestamp(u.CreatedAt),
		attrUpdatedAt:    domain.FormatTimestamp(u.UpdatedAt),
		attrDeletedAt:    nil,
	}
	if u.Name != "" {
		item[attrName] = u.Name
	}
	if u.DeletedAt != nil {
		item[attrDeletedAt] = domain.FormatTimestamp(*u.DeletedAt)
	}
	return item
}

func userFromItem(item ports.Item) domain.User {
	id, _ := item.Int64(attrID)
	return domain.User{
		ID:           id,
		Name:         item.String(attrName),
		Email:        item.String(attrEmail),
		PasswordHash: item.String(attrPasswordHash),
		Role:         item.String(attrRole),
		CreatedAt:    item.Time(attrCreatedAt),
		UpdatedAt:    item.Time(attrUpdatedAt),
		DeletedAt:    item.TimePtr(attrDeletedAt),
	}
}

func teamToItem(t domain.Team) ports.Item {
	return ports.Item{
		attrID:                   t.ID,
		attrName:                 t.Name,
		attrCreatedAt:            domain.FormatTimestamp(t.CreatedAt),
		attrUpdatedAt:            domain.FormatTimestamp(t.UpdatedAt),
		attrStripeCustomerID:     nullable(t.Billing.StripeCustomerID),
		attrStripeSubscriptionID: nullable(t.Billing.StripeSubscriptionID),
		attrStripeProductID:      nullable(t.Billing.StripeProductID),
		attrPlanName:             nullable(t.Billing.PlanName),
		attrSubscriptionStatus:   nullable(t.Billing.SubscriptionStatus),
	}
}

func teamFromItem(item ports.Item) domain.Team {
	id, _ := item.Int64(attrID)
	return domain.Team{
		ID:        id,
		Name:      item.String(attrName),
		CreatedAt: item.Time(attrCreatedAt),
		UpdatedAt: item.Time(attrUpdatedAt),
		Billing: domain.Billing{
			StripeCustomerID:     item.StringPtr(attrStripeCustomerID),
			StripeSubscriptionID: item.StringPtr(attrStripeSubscriptionID),
			StripeProductID:      item.StringPtr(attrStripeProductID),
			PlanName:             item.StringPtr(attrPlanName),
			SubscriptionStatus:   item.StringPtr(attrSubscriptionStatus),
		},
	}
}

func memberToItem(m domain.TeamMember) ports.Item {
	return ports.Item{
		attrID:       m.ID,
		attrUserID:   m.UserID,
		attrTeamID:   m.TeamID,
		attrRole:     m.Role,
		attrJoinedAt: domain.FormatTimestamp(m.JoinedAt),
	}
}

func memberFromItem(item ports.Item) domain.TeamMember {
	id, _ := item.Int64(attrID)
	userID, _ := item.Int64(attrUserID)
	teamID, _ := item.Int64(attrTeamID)
	return domain.TeamMember{
		ID:       id,
		UserID:   userID,
		TeamID:   teamID,
		Role:     item.String(attrRole),
		JoinedAt: item.Time(attrJoinedAt),
	}
}

func invitationToItem(inv domain.Invitation) ports.Item {
	return ports.Item{
		attrID:        inv.ID,
		attrTeamID:    inv.TeamID,
		attrEmail:     inv.Email,
		attrRole:      inv.Role,
		attrInvitedBy: inv.InvitedBy,
		attrInvitedAt: domain.FormatTimestamp(inv.InvitedAt),
		attrStatus:    inv.Status,
	}
}

func invitationFromItem(item ports.Item) domain.Invitation {
	id, _ := item.Int64(attrID)
	teamID, _ := item.Int64(attrTeamID)
	invitedBy, _ := item.Int64(attrInvitedBy)
	return domain.Invitation{
		ID:        id,
		TeamID:    teamID,
		Email:     item.String(attrEmail),
		Role:      item.String(attrRole),
		InvitedBy: invitedBy,
		InvitedAt: item.Time(attrInvitedAt),
		Status:    item.String(attrStatus),
	}
}

func activityToItem(log domain.ActivityLog) ports.Item {
	item := ports.Item{
		attrID:        log.ID,
		attrTeamID:    log.TeamID,
		attrUserID:    log.UserID,
		attrAction:    string(log.Action),
		attrTimestamp: domain.FormatTimestamp(log.Timestamp),
	}
	if log.IPAddress != "" {
		item[attrIPAddress] = log.IPAddress
	}
	return item
}

func activityFromItem(item ports.Item) domain.ActivityLog {
	id, _ := item.Int64(attrID)
	teamID, _ := item.Int64(attrTeamID)
	userID, _ := item.Int64(attrUserID)
	return domain.ActivityLog{
		ID:        id,
		TeamID:    teamID,
		UserID:    userID,
		Action:    domain.ActivityType(item.String(attrAction)),
		Timestamp: item.Time(attrTimestamp),
		IPAddress: item.String(attrIPAddress),
	}
}

func credentialToItem(k domain.CredentialKey) ports.Item {
	item := ports.Item{
		attrKey:       k.Key,
		attrUserID:    k.UserID,
		attrKind:      string(k.Kind),
		attrTimestamp: domain.FormatTimestamp(k.Timestamp),
	}
	if k.Name != "" {
		item[attrName] = k.Name
	}
	return item
}

func credentialFromItem(item ports.Item) domain.CredentialKey {
	userID, _ := item.Int64(attrUserID)
	return domain.CredentialKey{
		Key:       item.String(attrKey),
		UserID:    userID,
		Name:      item.String(attrName),
		Kind:      domain.CredentialKind(item.String(attrKind)),
		Timestamp: item.Time(attrTimestamp),
	}
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func timestamp(t time.Time) string {
	return domain.FormatTimestamp(t)
}
