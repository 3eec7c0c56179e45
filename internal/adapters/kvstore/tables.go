package kvstore

import "github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/ports"

// Tables holds the physical table names, all sharing one prefix.
type Tables struct {
	Users                  string
	Teams                  string
	TeamMembers            string
	Invitations            string
	ActivityLogs           string
	Keys                   string
	UserEmailIndex         string
	PendingInvitationIndex string
}

func NewTables(prefix string) Tables {
	return Tables{
		Users:                  prefix + "users",
		Teams:                  prefix + "teams",
		TeamMembers:            prefix + "team_members",
		Invitations:            prefix + "invitations",
		ActivityLogs:           prefix + "activity_logs",
		Keys:                   prefix + "ssh_keys",
		UserEmailIndex:         prefix + "user_email_index",
		PendingInvitationIndex: prefix + "pending_invitation_index",
	}
}

// Schemas lists key attributes per table. team_members is keyed by
// (id, teamId) so deletes can be scoped to one team.
func (t Tables) Schemas() []ports.TableSchema {
	return []ports.TableSchema{
		{Name: t.Users, KeyAttributes: []string{attrID}},
		{Name: t.Teams, KeyAttributes: []string{attrID}},
		{Name: t.TeamMembers, KeyAttributes: []string{attrID, attrTeamID}},
		{Name: t.Invitations, KeyAttributes: []string{attrID}},
		{Name: t.ActivityLogs, KeyAttributes: []string{attrID}},
		{Name: t.Keys, KeyAttributes: []string{attrKey}},
		{Name: t.UserEmailIndex, KeyAttributes: []string{attrValue}},
		{Name: t.PendingInvitationIndex, KeyAttributes: []string{attrValue}},
	}
}
