package domain

import "time"

type ActivityType string

const (
	ActivitySignUp           ActivityType = "SIGN_UP"
	ActivitySignIn           ActivityType = "SIGN_IN"
	ActivitySignOut          ActivityType = "SIGN_OUT"
	ActivityUpdatePassword   ActivityType = "UPDATE_PASSWORD"
	ActivityDeleteAccount    ActivityType = "DELETE_ACCOUNT"
	ActivityUpdateAccount    ActivityType = "UPDATE_ACCOUNT"
	ActivityCreateTeam       ActivityType = "CREATE_TEAM"
	ActivityRemoveTeamMember ActivityType = "REMOVE_TEAM_MEMBER"
	ActivityInviteTeamMember ActivityType = "INVITE_TEAM_MEMBER"
	ActivityAcceptInvitation ActivityType = "ACCEPT_INVITATION"
)

// ActivityTimestampLayout is the ISO-8601 form every stored timestamp is normalized to.
const ActivityTimestampLayout = "2006-01-02T15:04:05.000Z"

type ActivityLog struct {
	ID        int64        `json:"id"`
	TeamID    int64        `json:"team_id"`
	UserID    int64        `json:"user_id"`
	Action    ActivityType `json:"action"`
	Timestamp time.Time    `json:"timestamp"`
	IPAddress string       `json:"ip_address,omitempty"`
}

// ActivityEntry is an activity log entry before it is written. A nil
// TeamID means the actor has no team and the entry is dropped.
type ActivityEntry struct {
	TeamID    *int64
	UserID    int64
	Action    ActivityType
	IPAddress string
	At        time.Time
}

// FormatTimestamp renders t in the stored ISO-8601 layout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(ActivityTimestampLayout)
}
