package events

import (
	"context"
	"log/slog"

	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/ports"
)

// EventInvitationCreated is the event type published for new invitations.
const EventInvitationCreated = "team.invitation.created"

type LoggingNotifier struct {
	logger *slog.Logger
}

func NewLoggingNotifier(logger *slog.Logger) *LoggingNotifier {
	return &LoggingNotifier{logger: logger}
}

func (n *LoggingNotifier) NotifyInvitation(ctx context.Context, notice ports.InvitationNotice) error {
	n.logger.InfoContext(ctx, "invitation notice",
		"event_type", EventInvitationCreated,
		"invitation_id", notice.InvitationID,
		"team_id", notice.TeamID,
		"role", notice.Role,
	)
	return nil
}
