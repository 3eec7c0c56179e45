package application

import (
	"log/slog"
	"time"

	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/ports"
)

type Service struct {
	cfg                Config
	users              ports.UserRepository
	teams              ports.TeamRepository
	members            ports.TeamMemberRepository
	invitations        ports.InvitationRepository
	activity           ports.ActivityLogRepository
	keys               ports.CredentialKeyRepository
	emailIndex         ports.UniqueIndex
	pendingInvitations ports.UniqueIndex
	hasher             ports.PasswordHasher
	sessions           *SessionManager
	notifier           ports.InvitationNotifier
	billing            ports.BillingProvider
	logger             *slog.Logger
	nowFn              func() time.Time
}

type Dependencies struct {
	Config             Config
	Users              ports.UserRepository
	Teams              ports.TeamRepository
	Members            ports.TeamMemberRepository
	Invitations        ports.InvitationRepository
	Activity           ports.ActivityLogRepository
	Keys               ports.CredentialKeyRepository
	EmailIndex         ports.UniqueIndex
	PendingInvitations ports.UniqueIndex
	Hasher             ports.PasswordHasher
	Sessions           *SessionManager
	Notifier           ports.InvitationNotifier
	Billing            ports.BillingProvider
	Logger             *slog.Logger
}

func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:                deps.Config,
		users:              deps.Users,
		teams:              deps.Teams,
		members:            deps.Members,
		invitations:        deps.Invitations,
		activity:           deps.Activity,
		keys:               deps.Keys,
		emailIndex:         deps.EmailIndex,
		pendingInvitations: deps.PendingInvitations,
		hasher:             deps.Hasher,
		sessions:           deps.Sessions,
		notifier:           deps.Notifier,
		billing:            deps.Billing,
		logger:             logger.With("service", deps.Config.ServiceName, "module", "application", "layer", "application"),
		nowFn:              func() time.Time { return time.Now().UTC() },
	}
}

// Sessions exposes the session manager so transports can resolve the caller.
func (s *Service) Sessions() *SessionManager {
	return s.sessions
}
