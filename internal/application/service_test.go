package application_test

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/adapters/cache"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/adapters/ids"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/adapters/kvstore"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/adapters/memory"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/adapters/security"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/application"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/application/action"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/domain"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/ports"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/ssh"
)

const testSecret = "test-secret-with-enough-entropy"

type cookieJar struct {
	mu      sync.Mutex
	token   string
	expires time.Time
	cleared bool
}

func (j *cookieJar) SessionToken() (string, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.token, j.token != ""
}

func (j *cookieJar) SetSessionToken(token string, expires time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.token, j.expires, j.cleared = token, expires, false
}

func (j *cookieJar) ClearSessionToken() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.token, j.cleared = "", true
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []ports.InvitationNotice
	err     error
}

func (n *recordingNotifier) NotifyInvitation(_ context.Context, notice ports.InvitationNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
	return n.err
}

type stubBilling struct{}

func (stubBilling) CreateCheckoutSession(_ context.Context, team domain.Team, priceID string) (string, error) {
	return "https://pay.example.test/" + strconv.FormatInt(team.ID, 10) + "/" + priceID, nil
}

type harness struct {
	svc      *application.Service
	actions  *application.Actions
	repos    *kvstore.Repositories
	store    *memory.Store
	tables   kvstore.Tables
	codec    *security.JWTSessionCodec
	notifier *recordingNotifier
}

func newHarness(t *testing.T, revocation bool) *harness {
	t.Helper()
	return newHarnessOver(t, revocation, nil)
}

// newHarnessOver lets wrap sit between the repositories and the memory store.
func newHarnessOver(t *testing.T, revocation bool, wrap func(ports.Store) ports.Store) *harness {
	t.Helper()
	tables := kvstore.NewTables("")
	store := memory.NewStore(tables.Schemas()...)
	gen, err := ids.NewSnowflakeGenerator(1)
	if err != nil {
		t.Fatalf("id generator: %v", err)
	}
	var backend ports.Store = store
	if wrap != nil {
		backend = wrap(store)
	}
	repos := kvstore.NewRepositories(backend, gen, tables)
	codec, err := security.NewJWTSessionCodec(testSecret)
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	var revocations ports.SessionRevocationStore
	if revocation {
		revocations = cache.NewMemorySessionRevocationStore()
	}
	sessions := application.NewSessionManager(codec, repos.Users, revocations, time.Hour, logger)
	notifier := &recordingNotifier{}
	svc := application.NewService(application.Dependencies{
		Config:             application.Config{ServiceName: "test", SessionTTL: time.Hour, SessionRevocation: revocation},
		Users:              repos.Users,
		Teams:              repos.Teams,
		Members:            repos.Members,
		Invitations:        repos.Invitations,
		Activity:           repos.Activity,
		Keys:               repos.Keys,
		EmailIndex:         repos.EmailIndex,
		PendingInvitations: repos.PendingInvitations,
		Hasher:             security.NewBcryptHasher(bcrypt.MinCost, 4),
		Sessions:           sessions,
		Notifier:           notifier,
		Billing:            stubBilling{},
		Logger:             logger,
	})
	return &harness{
		svc:      svc,
		actions:  application.NewActions(svc, action.NewValidator()),
		repos:    repos,
		store:    store,
		tables:   tables,
		codec:    codec,
		notifier: notifier,
	}
}

func withJar(jar *cookieJar) context.Context {
	ctx := application.WithSessionCarrier(context.Background(), jar)
	return application.WithRequestMeta(ctx, application.RequestMeta{IPAddress: "203.0.113.7"})
}

func (h *harness) signUp(t *testing.T, email string, inviteID int64) (domain.User, *cookieJar) {
	t.Helper()
	jar := &cookieJar{}
	in := application.SignUpInput{Email: email, Password: "password123"}
	if inviteID != 0 {
		in.InviteID = action.ID(strconv.FormatInt(inviteID, 10))
	}
	if _, err := h.svc.SignUp(withJar(jar), in); err != nil {
		t.Fatalf("sign up %s: %v", email, err)
	}
	user, err := h.repos.Users.FindByEmail(context.Background(), email)
	if err != nil {
		t.Fatalf("find %s: %v", email, err)
	}
	return user, jar
}

func (h *harness) activityOf(t *testing.T, userID int64) []domain.ActivityType {
	t.Helper()
	logs, err := h.repos.Activity.ListByUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("list activity: %v", err)
	}
	out := make([]domain.ActivityType, 0, len(logs))
	for _, l := range logs {
		out = append(out, l.Action)
	}
	return out
}

func containsAction(actions []domain.ActivityType, want domain.ActivityType) bool {
	for _, a := range actions {
		if a == want {
			return true
		}
	}
	return false
}

func (h *harness) countRows(t *testing.T, table string, filter ports.Filter) int {
	t.Helper()
	items, err := h.store.Scan(context.Background(), table, filter)
	if err != nil {
		t.Fatalf("scan %s: %v", table, err)
	}
	return len(items)
}

func TestSignUpWithoutInviteCreatesOwnedTeam(t *testing.T) {
	t.Parallel()

	h := newHarness(t, false)
	user, jar := h.signUp(t, "a@x.io", 0)

	if user.Role != domain.RoleOwner {
		t.Fatalf("expected owner role, got %q", user.Role)
	}
	member, err := h.repos.Members.FindByUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("find membership: %v", err)
	}
	team, err := h.repos.Teams.GetByID(context.Background(), member.TeamID)
	if err != nil {
		t.Fatalf("get team: %v", err)
	}
	if team.Name != "a@x.io's Team" || member.Role != domain.RoleOwner {
		t.Fatalf("unexpected team %q / member role %q", team.Name, member.Role)
	}

	logged := h.activityOf(t, user.ID)
	if !containsAction(logged, domain.ActivityCreateTeam) || !containsAction(logged, domain.ActivitySignUp) {
		t.Fatalf("expected CREATE_TEAM and SIGN_UP, got %v", logged)
	}

	if jar.token == "" || !jar.expires.After(time.Now()) {
		t.Fatalf("expected a session cookie, got %+v", jar)
	}
	current, err := h.svc.Sessions().CurrentUser(withJar(jar))
	if err != nil || current == nil || current.ID != user.ID {
		t.Fatalf("expected session to resolve to user %d, got %+v err=%v", user.ID, current, err)
	}
}

func TestSignUpRejectsDuplicateEmailWithoutWriting(t *testing.T) {
	t.Parallel()

	h := newHarness(t, false)
	h.signUp(t, "a@x.io", 0)
	before := h.countRows(t, h.tables.Users, nil)

	_, err := h.svc.SignUp(withJar(&cookieJar{}), application.SignUpInput{Email: "a@x.io", Password: "password123"})
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected duplicate email, got %v", err)
	}
	if after := h.countRows(t, h.tables.Users, nil); after != before {
		t.Fatalf("expected no new user row, had %d now %d", before, after)
	}
}

func TestSignUpWithUnknownInvitationCreatesNothing(t *testing.T) {
	t.Parallel()

	h := newHarness(t, false)
	_, err := h.svc.SignUp(withJar(&cookieJar{}), application.SignUpInput{
		Email:    "b@x.io",
		Password: "password123",
		InviteID: "12345",
	})
	if !errors.Is(err, domain.ErrInvalidInvitation) {
		t.Fatalf("expected invalid invitation, got %v", err)
	}
	if n := h.countRows(t, h.tables.Users, nil); n != 0 {
		t.Fatalf("expected no user rows, got %d", n)
	}
}

func TestInviteThenAcceptJoinsTeamOnce(t *testing.T) {
	t.Parallel()

	h := newHarness(t, false)
	owner, ownerJar := h.signUp(t, "owner@x.io", 0)
	ownerMember, err := h.repos.Members.FindByUser(context.Background(), owner.ID)
	if err != nil {
		t.Fatalf("owner membership: %v", err)
	}

	invitation, err := h.svc.InviteMember(withJar(ownerJar), owner, application.InviteMemberInput{Email: "b@x.io", Role: domain.RoleMember})
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if len(h.notifier.notices) != 1 || h.notifier.notices[0].TeamName != "owner@x.io's Team" || h.notifier.notices[0].InvitationID != invitation.ID {
		t.Fatalf("unexpected notices %+v", h.notifier.notices)
	}

	invitee, inviteeJar := h.signUp(t, "b@x.io", invitation.ID)
	if invitee.Role != domain.RoleMember {
		t.Fatalf("expected invitation role, got %q", invitee.Role)
	}
	member, err := h.repos.Members.FindByUser(context.Background(), invitee.ID)
	if err != nil {
		t.Fatalf("invitee membership: %v", err)
	}
	if member.TeamID != ownerMember.TeamID || member.Role != domain.RoleMember {
		t.Fatalf("expected membership in owner's team, got %+v", member)
	}
	stored, err := h.repos.Invitations.GetByID(context.Background(), invitation.ID)
	if err != nil || stored.Status != domain.InvitationStatusAccepted {
		t.Fatalf("expected accepted invitation, got %+v err=%v", stored, err)
	}
	if !containsAction(h.activityOf(t, invitee.ID), domain.ActivityAcceptInvitation) {
		t.Fatalf("expected ACCEPT_INVITATION activity")
	}
	if n := h.countRows(t, h.tables.Teams, nil); n != 1 {
		t.Fatalf("accepting must not create a team, got %d teams", n)
	}

	// Free the email, then replay the accepted invitation.
	if err := h.svc.DeleteAccount(withJar(inviteeJar), invitee, application.DeleteAccountInput{Password: "password123"}); err != nil {
		t.Fatalf("delete invitee: %v", err)
	}
	_, err = h.svc.SignUp(withJar(&cookieJar{}), application.SignUpInput{
		Email:    "b@x.io",
		Password: "password123",
		InviteID: action.ID(strconv.FormatInt(invitation.ID, 10)),
	})
	if !errors.Is(err, domain.ErrInvalidInvitation) {
		t.Fatalf("expected second accept to fail, got %v", err)
	}
	members, err := h.repos.Members.ListByTeam(context.Background(), ownerMember.TeamID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 1 {
		t.Fatalf("expected only the owner left in the team, got %d members", len(members))
	}
}

func TestInvitationRejectsWrongEmail(t *testing.T) {
	t.Parallel()

	h := newHarness(t, false)
	owner, jar := h.signUp(t, "owner@x.io", 0)
	invitation, err := h.svc.InviteMember(withJar(jar), owner, application.InviteMemberInput{Email: "b@x.io", Role: domain.RoleMember})
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	_, err = h.svc.SignUp(withJar(&cookieJar{}), application.SignUpInput{
		Email:    "mallory@x.io",
		Password: "password123",
		InviteID: action.ID(strconv.FormatInt(invitation.ID, 10)),
	})
	if !errors.Is(err, domain.ErrInvalidInvitation) {
		t.Fatalf("expected invalid invitation for other email, got %v", err)
	}
}

func TestInviteMemberRules(t *testing.T) {
	t.Parallel()

	h := newHarness(t, false)
	owner, jar := h.signUp(t, "owner@x.io", 0)
	ctx := withJar(jar)

	if _, err := h.svc.InviteMember(ctx, owner, application.InviteMemberInput{Email: "b@x.io", Role: domain.RoleMember}); err != nil {
		t.Fatalf("first invite: %v", err)
	}
	if _, err := h.svc.InviteMember(ctx, owner, application.InviteMemberInput{Email: "b@x.io", Role: domain.RoleOwner}); !errors.Is(err, domain.ErrAlreadyInvited) {
		t.Fatalf("expected already invited, got %v", err)
	}
	if _, err := h.svc.InviteMember(ctx, owner, application.InviteMemberInput{Email: "owner@x.io", Role: domain.RoleMember}); !errors.Is(err, domain.ErrAlreadyMember) {
		t.Fatalf("expected already member, got %v", err)
	}
	if n := h.countRows(t, h.tables.Invitations, ports.Filter{"email": "b@x.io"}); n != 1 {
		t.Fatalf("expected one invitation row, got %d", n)
	}

	loner, err := h.repos.Users.Create(context.Background(), ports.NewUser{Email: "loner@x.io", PasswordHash: "x", Role: domain.RoleOwner})
	if err != nil {
		t.Fatalf("create loner: %v", err)
	}
	if _, err := h.svc.InviteMember(ctx, loner, application.InviteMemberInput{Email: "c@x.io", Role: domain.RoleMember}); !errors.Is(err, domain.ErrNotInTeam) {
		t.Fatalf("expected not in team, got %v", err)
	}
}

func TestNotifierFailureDoesNotFailInvite(t *testing.T) {
	t.Parallel()

	h := newHarness(t, false)
	h.notifier.err = errors.New("broker down")
	owner, jar := h.signUp(t, "owner@x.io", 0)
	if _, err := h.svc.InviteMember(withJar(jar), owner, application.InviteMemberInput{Email: "b@x.io", Role: domain.RoleMember}); err != nil {
		t.Fatalf("expected invite to succeed, got %v", err)
	}
}

func TestRemoveMemberIsScopedToCallersTeam(t *testing.T) {
	t.Parallel()

	h := newHarness(t, false)
	ownerA, jarA := h.signUp(t, "a@x.io", 0)
	ownerB, jarB := h.signUp(t, "b@x.io", 0)
	memberB, err := h.repos.Members.FindByUser(context.Background(), ownerB.ID)
	if err != nil {
		t.Fatalf("membership b: %v", err)
	}
	memberID := action.ID(strconv.FormatInt(memberB.ID, 10))

	if err := h.svc.RemoveMember(withJar(jarA), ownerA, application.RemoveMemberInput{MemberID: memberID}); err != nil {
		t.Fatalf("remove from other team: %v", err)
	}
	if _, err := h.repos.Members.FindByUser(context.Background(), ownerB.ID); err != nil {
		t.Fatalf("membership in team B must survive, got %v", err)
	}

	if err := h.svc.RemoveMember(withJar(jarB), ownerB, application.RemoveMemberInput{MemberID: memberID}); err != nil {
		t.Fatalf("remove own member: %v", err)
	}
	if _, err := h.repos.Members.FindByUser(context.Background(), ownerB.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected membership removed, got %v", err)
	}
	if !containsAction(h.activityOf(t, ownerB.ID), domain.ActivityRemoveTeamMember) {
		t.Fatalf("expected REMOVE_TEAM_MEMBER activity")
	}
}

func TestUpdatePasswordRules(t *testing.T) {
	t.Parallel()

	h := newHarness(t, false)
	user, jar := h.signUp(t, "a@x.io", 0)
	ctx := withJar(jar)

	cases := []struct {
		name string
		in   application.UpdatePasswordInput
		want error
	}{
		{"wrong current", application.UpdatePasswordInput{CurrentPassword: "wrongpass1", NewPassword: "newpass123", ConfirmPassword: "newpass123"}, domain.ErrIncorrectPassword},
		{"unchanged", application.UpdatePasswordInput{CurrentPassword: "password123", NewPassword: "password123", ConfirmPassword: "password123"}, domain.ErrPasswordUnchanged},
		{"mismatch", application.UpdatePasswordInput{CurrentPassword: "password123", NewPassword: "newpass123", ConfirmPassword: "newpass124"}, domain.ErrPasswordMismatch},
	}
	for _, tc := range cases {
		if err := h.svc.UpdatePassword(ctx, user, tc.in); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}

	if err := h.svc.UpdatePassword(ctx, user, application.UpdatePasswordInput{
		CurrentPassword: "password123", NewPassword: "newpass123", ConfirmPassword: "newpass123",
	}); err != nil {
		t.Fatalf("update password: %v", err)
	}
	if _, err := h.svc.SignIn(withJar(&cookieJar{}), application.SignInInput{Email: "a@x.io", Password: "password123"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("old password must stop working, got %v", err)
	}
	if _, err := h.svc.SignIn(withJar(&cookieJar{}), application.SignInInput{Email: "a@x.io", Password: "newpass123"}); err != nil {
		t.Fatalf("sign in with new password: %v", err)
	}
}

func TestUpdateAccountRejectsTakenEmail(t *testing.T) {
	t.Parallel()

	h := newHarness(t, false)
	h.signUp(t, "a@x.io", 0)
	user, jar := h.signUp(t, "b@x.io", 0)
	ctx := withJar(jar)

	if _, err := h.svc.UpdateAccount(ctx, user, application.UpdateAccountInput{Name: "B", Email: "a@x.io"}); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected email taken, got %v", err)
	}
	updated, err := h.svc.UpdateAccount(ctx, user, application.UpdateAccountInput{Name: "Bee", Email: "bee@x.io"})
	if err != nil {
		t.Fatalf("update account: %v", err)
	}
	if updated.Name != "Bee" || updated.Email != "bee@x.io" {
		t.Fatalf("unexpected profile %+v", updated)
	}
	// The old address is free again.
	h.signUp(t, "b@x.io", 0)
}

func TestDeleteAccount(t *testing.T) {
	t.Parallel()

	h := newHarness(t, false)
	user, jar := h.signUp(t, "a@x.io", 0)
	ctx := withJar(jar)

	if err := h.svc.DeleteAccount(ctx, user, application.DeleteAccountInput{Password: "wrongpass1"}); !errors.Is(err, domain.ErrAccountDeletionPassword) {
		t.Fatalf("expected deletion password error, got %v", err)
	}
	if err := h.svc.DeleteAccount(ctx, user, application.DeleteAccountInput{Password: "password123"}); err != nil {
		t.Fatalf("delete account: %v", err)
	}
	if !jar.cleared {
		t.Fatalf("expected session cookie cleared")
	}
	stored, err := h.repos.Users.GetByID(context.Background(), user.ID)
	if err != nil || !stored.IsDeleted() {
		t.Fatalf("expected soft-deleted row, got %+v err=%v", stored, err)
	}
	if _, err := h.repos.Members.FindByUser(context.Background(), user.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected membership removed, got %v", err)
	}
	if _, err := h.svc.SignIn(withJar(&cookieJar{}), application.SignInInput{Email: "a@x.io", Password: "password123"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("deleted user must not sign in, got %v", err)
	}
	if !containsAction(h.activityOf(t, user.ID), domain.ActivityDeleteAccount) {
		t.Fatalf("expected DELETE_ACCOUNT activity")
	}
}

func TestSignInRedirects(t *testing.T) {
	t.Parallel()

	h := newHarness(t, false)
	h.signUp(t, "a@x.io", 0)

	res, err := h.svc.SignIn(withJar(&cookieJar{}), application.SignInInput{Email: "a@x.io", Password: "password123"})
	if err != nil || res.RedirectTo != "/dashboard" {
		t.Fatalf("expected dashboard redirect, got %+v err=%v", res, err)
	}
	res, err = h.svc.SignIn(withJar(&cookieJar{}), application.SignInInput{Email: "a@x.io", Password: "password123", Redirect: "checkout", PriceID: "price_1"})
	if err != nil || !strings.HasPrefix(res.RedirectTo, "https://pay.example.test/") || !strings.HasSuffix(res.RedirectTo, "/price_1") {
		t.Fatalf("expected checkout redirect, got %+v err=%v", res, err)
	}
	if _, err := h.svc.SignIn(withJar(&cookieJar{}), application.SignInInput{Email: "nobody@x.io", Password: "password123"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown email, got %v", err)
	}
}

func TestTeamForUserIncludesMembersAndInvitations(t *testing.T) {
	t.Parallel()

	h := newHarness(t, false)
	owner, jar := h.signUp(t, "owner@x.io", 0)
	invitation, err := h.svc.InviteMember(withJar(jar), owner, application.InviteMemberInput{Email: "b@x.io", Role: domain.RoleMember})
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	h.signUp(t, "b@x.io", invitation.ID)
	if _, err := h.svc.InviteMember(withJar(jar), owner, application.InviteMemberInput{Email: "c@x.io", Role: domain.RoleMember}); err != nil {
		t.Fatalf("second invite: %v", err)
	}

	view, err := h.svc.TeamForUser(context.Background(), owner)
	if err != nil {
		t.Fatalf("team for user: %v", err)
	}
	if len(view.Members) != 2 {
		t.Fatalf("expected 2 members, got %+v", view.Members)
	}
	emails := map[string]bool{}
	for _, m := range view.Members {
		emails[m.User.Email] = true
	}
	if !emails["owner@x.io"] || !emails["b@x.io"] {
		t.Fatalf("unexpected member users %v", emails)
	}
	if len(view.PendingInvitations) != 1 || view.PendingInvitations[0].Email != "c@x.io" {
		t.Fatalf("expected only c@x.io pending, got %+v", view.PendingInvitations)
	}
}

func TestKeys(t *testing.T) {
	t.Parallel()

	h := newHarness(t, false)
	alice, jarA := h.signUp(t, "alice@x.io", 0)
	bob, jarB := h.signUp(t, "bob@x.io", 0)

	apiKey, err := h.svc.CreateAPIKey(withJar(jarA), alice, application.CreateAPIKeyInput{Name: "ci"})
	if err != nil {
		t.Fatalf("create api key: %v", err)
	}
	if !strings.HasPrefix(apiKey.Key, "sk_") || len(apiKey.Key) != len("sk_")+48 {
		t.Fatalf("unexpected api key %q", apiKey.Key)
	}

	if _, err := h.svc.CreateSSHKey(withJar(jarA), alice, application.CreateSSHKeyInput{Name: "laptop", PublicKey: "ssh-rsa not-a-key"}); !errors.Is(err, domain.ErrInvalidSSHKey) {
		t.Fatalf("expected invalid ssh key, got %v", err)
	}
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		t.Fatalf("ssh public key: %v", err)
	}
	line := string(ssh.MarshalAuthorizedKey(sshPub))
	sshKey, err := h.svc.CreateSSHKey(withJar(jarA), alice, application.CreateSSHKeyInput{Name: "laptop", PublicKey: line})
	if err != nil {
		t.Fatalf("create ssh key: %v", err)
	}

	sshKeys, err := h.svc.ListKeys(context.Background(), alice, domain.CredentialSSHKey)
	if err != nil || len(sshKeys) != 1 || sshKeys[0].Name != "laptop" {
		t.Fatalf("expected one ssh key, got %+v err=%v", sshKeys, err)
	}
	apiKeys, err := h.svc.ListKeys(context.Background(), alice, domain.CredentialAPIKey)
	if err != nil || len(apiKeys) != 1 {
		t.Fatalf("expected one api key, got %+v err=%v", apiKeys, err)
	}

	if err := h.svc.DeleteKey(withJar(jarB), bob, domain.CredentialSSHKey, application.DeleteKeyInput{Key: sshKey.Key}); !errors.Is(err, domain.ErrKeyNotFound) {
		t.Fatalf("expected other user's key to be invisible, got %v", err)
	}
	if err := h.svc.DeleteKey(withJar(jarA), alice, domain.CredentialAPIKey, application.DeleteKeyInput{Key: sshKey.Key}); !errors.Is(err, domain.ErrKeyNotFound) {
		t.Fatalf("expected kind mismatch to be not found, got %v", err)
	}
	if err := h.svc.DeleteKey(withJar(jarA), alice, domain.CredentialSSHKey, application.DeleteKeyInput{Key: sshKey.Key}); err != nil {
		t.Fatalf("delete own key: %v", err)
	}
	if _, err := h.repos.Keys.Get(context.Background(), sshKey.Key); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ssh key deleted, got %v", err)
	}
}

func TestApplySubscriptionChange(t *testing.T) {
	t.Parallel()

	h := newHarness(t, false)
	user, _ := h.signUp(t, "a@x.io", 0)
	member, err := h.repos.Members.FindByUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("membership: %v", err)
	}

	if err := h.svc.ApplySubscriptionChange(context.Background(), application.SubscriptionChangeInput{CustomerID: "cus_9", Status: "active"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected unknown customer to be not found, got %v", err)
	}
	if err := h.svc.ApplySubscriptionChange(context.Background(), application.SubscriptionChangeInput{
		CustomerID: "cus_9", TeamID: action.ID(strconv.FormatInt(member.TeamID, 10)), PlanName: "Base", Status: "trialing",
	}); err != nil {
		t.Fatalf("link customer: %v", err)
	}
	if err := h.svc.ApplySubscriptionChange(context.Background(), application.SubscriptionChangeInput{CustomerID: "cus_9", PlanName: "Plus", Status: "active"}); err != nil {
		t.Fatalf("update by customer: %v", err)
	}
	team, err := h.repos.Teams.GetByID(context.Background(), member.TeamID)
	if err != nil {
		t.Fatalf("get team: %v", err)
	}
	if team.Billing.PlanName == nil || *team.Billing.PlanName != "Plus" || team.Billing.SubscriptionStatus == nil || *team.Billing.SubscriptionStatus != "active" {
		t.Fatalf("unexpected billing %+v", team.Billing)
	}
}
