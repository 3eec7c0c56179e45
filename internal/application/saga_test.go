package application_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/application"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/application/action"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/domain"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/ports"
)

var errTransient = errors.New("transient store failure")

// faultyStore fails one PutIfAbsent into a chosen table after skipping a
// number of successful ones.
type faultyStore struct {
	ports.Store
	mu    sync.Mutex
	table string
	skip  int
	armed bool
}

func (f *faultyStore) wrap(inner ports.Store) ports.Store {
	f.Store = inner
	return f
}

func (f *faultyStore) arm(table string, skip int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.table, f.skip, f.armed = table, skip, true
}

func (f *faultyStore) PutIfAbsent(ctx context.Context, table string, item ports.Item) error {
	f.mu.Lock()
	if f.armed && table == f.table {
		if f.skip == 0 {
			f.armed = false
			f.mu.Unlock()
			return errTransient
		}
		f.skip--
	}
	f.mu.Unlock()
	return f.Store.PutIfAbsent(ctx, table, item)
}

func (h *harness) userRow(t *testing.T, email string) ports.Item {
	t.Helper()
	items, err := h.store.Scan(context.Background(), h.tables.Users, ports.Filter{"email": email})
	if err != nil || len(items) != 1 {
		t.Fatalf("expected one user row for %s, got %d err=%v", email, len(items), err)
	}
	return items[0]
}

func TestSignUpRollsBackWhenMembershipInsertFails(t *testing.T) {
	t.Parallel()

	faults := &faultyStore{}
	h := newHarnessOver(t, false, faults.wrap)
	faults.arm(h.tables.TeamMembers, 0)

	jar := &cookieJar{}
	_, err := h.svc.SignUp(withJar(jar), application.SignUpInput{Email: "a@x.io", Password: "password123"})
	if !errors.Is(err, errTransient) {
		t.Fatalf("expected store failure, got %v", err)
	}

	if _, err := h.repos.Users.FindByEmail(context.Background(), "a@x.io"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected rolled-back user to be hidden, got %v", err)
	}
	if h.userRow(t, "a@x.io")["deletedAt"] == nil {
		t.Fatalf("expected user row to be soft-deleted")
	}
	if n := h.countRows(t, h.tables.UserEmailIndex, ports.Filter{"value": "a@x.io"}); n != 0 {
		t.Fatalf("expected email claim released, found %d", n)
	}
	if jar.token != "" {
		t.Fatalf("expected no session for rolled-back sign-up")
	}

	user, _ := h.signUp(t, "a@x.io", 0)
	if user.IsDeleted() {
		t.Fatalf("expected a fresh account on retry")
	}
}

func TestSignUpRollbackRemovesMembershipAndSession(t *testing.T) {
	t.Parallel()

	faults := &faultyStore{}
	h := newHarnessOver(t, false, faults.wrap)
	// CREATE_TEAM is written first; SIGN_UP fails.
	faults.arm(h.tables.ActivityLogs, 1)

	jar := &cookieJar{}
	_, err := h.svc.SignUp(withJar(jar), application.SignUpInput{Email: "a@x.io", Password: "password123"})
	if !errors.Is(err, errTransient) {
		t.Fatalf("expected store failure, got %v", err)
	}

	userID, ok := h.userRow(t, "a@x.io").Int64("id")
	if !ok {
		t.Fatalf("user row has no id")
	}
	if n := h.countRows(t, h.tables.TeamMembers, ports.Filter{"userId": userID}); n != 0 {
		t.Fatalf("expected membership removed, found %d", n)
	}
	if jar.token != "" {
		t.Fatalf("expected issued session cookie to be cleared, got %q", jar.token)
	}
	if _, err := h.repos.Members.FindByUser(context.Background(), userID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected no membership, got %v", err)
	}
}

func TestSignUpRollbackReopensInvitation(t *testing.T) {
	t.Parallel()

	faults := &faultyStore{}
	h := newHarnessOver(t, false, faults.wrap)
	ctx := context.Background()

	owner, ownerJar := h.signUp(t, "owner@x.io", 0)
	invitation, err := h.svc.InviteMember(withJar(ownerJar), owner, application.InviteMemberInput{Email: "b@x.io", Role: domain.RoleMember})
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	indexFilter := ports.Filter{"value": strconv.FormatInt(invitation.TeamID, 10) + ":b@x.io"}

	faults.arm(h.tables.TeamMembers, 0)
	_, err = h.svc.SignUp(withJar(&cookieJar{}), application.SignUpInput{
		Email:    "b@x.io",
		Password: "password123",
		InviteID: action.ID(strconv.FormatInt(invitation.ID, 10)),
	})
	if !errors.Is(err, errTransient) {
		t.Fatalf("expected store failure, got %v", err)
	}

	if _, err := h.repos.Invitations.FindPending(ctx, invitation.ID, "b@x.io"); err != nil {
		t.Fatalf("expected invitation pending again, got %v", err)
	}
	if n := h.countRows(t, h.tables.PendingInvitationIndex, indexFilter); n != 1 {
		t.Fatalf("expected pending index restored, found %d", n)
	}

	invitee, _ := h.signUp(t, "b@x.io", invitation.ID)
	member, err := h.repos.Members.FindByUser(ctx, invitee.ID)
	if err != nil || member.TeamID != invitation.TeamID {
		t.Fatalf("expected retry to join the inviting team, got %+v err=%v", member, err)
	}
	if n := h.countRows(t, h.tables.PendingInvitationIndex, indexFilter); n != 0 {
		t.Fatalf("expected pending index released after accept, found %d", n)
	}
}
