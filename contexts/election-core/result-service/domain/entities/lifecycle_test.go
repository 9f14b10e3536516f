package entities

import (
	"errors"
	"testing"

	domainerrors "tallyroom/contexts/election-core/result-service/domain/errors"
)

func TestNextStatusTransitionTable(t *testing.T) {
	cases := []struct {
		name    string
		current Status
		action  Action
		role    Role
		want    Status
		wantErr error
	}{
		{"reviewer approves pending", StatusPending, ActionApprove, RoleReviewer, StatusVerified, nil},
		{"supervisor approves flagged", StatusFlagged, ActionApprove, RoleSupervisor, StatusVerified, nil},
		{"agent cannot approve", StatusPending, ActionApprove, RoleAgent, "", domainerrors.ErrActorNotAllowed},
		{"approve unreachable from verified", StatusVerified, ActionApprove, RoleAdmin, "", domainerrors.ErrInvalidTransition},
		{"approve unreachable from rejected", StatusRejected, ActionApprove, RoleAdmin, "", domainerrors.ErrInvalidTransition},
		{"approve unreachable from archived", StatusArchived, ActionApprove, RoleAdmin, "", domainerrors.ErrInvalidTransition},

		{"reviewer rejects flagged", StatusFlagged, ActionReject, RoleReviewer, StatusRejected, nil},
		{"supervisor cannot reject", StatusPending, ActionReject, RoleSupervisor, "", domainerrors.ErrActorNotAllowed},
		{"reject unreachable from verified", StatusVerified, ActionReject, RoleAdmin, "", domainerrors.ErrInvalidTransition},

		{"reviewer flags pending", StatusPending, ActionFlag, RoleReviewer, StatusFlagged, nil},
		{"flag unreachable from flagged", StatusFlagged, ActionFlag, RoleReviewer, "", domainerrors.ErrInvalidTransition},
		{"supervisor cannot flag", StatusPending, ActionFlag, RoleSupervisor, "", domainerrors.ErrActorNotAllowed},

		{"supervisor edits flagged", StatusFlagged, ActionEdit, RoleSupervisor, StatusPending, nil},
		{"edit unreachable from pending", StatusPending, ActionEdit, RoleReviewer, "", domainerrors.ErrInvalidTransition},
		{"agent cannot edit", StatusFlagged, ActionEdit, RoleAgent, "", domainerrors.ErrActorNotAllowed},

		{"admin archives verified", StatusVerified, ActionArchive, RoleAdmin, StatusArchived, nil},
		{"admin archives rejected", StatusRejected, ActionArchive, RoleAdmin, StatusArchived, nil},
		{"reviewer cannot archive", StatusVerified, ActionArchive, RoleReviewer, "", domainerrors.ErrActorNotAllowed},

		{"unknown action", StatusPending, Action("publish"), RoleAdmin, "", domainerrors.ErrInvalidAction},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NextStatus(tc.current, tc.action, tc.role)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestNextStatusStateErrorsWinOverRoleErrors(t *testing.T) {
	// An agent asking to approve an archived record must hear about the
	// state, the same as an admin would.
	_, err := NextStatus(StatusArchived, ActionApprove, RoleAgent)
	if !errors.Is(err, domainerrors.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}
