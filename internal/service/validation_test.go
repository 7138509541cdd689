package service

import (
	"context"
	"errors"
	"testing"

	"github.com/redink/redink/internal/model"
	"github.com/redink/redink/internal/rules"
)

func TestRegisterValidation(t *testing.T) {
	svc := &AccountService{}

	tests := []struct {
		name    string
		input   RegisterInput
		wantErr error
	}{
		{"empty_email", RegisterInput{Email: "", Password: "longenough"}, ErrInvalidEmail},
		{"no_at_sign", RegisterInput{Email: "writer.example.com", Password: "longenough"}, ErrInvalidEmail},
		{"no_domain", RegisterInput{Email: "writer@", Password: "longenough"}, ErrInvalidEmail},
		{"spaces", RegisterInput{Email: "wri ter@example.com", Password: "longenough"}, ErrInvalidEmail},
		{"short_password", RegisterInput{Email: "writer@example.com", Password: "short"}, ErrWeakPassword},
		{"unknown_role", RegisterInput{Email: "writer@example.com", Password: "longenough", Role: model.Role("admin")}, ErrInvalidRole},
		// The moderator role must never be reachable from
		// registration; it has to fail before any store access.
		{"super_role", RegisterInput{Email: "writer@example.com", Password: "longenough", Role: model.RoleSuper}, ErrInvalidRole},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), test.input)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("expected %v, got %v", test.wantErr, err)
			}
		})
	}
}

func TestRegistrationRole(t *testing.T) {
	tests := []struct {
		name    string
		role    model.Role
		want    model.Role
		wantErr error
	}{
		{"blank_defaults_to_free", "", model.RoleFree, nil},
		{"free", model.RoleFree, model.RoleFree, nil},
		{"paid", model.RolePaid, model.RolePaid, nil},
		{"super_rejected", model.RoleSuper, "", ErrInvalidRole},
		{"unknown_rejected", model.Role("admin"), "", ErrInvalidRole},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := registrationRole(test.role)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("expected error %v, got %v", test.wantErr, err)
			}
			if got != test.want {
				t.Fatalf("expected role %q, got %q", test.want, got)
			}
		})
	}
}

func TestSubmitEmptyText(t *testing.T) {
	svc := &CorrectionService{}

	for _, text := range []string{"", "   ", "\n\t"} {
		if _, err := svc.Submit(context.Background(), "acct", text); !errors.Is(err, rules.ErrEmptyText) {
			t.Fatalf("text %q: expected ErrEmptyText, got %v", text, err)
		}
	}
}

func TestSelfCorrectEmptyEdit(t *testing.T) {
	svc := &CorrectionService{}

	if _, err := svc.SelfCorrect(context.Background(), "acct", "original words", "  "); !errors.Is(err, rules.ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
}

func TestParaphraseEmptyText(t *testing.T) {
	svc := &CorrectionService{}

	if _, err := svc.Paraphrase(context.Background(), "acct", ""); !errors.Is(err, rules.ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
}

func TestSaveDocumentEmptyContent(t *testing.T) {
	svc := &CorrectionService{}

	if _, err := svc.SaveDocument(context.Background(), "acct", "title", "   "); !errors.Is(err, rules.ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
}

func TestRejectCorrectionValidation(t *testing.T) {
	svc := &CorrectionService{}

	tests := []struct {
		name     string
		original string
		output   string
	}{
		{"empty_original", "", "corrected text"},
		{"empty_output", "original text", ""},
		{"both_blank", "  ", "\t"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := svc.RejectCorrection(context.Background(), "acct", test.original, test.output, "reason")
			if !errors.Is(err, rules.ErrEmptyText) {
				t.Fatalf("expected ErrEmptyText, got %v", err)
			}
		})
	}
}

func TestSubmitComplaintValidation(t *testing.T) {
	svc := &ModerationService{}

	t.Run("self_target", func(t *testing.T) {
		_, err := svc.SubmitComplaint(context.Background(), "acct-1", "acct-1", "doc-1", "plagiarism")
		if !errors.Is(err, ErrSelfTarget) {
			t.Fatalf("expected ErrSelfTarget, got %v", err)
		}
	})

	t.Run("empty_reason", func(t *testing.T) {
		_, err := svc.SubmitComplaint(context.Background(), "acct-1", "acct-2", "doc-1", "   ")
		if !errors.Is(err, rules.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestRequestBlacklistWordValidation(t *testing.T) {
	svc := &ModerationService{}

	for _, word := range []string{"", "  ", "two words", "tab\tsplit"} {
		if _, err := svc.RequestBlacklistWord(context.Background(), "acct", word); !errors.Is(err, rules.ErrInvalidInput) {
			t.Fatalf("word %q: expected ErrInvalidInput, got %v", word, err)
		}
	}
}

func TestModerationSelfTarget(t *testing.T) {
	svc := &ModerationService{}

	if err := svc.SetSuspended(context.Background(), "acct-1", "acct-1", true); !errors.Is(err, ErrSelfTarget) {
		t.Fatalf("suspend: expected ErrSelfTarget, got %v", err)
	}
	if err := svc.FineAccount(context.Background(), "acct-1", "acct-1"); !errors.Is(err, ErrSelfTarget) {
		t.Fatalf("fine: expected ErrSelfTarget, got %v", err)
	}
	if err := svc.TerminateAccount(context.Background(), "acct-1", "acct-1"); !errors.Is(err, ErrSelfTarget) {
		t.Fatalf("terminate: expected ErrSelfTarget, got %v", err)
	}
}
