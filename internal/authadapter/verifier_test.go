package authadapter

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

type fakeProvisioner struct {
	byEmail map[string]Identity
	calls   int
}

func (f *fakeProvisioner) FindOrCreateByEmail(ctx context.Context, email string) (Identity, error) {
	f.calls++
	if id, ok := f.byEmail[email]; ok {
		return id, nil
	}
	id := Identity{UserID: uuid.New(), Email: email}
	f.byEmail[email] = id
	return id, nil
}

func TestHMACVerifier_Verify(t *testing.T) {
	prov := &fakeProvisioner{byEmail: map[string]Identity{}}
	v := NewHMACVerifier("test-secret", prov)

	token := v.Sign("hafiz@example.com")

	identity, err := v.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if identity.Email != "hafiz@example.com" {
		t.Errorf("Email = %q, want hafiz@example.com", identity.Email)
	}
	if prov.calls != 1 {
		t.Errorf("provisioner calls = %d, want 1", prov.calls)
	}
}

func TestHMACVerifier_VerifyRejectsTamperedSignature(t *testing.T) {
	prov := &fakeProvisioner{byEmail: map[string]Identity{}}
	v := NewHMACVerifier("test-secret", prov)

	token := v.Sign("hafiz@example.com")
	tampered := token[:len(token)-1] + "x"

	if _, err := v.Verify(context.Background(), tampered); err == nil {
		t.Fatal("Verify() with tampered signature: want error, got nil")
	}
}

func TestHMACVerifier_VerifyRejectsForgedSignature(t *testing.T) {
	prov := &fakeProvisioner{byEmail: map[string]Identity{}}
	legit := NewHMACVerifier("real-secret", prov)
	forger := NewHMACVerifier("wrong-secret", prov)

	token := forger.Sign("hafiz@example.com")

	if _, err := legit.Verify(context.Background(), token); err == nil {
		t.Fatal("Verify() with wrong secret: want error, got nil")
	}
}

func TestHMACVerifier_VerifyRejectsMalformedToken(t *testing.T) {
	prov := &fakeProvisioner{byEmail: map[string]Identity{}}
	v := NewHMACVerifier("test-secret", prov)

	for _, tok := range []string{"", "no-dot-here", ".missingemail", "missingsig."} {
		if _, err := v.Verify(context.Background(), tok); err == nil {
			t.Errorf("Verify(%q): want error, got nil", tok)
		}
	}
}

func TestHMACVerifier_VerifyIsStableAcrossCalls(t *testing.T) {
	prov := &fakeProvisioner{byEmail: map[string]Identity{}}
	v := NewHMACVerifier("test-secret", prov)

	token := v.Sign("hafiz@example.com")

	first, err := v.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	second, err := v.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if first.UserID != second.UserID {
		t.Errorf("UserID changed across calls: %v != %v", first.UserID, second.UserID)
	}
}
