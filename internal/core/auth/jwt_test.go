package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testJWTer() *JWTer {
	return &JWTer{Secret: []byte("test-secret"), Issuer: "storefront", TTL: time.Hour}
}

func TestIssueParseRoundTrip(t *testing.T) {
	j := testJWTer()
	tok, err := j.Issue(Identity{
		ID: "u1", Email: "alice@example.com", Name: "Alice", Picture: "https://cdn/a.png", Role: "admin",
	})
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}

	c, err := j.Parse(tok)
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	if c.Subject != "u1" || c.Email != "alice@example.com" || c.Name != "Alice" ||
		c.Picture != "https://cdn/a.png" || c.Role != "admin" {
		t.Errorf("Parse() claims = %+v", c)
	}
}

func TestParseWrongSecret(t *testing.T) {
	tok, err := testJWTer().Issue(Identity{ID: "u1", Role: "user"})
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}
	other := &JWTer{Secret: []byte("other"), Issuer: "storefront", TTL: time.Hour}
	if _, err := other.Parse(tok); err == nil {
		t.Error("Parse() expected error for wrong secret")
	}
}

func TestParseWrongIssuer(t *testing.T) {
	j := &JWTer{Secret: []byte("test-secret"), Issuer: "someone-else", TTL: time.Hour}
	tok, err := j.Issue(Identity{ID: "u1"})
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}
	if _, err := testJWTer().Parse(tok); err == nil {
		t.Error("Parse() expected error for wrong issuer")
	}
}

type roleSourceFunc func(ctx context.Context, email string) (string, error)

func (f roleSourceFunc) RoleByEmail(ctx context.Context, email string) (string, error) {
	return f(ctx, email)
}

func TestParseWithRoleBackfill(t *testing.T) {
	j := testJWTer()
	tok, err := j.Issue(Identity{ID: "u1", Email: "alice@example.com"}) // no role claim
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}

	var lookups int
	src := roleSourceFunc(func(ctx context.Context, email string) (string, error) {
		lookups++
		if email != "alice@example.com" {
			t.Errorf("RoleByEmail() email = %q", email)
		}
		return "admin", nil
	})

	c, err := j.ParseWithRole(context.Background(), tok, src)
	if err != nil {
		t.Fatalf("ParseWithRole() unexpected error: %v", err)
	}
	if c.Role != "admin" {
		t.Errorf("ParseWithRole() role = %q, want admin", c.Role)
	}
	if lookups != 1 {
		t.Errorf("directory lookups = %d, want 1", lookups)
	}

	// The token itself is untouched: decoding it again still has no role.
	raw, err := j.Parse(tok)
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	if raw.Role != "" {
		t.Errorf("original token role = %q, want empty", raw.Role)
	}
}

func TestParseWithRolePresentSkipsLookup(t *testing.T) {
	j := testJWTer()
	tok, err := j.Issue(Identity{ID: "u1", Email: "a@b.c", Role: "user"})
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}
	src := roleSourceFunc(func(ctx context.Context, email string) (string, error) {
		t.Error("RoleByEmail() should not be called when role claim is present")
		return "", nil
	})
	c, err := j.ParseWithRole(context.Background(), tok, src)
	if err != nil {
		t.Fatalf("ParseWithRole() unexpected error: %v", err)
	}
	if c.Role != "user" {
		t.Errorf("role = %q, want user", c.Role)
	}
}

func TestParseWithRoleDefaultsToUser(t *testing.T) {
	j := testJWTer()
	tok, err := j.Issue(Identity{ID: "u1", Email: "a@b.c"})
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}
	src := roleSourceFunc(func(ctx context.Context, email string) (string, error) {
		return "", errors.New("directory down")
	})
	c, err := j.ParseWithRole(context.Background(), tok, src)
	if err != nil {
		t.Fatalf("ParseWithRole() unexpected error: %v", err)
	}
	if c.Role != "user" {
		t.Errorf("role = %q, want user fallback", c.Role)
	}
}

func TestRoleCapabilities(t *testing.T) {
	if !ParseRole("admin").Can(CapCreateProduct) {
		t.Error("admin should be able to create products")
	}
	if ParseRole("user").Can(CapCreateProduct) {
		t.Error("user must not be able to create products")
	}
	if !ParseRole("user").Can(CapViewDashboard) {
		t.Error("user should see the dashboard")
	}
	if got := ParseRole("superuser"); got != RoleUser {
		t.Errorf("unknown role parsed as %q, want user", got)
	}
}
