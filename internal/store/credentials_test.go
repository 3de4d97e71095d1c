package store

import (
	"context"
	"testing"
)

func TestCredentialsRoundTrip(t *testing.T) {
	t.Parallel()

	c := Credentials{Dir: t.TempDir()}
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, KeyToken); err != nil || ok {
		t.Fatalf("fresh store: ok=%v err=%v", ok, err)
	}

	if err := c.Set(ctx, KeyToken, "tok-1"); err != nil {
		t.Fatal(err)
	}
	v, ok, err := c.Get(ctx, KeyToken)
	if err != nil || !ok || v != "tok-1" {
		t.Fatalf("Get = %q ok=%v err=%v", v, ok, err)
	}

	// Overwrite.
	if err := c.Set(ctx, KeyToken, "tok-2"); err != nil {
		t.Fatal(err)
	}
	v, _, _ = c.Get(ctx, KeyToken)
	if v != "tok-2" {
		t.Fatalf("after overwrite = %q", v)
	}

	if err := c.Delete(ctx, KeyToken); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := c.Get(ctx, KeyToken); ok {
		t.Fatal("key survived delete")
	}

	// Deleting a missing key is fine.
	if err := c.Delete(ctx, "nope"); err != nil {
		t.Fatal(err)
	}
}

func TestClearSessionRemovesBothKeys(t *testing.T) {
	t.Parallel()

	c := Credentials{Dir: t.TempDir()}
	ctx := context.Background()

	c.Set(ctx, KeyToken, "tok")
	c.Set(ctx, KeyUser, `{"username":"alice"}`)
	c.Set(ctx, "unrelated", "keep-me")

	if err := c.ClearSession(ctx); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := c.Get(ctx, KeyToken); ok {
		t.Fatal("token survived ClearSession")
	}
	if _, ok, _ := c.Get(ctx, KeyUser); ok {
		t.Fatal("user survived ClearSession")
	}
	if v, ok, _ := c.Get(ctx, "unrelated"); !ok || v != "keep-me" {
		t.Fatal("ClearSession touched unrelated keys")
	}
}

func TestCredentialsPersistAcrossInstances(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctx := context.Background()

	if err := (Credentials{Dir: dir}).Set(ctx, KeyToken, "tok"); err != nil {
		t.Fatal(err)
	}
	v, ok, err := (Credentials{Dir: dir}).Get(ctx, KeyToken)
	if err != nil || !ok || v != "tok" {
		t.Fatalf("second instance Get = %q ok=%v err=%v", v, ok, err)
	}
}
