package cli_test

import (
	"bytes"
	"context"
	"testing"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/coffeematch/internal/cli"
	"github.com/julianstephens/coffeematch/internal/config"
	"github.com/julianstephens/coffeematch/internal/models"
	"github.com/julianstephens/coffeematch/internal/session"
	"github.com/julianstephens/coffeematch/internal/testserver"
)

func newContext(t *testing.T, env *testserver.Env) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	cfg := config.Default()
	cfg.APIURL = env.BaseURL
	cfg.Timezone = "UTC"
	ctx, err := cli.New(context.Background(), cfg, t.TempDir(), env.Client)
	if err != nil {
		t.Fatalf("cli.New() failed: %v", err)
	}
	var out bytes.Buffer
	ctx.Out = &out
	return ctx, &out
}

func TestNewRejectsBadTimezone(t *testing.T) {
	cfg := config.Default()
	cfg.Timezone = "Mars/Olympus"
	if _, err := cli.New(context.Background(), cfg, t.TempDir(), nil); err == nil {
		t.Error("cli.New() accepted an unknown timezone")
	}
}

func TestResumeWithoutRememberedLogin(t *testing.T) {
	gokeyring.MockInit()
	env := testserver.New(t)
	ctx, _ := newContext(t, env)

	if err := ctx.Resume(); err != session.ErrNoSession {
		t.Errorf("Resume() error = %v, want ErrNoSession", err)
	}
}

func TestRememberThenResume(t *testing.T) {
	gokeyring.MockInit()
	env := testserver.New(t)
	if _, err := env.Client.Register(context.Background(), models.RegisterInput{Name: "Ada", Email: "ada@example.com"}); err != nil {
		t.Fatal(err)
	}

	first, _ := newContext(t, env)
	first.Remember("ada@example.com")

	// A later invocation starts from an empty session.
	second, _ := newContext(t, env)
	if err := second.Resume(); err != nil {
		t.Fatalf("Resume() failed: %v", err)
	}
	if u := second.Session.User(); u == nil || u.Name != "Ada" {
		t.Errorf("resumed user = %+v", u)
	}

	if err := second.Forget(); err != nil {
		t.Fatalf("Forget() failed: %v", err)
	}
	if err := second.Forget(); err != nil {
		t.Errorf("Forget() twice should not fail: %v", err)
	}
	third, _ := newContext(t, env)
	if err := third.Resume(); err != session.ErrNoSession {
		t.Errorf("Resume() after Forget error = %v, want ErrNoSession", err)
	}
}
