package account

import (
	"bytes"
	"context"
	"strings"
	"testing"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/coffeematch/internal/cli"
	"github.com/julianstephens/coffeematch/internal/config"
	"github.com/julianstephens/coffeematch/internal/errors"
	"github.com/julianstephens/coffeematch/internal/testserver"
)

// invocation builds a fresh command context, as if the binary were run again.
func invocation(t *testing.T, env *testserver.Env) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	cfg := config.Default()
	cfg.APIURL = env.BaseURL
	cfg.Timezone = "UTC"
	ctx, err := cli.New(context.Background(), cfg, t.TempDir(), env.Client)
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	ctx.Out = &out
	return ctx, &out
}

func strptr(s string) *string { return &s }

func TestRegisterWhoamiProfileLogout(t *testing.T) {
	gokeyring.MockInit()
	env := testserver.New(t)

	ctx, out := invocation(t, env)
	if err := (&RegisterCmd{Name: "Ada", Email: "ada@example.com", Location: "SoMa"}).Run(ctx); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if !strings.Contains(out.String(), "Welcome, Ada!") {
		t.Errorf("register output = %q", out.String())
	}

	ctx, out = invocation(t, env)
	if err := (&WhoamiCmd{}).Run(ctx); err != nil {
		t.Fatalf("whoami failed: %v", err)
	}
	if !strings.Contains(out.String(), "Ada <ada@example.com>") || !strings.Contains(out.String(), "location: SoMa") {
		t.Errorf("whoami output = %q", out.String())
	}

	ctx, _ = invocation(t, env)
	if err := (&ProfileCmd{Bio: strptr("Espresso enthusiast")}).Run(ctx); err != nil {
		t.Fatalf("profile failed: %v", err)
	}
	u := ctx.Session.User()
	if u.Bio != "Espresso enthusiast" || u.Name != "Ada" || u.Location != "SoMa" {
		t.Errorf("profile keeps unspecified fields: %+v", u)
	}

	ctx, _ = invocation(t, env)
	if err := (&ProfileCmd{Name: strptr("  ")}).Run(ctx); !errors.IsValidation(err) {
		t.Errorf("profile with blank name error = %v, want validation", err)
	}

	ctx, _ = invocation(t, env)
	if err := (&LogoutCmd{}).Run(ctx); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	ctx, _ = invocation(t, env)
	if err := (&WhoamiCmd{}).Run(ctx); err == nil || err.Error() != "You need to log in first." {
		t.Errorf("whoami after logout error = %v", err)
	}
}

func TestLoginCommand(t *testing.T) {
	gokeyring.MockInit()
	env := testserver.New(t)

	ctx, _ := invocation(t, env)
	if err := (&RegisterCmd{Name: "Ada", Email: "ada@example.com"}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		email   string
		wantErr string
	}{
		{"known email", "ada@example.com", ""},
		{"unknown email", "ghost@example.com", "User not found"},
		{"blank email", " ", "Enter your email to log in."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, out := invocation(t, env)
			err := (&LoginCmd{Email: tt.email}).Run(ctx)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("login failed: %v", err)
				}
				if !strings.Contains(out.String(), "Logged in as Ada") {
					t.Errorf("login output = %q", out.String())
				}
				return
			}
			if err == nil || err.Error() != tt.wantErr {
				t.Errorf("login error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}
