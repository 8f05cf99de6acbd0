package prefs

import (
	"bytes"
	"context"
	"strings"
	"testing"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/coffeematch/internal/cli"
	"github.com/julianstephens/coffeematch/internal/cli/account"
	"github.com/julianstephens/coffeematch/internal/config"
	"github.com/julianstephens/coffeematch/internal/errors"
	"github.com/julianstephens/coffeematch/internal/testserver"
)

func TestPreferencesLifecycle(t *testing.T) {
	gokeyring.MockInit()
	env := testserver.New(t)
	cfg := config.Default()
	cfg.APIURL = env.BaseURL
	ctx, err := cli.New(context.Background(), cfg, t.TempDir(), env.Client)
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	ctx.Out = &out
	if err := (&account.RegisterCmd{Name: "Ada", Email: "ada@example.com"}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	out.Reset()
	if err := (&PrefsListCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No preferences yet.") {
		t.Errorf("empty list output = %q", out.String())
	}

	if err := (&PrefsAddCmd{Type: "venue_type", Value: "coffee", Confidence: 9}).Run(ctx); !errors.IsValidation(err) {
		t.Errorf("confidence 9 error = %v, want validation", err)
	}
	if err := (&PrefsAddCmd{Type: "venue_type", Value: " "}).Run(ctx); !errors.IsValidation(err) {
		t.Errorf("blank value error = %v, want validation", err)
	}

	if err := (&PrefsAddCmd{Type: "venue_type", Value: "coffee", Confidence: 4}).Run(ctx); err != nil {
		t.Fatalf("prefs add failed: %v", err)
	}
	list, err := env.Client.ListPreferences(context.Background(), ctx.Session.UserID())
	if err != nil || len(list) != 1 {
		t.Fatalf("preferences = %+v, %v", list, err)
	}

	out.Reset()
	if err := (&PrefsListCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "venue_type: coffee (confidence 4)") {
		t.Errorf("list output = %q", out.String())
	}

	if err := (&PrefsDeleteCmd{ID: list[0].ID}).Run(ctx); err != nil {
		t.Fatalf("prefs delete failed: %v", err)
	}
	if list, _ := env.Client.ListPreferences(context.Background(), ctx.Session.UserID()); len(list) != 0 {
		t.Errorf("preference survived delete: %+v", list)
	}
}
