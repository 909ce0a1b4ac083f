package database

import (
	"reflect"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/devexchange/orgs-backend/v1/model"
)

func TestSaveUserRefsQuery_UpdatesOnlyReferenceSets(t *testing.T) {
	if !strings.Contains(saveUserRefsQuery, "UPDATE @key WITH") {
		t.Errorf("expected a partial UPDATE, got %s", saveUserRefsQuery)
	}
	if strings.Contains(saveUserRefsQuery, "REPLACE") {
		t.Error("saving a user must not replace the whole document")
	}
	for _, field := range []string{"username", "email", "roles", "created_at", "capabilities"} {
		if strings.Contains(saveUserRefsQuery, field) {
			t.Errorf("query writes account field %q", field)
		}
	}
}

func TestSaveUserRefsBindVars(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	user := &model.User{
		Key:        "alice",
		Username:   "alice",
		Email:      "alice@example.com",
		Roles:      []string{"user"},
		OrgsMember: []string{"acme"},
	}

	vars := saveUserRefsBindVars(user, now)

	var names []string
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	want := []string{"key", "now", "orgsAdmin", "orgsMember", "orgsPending"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("bind vars = %v, want %v", names, want)
	}

	if vars["key"] != "alice" || vars["now"] != now {
		t.Errorf("unexpected key or timestamp: %v", vars)
	}
	if got := vars["orgsMember"].([]string); !reflect.DeepEqual(got, []string{"acme"}) {
		t.Errorf("orgsMember = %v", got)
	}
	// nil sets are stored as empty arrays, never null
	for _, name := range []string{"orgsAdmin", "orgsPending"} {
		if got := vars[name].([]string); got == nil || len(got) != 0 {
			t.Errorf("%s = %#v, want empty slice", name, got)
		}
	}
}
