package main

import (
	"strings"
	"testing"
)

// Doctor's overall exit status depends on the platform script runner being
// installed, so these tests assert individual check rows rather than the
// command error.

func TestCLIDoctorListsChecks(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, _ := runCLI(t, env, "doctor")
	requireContains(t, stdout, "Library root")
	requireContains(t, stdout, "Record store")
	requireContains(t, stdout, "Host application")
	requireContains(t, stdout, "Journal")
	requireContains(t, stdout, "PASS")
	requireContains(t, stdout, "responding")
}

func TestCLIDoctorFailsWhenHostSilent(t *testing.T) {
	env := setupCLITestEnv(t)
	env.fake.Available = false

	stdout, _, err := runCLI(t, env, "doctor")
	if err == nil {
		t.Fatal("expected doctor to fail with the host unavailable")
	}
	if !strings.Contains(err.Error(), "checks failed") {
		t.Fatalf("unexpected doctor error: %v", err)
	}
	requireContains(t, stdout, "FAIL")
	requireContains(t, stdout, "not answering")
}

func TestCLIDoctorJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, _ := runCLI(t, env, "doctor", "--json")
	requireContains(t, stdout, `"checks"`)
	requireContains(t, stdout, `"healthy"`)
	requireContains(t, stdout, "Host application")
}
