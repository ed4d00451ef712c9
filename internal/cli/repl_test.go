package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"
)

type fakeExec struct {
	unlocked bool

	calls []string
}

func (f *fakeExec) record(name string) error {
	f.calls = append(f.calls, name)
	return nil
}

func (f *fakeExec) isUnlocked() bool { return f.unlocked }
func (f *fakeExec) Setup(ctx context.Context) error {
	f.unlocked = true
	return f.record("setup")
}
func (f *fakeExec) Unlock(ctx context.Context) error {
	f.unlocked = true
	return f.record("unlock")
}
func (f *fakeExec) Lock(ctx context.Context) error {
	f.unlocked = false
	return f.record("lock")
}
func (f *fakeExec) AddAccount(ctx context.Context) error { return f.record("add") }
func (f *fakeExec) List(ctx context.Context) error       { return f.record("list") }
func (f *fakeExec) Show(ctx context.Context, username string) error {
	return f.record("show " + username)
}
func (f *fakeExec) Remove(ctx context.Context, username string) error {
	return f.record("remove " + username)
}
func (f *fakeExec) DeleteKey(ctx context.Context, username, slot string) error {
	return f.record("delkey " + username + " " + slot)
}
func (f *fakeExec) Use(ctx context.Context, username string) error {
	return f.record("use " + username)
}
func (f *fakeExec) RevealKey(ctx context.Context, username, authority string) error {
	return f.record("key " + username + " " + authority)
}
func (f *fakeExec) SignMessage(ctx context.Context) error     { return f.record("sign") }
func (f *fakeExec) SignTransaction(ctx context.Context) error { return f.record("signtx") }
func (f *fakeExec) EncryptMemo(ctx context.Context) error     { return f.record("encmemo") }
func (f *fakeExec) DecryptMemo(ctx context.Context) error     { return f.record("decmemo") }
func (f *fakeExec) Export(ctx context.Context) error          { return f.record("export") }
func (f *fakeExec) Import(ctx context.Context) error          { return f.record("import") }
func (f *fakeExec) Reset(ctx context.Context) error           { return f.record("reset") }

func TestRunREPL_UnlockFlowAndCommands(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	input := strings.NewReader(strings.Join([]string{
		"help",
		"unlock",
		"help",
		"add",
		"list",
		"show alice",
		"use alice",
		"key alice posting",
		"sign",
		"export",
		"foobar",
		"lock",
		"exit",
	}, "\n"))

	exec := &fakeExec{unlocked: false}
	sc := bufio.NewScanner(input)

	runREPL(context.Background(), exec, func() string { return "status" }, sc)

	wantOrder := []string{"unlock", "add", "list", "show alice", "use alice", "key alice posting", "sign", "export", "lock"}
	if len(exec.calls) < len(wantOrder) {
		t.Fatalf("few calls: %+v", exec.calls)
	}
	idx := 0
	for _, c := range exec.calls {
		if idx < len(wantOrder) && c == wantOrder[idx] {
			idx++
		}
	}
	if idx != len(wantOrder) {
		t.Fatalf("commands order mismatch: got %v, want subseq %v", exec.calls, wantOrder)
	}
}

func TestRunREPL_UsageAndQuit(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	// Commands missing their required arguments print usage and do not
	// dispatch.
	input := strings.NewReader("show\nremove\ndelkey alice\nkey alice\nuse\nquit\n")
	exec := &fakeExec{unlocked: true}
	sc := bufio.NewScanner(input)

	runREPL(context.Background(), exec, func() string { return "s" }, sc)

	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
}
