package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/dmitrijs2005/chatkeeper/internal/common"
	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	admin    bool

	calls []string
	args  []string
	err   error
}

func (f *fakeExec) record(name string) error {
	f.calls = append(f.calls, name)
	return f.err
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) isAdmin() bool    { return f.admin }
func (f *fakeExec) Register(context.Context) error {
	return f.record("register")
}
func (f *fakeExec) Login(context.Context) error {
	f.loggedIn = true
	return f.record("login")
}
func (f *fakeExec) Logout(context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}
func (f *fakeExec) Chat(_ context.Context, text string) error {
	f.args = append(f.args, text)
	return f.record("chat")
}
func (f *fakeExec) History(_ context.Context, args []string) error {
	f.args = append(f.args, strings.Join(args, ","))
	return f.record("history")
}
func (f *fakeExec) WhoAmI(context.Context) error         { return f.record("whoami") }
func (f *fakeExec) ChangePassword(context.Context) error { return f.record("passwd") }
func (f *fakeExec) AddUser(context.Context) error        { return f.record("adduser") }
func (f *fakeExec) DeleteUser(context.Context) error     { return f.record("deluser") }
func (f *fakeExec) SetRole(context.Context) error        { return f.record("setrole") }
func (f *fakeExec) ResetPassword(context.Context) error  { return f.record("resetpw") }
func (f *fakeExec) Backup(context.Context) error         { return f.record("backup") }

func capturePrints(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_Dispatch(t *testing.T) {
	capturePrints(t)

	input := strings.Join([]string{
		"login",
		"chat   hello   there  ",
		"history 5",
		"whoami",
		"passwd",
		"adduser",
		"deluser",
		"setrole",
		"resetpw",
		"backup",
		"logout",
		"register",
		"exit",
		"login",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewReader(strings.NewReader(input)))

	assert.Equal(t, []string{
		"login", "chat", "history", "whoami", "passwd", "adduser", "deluser",
		"setrole", "resetpw", "backup", "logout", "register",
	}, exec.calls, "nothing after exit")
	assert.Equal(t, []string{"hello   there", "5"}, exec.args)
}

func TestRunREPL_HelpUnknownAndErrors(t *testing.T) {
	lines := capturePrints(t)

	exec := &fakeExec{err: common.ErrForbidden}
	runREPL(context.Background(), exec, func() string { return "guest" },
		bufio.NewReader(strings.NewReader("help\n\nfoobar\nbackup")))

	out := strings.Join(*lines, "\n")
	assert.Contains(t, out, "chatkeeper guest > ")
	assert.Contains(t, out, "Available commands: register, login, exit")
	assert.Contains(t, out, "Unknown command: foobar")
	assert.Contains(t, out, "Error: This command requires the admin role.")
	assert.Equal(t, []string{"backup"}, exec.calls, "last line without newline still runs")
}

func TestRunREPL_StopsOnCancel(t *testing.T) {
	capturePrints(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := &fakeExec{}
	runREPL(ctx, exec, func() string { return "" }, bufio.NewReader(strings.NewReader("login\n")))
	assert.Empty(t, exec.calls)
}

func TestHelpText(t *testing.T) {
	assert.NotContains(t, helpText(false, false), "chat")
	assert.Contains(t, helpText(true, false), "history [n]")
	assert.NotContains(t, helpText(true, false), "adduser")
	assert.Contains(t, helpText(true, true), "adduser")
}
