package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	isAdmin() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Chat(ctx context.Context, text string) error
	History(ctx context.Context, args []string) error
	WhoAmI(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	AddUser(ctx context.Context) error
	DeleteUser(ctx context.Context) error
	SetRole(ctx context.Context) error
	ResetPassword(ctx context.Context) error
	Backup(ctx context.Context) error
}

// runREPL reads commands line by line from reader and dispatches them to a.
// The loop ends on EOF, on "exit"/"quit" or when ctx is cancelled.
//
//	Not logged in:
//	  - help           show available commands
//	  - register       create an account
//	  - login          authenticate
//	  - exit | quit    leave the program
//
//	Logged in:
//	  - chat <text>    store a message (and show the reply, if any)
//	  - history [n]    show the last n messages
//	  - whoami         show your profile
//	  - passwd         change your password
//	  - logout         end the session
//
//	Admin:
//	  - adduser, deluser, setrole, resetpw, backup
//
// Command errors are printed and the loop goes on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}

		printlnFn(fmt.Sprintf("chatkeeper %s > ", statusFn()))
		line, readErr := reader.ReadString('\n')
		if readErr != nil && (!errors.Is(readErr, io.EOF) || line == "") {
			return
		}

		line = strings.TrimSpace(line)
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			printlnFn(helpText(a.isLoggedIn(), a.isAdmin()))

		case "register":
			err = a.Register(ctx)

		case "login":
			err = a.Login(ctx)

		case "logout":
			err = a.Logout(ctx)

		case "chat":
			err = a.Chat(ctx, strings.TrimSpace(strings.TrimPrefix(line, cmd)))

		case "history":
			err = a.History(ctx, args)

		case "whoami":
			err = a.WhoAmI(ctx)

		case "passwd":
			err = a.ChangePassword(ctx)

		case "adduser":
			err = a.AddUser(ctx)

		case "deluser":
			err = a.DeleteUser(ctx)

		case "setrole":
			err = a.SetRole(ctx)

		case "resetpw":
			err = a.ResetPassword(ctx)

		case "backup":
			err = a.Backup(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn(color.RedString("Error:"), describe(err))
		}
		if readErr != nil {
			return
		}
	}
}

func helpText(loggedIn, admin bool) string {
	switch {
	case !loggedIn:
		return "Available commands: register, login, exit"
	case admin:
		return "Available commands: chat <text>, history [n], whoami, passwd, logout, exit\n" +
			"Admin commands: adduser, deluser, setrole, resetpw, backup"
	default:
		return "Available commands: chat <text>, history [n], whoami, passwd, logout, exit"
	}
}
