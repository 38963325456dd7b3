package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/chatkeeper/internal/common"
	"github.com/dmitrijs2005/chatkeeper/internal/models"
	"github.com/fatih/color"
)

// Chat stores text in the user's encrypted history. With a Responder the
// reply is shown and stored next to the message; without one only the
// message is kept. An empty text is asked for interactively.
func (a *App) Chat(ctx context.Context, text string) error {
	if err := a.require(ctx, models.RoleGeneral); err != nil {
		return err
	}

	if text == "" {
		var err error
		if text, err = GetSimpleText(a.reader, a.fullName, a.out); err != nil {
			return err
		}
	}
	if text == "" {
		return fmt.Errorf("%w: empty message", common.ErrValidation)
	}

	if a.responder == nil {
		if _, err := a.messages.Append(ctx, a.username, text, common.ChatRoleUser, true); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Saved.")
		return nil
	}

	reply, err := a.responder.Reply(ctx, a.username, text)
	if err != nil {
		// the message is kept even when no reply came back
		if _, aerr := a.messages.Append(ctx, a.username, text, common.ChatRoleUser, true); aerr != nil {
			return aerr
		}
		return fmt.Errorf("no reply: %w", err)
	}

	if _, err := a.messages.AppendExchange(ctx, a.username, text, common.ChatRoleUser, reply, true); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s %s\n", color.CyanString("AI:"), reply)
	return nil
}

// History prints the last n messages, oldest first. n defaults to the
// configured history size.
func (a *App) History(ctx context.Context, args []string) error {
	if err := a.require(ctx, models.RoleGeneral); err != nil {
		return err
	}

	n := a.historySize
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v <= 0 {
			return fmt.Errorf("%w: history expects a positive number", common.ErrValidation)
		}
		n = v
	}

	msgs, err := a.messages.GetLastN(ctx, n, a.username)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		fmt.Fprintln(a.out, "No messages yet.")
		return nil
	}

	fmt.Fprintf(a.out, "=== Last %d messages ===\n", len(msgs))
	for _, m := range msgs {
		fmt.Fprintf(a.out, "%s %s\n", color.HiBlackString("[%s]", m.Role), m.Message)
		if m.Response != "" {
			fmt.Fprintf(a.out, "    %s %s\n", color.CyanString("reply:"), m.Response)
		}
	}
	return nil
}
