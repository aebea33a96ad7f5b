package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
)

func (a *App) getStatus() string {
	if a.session == nil {
		return ""
	}
	u := a.session.CurrentUser()
	if u == nil {
		return ""
	}
	return fmt.Sprintf(" (%s)", u.Name)
}

// Root waits until the session is known, then runs the REPL on stdin.
func (a *App) Root(ctx context.Context) {
	printlnFn("EasyDrink (digite 'help' para ver os comandos)")

	if a.store != nil {
		select {
		case <-a.store.Ready():
		case <-ctx.Done():
			return
		}
	}

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
}
