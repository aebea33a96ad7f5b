package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. App satisfies it;
// tests provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	ResetPassword(ctx context.Context) error
	Random(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	ListFavorites(ctx context.Context) error
	AddFavorite(ctx context.Context, args []string) error
	RemoveFavorite(ctx context.Context, args []string) error
}

const (
	helpGuest    = "Comandos: register, login, reset, random [n], search <termo>, show <id>, exit"
	helpSignedIn = "Comandos: random [n], search <termo>, show <id>, favs, fav <id>, unfav <id>, logout, exit"
)

// runREPL reads commands from scanner until EOF, "exit" or "quit", or ctx
// is done. Handler errors are reported by the handlers themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("easydrink%s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpGuest)
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "reset":
			_ = a.ResetPassword(ctx)

		case "random":
			_ = a.Random(ctx, args)

		case "search":
			if len(args) == 0 {
				printlnFn("Uso: search <termo>")
				continue
			}
			_ = a.Search(ctx, args)

		case "show":
			if len(args) == 0 {
				printlnFn("Uso: show <id>")
				continue
			}
			_ = a.Show(ctx, args)

		case "favs":
			_ = a.ListFavorites(ctx)

		case "fav":
			if len(args) == 0 {
				printlnFn("Uso: fav <id>")
				continue
			}
			_ = a.AddFavorite(ctx, args)

		case "unfav":
			if len(args) == 0 {
				printlnFn("Uso: unfav <id>")
				continue
			}
			_ = a.RemoveFavorite(ctx, args)

		case "exit", "quit":
			printlnFn("Até logo!")
			return

		default:
			printlnFn("Comando desconhecido:", cmd)
		}
	}
}
