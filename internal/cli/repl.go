package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isUnlocked() bool
	Setup(ctx context.Context) error
	Unlock(ctx context.Context) error
	Lock(ctx context.Context) error
	AddAccount(ctx context.Context) error
	List(ctx context.Context) error
	Show(ctx context.Context, username string) error
	Remove(ctx context.Context, username string) error
	DeleteKey(ctx context.Context, username, slot string) error
	Use(ctx context.Context, username string) error
	RevealKey(ctx context.Context, username, authority string) error
	SignMessage(ctx context.Context) error
	SignTransaction(ctx context.Context) error
	EncryptMemo(ctx context.Context) error
	DecryptMemo(ctx context.Context) error
	Export(ctx context.Context) error
	Import(ctx context.Context) error
	Reset(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the vault CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Locked:
//	  - help           show available commands
//	  - setup          initialize a fresh vault with a PIN
//	  - unlock         decrypt the vault
//	  - exit | quit    leave the program
//
//	Unlocked:
//	  - help                   show available commands
//	  - add                    add or update an account's keys
//	  - list | l               list accounts
//	  - show <user>            show one account's public keys
//	  - remove <user>          remove an account
//	  - delkey <user> <slot>   delete one key slot
//	  - use <user>             set the active account
//	  - key <user> <auth>      reveal a private key
//	  - sign                   sign a message
//	  - signtx                 sign a transaction
//	  - encmemo | decmemo      memo cryption
//	  - export | import        move accounts between installations
//	  - lock                   lock the vault
//	  - reset                  destroy the vault
//	  - exit | quit            leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("vault> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isUnlocked() {
				printlnFn("Available commands: add, (l)ist, show, remove, delkey, use, key, sign, signtx, encmemo, decmemo, export, import, lock, reset, exit")
			} else {
				printlnFn("Available commands: setup, unlock, exit")
			}

		case "setup":
			_ = a.Setup(ctx)

		case "unlock":
			_ = a.Unlock(ctx)

		case "lock":
			_ = a.Lock(ctx)

		case "add":
			_ = a.AddAccount(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "show":
			if len(args) == 0 {
				printlnFn("Usage: show <username>")
				continue
			}
			_ = a.Show(ctx, args[0])

		case "remove":
			if len(args) == 0 {
				printlnFn("Usage: remove <username>")
				continue
			}
			_ = a.Remove(ctx, args[0])

		case "delkey":
			if len(args) < 2 {
				printlnFn("Usage: delkey <username> <slot>")
				continue
			}
			_ = a.DeleteKey(ctx, args[0], args[1])

		case "use":
			if len(args) == 0 {
				printlnFn("Usage: use <username>")
				continue
			}
			_ = a.Use(ctx, args[0])

		case "key":
			if len(args) < 2 {
				printlnFn("Usage: key <username> <authority>")
				continue
			}
			_ = a.RevealKey(ctx, args[0], args[1])

		case "sign":
			_ = a.SignMessage(ctx)

		case "signtx":
			_ = a.SignTransaction(ctx)

		case "encmemo":
			_ = a.EncryptMemo(ctx)

		case "decmemo":
			_ = a.DecryptMemo(ctx)

		case "export":
			_ = a.Export(ctx)

		case "import":
			_ = a.Import(ctx)

		case "reset":
			_ = a.Reset(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
