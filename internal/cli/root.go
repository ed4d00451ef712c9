package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
)

func (a *App) getStatus() string {
	if !a.isUnlocked() {
		return "(locked)"
	}
	s := "unlocked"
	if active, err := a.accounts.ActiveAccount(context.Background()); err == nil && active != "" {
		s = s + " " + active
	}
	return fmt.Sprintf("(%s)", s)
}

func (a *App) Root(ctx context.Context) {
	log.Println("Welcome to the vault console (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
