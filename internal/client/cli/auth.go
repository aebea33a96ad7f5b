package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/easydrink/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) readCredentials() (string, string, error) {
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return "", "", err
	}
	pw, err := getPassword(a.out)
	if err != nil {
		return "", "", err
	}
	defer common.WipeByteArray(pw)
	return email, string(pw), nil
}

// Register prompts for name, email and password and creates an account.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Nome", a.out)
	if err != nil {
		return err
	}
	email, password, err := a.readCredentials()
	if err != nil {
		return err
	}

	u, err := a.auth.Register(ctx, email, password, name)
	if err != nil {
		printError(a.out, err, msgNoData)
		return err
	}
	printSuccess(a.out, fmt.Sprintf("Bem-vindo, %s!", u.Name))
	return nil
}

// Login prompts for credentials and signs in.
func (a *App) Login(ctx context.Context) error {
	email, password, err := a.readCredentials()
	if err != nil {
		return err
	}

	u, err := a.auth.Login(ctx, email, password)
	if err != nil {
		printError(a.out, err, msgNoData)
		return err
	}
	printSuccess(a.out, fmt.Sprintf("Olá, %s!", u.Name))
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		printWarn(a.out, common.ErrNotLoggedIn.Message)
		return common.ErrNotLoggedIn
	}
	if err := a.auth.Logout(ctx); err != nil {
		printError(a.out, err, msgNoData)
		return err
	}
	printSuccess(a.out, "Sessão encerrada")
	return nil
}

// ResetPassword asks for an email and requests a reset link for it.
func (a *App) ResetPassword(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	if err := a.auth.ResetPassword(ctx, email); err != nil {
		printError(a.out, err, msgNoData)
		return err
	}
	printSuccess(a.out, "Enviamos um link de redefinição para "+email)
	return nil
}
