package services

import (
	"errors"

	"github.com/dmitrijs2005/easydrink/internal/client/client"
	"github.com/dmitrijs2005/easydrink/internal/common"
)

const (
	msgUnknown      = "Erro desconhecido"
	msgLogoutFailed = "Erro ao processar sua solicitação"
)

type authErrorEntry struct {
	kind    error
	message string
}

// authErrors maps provider codes to what the user sees. Messages are shown
// verbatim.
var authErrors = map[string]authErrorEntry{
	common.CodeEmailAlreadyInUse:    {common.ErrValidation, "Este email já está cadastrado"},
	common.CodeInvalidEmail:         {common.ErrValidation, "Email inválido"},
	common.CodeOperationNotAllowed:  {common.ErrValidation, "Operação não permitida"},
	common.CodeWeakPassword:         {common.ErrValidation, "Senha muito fraca. Use pelo menos 6 caracteres"},
	common.CodeUserDisabled:         {common.ErrAuth, "Usuário desabilitado"},
	common.CodeUserNotFound:         {common.ErrAuth, "Usuário não encontrado"},
	common.CodeWrongPassword:        {common.ErrAuth, "Email ou senha incorretos"},
	common.CodeInvalidCredential:    {common.ErrAuth, "Credenciais inválidas"},
	common.CodeNetworkRequestFailed: {common.ErrNetwork, "Erro de conexão. Verifique sua internet"},
	common.CodeTooManyRequests:      {common.ErrAuth, "Muitas tentativas. Tente novamente mais tarde"},
}

// translateError converts a provider failure into a *common.UserError.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var pe *client.ProviderError
	if !errors.As(err, &pe) {
		return common.NewUserError(common.ErrUnknown, "", msgUnknown)
	}
	if e, ok := authErrors[pe.Code]; ok {
		return common.NewUserError(e.kind, pe.Code, e.message)
	}

	msg := pe.Message
	if msg == "" {
		msg = msgUnknown
	}
	return common.NewUserError(common.ErrUnknown, pe.Code, msg)
}

// logoutError reports every sign-out failure as unknown.
func logoutError(err error) error {
	return common.NewUserError(common.ErrUnknown, client.CodeOf(err), msgLogoutFailed)
}
