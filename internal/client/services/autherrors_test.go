package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/easydrink/internal/client/client"
	"github.com/dmitrijs2005/easydrink/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateError_Table(t *testing.T) {
	tests := []struct {
		code string
		kind error
		msg  string
	}{
		{common.CodeEmailAlreadyInUse, common.ErrValidation, "Este email já está cadastrado"},
		{common.CodeInvalidEmail, common.ErrValidation, "Email inválido"},
		{common.CodeOperationNotAllowed, common.ErrValidation, "Operação não permitida"},
		{common.CodeWeakPassword, common.ErrValidation, "Senha muito fraca. Use pelo menos 6 caracteres"},
		{common.CodeUserDisabled, common.ErrAuth, "Usuário desabilitado"},
		{common.CodeUserNotFound, common.ErrAuth, "Usuário não encontrado"},
		{common.CodeWrongPassword, common.ErrAuth, "Email ou senha incorretos"},
		{common.CodeInvalidCredential, common.ErrAuth, "Credenciais inválidas"},
		{common.CodeNetworkRequestFailed, common.ErrNetwork, "Erro de conexão. Verifique sua internet"},
		{common.CodeTooManyRequests, common.ErrAuth, "Muitas tentativas. Tente novamente mais tarde"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := translateError(fmt.Errorf("wrapped: %w", &client.ProviderError{Code: tt.code}))

			var ue *common.UserError
			require.True(t, errors.As(err, &ue))
			assert.Equal(t, tt.msg, ue.Message)
			assert.Equal(t, tt.code, ue.Code)
			assert.True(t, errors.Is(err, tt.kind))
		})
	}
	assert.Len(t, authErrors, len(tests))
}

func TestTranslateError_UnknownCode(t *testing.T) {
	err := translateError(&client.ProviderError{Code: "auth/quota-exceeded", Message: "Quota exceeded"})
	assert.True(t, errors.Is(err, common.ErrUnknown))
	assert.Equal(t, "Quota exceeded", err.Error())

	err = translateError(&client.ProviderError{Code: "auth/quota-exceeded"})
	assert.Equal(t, "Erro desconhecido", err.Error())
}

func TestTranslateError_NonProviderError(t *testing.T) {
	err := translateError(errors.New("disk I/O error"))
	assert.True(t, errors.Is(err, common.ErrUnknown))
	assert.Equal(t, "Erro desconhecido", err.Error())

	assert.NoError(t, translateError(nil))
}

func TestLogoutError_AlwaysUnknown(t *testing.T) {
	err := logoutError(client.NetworkError(errors.New("dial tcp: refused")))
	assert.True(t, errors.Is(err, common.ErrUnknown))
	assert.False(t, errors.Is(err, common.ErrNetwork))
	assert.Equal(t, "Erro ao processar sua solicitação", err.Error())
}
