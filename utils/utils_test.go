package utils

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"accents", "Edição de Março", "edicao-de-marco"},
		{"punctuation", "MAGIS: resultados 2025!", "magis-resultados-2025"},
		{"repeated separators", "  ONU -- Conselho   de  Segurança ", "onu-conselho-de-seguranca"},
		{"cedilla and tilde", "Ação Social São João", "acao-social-sao-joao"},
		{"only symbols", "!!!", ""},
		{"already a slug", "blog-post-1", "blog-post-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}

func TestSlugify_Length(t *testing.T) {
	slug := Slugify(strings.Repeat("palavra ", 30))

	assert.LessOrEqual(t, len(slug), maxSlugLength)
	assert.False(t, strings.HasSuffix(slug, "-"))
}

func TestWhatsAppLink(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"no text", "", "https://wa.me/" + OrganizationPhone},
		{"spaces", "Olá, quero saber mais", "https://wa.me/" + OrganizationPhone + "?text=Ol%C3%A1%2C%20quero%20saber%20mais"},
		{"reserved characters", "a&b=c+d", "https://wa.me/" + OrganizationPhone + "?text=a%26b%3Dc%2Bd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, WhatsAppLink(tt.text))
		})
	}
}

// Redis Client Tests

func TestRedisHealthCheck_Success(t *testing.T) {
	db, mock := redismock.NewClientMock()

	mock.ExpectPing().SetVal("PONG")

	err := RedisHealthCheck(db)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisHealthCheck_Failure(t *testing.T) {
	db, mock := redismock.NewClientMock()

	expectedError := errors.New("connection failed")
	mock.ExpectPing().SetErr(expectedError)

	err := RedisHealthCheck(db)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "redis health check failed")
	assert.Contains(t, err.Error(), "connection failed")
	assert.NoError(t, mock.ExpectationsWereMet())
}
