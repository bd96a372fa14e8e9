package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-report-card/internal/models"
	"github.com/noah-isme/sma-report-card/internal/service"
	"github.com/noah-isme/sma-report-card/pkg/config"
)

var testJWT = config.JWTConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "sma-report-card"}

func TestRunMintsValidStudentToken(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"-user", "student-42", "-role", "STUDENT", "-student", "42"}, testJWT, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "expires "))

	tokens := service.NewTokenService(service.TokenConfig{Secret: testJWT.Secret, Expiry: time.Hour, Issuer: testJWT.Issuer})
	claims, err := tokens.ValidateToken(lines[0])
	require.NoError(t, err)
	assert.Equal(t, "student-42", claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
	require.NotNil(t, claims.StudentID)
	assert.Equal(t, 42, *claims.StudentID)
}

func TestRunRejectsBadInput(t *testing.T) {
	cases := map[string][]string{
		"missing user":    {"-role", "ADMIN"},
		"unknown role":    {"-user", "u", "-role", "PRINCIPAL"},
		"student without": {"-user", "u", "-role", "STUDENT"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			var out bytes.Buffer
			assert.Error(t, run(args, testJWT, &out))
		})
	}
}
