package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/testfixtures"
)

const testSecret = "test-secret"

func TestVerificationCodeLogin(t *testing.T) {
	f := testfixtures.NewServiceFactory(t)
	svc := f.AuthService(testSecret, "ABC123")
	ctx := context.Background()

	require.NoError(t, svc.RequestCode(ctx, " Staff@Campus.edu "))
	sent := f.Notifier.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, application.NotifyVerificationCode, sent[0].Kind)
	assert.Equal(t, testfixtures.StaffEmail, sent[0].Recipient)
	assert.Equal(t, "ABC123", sent[0].Code)

	_, err := svc.VerifyCode(ctx, testfixtures.StaffEmail, "ABC124")
	assert.ErrorIs(t, err, application.ErrInvalidCode)

	result, err := svc.VerifyCode(ctx, testfixtures.StaffEmail, "abc123")
	require.NoError(t, err)
	assert.Equal(t, application.RoleStaff, result.User.Role)
	assert.NotEmpty(t, result.Token)
	assert.True(t, result.ExpiresAt.Equal(f.Clock.Now().Add(application.DefaultTokenTTL)))

	_, err = svc.VerifyCode(ctx, testfixtures.StaffEmail, "ABC123")
	assert.ErrorIs(t, err, application.ErrInvalidCode, "codes are single use")

	principal, err := svc.ValidateToken(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, application.Principal{UserID: testfixtures.StaffEmail, Role: application.RoleStaff}, principal)

	f.Clock.Advance(application.DefaultTokenTTL + time.Second)
	_, err = svc.ValidateToken(ctx, result.Token)
	assert.ErrorIs(t, err, application.ErrInvalidToken)
}

func TestRequestCodeUnknownUser(t *testing.T) {
	f := testfixtures.NewServiceFactory(t)
	err := f.AuthService(testSecret).RequestCode(context.Background(), "nobody@campus.edu")
	assert.ErrorIs(t, err, application.ErrNotFound)
	assert.Empty(t, f.Notifier.Sent())
}

func TestVerificationCodeExpires(t *testing.T) {
	f := testfixtures.NewServiceFactory(t)
	svc := f.AuthService(testSecret, "ZZZ999")
	ctx := context.Background()

	require.NoError(t, svc.RequestCode(ctx, testfixtures.StudentEmail))
	f.Clock.Advance(application.DefaultCodeTTL)

	_, err := svc.VerifyCode(ctx, testfixtures.StudentEmail, "ZZZ999")
	assert.ErrorIs(t, err, application.ErrInvalidCode)
}

func TestRequestCodeMailFailureDropsCode(t *testing.T) {
	f := testfixtures.NewServiceFactory(t)
	f.Notifier.Err = errors.New("smtp down")
	svc := f.AuthService(testSecret, "AAA111")
	ctx := context.Background()

	err := svc.RequestCode(ctx, testfixtures.StudentEmail)
	var nErr *application.NotificationError
	require.ErrorAs(t, err, &nErr)

	_, err = svc.VerifyCode(ctx, testfixtures.StudentEmail, "AAA111")
	assert.ErrorIs(t, err, application.ErrInvalidCode)
}

func TestValidateTokenRejectsForeignSignature(t *testing.T) {
	f := testfixtures.NewServiceFactory(t)
	issuer := f.AuthService("other-secret", "QQQ111")
	ctx := context.Background()

	require.NoError(t, issuer.RequestCode(ctx, testfixtures.AdminEmail))
	result, err := issuer.VerifyCode(ctx, testfixtures.AdminEmail, "QQQ111")
	require.NoError(t, err)

	_, err = f.AuthService(testSecret).ValidateToken(ctx, result.Token)
	assert.ErrorIs(t, err, application.ErrInvalidToken)

	_, err = f.AuthService(testSecret).ValidateToken(ctx, "garbage")
	assert.ErrorIs(t, err, application.ErrInvalidToken)
}
