package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestWidgetTokenIsCachedPerScopeSet(t *testing.T) {
	provider := new(mockProvider)
	svc := NewWidgetTokenService(provider)
	defer svc.Stop()

	manageScopes := []string{"widgets:users-table:manage"}
	ssoScopes := []string{"widgets:sso:manage"}

	provider.On("GetWidgetToken", mock.Anything, "user_1", "org_a", manageScopes).Return("tok-manage", nil).Once()
	provider.On("GetWidgetToken", mock.Anything, "user_1", "org_a", ssoScopes).Return("tok-sso", nil).Once()

	first, err := svc.GetToken(context.Background(), "user_1", "org_a", manageScopes)
	require.NoError(t, err)
	second, err := svc.GetToken(context.Background(), "user_1", "org_a", manageScopes)
	require.NoError(t, err)
	assert.Equal(t, "tok-manage", first)
	assert.Equal(t, first, second)

	other, err := svc.GetToken(context.Background(), "user_1", "org_a", ssoScopes)
	require.NoError(t, err)
	assert.Equal(t, "tok-sso", other)

	provider.AssertExpectations(t)
}

func TestWidgetTokenRequiresOrganization(t *testing.T) {
	provider := new(mockProvider)
	svc := NewWidgetTokenService(provider)
	defer svc.Stop()

	_, err := svc.GetToken(context.Background(), "user_1", "", nil)
	require.Error(t, err)
	provider.AssertNotCalled(t, "GetWidgetToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
