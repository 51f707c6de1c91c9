package utils

import (
	"context"

	"github.com/mmdatafocus/lottery_backend/appctx"
)

// Alias the shared context key type so existing code keeps working.
type contextKey = appctx.ContextKey

var (
	ContextKeyToken          = appctx.ContextKeyToken
	ContextKeyStoreId        = appctx.ContextKeyStoreId
	ContextKeyJurisdictionId = appctx.ContextKeyJurisdictionId
	ContextKeySessionId      = appctx.ContextKeySessionId
	ContextKeyCredentialId   = appctx.ContextKeyCredentialId
	ContextKeyUsername       = appctx.ContextKeyUsername
	ContextKeyUserId         = appctx.ContextKeyUserId
	ContextKeyUserName       = appctx.ContextKeyUserName
	ContextKeyCorrelationId  = appctx.ContextKeyCorrelationId

	ContextKeySourceAddress     = appctx.ContextKeySourceAddress
	ContextKeyDeviceFingerprint = appctx.ContextKeyDeviceFingerprint

	ContextKeyIsAdmin         = appctx.ContextKeyIsAdmin
	ContextKeySkipTenantScope = appctx.ContextKeySkipTenantScope
)

func GetTokenFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyToken)
}

func GetStoreIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyStoreId)
}

func GetJurisdictionIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyJurisdictionId)
}

func GetSessionIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeySessionId)
}

func GetCredentialIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCredentialId)
}

func GetUsernameFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyUsername)
}

func GetUserIdFromContext(ctx context.Context) (int, bool) {
	return appctx.GetInt(ctx, ContextKeyUserId)
}

func GetUserNameFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyUserName)
}

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCorrelationId)
}

func GetSourceAddressFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeySourceAddress)
}

func GetDeviceFingerprintFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyDeviceFingerprint)
}

func SetTokenInContext(ctx context.Context, token string) context.Context {
	return appctx.Set(ctx, ContextKeyToken, token)
}

func SetStoreIdInContext(ctx context.Context, storeId string) context.Context {
	return appctx.Set(ctx, ContextKeyStoreId, storeId)
}

func SetJurisdictionIdInContext(ctx context.Context, jurisdictionId string) context.Context {
	return appctx.Set(ctx, ContextKeyJurisdictionId, jurisdictionId)
}

func SetSessionIdInContext(ctx context.Context, sessionId string) context.Context {
	return appctx.Set(ctx, ContextKeySessionId, sessionId)
}

func SetCredentialIdInContext(ctx context.Context, credentialId string) context.Context {
	return appctx.Set(ctx, ContextKeyCredentialId, credentialId)
}

func SetUsernameInContext(ctx context.Context, username string) context.Context {
	return appctx.Set(ctx, ContextKeyUsername, username)
}

func SetUserIdInContext(ctx context.Context, userId int) context.Context {
	return appctx.Set(ctx, ContextKeyUserId, userId)
}

func SetUserNameInContext(ctx context.Context, userName string) context.Context {
	return appctx.Set(ctx, ContextKeyUserName, userName)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.Set(ctx, ContextKeyCorrelationId, correlationId)
}

func SetSourceAddressInContext(ctx context.Context, sourceAddress string) context.Context {
	return appctx.Set(ctx, ContextKeySourceAddress, sourceAddress)
}

func SetDeviceFingerprintInContext(ctx context.Context, fingerprint string) context.Context {
	return appctx.Set(ctx, ContextKeyDeviceFingerprint, fingerprint)
}

func GetIsAdminFromContext(ctx context.Context) (bool, bool) {
	return appctx.GetBool(ctx, ContextKeyIsAdmin)
}

func SetIsAdminInContext(ctx context.Context, isAdmin bool) context.Context {
	return appctx.Set(ctx, ContextKeyIsAdmin, isAdmin)
}

func GetSkipTenantScopeFromContext(ctx context.Context) (bool, bool) {
	return appctx.GetBool(ctx, ContextKeySkipTenantScope)
}

func SetSkipTenantScopeInContext(ctx context.Context, skip bool) context.Context {
	return appctx.Set(ctx, ContextKeySkipTenantScope, skip)
}
