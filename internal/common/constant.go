package common

// AccessTokenHeaderName is the gRPC metadata key carrying the access token.
const AccessTokenHeaderName = "access_token"

// Identity provider error codes. The identity server puts them in gRPC status
// messages and the Firebase adapter translates Identity Toolkit reasons into them.
const (
	CodeEmailAlreadyInUse    = "auth/email-already-in-use"
	CodeInvalidEmail         = "auth/invalid-email"
	CodeOperationNotAllowed  = "auth/operation-not-allowed"
	CodeWeakPassword         = "auth/weak-password"
	CodeUserDisabled         = "auth/user-disabled"
	CodeUserNotFound         = "auth/user-not-found"
	CodeWrongPassword        = "auth/wrong-password"
	CodeInvalidCredential    = "auth/invalid-credential"
	CodeNetworkRequestFailed = "auth/network-request-failed"
	CodeTooManyRequests      = "auth/too-many-requests"
	CodeInternalError        = "auth/internal-error"
)
