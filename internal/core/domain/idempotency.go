package domain

import "strings"

// BuildIdempotencyKey scopes a client-supplied key to the operation, the
// channel session that sent it and the account,
// e.g. "withdraw:ATM-001:4000-0001:1000000001:abc-123".
func BuildIdempotencyKey(operation, channelID, principal, accountNo, clientKey string) string {
	return strings.Join([]string{operation, channelID, principal, accountNo, clientKey}, ":")
}
