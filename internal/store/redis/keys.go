package redis

import "strings"

const (
	// KeyState is the default key of the serialized AppState.
	KeyState = "promptvault-state"
	// KeyPrefixBackup prefixes the copy of a state that failed to decode.
	KeyPrefixBackup = "promptvault-corrupt:"
)

// StateKey returns key, or KeyState when key is blank.
func StateKey(key string) string {
	if k := strings.TrimSpace(key); k != "" {
		return k
	}
	return KeyState
}

// BackupKey returns the key a corrupt payload of stateKey is moved to.
func BackupKey(stateKey string) string {
	return KeyPrefixBackup + stateKey
}
