package config

import "log"

// MinSecretLen is the shortest HS256 key accepted at startup.
const MinSecretLen = 32

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

func MustSecret(value []byte, envName string) {
	if len(value) == 0 {
		log.Fatalf("missing required env %s", envName)
	}
	if len(value) < MinSecretLen {
		log.Fatalf("env %s must be at least %d bytes", envName, MinSecretLen)
	}
}
