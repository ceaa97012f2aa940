package state

import (
	"strings"

	"github.com/google/uuid"
)

// nameDelimiter separates an optional context prefix from a base name.
// A colon is not legal inside a variable name, so decomposition is
// unambiguous.
const nameDelimiter = ":"

// Qualify joins a context prefix and a base name into a registry key.
// An empty context returns the name unchanged.
func Qualify(name, context string) string {
	if context == "" {
		return name
	}
	return context + nameDelimiter + name
}

// BaseName strips the context prefix from a qualified name.
// Names without a prefix are returned as-is.
func BaseName(qualified string) string {
	if i := strings.LastIndex(qualified, nameDelimiter); i >= 0 {
		return qualified[i+1:]
	}
	return qualified
}

// splitName decomposes a qualified name into its context prefix and base
// name. The context is empty for unqualified names.
func splitName(qualified string) (context, base string) {
	if i := strings.LastIndex(qualified, nameDelimiter); i >= 0 {
		return qualified[:i], qualified[i+1:]
	}
	return "", qualified
}

// freshName returns a globally unique name for anonymous registrations.
func freshName() string {
	return uuid.NewString()
}
