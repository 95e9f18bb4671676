package config

import (
	"context"
	"fmt"
	"strings"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

// DefaultSecretKey is the Secret data key holding the API key.
const DefaultSecretKey = "api-key"

// ParseSecretRef parses a "namespace/name" reference. A bare name is looked
// up in defaultNamespace.
func ParseSecretRef(ref, defaultNamespace string) (types.NamespacedName, error) {
	ns, name, found := strings.Cut(ref, "/")
	if !found {
		ns, name = defaultNamespace, ref
	}
	if ns == "" || name == "" || strings.Contains(name, "/") {
		return types.NamespacedName{}, fmt.Errorf("invalid secret reference %q, expected namespace/name", ref)
	}
	return types.NamespacedName{Namespace: ns, Name: name}, nil
}

// LoadSecretCredentials reads the API key stored under key in the referenced Secret.
func LoadSecretCredentials(ctx context.Context, reader client.Reader, ref types.NamespacedName, key string) (string, error) {
	if key == "" {
		key = DefaultSecretKey
	}

	var secret corev1.Secret
	if err := reader.Get(ctx, ref, &secret); err != nil {
		return "", fmt.Errorf("reading secret %s: %w", ref, err)
	}

	value, ok := secret.Data[key]
	if !ok {
		if s, ok := secret.StringData[key]; ok {
			value = []byte(s)
		}
	}
	apiKey := strings.TrimSpace(string(value))
	if apiKey == "" {
		return "", fmt.Errorf("secret %s: missing or empty key %q", ref, key)
	}
	return apiKey, nil
}
