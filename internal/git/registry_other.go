//go:build !windows

package git

// registryCommand reports nothing: only Windows has a per-user registry.
func registryCommand() (string, bool) {
	return "", false
}
