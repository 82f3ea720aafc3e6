//go:build windows

package git

import "golang.org/x/sys/windows/registry"

// gitExtensionsKey is where Git Extensions records the git command it uses.
const gitExtensionsKey = `Software\GitExtensions`

// registryCommand reads the per-user Git Extensions git command.
func registryCommand() (string, bool) {
	k, err := registry.OpenKey(registry.CURRENT_USER, gitExtensionsKey, registry.QUERY_VALUE)
	if err != nil {
		return "", false
	}
	defer k.Close()

	value, _, err := k.GetStringValue("gitcommand")
	if err != nil || value == "" {
		return "", false
	}
	return value, true
}
