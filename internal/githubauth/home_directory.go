package githubauth

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	homeDirectorySymbolConstant      = "~"
	homeDirectorySlashPrefixConstant = "~/"
)

// HomeDirectoryProvider resolves the current user's home directory.
type HomeDirectoryProvider func() (string, error)

// homeDirectoryExpander rewrites a leading ~ in secret file references.
type homeDirectoryExpander struct {
	provider      HomeDirectoryProvider
	homeDirectory string
	lookupError   error
	lookupOnce    sync.Once
}

func newHomeDirectoryExpander(provider HomeDirectoryProvider) *homeDirectoryExpander {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &homeDirectoryExpander{provider: provider}
}

// expand leaves the reference untouched when the home directory cannot be determined.
func (expander *homeDirectoryExpander) expand(reference string) string {
	if !strings.HasPrefix(reference, homeDirectorySymbolConstant) {
		return reference
	}

	expander.lookupOnce.Do(func() {
		expander.homeDirectory, expander.lookupError = expander.provider()
	})
	if expander.lookupError != nil || len(expander.homeDirectory) == 0 {
		return reference
	}

	switch {
	case reference == homeDirectorySymbolConstant:
		return expander.homeDirectory
	case strings.HasPrefix(reference, homeDirectorySlashPrefixConstant):
		return filepath.Join(expander.homeDirectory, strings.TrimPrefix(reference, homeDirectorySlashPrefixConstant))
	case strings.HasPrefix(reference, homeDirectorySymbolConstant+string(os.PathSeparator)):
		return filepath.Join(expander.homeDirectory, strings.TrimPrefix(reference, homeDirectorySymbolConstant+string(os.PathSeparator)))
	default:
		return reference
	}
}
