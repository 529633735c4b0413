// Package persist stores user settings and profile documents. Signed-in
// users go through the gateway so documents follow them across devices;
// anonymous users get plain JSON files next to the app state.
package persist

import "context"

// Store reads and writes the two per-user documents. Saves carry partial
// documents and merge key-wise into what is already stored.
type Store interface {
	GetSettings(ctx context.Context) (map[string]any, error)
	SaveSettings(ctx context.Context, doc map[string]any) error
	GetProfile(ctx context.Context) (map[string]any, error)
	SaveProfile(ctx context.Context, doc map[string]any) error
}

// Choose picks the backend: remote when a token identifies the user,
// local files otherwise.
func Choose(baseURL, token, localDir string) Store {
	if token != "" {
		return NewRemote(baseURL, token)
	}
	return NewLocal(localDir)
}

func merged(base, patch map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(patch))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}
