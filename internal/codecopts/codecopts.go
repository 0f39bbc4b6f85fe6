// Package codecopts parses the codec_opts string a client may attach to a
// Job's parameters into a key/value dictionary suitable for an encoder's
// open-time options.
package codecopts

import "strings"

// Parse splits raw on ";" into pairs, then each pair on the first "=" into a
// key and a value. Empty keys and pairs without "=" are skipped silently.
//
//	Parse("k1=v1;k2=v2;;k3=v3") -> {k1:v1, k2:v2, k3:v3}
//	Parse("k1;k2=v2")           -> {k2:v2}
//	Parse("")                  -> {}
func Parse(raw string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(raw, ";") {
		if pair == "" {
			continue
		}
		idx := strings.IndexByte(pair, '=')
		if idx < 0 {
			continue
		}
		key := pair[:idx]
		if key == "" {
			continue
		}
		out[key] = pair[idx+1:]
	}
	return out
}
