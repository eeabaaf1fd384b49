package download

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"dfwatch/internal/domain/consts"
)

// sanitizeTitle strips characters that are unsafe in filenames.
func sanitizeTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range title {
		if strings.ContainsRune(consts.FilenameBlacklist, r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// FileName derives a deterministic, collision-safe filename from a
// title and stable identifier. The short ID hash keeps two videos with
// the same title from clobbering each other, and keeps the name stable
// across runs.
func FileName(title, id string) string {
	sum := sha256.Sum256([]byte(id))
	tag := hex.EncodeToString(sum[:4])

	clean := sanitizeTitle(title)
	if clean == "" {
		return tag + consts.VideoExt
	}
	return clean + " [" + tag + "]" + consts.VideoExt
}
