package notagen

import "strings"

// lineSeparator splits the notation into combo lines.
const lineSeparator = ","

// Parse resolves notation text into a Selection of icons from the given asset folder.
// Lines are separated by commas and tokens by whitespace. Tokens unknown to the
// resolver are dropped silently, the user may still be typing them.
// The result replaces the previous selection; parsing the same text twice yields equal selections.
func Parse(r Resolver, text, folder string) Selection {
	text = strings.TrimSpace(strings.ToUpper(text))
	if text == "" {
		return nil
	}

	var lines [][]AssetRef
	for _, seg := range strings.Split(text, lineSeparator) {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		line := []AssetRef{}
		for _, token := range strings.Fields(seg) {
			img, ok := r.LookupImage(token)
			if !ok {
				continue
			}
			line = append(line, AssetRef{Folder: folder, File: strings.TrimSpace(img)})
		}
		lines = append(lines, line)
	}
	return Replace(lines)
}
