package notagen

import "path/filepath"

// AssetRef identifies one icon: a file inside an asset folder (skin).
type AssetRef struct {
	Folder string
	File   string
}

// Path joins the reference with the asset root directory.
func (r AssetRef) Path(root string) string {
	return filepath.Join(root, r.Folder, r.File)
}

// Selection is the ordered list of chosen icons, one slice per combo line.
// A Selection never ends with an empty line.
type Selection [][]AssetRef

// Replace returns a normalized copy of lines, replacing whatever was selected before.
func Replace(lines [][]AssetRef) Selection {
	return Selection(lines).Clone()
}

// Append adds ref to the last line, creating the first line when none exists.
func (s Selection) Append(ref AssetRef) Selection {
	out := s.Clone()
	if len(out) == 0 {
		return Selection{{ref}}
	}
	last := len(out) - 1
	out[last] = append(out[last], ref)
	return out
}

// RemoveLast drops the last icon of the last line and prunes the line when it becomes empty.
func (s Selection) RemoveLast() Selection {
	out := s.Clone()
	if len(out) == 0 {
		return out
	}
	last := len(out) - 1
	out[last] = out[last][:len(out[last])-1]
	return out.trim()
}

// Empty reports whether no line holds an icon.
func (s Selection) Empty() bool {
	for _, line := range s {
		if len(line) > 0 {
			return false
		}
	}
	return true
}

// MaxLineLen returns the length of the longest line.
func (s Selection) MaxLineLen() int {
	n := 0
	for _, line := range s {
		if len(line) > n {
			n = len(line)
		}
	}
	return n
}

// Len returns the number of icons across all lines.
func (s Selection) Len() int {
	n := 0
	for _, line := range s {
		n += len(line)
	}
	return n
}

// Equal reports whether both selections hold the same references in the same shape.
func (s Selection) Equal(o Selection) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if len(s[i]) != len(o[i]) {
			return false
		}
		for j := range s[i] {
			if s[i][j] != o[i][j] {
				return false
			}
		}
	}
	return true
}

// Remap moves every reference of the from folder into the to folder.
// References of other folders and the shape of the selection are preserved.
func (s Selection) Remap(from, to string) Selection {
	out := s.Clone()
	for _, line := range out {
		for j := range line {
			if line[j].Folder == from {
				line[j].Folder = to
			}
		}
	}
	return out
}

// Clone returns a deep copy without trailing empty lines.
func (s Selection) Clone() Selection {
	if len(s) == 0 {
		return nil
	}
	out := make(Selection, len(s))
	for i, line := range s {
		out[i] = append([]AssetRef(nil), line...)
	}
	return out.trim()
}

func (s Selection) trim() Selection {
	n := len(s)
	for n > 0 && len(s[n-1]) == 0 {
		n--
	}
	if n == 0 {
		return nil
	}
	return s[:n]
}
