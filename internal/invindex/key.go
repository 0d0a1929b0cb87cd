package invindex

import "strconv"

// Key builds the inverted-index key of spec.md §3: "{L}:{P}_{W}" where L is
// phrase length, P the 0-based word position, and W the literal word.
func Key(length, position int, word string) string {
	return strconv.Itoa(length) + ":" + strconv.Itoa(position) + "_" + word
}
