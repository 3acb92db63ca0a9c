package document

import "strings"

// wordsPerMinute is the assumed reading pace for the estimate.
const wordsPerMinute = 200

// ReadingTime estimates minutes to read the block sequence, rounding up.
// Only text-bearing variants contribute; an empty document reads in zero
// minutes. The estimate is monotonically non-decreasing in content length.
func ReadingTime(blocks []Block) int {
	words := 0
	for _, b := range blocks {
		for _, key := range textPropKeys(b.Type) {
			if s, ok := b.Props[key].(string); ok {
				words += len(strings.Fields(s))
			}
		}
	}
	if words == 0 {
		return 0
	}
	return (words + wordsPerMinute - 1) / wordsPerMinute
}

// textPropKeys names the props that carry reader-visible text for a variant.
func textPropKeys(t BlockType) []string {
	switch t {
	case BlockLead, BlockRichText:
		return []string{"content"}
	case BlockQuote:
		return []string{"text", "attribution"}
	case BlockCallout:
		return []string{"text"}
	case BlockCode:
		return []string{"code"}
	case BlockImage:
		return []string{"caption"}
	case BlockVideo:
		return []string{"caption"}
	default:
		return nil
	}
}
