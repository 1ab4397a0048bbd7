package srcmap

import "github.com/liuxd6825/remap/lib/mappings"

type memo struct {
	lastKey    int
	lastNeedle int
	lastIndex  int
}

func newMemo() memo {
	return memo{lastKey: -1, lastNeedle: -1, lastIndex: -1}
}

// binarySearch looks for needle in the first field of the segments between low and high. If
// it's not there, the index of the last segment before it is returned (possibly -1).
func binarySearch(haystack mappings.Line, needle, low, high int) (int, bool) {
	for low <= high {
		mid := low + (high-low)>>1
		cmp := haystack[mid][0] - needle
		if cmp == 0 {
			return mid, true
		}
		if cmp < 0 {
			low = mid + 1
		} else {
			high = mid - 1
		}
	}
	return low - 1, false
}

func upperBound(haystack mappings.Line, needle, index int) int {
	for i := index + 1; i < len(haystack); i++ {
		if haystack[i][0] != needle {
			break
		}
		index = i
	}
	return index
}

func lowerBound(haystack mappings.Line, needle, index int) int {
	for i := index - 1; i >= 0; i-- {
		if haystack[i][0] != needle {
			break
		}
		index = i
	}
	return index
}

// memoizedBinarySearch narrows the search using the previous lookup with the same key.
func memoizedBinarySearch(haystack mappings.Line, needle int, m *memo, key int) (int, bool) {
	low, high := 0, len(haystack)-1
	if key == m.lastKey {
		if needle == m.lastNeedle {
			found := m.lastIndex != -1 && m.lastIndex < len(haystack) && haystack[m.lastIndex][0] == needle
			return m.lastIndex, found
		}
		if needle >= m.lastNeedle {
			if m.lastIndex != -1 {
				low = m.lastIndex
			}
		} else {
			high = m.lastIndex
		}
	}
	m.lastKey, m.lastNeedle = key, needle
	index, found := binarySearch(haystack, needle, low, high)
	m.lastIndex = index
	return index, found
}

func traceSegmentInternal(segments mappings.Line, m *memo, line, column int, bias Bias) int {
	index, found := memoizedBinarySearch(segments, column, m, line)
	switch {
	case found && bias == LeastUpperBound:
		index = upperBound(segments, column, index)
	case found:
		index = lowerBound(segments, column, index)
	case bias == LeastUpperBound:
		index++
	}
	if index == -1 || index == len(segments) {
		return -1
	}
	return index
}
