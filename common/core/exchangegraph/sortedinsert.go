package exchangegraph

// sortedInsert puts add into items, kept ascending by comparator and capped at maxSize.
// Items equal to add stay in front of it. When items is full, add must be strictly
// better than the last item or it is dropped; otherwise the last item is evicted.
func sortedInsert[T any](items []T, add T, maxSize int, comparator func(a, b T) (int, error)) ([]T, error) {
	if len(items) == 0 {
		return append(items, add), nil
	}

	isFull := len(items) == maxSize
	if isFull {
		c, err := comparator(items[len(items)-1], add)
		if err != nil {
			return nil, err
		}
		if c <= 0 {
			return items, nil
		}
	}

	lo, hi := 0, len(items)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		c, err := comparator(items[mid], add)
		if err != nil {
			return nil, err
		}
		if c <= 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}

	var zero T
	items = append(items, zero)
	copy(items[lo+1:], items[lo:])
	items[lo] = add

	if isFull {
		items = items[:len(items)-1]
	}
	return items, nil
}
