package decoder

import "sort"

// BarcodeValue tallies the readings of one matrix cell. The most frequent
// value wins; ties keep every tied value for the ambiguity retries.
type BarcodeValue struct {
	values map[int]int
}

func newBarcodeValue() *BarcodeValue {
	return &BarcodeValue{values: make(map[int]int)}
}

// SetValue records one more reading of value.
func (bv *BarcodeValue) SetValue(value int) {
	bv.values[value]++
}

// Value returns the values with the highest count in ascending order, or
// nil when the cell was never read.
func (bv *BarcodeValue) Value() []int {
	maxConfidence := -1
	var result []int
	for key, confidence := range bv.values {
		switch {
		case confidence > maxConfidence:
			maxConfidence = confidence
			result = append(result[:0], key)
		case confidence == maxConfidence:
			result = append(result, key)
		}
	}
	sort.Ints(result)
	return result
}

// Confidence returns how often value was read.
func (bv *BarcodeValue) Confidence(value int) int {
	return bv.values[value]
}

// Empty reports whether the cell has no reading at all.
func (bv *BarcodeValue) Empty() bool {
	return len(bv.values) == 0
}
