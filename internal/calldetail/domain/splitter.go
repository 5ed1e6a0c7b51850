package domain

// Splitter turns the tokenized fields of one ER line into raw usage records.
// A returned error rejects the whole batch.
//
//go:generate mockgen -destination=mocks/mock_splitter.go -package=mocks -source=splitter.go Splitter
type Splitter interface {
	SplitRawBatch(fields []string, startIndex int, delimiter rune, erid int) ([]RawUsageRecord, error)
}
