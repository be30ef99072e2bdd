package engine

// chunkify partitions items into at most maxChunks contiguous chunks,
// preserving order. Chunk size is ceil(len/maxChunks); the tail chunk may be
// shorter, and trailing empty chunks are never produced. Concatenating the
// chunks in order reproduces the input exactly.
func chunkify(items []Selected, maxChunks int) [][]Selected {
	if len(items) == 0 {
		return nil
	}
	if maxChunks < 1 {
		maxChunks = 1
	}

	size := (len(items) + maxChunks - 1) / maxChunks
	chunks := make([][]Selected, 0, maxChunks)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}
