package export

// BandChunks splits bands into export groups of three, the most a video
// carries as RGB. A trailing short group is widened to the last three bands,
// overlapping the previous group, so every band still renders inside a
// full-color video. Fewer than three bands total stay a single short chunk.
func BandChunks(bands []string) [][]string {
	if len(bands) == 0 {
		return nil
	}

	var chunks [][]string
	for i := 0; i < len(bands); i += 3 {
		end := i + 3
		if end > len(bands) {
			end = len(bands)
		}
		chunks = append(chunks, bands[i:end])
	}

	last := len(bands) - 3
	if last < 0 {
		last = 0
	}
	chunks[len(chunks)-1] = bands[last:]
	return chunks
}
