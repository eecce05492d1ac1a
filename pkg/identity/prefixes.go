package identity

import "sort"

// PrefixCount is the number of developers sharing an email local part.
type PrefixCount struct {
	Prefix string
	Count  int
}

// MostCommonPrefixes counts email local parts and returns the n most frequent,
// highest count first. Ties keep first-seen order. Emails without '@' count
// as a whole. n <= 0 returns every prefix.
func MostCommonPrefixes(recs []DeveloperRecord, n int) []PrefixCount {
	index := make(map[string]int)

	var counts []PrefixCount

	for _, rec := range recs {
		local, _ := LocalPart(rec.Email)

		pos, seen := index[local]
		if !seen {
			index[local] = len(counts)
			counts = append(counts, PrefixCount{Prefix: local})
			pos = len(counts) - 1
		}

		counts[pos].Count++
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})

	if n > 0 && len(counts) > n {
		counts = counts[:n]
	}

	return counts
}
