package genome

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Hash computes the genome's 256-bit structural fingerprint:
// H(concat(chromosome gene-id lists) ‖ concat(edge sourceId→targetId
// strings)). Numeric fields and edge order never affect the hash;
// reordering edges or perturbing numeric values without changing
// structure yields the same hash.
func (g *DynamicGenome) Hash() string {
	var b strings.Builder
	for _, c := range g.Chromosomes {
		for _, id := range c.GeneIDs() {
			b.WriteString(id)
			b.WriteByte(0)
		}
		b.WriteByte(0)
	}
	for _, s := range canonicalEdgeStrings(g.Edges) {
		b.WriteString(s)
		b.WriteByte(0)
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// RecomputeHash stores the genome's current structural hash into its
// metadata and returns it.
func (g *DynamicGenome) RecomputeHash() string {
	h := g.Hash()
	g.Metadata.GenomeHash = h
	return h
}

// canonicalEdgeStrings renders each edge as "sourceId->targetId" and
// returns them sorted, so hashing and equality are independent of edge
// order.
func canonicalEdgeStrings(edges []RegulatoryEdge) []string {
	out := make([]string, len(edges))
	for i, e := range edges {
		out[i] = e.SourceGeneID + "->" + e.TargetGeneID
	}
	sort.Strings(out)
	return out
}
