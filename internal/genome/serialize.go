package genome

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
)

// RecordVersion is the current major version of the versioned genome
// serialization format. A deserializer that reads a record with a
// different major version fails with ErrIncompatibleGenome.
const RecordVersion = 2

// ErrIncompatibleGenome is returned when a serialized record's version
// does not match RecordVersion.
var ErrIncompatibleGenome = errors.New("genome: incompatible version")

// ErrChecksumMismatch is returned when a deserialized record's checksum
// does not match its recomputed canonical checksum.
var ErrChecksumMismatch = errors.New("genome: checksum mismatch")

// Record is the versioned, self-describing serialization envelope.
type Record struct {
	Version  int            `json:"version"`
	Genome   *DynamicGenome `json:"genome"`
	Checksum string         `json:"checksum"`
}

// canonicalGene mirrors Gene but with every numeric field rounded to 6
// decimal places, for canonical encoding.
type canonicalGene struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	Domain              Domain  `json:"domain"`
	Value               float64 `json:"value"`
	Weight              float64 `json:"weight"`
	Dominance           float64 `json:"dominance"`
	Plasticity          float64 `json:"plasticity"`
	Essentiality        float64 `json:"essentiality"`
	MetabolicCost       float64 `json:"metabolicCost"`
	Origin              Origin  `json:"origin"`
	Age                 int     `json:"age"`
	DuplicateOf         string  `json:"duplicateOf,omitempty"`
	AcquiredFrom        string  `json:"acquiredFrom,omitempty"`
	ExpressionState     ExpressionState `json:"expressionState"`
	ActivationCondition string          `json:"activationCondition,omitempty"`
}

type canonicalChromosome struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	IsEssential bool            `json:"isEssential"`
	Genes       []canonicalGene `json:"genes"`
}

type canonicalEdge struct {
	SourceGeneID  string                 `json:"sourceGeneId"`
	TargetGeneID  string                 `json:"targetGeneId"`
	Relationship  RegulatoryRelationship `json:"relationship"`
	Strength      float64                `json:"strength"`
	Logic         RegulatoryLogic        `json:"logic,omitempty"`
	Threshold     float64                `json:"threshold,omitempty"`
	Cooperativity float64                `json:"cooperativity,omitempty"`
	Phase         float64                `json:"phase,omitempty"`
	Period        float64                `json:"period,omitempty"`
}

type canonicalMark struct {
	TargetGeneID      string                 `json:"targetGeneId"`
	Modification      EpigeneticModification `json:"modification"`
	Strength          float64                `json:"strength"`
	Cause             string                 `json:"cause"`
	Heritability      float64                `json:"heritability"`
	Decay             float64                `json:"decay"`
	GenerationCreated int                    `json:"generationCreated"`
}

type canonicalGenome struct {
	Metadata    GenomeMetadata        `json:"metadata"`
	Chromosomes []canonicalChromosome `json:"chromosomes"`
	Edges       []canonicalEdge       `json:"edges"`
	Epigenome   []canonicalMark       `json:"epigenome"`
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// CanonicalEncoding produces the canonical byte encoding of the genome:
// chromosomes in declaration order, genes in list order with every
// numeric field rounded to 6 decimal places, edges sorted by
// (sourceId, targetId), marks sorted by targetGeneId.
func (g *DynamicGenome) CanonicalEncoding() ([]byte, error) {
	cg := canonicalGenome{Metadata: g.Metadata}
	for _, c := range g.Chromosomes {
		cc := canonicalChromosome{ID: c.ID, Name: c.Name, IsEssential: c.IsEssential}
		for _, gene := range c.Genes {
			cc.Genes = append(cc.Genes, canonicalGene{
				ID:                  gene.ID,
				Name:                gene.Name,
				Domain:              gene.Domain,
				Value:               round6(gene.Value),
				Weight:              round6(gene.Weight),
				Dominance:           round6(gene.Dominance),
				Plasticity:          round6(gene.Plasticity),
				Essentiality:        round6(gene.Essentiality),
				MetabolicCost:       round6(gene.MetabolicCost),
				Origin:              gene.Origin,
				Age:                 gene.Age,
				DuplicateOf:         gene.DuplicateOf,
				AcquiredFrom:        gene.AcquiredFrom,
				ExpressionState:     gene.ExpressionState,
				ActivationCondition: gene.ActivationCondition,
			})
		}
		cg.Chromosomes = append(cg.Chromosomes, cc)
	}

	edges := make([]canonicalEdge, len(g.Edges))
	for i, e := range g.Edges {
		edges[i] = canonicalEdge{
			SourceGeneID:  e.SourceGeneID,
			TargetGeneID:  e.TargetGeneID,
			Relationship:  e.Relationship,
			Strength:      round6(e.Strength),
			Logic:         e.Logic,
			Threshold:     round6(e.Threshold),
			Cooperativity: round6(e.Cooperativity),
			Phase:         round6(e.Phase),
			Period:        round6(e.Period),
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].SourceGeneID != edges[j].SourceGeneID {
			return edges[i].SourceGeneID < edges[j].SourceGeneID
		}
		return edges[i].TargetGeneID < edges[j].TargetGeneID
	})
	cg.Edges = edges

	marks := make([]canonicalMark, len(g.Epigenome))
	for i, m := range g.Epigenome {
		marks[i] = canonicalMark{
			TargetGeneID:      m.TargetGeneID,
			Modification:      m.Modification,
			Strength:          round6(m.Strength),
			Cause:             m.Cause,
			Heritability:      round6(m.Heritability),
			Decay:             round6(m.Decay),
			GenerationCreated: m.GenerationCreated,
		}
	}
	sort.Slice(marks, func(i, j int) bool {
		return marks[i].TargetGeneID < marks[j].TargetGeneID
	})
	cg.Epigenome = marks

	return json.Marshal(cg)
}

// Checksum returns the hex-encoded 32-byte SHA-256 checksum of the
// genome's canonical encoding.
func (g *DynamicGenome) Checksum() (string, error) {
	data, err := g.CanonicalEncoding()
	if err != nil {
		return "", fmt.Errorf("canonical encoding: %w", err)
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%x", sum), nil
}

// ToRecord wraps the genome in a versioned, checksummed record.
func (g *DynamicGenome) ToRecord() (*Record, error) {
	checksum, err := g.Checksum()
	if err != nil {
		return nil, err
	}
	return &Record{Version: RecordVersion, Genome: g, Checksum: checksum}, nil
}

// Marshal serializes the genome to its versioned JSON record form.
func (g *DynamicGenome) Marshal() ([]byte, error) {
	rec, err := g.ToRecord()
	if err != nil {
		return nil, fmt.Errorf("build record: %w", err)
	}
	return json.Marshal(rec)
}

// Unmarshal parses a versioned JSON record, rejecting any record whose
// major version differs from RecordVersion and any record whose
// checksum does not match its canonical encoding.
func Unmarshal(data []byte) (*DynamicGenome, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	if rec.Version != RecordVersion {
		return nil, fmt.Errorf("%w: got version %d, want %d", ErrIncompatibleGenome, rec.Version, RecordVersion)
	}
	if rec.Genome == nil {
		return nil, errors.New("genome: record has no genome")
	}
	checksum, err := rec.Genome.Checksum()
	if err != nil {
		return nil, fmt.Errorf("recompute checksum: %w", err)
	}
	if checksum != rec.Checksum {
		return nil, fmt.Errorf("%w: got %s, want %s", ErrChecksumMismatch, rec.Checksum, checksum)
	}
	return rec.Genome, nil
}
