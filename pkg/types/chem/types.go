// Package chem defines the chemistry vocabulary shared across every layer of
// HitForge-Discovery: provenance enumerations, 3D geometry values, descriptor
// names, and activity-measurement records.  No chemistry logic lives here,
// only plain data types that any layer can import without cycles.
package chem

import (
	"fmt"
	"math"
)

// ─────────────────────────────────────────────────────────────────────────────
// Provenance — where a molecule came from
// ─────────────────────────────────────────────────────────────────────────────

// Provenance records whether a molecule entered the pipeline as an
// experimentally measured seed or as a generated analog.
type Provenance string

const (
	// ProvenanceSeed marks molecules ingested from bioactivity data.
	ProvenanceSeed Provenance = "seed"

	// ProvenanceGenerated marks molecules produced by a mutation strategy.
	ProvenanceGenerated Provenance = "generated"
)

// Valid reports whether p is one of the declared provenance values.
func (p Provenance) Valid() bool {
	return p == ProvenanceSeed || p == ProvenanceGenerated
}

// ─────────────────────────────────────────────────────────────────────────────
// SiteOrigin — how a binding site was determined
// ─────────────────────────────────────────────────────────────────────────────

// SiteOrigin records which path of the binding-site resolution policy produced
// the site in use.  The flag must always reflect what actually happened.
type SiteOrigin string

const (
	// OriginLigand marks a site centered on a co-crystallized ligand.
	OriginLigand SiteOrigin = "ligand-derived"

	// OriginResidue marks a site centered on an operator-supplied residue.
	OriginResidue SiteOrigin = "residue-fallback"

	// OriginManual marks a site taken verbatim from configuration.
	OriginManual SiteOrigin = "manual-override"
)

// Valid reports whether o is one of the declared origin values.
func (o SiteOrigin) Valid() bool {
	return o == OriginLigand || o == OriginResidue || o == OriginManual
}

// ─────────────────────────────────────────────────────────────────────────────
// Vec3 / Box — 3D geometry in Ångströms
// ─────────────────────────────────────────────────────────────────────────────

// Vec3 is a point or displacement in 3D space, in Ångströms.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{v.X + w.X, v.Y + w.Y, v.Z + w.Z}
}

// Sub returns v - w.
func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{v.X - w.X, v.Y - w.Y, v.Z - w.Z}
}

// Scale returns v scaled by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Dist returns the Euclidean distance between v and w.
func (v Vec3) Dist(w Vec3) float64 {
	d := v.Sub(w)
	return math.Sqrt(d.X*d.X + d.Y*d.Y + d.Z*d.Z)
}

// String renders the vector with two decimals, matching docking-input precision.
func (v Vec3) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v.X, v.Y, v.Z)
}

// Centroid returns the arithmetic mean of the given points.
// The zero vector is returned for an empty slice.
func Centroid(points []Vec3) Vec3 {
	if len(points) == 0 {
		return Vec3{}
	}
	var sum Vec3
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum.Scale(1 / float64(len(points)))
}

// Box is an axis-aligned search volume, described by its center and extent.
type Box struct {
	Center Vec3 `json:"center"`
	Size   Vec3 `json:"size"`
}

// CubeAround returns a cubic Box of the given edge length centered on c.
func CubeAround(c Vec3, edge float64) Box {
	return Box{Center: c, Size: Vec3{edge, edge, edge}}
}

// ─────────────────────────────────────────────────────────────────────────────
// Descriptors — named physicochemical properties
// ─────────────────────────────────────────────────────────────────────────────

// Canonical descriptor names.  Every producer and consumer of descriptor bags
// refers to properties through these constants so that a missing entry is
// always distinguishable from a typo.
const (
	DescMolWeight      = "mol_weight"
	DescCLogP          = "clogp"
	DescTPSA           = "tpsa"
	DescHBD            = "hbd"
	DescHBA            = "hba"
	DescRotatableBonds = "rotatable_bonds"
	DescAromaticRings  = "aromatic_rings"
	DescHeavyAtoms     = "heavy_atoms"
	DescQED            = "qed"
	DescSAScore        = "sa_score"
)

// ModelDescriptors is the ordered descriptor set consumed by the potency
// model.  Order matters: it fixes the feature-vector layout.
var ModelDescriptors = []string{
	DescMolWeight, DescCLogP, DescTPSA, DescHBD, DescHBA,
	DescRotatableBonds, DescAromaticRings, DescHeavyAtoms,
}

// Descriptors is a molecule's named-property bag.
type Descriptors map[string]float64

// Get returns the named descriptor and whether it is present.
func (d Descriptors) Get(name string) (float64, bool) {
	v, ok := d[name]
	return v, ok
}

// Clone returns an independent copy of the bag.
func (d Descriptors) Clone() Descriptors {
	if d == nil {
		return nil
	}
	out := make(Descriptors, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Activity — one experimental bioactivity measurement
// ─────────────────────────────────────────────────────────────────────────────

// Activity is a single potency measurement attached to a raw structure, as
// returned by the bioactivity source after curation.
type Activity struct {
	// SMILES is the reported structure, not yet canonicalized.
	SMILES string `json:"smiles"`

	// PIC50 is the negative decadic logarithm of the IC50 in mol/L.
	PIC50 float64 `json:"pic50"`

	// TargetID identifies the assayed target (e.g. a ChEMBL target id).
	TargetID string `json:"target_id"`

	// AssayDescription is the free-text assay annotation, kept for
	// mutant filtering and provenance display.
	AssayDescription string `json:"assay_description,omitempty"`

	// SourceRef is the upstream record identifier.
	SourceRef string `json:"source_ref,omitempty"`
}

// PIC50FromNanomolar converts an IC50 in nM to the pIC50 scale.
// Non-positive input yields NaN; callers must drop such rows.
func PIC50FromNanomolar(nm float64) float64 {
	if nm <= 0 {
		return math.NaN()
	}
	return 9 - math.Log10(nm)
}

// NanomolarFromPIC50 is the inverse of PIC50FromNanomolar.
func NanomolarFromPIC50(p float64) float64 {
	return math.Pow(10, 9-p)
}
