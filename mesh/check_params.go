package mesh

// CheckParameters holds the thresholds of the mesh quality checks. Field tags follow the YAML keys
// read by the InputParameters package.
type CheckParameters struct {
	// Relative tolerance on the sum of face area vectors of a closed surface
	ClosedThreshold float64 `json:"closedThreshold"`
	AspectThreshold float64 `json:"aspectThreshold"`
	// Degrees
	NonOrthThreshold float64 `json:"nonOrthThreshold"`
	SkewThreshold    float64 `json:"skewThreshold"`
	PlanarCosAngle   float64 `json:"planarCosAngle"`
	// Degrees, the largest allowed concave angle between consecutive face edges
	MaxConcave       float64 `json:"maxConcave"`
	MinFlatness      float64 `json:"minFlatness"`
	MinPyrVol        float64 `json:"minPyrVol"`
	MinDeterminant   float64 `json:"minDeterminant"`
	MinFaceWeight    float64 `json:"minFaceWeight"`
	MinVolRatio      float64 `json:"minVolRatio"`
	MinPointDistance float64 `json:"minPointDistance"`
	MinEdgeLength    float64 `json:"minEdgeLength"`
	// Run the optional geometry checks (angles, flatness, nearness, edge lengths, determinant,
	// weights and volume ratio) as part of CheckGeometry
	AllGeometry bool `json:"allGeometry"`
}

func DefaultCheckParameters() CheckParameters {
	return CheckParameters{
		ClosedThreshold:  1.0e-6,
		AspectThreshold:  1000,
		NonOrthThreshold: 70,
		SkewThreshold:    4,
		PlanarCosAngle:   1.0e-6,
		MaxConcave:       10,
		MinFlatness:      0.8,
		MinPyrVol:        -SMALL,
		MinDeterminant:   1.0e-3,
		MinFaceWeight:    0.05,
		MinVolRatio:      0.01,
		MinPointDistance: 1.0e-9,
		MinEdgeLength:    1.0e-9,
	}
}
