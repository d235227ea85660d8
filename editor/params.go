package editor

import "time"

// Params are the tunable constants of an editing session. The precisions
// are empirical and are expressed in mesh-local units.
type Params struct {
	// PositionPrecision is the quantization step that decides raw vertex
	// identity.
	PositionPrecision float64
	// PlanePrecision quantizes face normals and plane offsets when
	// grouping coplanar triangles.
	PlanePrecision float64
	// DriftThreshold is the world distance between a proxy and its cached
	// reference above which attaching logs a warning.
	DriftThreshold float64
	// FaceDragExtrudes makes the first delta of a face drag extrude it.
	FaceDragExtrudes bool

	VertexHandleSize    float32
	EdgeHandleThickness float32
	// FaceInset scales face footprints toward their centroid, in (0, 1].
	FaceInset float32

	ClickMaxDuration time.Duration
	DragThresholdPx  float64

	HistoryDepth int
}

func DefaultParams() Params {
	return Params{
		PositionPrecision:   1e-5,
		PlanePrecision:      1e-3,
		DriftThreshold:      1e-4,
		FaceDragExtrudes:    true,
		VertexHandleSize:    0.06,
		EdgeHandleThickness: 0.025,
		FaceInset:           0.85,
		ClickMaxDuration:    300 * time.Millisecond,
		DragThresholdPx:     6,
		HistoryDepth:        32,
	}
}
