package display

// Filter selects which object categories stay visible in a capture.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterMesh      Filter = "mesh"
	FilterJoint     Filter = "joint"
	FilterMeshJoint Filter = "mesh_joint"
	FilterNurbs     Filter = "nurbs"
)

// Mode selects how much of the viewport dressing survives a capture.
type Mode string

const (
	ModeViewportAll  Mode = "viewport_all"
	ModeSceneObjects Mode = "scene_objects"
	ModeSelectedOnly Mode = "selected_only"
)

// QueryFlags lists every display toggle saved before a capture and restored
// after it. Panels that cannot answer for a toggle have it skipped.
var QueryFlags = []string{
	"allObjects", "polymeshes", "nurbsSurfaces", "nurbsCurves", "subdivSurfaces",
	"planes", "lights", "cameras", "joints", "ikHandles", "deformers",
	"dynamicConstraints", "locators", "dimensions", "handles", "pivots",
	"textures", "strokes", "fluids", "follicles", "hairSystems",
	"nCloths", "nParticles", "nRigids",
	"displayAppearance", "displayTextures", "displayLights", "shadows",
	"wireframeOnShaded", "xray", "jointXray",
	"grid", "hud", "manipulators",
}

// categoryOff force-disables every object category (plus manipulators)
// before a filter's flags are enabled. Shading and ornament toggles are
// saved and restored but never force-disabled.
var categoryOff = map[string]bool{
	"allObjects": false, "polymeshes": false, "nurbsSurfaces": false, "nurbsCurves": false,
	"subdivSurfaces": false, "planes": false, "lights": false, "cameras": false,
	"joints": false, "ikHandles": false, "deformers": false, "dynamicConstraints": false,
	"locators": false, "manipulators": false, "dimensions": false, "handles": false,
	"pivots": false, "textures": false, "strokes": false, "fluids": false, "follicles": false,
	"hairSystems": false, "nCloths": false, "nParticles": false, "nRigids": false,
}

// ParseFilter maps a settings value to a Filter. Unknown values fall back
// to FilterAll, reported via the second return.
func ParseFilter(s string) (Filter, bool) {
	switch Filter(s) {
	case FilterAll, FilterMesh, FilterJoint, FilterMeshJoint, FilterNurbs:
		return Filter(s), true
	default:
		return FilterAll, false
	}
}

// ParseMode maps a settings value to a Mode. Unknown values fall back to
// ModeSceneObjects, reported via the second return.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeViewportAll, ModeSceneObjects, ModeSelectedOnly:
		return Mode(s), true
	default:
		return ModeSceneObjects, false
	}
}

// EnableFlags returns the toggles a filter turns back on after the category
// disable pass.
func (f Filter) EnableFlags() map[string]bool {
	switch f {
	case FilterMesh:
		return map[string]bool{"polymeshes": true, "subdivSurfaces": true}
	case FilterJoint:
		return map[string]bool{"joints": true}
	case FilterMeshJoint:
		return map[string]bool{"polymeshes": true, "subdivSurfaces": true, "joints": true}
	case FilterNurbs:
		return map[string]bool{"nurbsCurves": true, "nurbsSurfaces": true}
	default:
		return map[string]bool{"allObjects": true}
	}
}
