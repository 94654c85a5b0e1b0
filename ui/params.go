package ui

import (
	"fmt"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/modelg/model"
	"github.com/pthm-cable/modelg/ui/slider"
)

// ParamAction is what the parameter panel asks the caller to do.
type ParamAction int

const (
	ParamNone ParamAction = iota
	ParamApply
	ParamRevert
	ParamDefaults
)

// paramField binds one slider to a float field of the pending set.
type paramField struct {
	label    string
	min, max float32
	field    func(p *model.Params) *float64
}

var paramFields = []paramField{
	{"k1", 0, 5, func(p *model.Params) *float64 { return &p.K1 }},
	{"k2", 0, 5, func(p *model.Params) *float64 { return &p.K2 }},
	{"k3", 0, 5, func(p *model.Params) *float64 { return &p.K3 }},
	{"k4", 0, 5, func(p *model.Params) *float64 { return &p.K4 }},
	{"k5", 0, 5, func(p *model.Params) *float64 { return &p.K5 }},
	{"k-1", 0, 5, func(p *model.Params) *float64 { return &p.KR1 }},
	{"k-2", 0, 5, func(p *model.Params) *float64 { return &p.KR2 }},
	{"k-3", 0, 5, func(p *model.Params) *float64 { return &p.KR3 }},
	{"k-4", 0, 5, func(p *model.Params) *float64 { return &p.KR4 }},
	{"k-5", 0, 5, func(p *model.Params) *float64 { return &p.KR5 }},
	{"DG", 0, 5, func(p *model.Params) *float64 { return &p.DG }},
	{"DX", 0, 5, func(p *model.Params) *float64 { return &p.DX }},
	{"DY", 0, 5, func(p *model.Params) *float64 { return &p.DY }},
	{"A", 0, 10, func(p *model.Params) *float64 { return &p.A }},
	{"B", 0, 10, func(p *model.Params) *float64 { return &p.B }},
	{"Z", 0, 10, func(p *model.Params) *float64 { return &p.Z }},
	{"Omega", 0, 10, func(p *model.Params) *float64 { return &p.Omega }},
	{"G0", 0, 10, func(p *model.Params) *float64 { return &p.G0 }},
	{"X0", 0, 10, func(p *model.Params) *float64 { return &p.X0 }},
	{"Y0", 0, 10, func(p *model.Params) *float64 { return &p.Y0 }},
	{"dt", 0.001, 1, func(p *model.Params) *float64 { return &p.DT }},
}

const (
	minGridSize = 3
	maxGridSize = 1000
)

// ParamPanel edits a pending copy of the parameter set. The active set is
// only replaced when the user presses Apply.
type ParamPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32

	active      model.Params
	activeMask  model.Mask
	pending     model.Params
	pendingMask model.Mask

	// sliders holds each slider's previous return value so values outside
	// a slider's range survive until the user actually drags it.
	sliders *slider.Tracker
}

// NewParamPanel creates a panel showing p and m as both active and pending.
func NewParamPanel(x, y, width int32, p model.Params, m model.Mask) *ParamPanel {
	pp := &ParamPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		sliders:  slider.NewTracker(),
	}
	pp.SetActive(p, m)
	return pp
}

// SetPosition updates the panel position.
func (pp *ParamPanel) SetPosition(x, y int32) {
	pp.x = x
	pp.y = y
}

// SetActive records the set the engine now runs with and discards edits.
func (pp *ParamPanel) SetActive(p model.Params, m model.Mask) {
	pp.active, pp.activeMask = p, m
	pp.pending, pp.pendingMask = p, m
	pp.sliders.Reset()
}

// Pending returns the edited parameter set and mask.
func (pp *ParamPanel) Pending() (model.Params, model.Mask) {
	return pp.pending, pp.pendingMask
}

// SetPending replaces the edited values without touching the active set.
func (pp *ParamPanel) SetPending(p model.Params, m model.Mask) {
	pp.pending, pp.pendingMask = p, m
	pp.sliders.Reset()
}

// Revert drops all pending edits.
func (pp *ParamPanel) Revert() {
	pp.pending, pp.pendingMask = pp.active, pp.activeMask
	pp.sliders.Reset()
}

// Dirty reports whether any pending value differs from the active set.
func (pp *ParamPanel) Dirty() bool {
	return pp.pending != pp.active || pp.pendingMask != pp.activeMask
}

// Draw renders the panel and returns the action requested by its buttons.
func (pp *ParamPanel) Draw() ParamAction {
	r := pp.renderer
	pad := r.Theme.Padding
	rowH := int32(18)
	rows := int32(len(paramFields)) + 4
	height := rows*rowH + r.Theme.LineHeight*2 + pad*4 + 30
	r.DrawPanel(pp.x, pp.y, pp.width, height)

	x := pp.x + pad
	y := pp.y + pad
	y = r.DrawSectionHeader(x, y, "Parameters")
	rl.DrawText("value  (active)", x+r.Theme.LabelWidth, y, r.Theme.FontSize, r.Theme.LabelColor)
	y += r.Theme.LineHeight

	sliderX := float32(x + r.Theme.LabelWidth)
	sliderW := float32(pp.width - r.Theme.LabelWidth - pad*2 - 110)
	valueX := int32(sliderX+sliderW) + 8

	for _, f := range paramFields {
		pending := f.field(&pp.pending)
		active := *f.field(&pp.active)
		pp.drawName(x, y, f.label, *pending != active)
		v := gui.SliderBar(rl.Rectangle{X: sliderX, Y: float32(y), Width: sliderW, Height: 14}, "", "", float32(*pending), f.min, f.max)
		if pp.sliders.Edited(f.label, v) {
			*pending = float64(v)
		}
		rl.DrawText(fmt.Sprintf("%.3g (%.3g)", *pending, active), valueX, y, r.Theme.FontSize, r.Theme.ValueColor)
		y += rowH
	}

	y = pp.drawGridSlider(x, y, sliderX, sliderW, valueX, "rows", &pp.pending.Rows, pp.active.Rows)
	y = pp.drawGridSlider(x, y, sliderX, sliderW, valueX, "cols", &pp.pending.Cols, pp.active.Cols)

	pp.drawName(x, y, "mask", pp.pendingMask.Shape != pp.activeMask.Shape)
	if gui.Button(rl.Rectangle{X: sliderX, Y: float32(y), Width: sliderW, Height: 16}, string(pp.pendingMask.Shape)) {
		pp.pendingMask.Shape = nextMaskShape(pp.pendingMask.Shape)
	}
	rl.DrawText(fmt.Sprintf("(%s)", pp.activeMask.Shape), valueX, y, r.Theme.FontSize, r.Theme.ValueColor)
	y += rowH

	pp.drawName(x, y, "thresh", pp.pendingMask.Threshold != pp.activeMask.Threshold)
	t := gui.SliderBar(rl.Rectangle{X: sliderX, Y: float32(y), Width: sliderW, Height: 14}, "", "", float32(pp.pendingMask.Threshold), -1, 1)
	if pp.sliders.Edited("thresh", t) {
		pp.pendingMask.Threshold = float64(t)
	}
	rl.DrawText(fmt.Sprintf("%.3g (%.3g)", pp.pendingMask.Threshold, pp.activeMask.Threshold), valueX, y, r.Theme.FontSize, r.Theme.ValueColor)
	y += rowH + pad

	action := ParamNone
	bw := float32(80)
	if gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: bw, Height: 24}, "Apply") {
		action = ParamApply
	}
	if gui.Button(rl.Rectangle{X: float32(x) + bw + 8, Y: float32(y), Width: bw, Height: 24}, "Revert") {
		pp.Revert()
		action = ParamRevert
	}
	if gui.Button(rl.Rectangle{X: float32(x) + 2*(bw+8), Y: float32(y), Width: bw, Height: 24}, "Defaults") {
		action = ParamDefaults
	}
	if pp.Dirty() {
		rl.DrawText("pending changes", x, y+30, r.Theme.FontSize, r.Theme.PendingColor)
	}

	return action
}

func (pp *ParamPanel) drawName(x, y int32, label string, changed bool) {
	c := pp.renderer.Theme.LabelColor
	if changed {
		c = pp.renderer.Theme.PendingColor
	}
	rl.DrawText(label, x, y, pp.renderer.Theme.FontSize, c)
}

func (pp *ParamPanel) drawGridSlider(x, y int32, sliderX, sliderW float32, valueX int32, label string, pending *int, active int) int32 {
	pp.drawName(x, y, label, *pending != active)
	v := gui.SliderBar(rl.Rectangle{X: sliderX, Y: float32(y), Width: sliderW, Height: 14}, "", "", float32(*pending), minGridSize, maxGridSize)
	if pp.sliders.Edited(label, v) {
		*pending = int(math.Round(float64(v)))
	}
	rl.DrawText(fmt.Sprintf("%d (%d)", *pending, active), valueX, y, pp.renderer.Theme.FontSize, pp.renderer.Theme.ValueColor)
	return y + 18
}

// nextMaskShape cycles through the recognized shapes.
func nextMaskShape(s model.MaskShape) model.MaskShape {
	for i, k := range model.MaskShapes {
		if k == s {
			return model.MaskShapes[(i+1)%len(model.MaskShapes)]
		}
	}
	return model.MaskShapes[0]
}
